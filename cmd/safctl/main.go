// Command safctl is an operator CLI for the SAF API
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"p9e.in/saf/pkg/safclient"
)

type options struct {
	server  string
	token   string
	timeout time.Duration
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "safctl",
		Short:        "Work the SAF verification queue from a terminal",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("SAF_SERVER", "http://localhost:8080"), "API base URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("SAF_TOKEN"), "bearer token (defaults to $SAF_TOKEN)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")

	root.AddCommand(
		loginCmd(opts, in),
		inboxCmd(opts),
		verificationCmd(opts),
		receiptCmd(opts),
		memoCmd(opts),
	)
	return root
}

func (o *options) client() *safclient.Client {
	c := safclient.New(o.server, o.token)
	c.HTTP.Timeout = o.timeout
	return c
}

func (o *options) authed() (*safclient.Client, error) {
	if o.token == "" {
		return nil, errors.New("no token: run `safctl login` and export SAF_TOKEN, or pass --token")
	}
	return o.client(), nil
}

func loginCmd(opts *options, in io.Reader) *cobra.Command {
	var phone string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print a token",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd, in)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			res, err := opts.client().Login(ctx, phone, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "signed in as %s (%s)\n", res.UserDetails.Name, res.UserDetails.Role)
			fmt.Fprintln(cmd.OutOrStdout(), res.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "mobile number")
	cmd.MarkFlagRequired("phone")
	return cmd
}

// readPassword reads without echo from a terminal, or one line from a pipe
func readPassword(cmd *cobra.Command, in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func inboxCmd(opts *options) *cobra.Command {
	var page, perPage int
	var key string
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List applications waiting at your role",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.authed()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var p safclient.Page
			if key != "" {
				p, err = c.Search(ctx, key, page)
			} else {
				p, err = c.Inbox(ctx, page, perPage)
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSAF NO\tWARD\tOWNER\tAPPLIED\tAT")
			for _, s := range p.Data {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.SafNo, s.WardNo, s.OwnerName, s.ApplyDate, s.CurrentRole)
			}
			tw.Flush()
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d, %d total\n", p.CurrentPage, p.LastPage, p.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 10, "rows per page")
	cmd.Flags().StringVar(&key, "search", "", "search by SAF no, holding no, owner or mobile instead")
	return cmd
}

func verificationCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verification <safId>",
		Short: "Show declared versus verified values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.authed()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			cmp, err := c.Verification(ctx, args[0])
			if err != nil {
				return err
			}
			printComparison(cmd.OutOrStdout(), cmp)
			fmt.Fprintf(cmd.OutOrStdout(), "\nworkbook: %s\n", c.ExportURL(args[0]))
			return nil
		},
	}
}

func printComparison(out io.Writer, cmp safclient.Comparison) {
	fmt.Fprintf(out, "%s verified by %s %s on %s\n", cmp.Summary.SafNo, cmp.VerifiedBy, cmp.UserName, cmp.VerificationDate)
	for _, s := range cmp.Sections {
		fmt.Fprintf(out, "\n%s\n", s.Title)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(append(s.Columns, ""), "\t"))
		for _, r := range s.Rows {
			mark := ""
			if r.Match != nil && !*r.Match {
				mark = "*"
			}
			if len(s.Columns) == 2 {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Label, r.Verified, mark)
			} else {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Label, r.Current, r.Verified, mark)
			}
		}
		tw.Flush()
	}
}

func receiptCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "receipt <id>",
		Short: "Print a payment receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.authed()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			r, err := c.PaymentReceipt(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Receipt %s dated %s\nSAF %s, %s\nMode: %s\n\n", r.TranNo, r.TranDate, r.SafNo, r.OwnerName, r.PaymentMode)
			printAmounts(out, append(r.TaxHeads, r.FineRebate...))
			fmt.Fprintf(out, "\nTotal: %s (%s)\n%s\n", r.Amount, r.AmountInWords, r.QRURL)
			return nil
		},
	}
}

func memoCmd(opts *options) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "memo <id>",
		Short: "Print a SAM memo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang = strings.ToUpper(lang)
			if lang != "EN" && lang != "HN" {
				return fmt.Errorf("--lang must be EN or HN, got %q", lang)
			}
			c, err := opts.authed()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			m, err := c.Memo(ctx, args[0], lang)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n%s %s  %s %s  %s %s\n%s: %s\n\n", m.UlbName,
				m.Labels["memoNo"], m.MemoNo, m.Labels["date"], m.MemoDate, m.Labels["effective"], m.Effective,
				m.Labels["owner"], m.OwnerName)
			printAmounts(out, m.Taxes)
			fmt.Fprintf(out, "\n%s: %.2f\n%s\n", m.Labels["total"], m.TotalTax, m.QRURL)
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "EN", "memo language, EN or HN")
	return cmd
}

func printAmounts(out io.Writer, lines []safclient.AmountLine) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%.2f\t\n", l.HeadName, l.Amount)
	}
	tw.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
