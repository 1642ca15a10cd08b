package safclient

import (
	"context"
	"net/url"
)

type LoginResult struct {
	Token       string `json:"token"`
	UserDetails struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
	} `json:"userDetails"`
}

// Summary is one inbox or search line
type Summary struct {
	ID          string `json:"id"`
	SafNo       string `json:"safNo"`
	HoldingNo   string `json:"holdingNo"`
	WardNo      string `json:"wardNo"`
	OwnerName   string `json:"ownerName"`
	ApplyDate   string `json:"applyDate"`
	CurrentRole string `json:"currentRole"`
	Status      string `json:"status"`
}

type Page struct {
	Data        []Summary `json:"data"`
	CurrentPage int       `json:"currentPage"`
	LastPage    int       `json:"lastPage"`
	Total       int64     `json:"total"`
}

type Row struct {
	Label    string `json:"label"`
	Current  string `json:"currentValue"`
	Verified string `json:"verifiedValue"`
	Match    *bool  `json:"match,omitempty"`
}

type Section struct {
	Kind    string   `json:"kind"`
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

type Comparison struct {
	Summary          Summary   `json:"summary"`
	VerifiedBy       string    `json:"verifiedBy"`
	UserName         string    `json:"userName"`
	VerificationDate string    `json:"verificationDate"`
	Sections         []Section `json:"sections"`
}

type AmountLine struct {
	HeadName string  `json:"headName"`
	Amount   float64 `json:"amount"`
}

type Receipt struct {
	TranNo        string       `json:"tranNo"`
	TranDate      string       `json:"tranDate"`
	SafNo         string       `json:"safNo"`
	OwnerName     string       `json:"ownerName"`
	PaymentMode   string       `json:"paymentMode"`
	TaxHeads      []AmountLine `json:"taxHeads"`
	FineRebate    []AmountLine `json:"fineRebate"`
	Amount        string       `json:"amount"`
	AmountInWords string       `json:"amountInWords"`
	QRURL         string       `json:"qrUrl"`
}

type Memo struct {
	Lang      string            `json:"lang"`
	Labels    map[string]string `json:"labels"`
	UlbName   string            `json:"ulbName"`
	MemoNo    string            `json:"memoNo"`
	MemoDate  string            `json:"memoDate"`
	Effective string            `json:"effective"`
	OwnerName string            `json:"ownerName"`
	Taxes     []AmountLine      `json:"taxes"`
	TotalTax  float64           `json:"totalTax"`
	QRURL     string            `json:"qrUrl"`
}

// Login signs in and keeps the token on the client
func (c *Client) Login(ctx context.Context, phone, password string) (LoginResult, error) {
	var res LoginResult
	err := c.Post(ctx, "/api/login", map[string]string{"phone": phone, "password": password}, &res)
	if err == nil {
		c.Token = res.Token
	}
	return res, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.Post(ctx, "/api/logout", nil, nil)
}

func (c *Client) Inbox(ctx context.Context, page, perPage int) (Page, error) {
	var p Page
	err := c.Post(ctx, "/api/property/inbox", map[string]int{"page": page, "perPage": perPage}, &p)
	return p, err
}

func (c *Client) Search(ctx context.Context, key string, page int) (Page, error) {
	var p Page
	err := c.Post(ctx, "/api/property/search-saf", map[string]any{"key": key, "page": page}, &p)
	return p, err
}

// Verification fetches the declared versus verified comparison of a SAF
func (c *Client) Verification(ctx context.Context, safID string) (Comparison, error) {
	var cmp Comparison
	err := c.Post(ctx, "/api/property/field-verification-dtl", map[string]string{"id": safID}, &cmp)
	return cmp, err
}

func (c *Client) PaymentReceipt(ctx context.Context, id string) (Receipt, error) {
	var r Receipt
	err := c.Post(ctx, "/api/property/payment-receipt", map[string]string{"id": id}, &r)
	return r, err
}

// Memo fetches a SAM memo; lang is EN or HN
func (c *Client) Memo(ctx context.Context, id, lang string) (Memo, error) {
	var m Memo
	err := c.Post(ctx, "/api/property/memo-receipt", map[string]string{"id": id, "lang": lang}, &m)
	return m, err
}

// ExportURL is where the verification workbook of safID is downloaded from
func (c *Client) ExportURL(safID string) string {
	return c.BaseURL + "/api/property/field-verification-dtl/" + url.PathEscape(safID) + "/export"
}
