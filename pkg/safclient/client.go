// Package safclient talks to the SAF API. Every failed call, whether the
// network, the HTTP status or a status:false envelope, is a *FetchError.
package safclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FetchError is returned for every failed call. Callers keep whatever they
// showed before the call.
type FetchError struct {
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: HTTP %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err came from a failed call
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Post sends body as JSON and decodes the envelope's data into out (if non-nil)
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &FetchError{Path: path, Err: err}
		}
		rd = bytes.NewReader(data)
	}
	return c.do(ctx, http.MethodPost, path, rd, out)
}

// Get fetches path and decodes the envelope's data into out (if non-nil)
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return &FetchError{Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &FetchError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &FetchError{Path: path, Status: resp.StatusCode, Err: err}
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &FetchError{Path: path, Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return &FetchError{Path: path, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &FetchError{Path: path, Status: resp.StatusCode, Message: env.Message}
	}
	if !env.Status {
		return &FetchError{Path: path, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &FetchError{Path: path, Err: fmt.Errorf("decode data: %w", err)}
		}
	}
	return nil
}
