package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Path {
		case "/api/login":
			if body["password"] != "s3cret" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"status":false,"message":"invalid phone or password"}`))
				return
			}
			w.Write([]byte(`{"status":true,"data":{"token":"tok-1","userDetails":{"name":"Tax Collector","role":"ULB TC"}}}`))
		case "/api/property/inbox":
			w.Write([]byte(`{"status":true,"data":{"data":[{"id":"a1","safNo":"SAF/DEMO/0001","wardNo":"1","ownerName":"Ravi Kumar"}],"currentPage":1,"lastPage":1,"total":1}}`))
		case "/api/property/memo-receipt":
			w.Write([]byte(`{"status":true,"data":{"lang":"` + body["lang"].(string) + `","memoNo":"SAM/1","labels":{"memoNo":"Memo No."},"taxes":[{"headName":"House Tax","amount":180}],"totalTax":180}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":false,"message":"not found"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newRootCmd(strings.NewReader(stdin), out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoginPrintsToken(t *testing.T) {
	srv := fakeAPI(t)

	out, err := run(t, "s3cret\n", "--server", srv.URL, "login", "--phone", "9999999901")
	require.NoError(t, err)
	assert.Equal(t, "tok-1\n", out)

	_, err = run(t, "wrong\n", "--server", srv.URL, "login", "--phone", "9999999901")
	assert.ErrorContains(t, err, "invalid phone or password")
}

func TestInboxNeedsToken(t *testing.T) {
	t.Setenv("SAF_TOKEN", "")
	srv := fakeAPI(t)
	_, err := run(t, "", "--server", srv.URL, "inbox")
	assert.ErrorContains(t, err, "no token")
}

func TestInboxTable(t *testing.T) {
	srv := fakeAPI(t)
	out, err := run(t, "", "--server", srv.URL, "--token", "tok-1", "inbox")
	require.NoError(t, err)
	assert.Contains(t, out, "SAF/DEMO/0001")
	assert.Contains(t, out, "Ravi Kumar")
	assert.Contains(t, out, "page 1 of 1, 1 total")
}

func TestMemoLang(t *testing.T) {
	srv := fakeAPI(t)

	out, err := run(t, "", "--server", srv.URL, "--token", "tok-1", "memo", "m1", "--lang", "hn")
	require.NoError(t, err)
	assert.Contains(t, out, "Memo No. SAM/1")
	assert.Contains(t, out, "House Tax")

	_, err = run(t, "", "--server", srv.URL, "--token", "tok-1", "memo", "m1", "--lang", "fr")
	assert.ErrorContains(t, err, "--lang must be EN or HN")
}
