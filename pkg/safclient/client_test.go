package safclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFetchErrors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantMsg    string
	}{
		{
			name: "status false",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":false,"message":"nothing pending"}`))
			},
			wantMsg: "nothing pending",
		},
		{
			name: "http error with envelope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"status":false,"message":"insufficient permissions"}`))
			},
			wantStatus: http.StatusForbidden,
			wantMsg:    "insufficient permissions",
		},
		{
			name: "http error without envelope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad gateway", http.StatusBadGateway)
			},
			wantStatus: http.StatusBadGateway,
			wantMsg:    "bad gateway",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			err := New(srv.URL, "").Post(context.Background(), "/api/x", nil, nil)
			require.Error(t, err)
			var fe *FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, "/api/x", fe.Path)
			assert.Equal(t, tt.wantStatus, fe.Status)
			assert.Equal(t, tt.wantMsg, fe.Message)
		})
	}
}

func TestClientUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	err := New(srv.URL, "").Get(context.Background(), "/api/menu", nil)
	assert.True(t, IsFetchError(err))
}

func TestClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, "").Inbox(context.Background(), 1, 10)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Error(t, fe.Err)
	assert.Zero(t, fe.Status)
}

func TestClientLoginAndInbox(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "9999999901", body["phone"])
			w.Write([]byte(`{"status":true,"data":{"token":"abc","userDetails":{"role":"ULB TC"}}}`))
		case "/api/property/inbox":
			assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
			assert.Equal(t, http.MethodPost, r.Method)
			w.Write([]byte(`{"status":true,"data":{"data":[{"id":"1","safNo":"SAF/1"}],"currentPage":1,"lastPage":1,"total":1}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "")
	res, err := c.Login(context.Background(), "9999999901", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ULB TC", res.UserDetails.Role)
	assert.Equal(t, "abc", c.Token)

	page, err := c.Inbox(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "SAF/1", page.Data[0].SafNo)
	assert.Equal(t, int64(1), page.Total)
}

func TestFailedLoginKeepsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":false,"message":"invalid phone or password"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "old")
	_, err := c.Login(context.Background(), "1", "2")
	require.Error(t, err)
	assert.Equal(t, "old", c.Token)
}

func TestExportURL(t *testing.T) {
	c := New("http://host:8080/", "")
	assert.Equal(t, "http://host:8080/api/property/field-verification-dtl/a%2Fb/export", c.ExportURL("a/b"))
}
