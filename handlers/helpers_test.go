package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"p9e.in/saf/config"
	"p9e.in/saf/internal/testdb"
	"p9e.in/saf/middleware"
	"p9e.in/saf/models"
	"p9e.in/saf/pkg/sessionstore"
)

const (
	testPassword = "test-pass-123"

	phoneAdmin    = "9999999999"
	phoneULBTC    = "9999999901"
	phoneAgencyTC = "9999999902"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// setup seeds a fresh database with the demo SAF and resets the stores
func setup(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("SEED_PASSWORD", testPassword)

	prevApp := config.App
	config.App = config.Defaults()
	config.App.JWTSecret = "test-secret"

	prevSessions, prevPhotos, prevTokens := Sessions, Photos, middleware.TokenStore
	store := sessionstore.NewMemory()
	Sessions = store
	middleware.TokenStore = store
	Photos = nil
	t.Cleanup(func() {
		config.App = prevApp
		Sessions, Photos, middleware.TokenStore = prevSessions, prevPhotos, prevTokens
	})

	db := testdb.Open(t)
	testdb.Seed(t, db, true)
	return db
}

func loadUser(t *testing.T, db *gorm.DB, phone string) models.User {
	t.Helper()
	var u models.User
	require.NoError(t, db.Preload("RoleModel.Permissions").Where("phone = ?", phone).First(&u).Error)
	return u
}

func demoSaf(t *testing.T, db *gorm.DB) models.SafApplication {
	t.Helper()
	var saf models.SafApplication
	require.NoError(t, db.Where("saf_no = ?", "SAF/DEMO/0001").First(&saf).Error)
	return saf
}

func claimsFor(u models.User) *middleware.Claims {
	return &middleware.Claims{UserID: u.ID.String(), Name: u.Name, Phone: u.Phone, Role: u.RoleName()}
}

// newRequest builds a request signed in as the user with phone. An empty
// phone makes an anonymous request.
func newRequest(t *testing.T, db *gorm.DB, phone, method, target string, body any, vars map[string]string) *http.Request {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		rd = b
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rd)
	if _, ok := body.(io.Reader); !ok {
		req.Header.Set("Content-Type", "application/json")
	}
	if phone != "" {
		u := loadUser(t, db, phone)
		req = req.WithContext(middleware.WithClaims(req.Context(), claimsFor(u)))
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

// serve runs h and decodes the envelope
func serve(t *testing.T, h http.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, req)
	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}
