package routehandlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rafayk/bookcatalog/api"
	"github.com/rafayk/bookcatalog/auth"
	"github.com/rafayk/bookcatalog/datastore"
	rh "github.com/rafayk/bookcatalog/route-handlers"
)

// testServer runs the full router against a throwaway database, so requests
// exercise the same wiring main sets up.
type testServer struct {
	*httptest.Server
	db     *sql.DB
	hasher *auth.PasswordHasher
	users  *datastore.UserRepository
	books  *datastore.BookRepository
}

func newTestServer(t *testing.T, limiterCfg auth.LimiterConfig) *testServer {
	t.Helper()

	db, err := datastore.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	bookRepo := datastore.NewBookRepository(db)
	authorRepo := datastore.NewAuthorRepository(db)
	userRepo := datastore.NewUserRepository(db)

	hasher := auth.NewPasswordHasher()
	router := api.SetupRoutes(
		rh.NewBookHandler(bookRepo),
		rh.NewAuthorHandler(authorRepo),
		rh.NewAuthHandler(userRepo, hasher, auth.NewLoginLimiter(limiterCfg), auth.NewTokenIssuer()),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		Server: srv,
		db:     db,
		hasher: hasher,
		users:  userRepo,
		books:  bookRepo,
	}
}

func defaultLimiter() auth.LimiterConfig {
	return auth.LimiterConfig{Window: time.Minute, Max: 100}
}

// provisionUser stores a credential the way cmd/adduser does.
func (ts *testServer) provisionUser(t *testing.T, username, password string) {
	t.Helper()

	hash, err := ts.hasher.Hash(password)
	require.NoError(t, err)
	require.NoError(t, ts.users.CreateUser(context.Background(), username, hash))
}

// do sends a JSON request and decodes the JSON response body into a map.
func (ts *testServer) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequest(method, ts.URL+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

// createAuthor provisions an author over the API and returns its id.
func (ts *testServer) createAuthor(t *testing.T, name string) int64 {
	t.Helper()

	resp, body := ts.do(t, http.MethodPost, "/api/authors", map[string]string{
		"name": name,
		"bio":  "test bio",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "author response must carry a data object")
	return int64(data["id"].(float64))
}
