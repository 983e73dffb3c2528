package routehandlers_test

import (
	"encoding/hex"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafayk/bookcatalog/auth"
	rh "github.com/rafayk/bookcatalog/route-handlers"
)

func tokenCookie(resp *http.Response) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == rh.TokenCookieName {
			return cookie
		}
	}
	return nil
}

func TestLoginSuccess(t *testing.T) {
	ts := newTestServer(t, defaultLimiter())
	ts.provisionUser(t, "rafay", "test")

	resp, body := ts.do(t, http.MethodPost, "/login", map[string]string{
		"username": "rafay",
		"password": "test",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged in succesfully", body["message"])

	cookie := tokenCookie(resp)
	require.NotNil(t, cookie, "login must set the token cookie")
	assert.True(t, cookie.HttpOnly, "token cookie must be HTTP-only")

	decoded, err := hex.DecodeString(cookie.Value)
	require.NoError(t, err)
	assert.Len(t, decoded, 32)
}

func TestLoginTokensDiffer(t *testing.T) {
	ts := newTestServer(t, defaultLimiter())
	ts.provisionUser(t, "rafay", "test")

	creds := map[string]string{"username": "rafay", "password": "test"}
	first, _ := ts.do(t, http.MethodPost, "/login", creds)
	second, _ := ts.do(t, http.MethodPost, "/login", creds)

	require.NotNil(t, tokenCookie(first))
	require.NotNil(t, tokenCookie(second))
	assert.NotEqual(t, tokenCookie(first).Value, tokenCookie(second).Value)
}

// Wrong password and unknown username must be indistinguishable from the
// outside: same status, same body, no cookie.
func TestLoginFailuresAreUniform(t *testing.T) {
	ts := newTestServer(t, defaultLimiter())
	ts.provisionUser(t, "rafay", "test")

	wrongPassword, wrongBody := ts.do(t, http.MethodPost, "/login", map[string]string{
		"username": "rafay",
		"password": "nope",
	})
	unknownUser, unknownBody := ts.do(t, http.MethodPost, "/login", map[string]string{
		"username": "ghost",
		"password": "test",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	assert.Equal(t, wrongPassword.StatusCode, unknownUser.StatusCode)
	assert.Equal(t, wrongBody["message"], unknownBody["message"])
	assert.Nil(t, tokenCookie(wrongPassword))
	assert.Nil(t, tokenCookie(unknownUser))
}

func TestLoginValidation(t *testing.T) {
	ts := newTestServer(t, defaultLimiter())

	resp, _ := ts.do(t, http.MethodPost, "/login", map[string]string{"username": "rafay"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginRateLimit(t *testing.T) {
	ts := newTestServer(t, auth.LimiterConfig{Window: time.Minute, Max: 2})
	ts.provisionUser(t, "rafay", "test")

	bad := map[string]string{"username": "rafay", "password": "nope"}

	for i := 0; i < 2; i++ {
		resp, _ := ts.do(t, http.MethodPost, "/login", bad)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d passes the gate", i+1)
	}

	resp, body := ts.do(t, http.MethodPost, "/login", bad)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, body["message"])
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))

	// Correct credentials are rejected too once the window is exhausted.
	resp, _ = ts.do(t, http.MethodPost, "/login", map[string]string{"username": "rafay", "password": "test"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestLoginRateLimitWindowReset(t *testing.T) {
	// The window must comfortably exceed the cost of one password
	// verification, or it expires between the first and second request.
	const window = 2 * time.Second
	ts := newTestServer(t, auth.LimiterConfig{Window: window, Max: 1})
	ts.provisionUser(t, "rafay", "test")

	resp, _ := ts.do(t, http.MethodPost, "/login", map[string]string{"username": "rafay", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPost, "/login", map[string]string{"username": "rafay", "password": "test"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// The window opened at the first request; a full window from here is
	// past its expiry whatever the requests above cost.
	time.Sleep(window)

	resp, _ = ts.do(t, http.MethodPost, "/login", map[string]string{"username": "rafay", "password": "test"})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "window expiry resets the counter")
}

// The gate sits ahead of request decoding, so malformed payloads spend the
// window like any other attempt.
func TestLoginMalformedAttemptsCountAgainstWindow(t *testing.T) {
	ts := newTestServer(t, auth.LimiterConfig{Window: time.Minute, Max: 1})
	ts.provisionUser(t, "rafay", "test")

	resp, _ := ts.do(t, http.MethodPost, "/login", map[string]string{"user": "rafay"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPost, "/login", map[string]string{"username": "rafay", "password": "test"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
