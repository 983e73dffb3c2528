package routehandlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/rafayk/bookcatalog/auth"
	"github.com/rafayk/bookcatalog/datastore"
	"github.com/rafayk/bookcatalog/webutil"
)

// TokenCookieName is the cookie carrying the session token.
const TokenCookieName = "token"

const (
	// msgLoginSuccess keeps the catalog UI's expected text verbatim,
	// misspelling included.
	msgLoginSuccess = "Logged in succesfully"

	// msgBadCredentials covers unknown username and wrong password alike
	// so responses never reveal which usernames exist.
	msgBadCredentials = "Invalid username or password"

	msgRateLimited = "Too many login attempts, please try again later"
)

// AuthHandler drives the login flow: rate gate, credential lookup, password
// verification, token issuance. Every branch returns exactly one response.
type AuthHandler struct {
	Users   *datastore.UserRepository
	Hasher  *auth.PasswordHasher
	Limiter *auth.LoginLimiter
	Tokens  *auth.TokenIssuer

	decoyOnce sync.Once
	decoyHash string
}

func NewAuthHandler(users *datastore.UserRepository, hasher *auth.PasswordHasher, limiter *auth.LoginLimiter, tokens *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{
		Users:   users,
		Hasher:  hasher,
		Limiter: limiter,
		Tokens:  tokens,
	}
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) error {
	// Rate gate first: every attempt counts against the window, malformed
	// payloads included, and nothing past this point runs once exhausted.
	if !h.Limiter.Allow(clientKey(r)) {
		w.Header().Set(webutil.HeaderRetryAfter, strconv.Itoa(int(h.Limiter.Window().Seconds())))
		return webutil.ErrTooManyRequests(msgRateLimited)
	}

	var requestData struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if requestData.Username == "" || requestData.Password == "" {
		return webutil.ErrBadRequest("Username and password are required")
	}

	user, err := h.Users.GetUserByUsername(r.Context(), requestData.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Burn a verification against a decoy hash so an unknown
			// username costs the same as a wrong password.
			_, _ = h.Hasher.Verify(h.decoy(), requestData.Password)
			return webutil.ErrUnauthorized(msgBadCredentials)
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := h.Hasher.Verify(user.PasswordHash, requestData.Password)
	if err != nil {
		// A stored hash we cannot parse. Rejected like a mismatch; the
		// cause stays in the server log.
		return webutil.NewHTTPErrorWrap(http.StatusUnauthorized, msgBadCredentials, err)
	}
	if !ok {
		return webutil.ErrUnauthorized(msgBadCredentials)
	}

	token, err := h.Tokens.Issue()
	if err != nil {
		return fmt.Errorf("failed to issue session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	webutil.RespondWithMessage(w, http.StatusOK, msgLoginSuccess)
	return nil
}

func (h *AuthHandler) decoy() string {
	h.decoyOnce.Do(func() {
		// Hash failure leaves the decoy empty; Verify then errors, which
		// still lands on the uniform rejection path.
		h.decoyHash, _ = h.Hasher.Hash("decoy-password-value")
	})
	return h.decoyHash
}

// clientKey identifies the caller for rate limiting. The RealIP middleware
// has already folded proxy headers into RemoteAddr.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
