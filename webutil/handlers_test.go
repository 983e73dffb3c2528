package webutil

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHandler(t *testing.T, handler AppHandler) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	MakeHandler(handler)(rec, req)

	var body map[string]string
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestMakeHandlerSuccessPassesThrough(t *testing.T) {
	rec, body := runHandler(t, func(w http.ResponseWriter, r *http.Request) error {
		RespondWithJSON(w, http.StatusOK, map[string]string{"message": "ok"})
		return nil
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["message"])
}

func TestMakeHandlerHTTPErrorStatusAndMessage(t *testing.T) {
	rec, body := runHandler(t, func(w http.ResponseWriter, r *http.Request) error {
		return ErrBadRequest("title is required")
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title is required", body["message"])
}

func TestMakeHandlerNoRowsBecomesNotFound(t *testing.T) {
	rec, body := runHandler(t, func(w http.ResponseWriter, r *http.Request) error {
		return fmt.Errorf("row lookup: %w", sql.ErrNoRows)
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Resource not found", body["message"])
}

func TestMakeHandlerUnknownErrorBecomesInternal(t *testing.T) {
	rec, body := runHandler(t, func(w http.ResponseWriter, r *http.Request) error {
		return errors.New("SQLITE_CORRUPT: database disk image is malformed")
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body["message"])
}

// The wrapped cause stays server-side; only the public message goes out.
func TestMakeHandlerWrappedCauseDoesNotLeak(t *testing.T) {
	rec, body := runHandler(t, func(w http.ResponseWriter, r *http.Request) error {
		cause := errors.New("near \"DORP\": syntax error in SELECT * FROM books")
		return NewHTTPErrorWrap(http.StatusInternalServerError, "Query unsuccessful", cause)
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Query unsuccessful", body["message"])
	assert.NotContains(t, rec.Body.String(), "syntax error")
}

func TestMakeHandlerTooManyRequests(t *testing.T) {
	rec, body := runHandler(t, func(w http.ResponseWriter, r *http.Request) error {
		return ErrTooManyRequests("")
	})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests", body["message"])
}
