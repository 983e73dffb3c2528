package routehandlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rafayk/bookcatalog/datastore"
	"github.com/rafayk/bookcatalog/models"
	"github.com/rafayk/bookcatalog/webutil"
)

const (
	msgQueryUnsuccessful = "Query unsuccessful"
	msgBookNotFound      = "Book not found"
	msgUnknownAuthor     = "Unknown author"
)

type BookHandler struct {
	Repo *datastore.BookRepository
}

func NewBookHandler(repo *datastore.BookRepository) *BookHandler {
	return &BookHandler{Repo: repo}
}

// flexID decodes a numeric id that clients send either as a JSON number or
// as a quoted string. The original web form posts "1", API clients post 1.
type flexID int64

func (f *flexID) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" || raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", raw)
	}
	*f = flexID(id)
	return nil
}

// HandleSearchBooks serves GET /api/books. Filters arrive as optional query
// parameters; an id filter suppresses all others.
func (h *BookHandler) HandleSearchBooks(w http.ResponseWriter, r *http.Request) error {
	filter := bookFilterFromQuery(r.URL.Query())

	books, err := h.Repo.SearchBooks(r.Context(), filter)
	if err != nil {
		// The client gets a generic message; the cause stays in the log.
		return webutil.NewHTTPErrorWrap(http.StatusInternalServerError, msgQueryUnsuccessful, err)
	}
	if books == nil {
		books = []models.Book{}
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"response": books})
	return nil
}

// bookFilterFromQuery maps raw query parameters onto a BookFilter. Absent
// parameters contribute nothing; a malformed id is treated as absent rather
// than an error.
func bookFilterFromQuery(values url.Values) datastore.BookFilter {
	filter := datastore.BookFilter{
		Title:   values.Get("title"),
		Author:  values.Get("author"),
		Genre:   values.Get("genre"),
		PubYear: values.Get("pub_year"),
	}
	if raw := values.Get("id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.ID = &id
		}
	}
	return filter
}

func (h *BookHandler) HandleCreateBook(w http.ResponseWriter, r *http.Request) error {
	var requestData struct {
		Title    string `json:"title"`
		AuthorID flexID `json:"author_id"`
		Genre    string `json:"genre"`
		PubYear  string `json:"pub_year"`
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if requestData.Title == "" || requestData.Genre == "" || requestData.PubYear == "" || requestData.AuthorID <= 0 {
		return webutil.ErrBadRequest("title, author_id, genre and pub_year are required")
	}

	newBook := models.Book{
		AuthorID: int64(requestData.AuthorID),
		Title:    requestData.Title,
		PubYear:  requestData.PubYear,
		Genre:    requestData.Genre,
	}

	newID, err := h.Repo.CreateBook(r.Context(), &newBook)
	if err != nil {
		if errors.Is(err, datastore.ErrUnknownAuthor) {
			return webutil.ErrBadRequestWrap(msgUnknownAuthor, err)
		}
		return webutil.NewHTTPErrorWrap(http.StatusInternalServerError, msgQueryUnsuccessful, err)
	}

	books, err := h.Repo.GetBooks(r.Context())
	if err != nil {
		return webutil.NewHTTPErrorWrap(http.StatusInternalServerError, msgQueryUnsuccessful, err)
	}
	if books == nil {
		books = []models.Book{}
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"response": books, "id": newID})
	return nil
}

// HandleUpdateBook serves PUT /books/edit/{id}. Every body field is
// optional; absent fields keep their stored values.
func (h *BookHandler) HandleUpdateBook(w http.ResponseWriter, r *http.Request) error {
	id, err := bookIDParam(r)
	if err != nil {
		return err
	}

	var requestData struct {
		AuthorID *flexID `json:"author_id"`
		Title    *string `json:"title"`
		PubYear  *string `json:"pub_year"`
		Genre    *string `json:"genre"`
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	update := datastore.BookUpdate{
		Title:   requestData.Title,
		PubYear: requestData.PubYear,
		Genre:   requestData.Genre,
	}
	if requestData.AuthorID != nil {
		authorID := int64(*requestData.AuthorID)
		update.AuthorID = &authorID
	}

	book, err := h.Repo.UpdateBook(r.Context(), id, update)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return webutil.ErrNotFoundWrap(msgBookNotFound, err)
		case errors.Is(err, datastore.ErrUnknownAuthor):
			return webutil.ErrBadRequestWrap(msgUnknownAuthor, err)
		}
		return fmt.Errorf("failed to update book %d: %w", id, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"data": book})
	return nil
}

// HandleCheckBook serves GET /books/checkBook/{id}, the edit form's
// existence probe.
func (h *BookHandler) HandleCheckBook(w http.ResponseWriter, r *http.Request) error {
	id, err := bookIDParam(r)
	if err != nil {
		return err
	}

	book, err := h.Repo.GetBookByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrNotFoundWrap(msgBookNotFound, err)
		}
		return fmt.Errorf("failed to retrieve book %d: %w", id, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"book": book})
	return nil
}

// HandleDeleteBook serves DELETE /api/books/{id} and echoes the remaining
// catalog. Deleting an id that is already gone is not an error.
func (h *BookHandler) HandleDeleteBook(w http.ResponseWriter, r *http.Request) error {
	id, err := bookIDParam(r)
	if err != nil {
		return err
	}

	if err := h.Repo.DeleteBook(r.Context(), id); err != nil {
		return webutil.NewHTTPErrorWrap(http.StatusInternalServerError, "Entry could not be deleted", err)
	}

	books, err := h.Repo.GetBooks(r.Context())
	if err != nil {
		return webutil.NewHTTPErrorWrap(http.StatusInternalServerError, msgQueryUnsuccessful, err)
	}
	if books == nil {
		books = []models.Book{}
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"response": books})
	return nil
}

func bookIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, webutil.ErrBadRequest("Invalid book ID format")
	}
	return id, nil
}
