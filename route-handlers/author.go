package routehandlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rafayk/bookcatalog/datastore"
	"github.com/rafayk/bookcatalog/models"
	"github.com/rafayk/bookcatalog/webutil"
)

type AuthorHandler struct {
	Repo *datastore.AuthorRepository
}

func NewAuthorHandler(repo *datastore.AuthorRepository) *AuthorHandler {
	return &AuthorHandler{Repo: repo}
}

func (h *AuthorHandler) HandleGetAuthors(w http.ResponseWriter, r *http.Request) error {
	authors, err := h.Repo.GetAuthors(r.Context())
	if err != nil {
		return webutil.NewHTTPErrorWrap(http.StatusInternalServerError, msgQueryUnsuccessful, err)
	}
	if authors == nil {
		authors = []models.Author{}
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"response": authors})
	return nil
}

func (h *AuthorHandler) HandleCreateAuthor(w http.ResponseWriter, r *http.Request) error {
	var requestData struct {
		Name string `json:"name"`
		Bio  string `json:"bio"`
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if requestData.Name == "" {
		return webutil.ErrBadRequest("Name is required")
	}

	newAuthor := models.Author{
		Name: requestData.Name,
		Bio:  requestData.Bio,
	}
	if err := h.Repo.CreateAuthor(r.Context(), &newAuthor); err != nil {
		return fmt.Errorf("failed to create author %s: %w", newAuthor.Name, err)
	}

	webutil.RespondWithJSON(w, http.StatusCreated, map[string]any{"data": newAuthor})
	return nil
}

func (h *AuthorHandler) HandleGetAuthor(w http.ResponseWriter, r *http.Request) error {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return webutil.ErrBadRequest("Invalid author ID format")
	}

	author, err := h.Repo.GetAuthorByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrNotFoundWrap("Author not found", err)
		}
		return fmt.Errorf("failed to retrieve author %d: %w", id, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"data": author})
	return nil
}
