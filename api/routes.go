package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	rh "github.com/rafayk/bookcatalog/route-handlers"
	"github.com/rafayk/bookcatalog/webutil"
)

const (
	apiBasePath     = "/api"
	booksBasePath   = "/books"
	authorsBasePath = "/authors"

	// Legacy paths served outside /api; the edit form calls them directly.
	editBookPath  = "/books/edit/{id}"
	checkBookPath = "/books/checkBook/{id}"

	loginPath = "/login"
)

const (
	paramID = "id" // General parameter name for resource IDs
)

func SetupRoutes(
	bookHandler *rh.BookHandler,
	authorHandler *rh.AuthorHandler,
	authHandler *rh.AuthHandler,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(RealIP)
	r.Use(RequestLogger)
	r.Use(Recoverer)                            // Recover from panics
	r.Use(middleware.Timeout(60 * time.Second)) // Set a timeout context for requests

	r.Route(apiBasePath, func(r chi.Router) {
		configureBookRoutes(r, bookHandler)
		configureAuthorRoutes(r, authorHandler)
	})

	// The edit form talks to these paths directly, outside /api.
	r.Put(editBookPath, webutil.MakeHandler(bookHandler.HandleUpdateBook))
	r.Get(checkBookPath, webutil.MakeHandler(bookHandler.HandleCheckBook))

	r.Post(loginPath, webutil.MakeHandler(authHandler.HandleLogin))

	// Health check endpoint
	r.Get("/healthz", handleHealthCheck)

	return r
}

// Helper for constructing paths with a parameter
func pathWithParam(basePath string, paramName string) string {
	if basePath == "" {
		return "/{" + paramName + "}"
	}
	return basePath + "/{" + paramName + "}"
}

// --- Book Routes ---
func configureBookRoutes(r chi.Router, handler *rh.BookHandler) {
	specificBookPath := pathWithParam("", paramID) // e.g., "/{id}"

	r.Route(booksBasePath, func(r chi.Router) {
		r.Get("/", webutil.MakeHandler(handler.HandleSearchBooks))
		r.Post("/", webutil.MakeHandler(handler.HandleCreateBook))
		r.Delete(specificBookPath, webutil.MakeHandler(handler.HandleDeleteBook))
	})
}

// --- Author Routes ---
func configureAuthorRoutes(r chi.Router, handler *rh.AuthorHandler) {
	specificAuthorPath := pathWithParam("", paramID) // e.g., "/{id}"

	r.Route(authorsBasePath, func(r chi.Router) {
		r.Get("/", webutil.MakeHandler(handler.HandleGetAuthors))
		r.Post("/", webutil.MakeHandler(handler.HandleCreateAuthor))
		r.Get(specificAuthorPath, webutil.MakeHandler(handler.HandleGetAuthor))
	})
}

// --- Utility Functions ---

// handleHealthCheck responds to a health check request.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
