package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rafayk/bookcatalog/api"
	"github.com/rafayk/bookcatalog/auth"
	"github.com/rafayk/bookcatalog/datastore"
	"github.com/rafayk/bookcatalog/models"
	rh "github.com/rafayk/bookcatalog/route-handlers"
)

const (
	defaultPort             = "8080"
	defaultDBPath           = "database.db"
	defaultLoginWindow      = time.Minute
	defaultLoginMaxAttempts = 5
	shutdownTimeout         = 15 * time.Second
)

type config struct {
	port             string
	dbPath           string
	adminUsername    string
	adminPassword    string
	loginWindow      time.Duration
	loginMaxAttempts int
}

func main() {
	cfg := loadConfig()

	db, err := datastore.Open(cfg.dbPath)
	if err != nil {
		log.Fatalf("Database setup failed: %v", err)
	}
	defer db.Close()

	bookRepo := datastore.NewBookRepository(db)
	authorRepo := datastore.NewAuthorRepository(db)
	userRepo := datastore.NewUserRepository(db)

	hasher := auth.NewPasswordHasher()
	limiter := auth.NewLoginLimiter(auth.LimiterConfig{
		Window: cfg.loginWindow,
		Max:    cfg.loginMaxAttempts,
	})
	tokens := auth.NewTokenIssuer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	limiter.StartCleanup(ctx)

	if err := seedCatalog(ctx, authorRepo, bookRepo); err != nil {
		log.Fatalf("Catalog seeding failed: %v", err)
	}
	if err := seedAdminUser(ctx, userRepo, hasher, cfg); err != nil {
		log.Fatalf("Admin user seeding failed: %v", err)
	}

	bookHandler := rh.NewBookHandler(bookRepo)
	authorHandler := rh.NewAuthorHandler(authorRepo)
	authHandler := rh.NewAuthHandler(userRepo, hasher, limiter, tokens)

	router := api.SetupRoutes(bookHandler, authorHandler, authHandler)

	startServer(cfg.port, router)
}

func loadConfig() config {
	// .env is optional; deployed environments set variables directly.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = defaultDBPath
		log.Println("WARNING: DB_PATH not set, using ./database.db")
	}

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminUsername == "" || adminPassword == "" {
		log.Println("WARNING: ADMIN_USERNAME/ADMIN_PASSWORD not set. No admin user will be seeded; use cmd/adduser to provision one.")
	}

	loginWindow := defaultLoginWindow
	if raw := os.Getenv("LOGIN_WINDOW_MS"); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			loginWindow = time.Duration(ms) * time.Millisecond
		} else {
			log.Printf("WARNING: invalid LOGIN_WINDOW_MS %q, using default", raw)
		}
	}

	loginMaxAttempts := defaultLoginMaxAttempts
	if raw := os.Getenv("LOGIN_MAX_ATTEMPTS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			loginMaxAttempts = n
		} else {
			log.Printf("WARNING: invalid LOGIN_MAX_ATTEMPTS %q, using default", raw)
		}
	}

	return config{
		port:             port,
		dbPath:           dbPath,
		adminUsername:    adminUsername,
		adminPassword:    adminPassword,
		loginWindow:      loginWindow,
		loginMaxAttempts: loginMaxAttempts,
	}
}

// seedCatalog inserts the starter author and book into a fresh database so
// the UI has something to list on first run.
func seedCatalog(ctx context.Context, authors *datastore.AuthorRepository, books *datastore.BookRepository) error {
	existing, err := authors.GetAuthors(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	author := models.Author{Name: "Figginsworth III", Bio: "A traveling gentleman."}
	if err := authors.CreateAuthor(ctx, &author); err != nil {
		return err
	}

	book := models.Book{AuthorID: author.ID, Title: "My Fairest Lady", PubYear: "1866", Genre: "romance"}
	_, err = books.CreateBook(ctx, &book)
	return err
}

// seedAdminUser provisions the configured credential when the users table is
// empty. The plaintext password is hashed here and discarded.
func seedAdminUser(ctx context.Context, users *datastore.UserRepository, hasher *auth.PasswordHasher, cfg config) error {
	if cfg.adminUsername == "" || cfg.adminPassword == "" {
		return nil
	}

	count, err := users.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := hasher.Hash(cfg.adminPassword)
	if err != nil {
		return err
	}
	if err := users.CreateUser(ctx, cfg.adminUsername, hash); err != nil {
		return err
	}
	log.Printf("Seeded admin user %q", cfg.adminUsername)
	return nil
}

func startServer(port string, router http.Handler) {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownSignal // Block until signal received
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
