package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rafayk/bookcatalog/models"
)

// UserRepository handles database operations for credential records.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUserByUsername retrieves a credential record. Returns sql.ErrNoRows
// (wrapped) when the username is unknown; callers must not surface that
// distinction to clients.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT username, pwd FROM users WHERE username = ?`

	var user models.User
	row := r.db.QueryRowContext(ctx, query, username)
	err := row.Scan(&user.Username, &user.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

// CreateUser inserts a credential record. passwordHash must already be the
// output of the password hasher; this layer never sees plaintext passwords.
func (r *UserRepository) CreateUser(ctx context.Context, username, passwordHash string) error {
	query := `INSERT INTO users (username, pwd) VALUES (?, ?)`

	_, err := r.db.ExecContext(ctx, query, username, passwordHash)
	if err != nil {
		// Unique constraint violations land here too; the caller decides
		// whether a duplicate username is fatal.
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// CountUsers reports how many credential records exist. Used by the startup
// seeder to decide whether to provision the initial admin user.
func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
