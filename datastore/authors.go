package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rafayk/bookcatalog/models"
)

// AuthorRepository handles database operations for authors.
type AuthorRepository struct {
	db *sql.DB
}

func NewAuthorRepository(db *sql.DB) *AuthorRepository {
	return &AuthorRepository{db: db}
}

func (r *AuthorRepository) GetAuthors(ctx context.Context) ([]models.Author, error) {
	query := `SELECT id, name, bio FROM authors ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query authors: %w", err)
	}
	defer rows.Close()

	var authors []models.Author
	for rows.Next() {
		var author models.Author
		if err := rows.Scan(&author.ID, &author.Name, &author.Bio); err != nil {
			return nil, fmt.Errorf("failed to scan author row: %w", err)
		}
		authors = append(authors, author)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating author rows: %w", err)
	}

	return authors, nil
}

// GetAuthorByID retrieves an author. Returns sql.ErrNoRows (wrapped) when no
// author has the given id.
func (r *AuthorRepository) GetAuthorByID(ctx context.Context, id int64) (*models.Author, error) {
	query := `SELECT id, name, bio FROM authors WHERE id = ?`

	var author models.Author
	row := r.db.QueryRowContext(ctx, query, id)
	err := row.Scan(&author.ID, &author.Name, &author.Bio)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("author %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get author by ID: %w", err)
	}
	return &author, nil
}

// CreateAuthor inserts a new author and fills in its assigned id.
func (r *AuthorRepository) CreateAuthor(ctx context.Context, author *models.Author) error {
	query := `INSERT INTO authors (name, bio) VALUES (?, ?)`

	result, err := r.db.ExecContext(ctx, query, author.Name, author.Bio)
	if err != nil {
		return fmt.Errorf("failed to insert author: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new author id: %w", err)
	}
	author.ID = id
	return nil
}
