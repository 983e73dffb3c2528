package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/rafayk/bookcatalog/models"
)

// ErrUnknownAuthor reports a book write whose author_id names no existing
// author. Surfaced as bad input at the HTTP boundary.
var ErrUnknownAuthor = errors.New("unknown author")

// isForeignKeyViolation reports whether err is the store rejecting a write
// for referential integrity.
func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// BookRepository handles database operations for books.
type BookRepository struct {
	db *sql.DB
}

func NewBookRepository(db *sql.DB) *BookRepository {
	return &BookRepository{db: db}
}

// BookUpdate carries the optional fields of an edit request. A nil field
// keeps the stored value.
type BookUpdate struct {
	AuthorID *int64
	Title    *string
	PubYear  *string
	Genre    *string
}

// SearchBooks runs a filtered query against the catalog. An empty filter
// returns every book.
func (r *BookRepository) SearchBooks(ctx context.Context, filter BookFilter) ([]models.Book, error) {
	query, args := buildBookQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		var book models.Book
		if err := rows.Scan(&book.ID, &book.AuthorID, &book.Title, &book.PubYear, &book.Genre); err != nil {
			return nil, fmt.Errorf("failed to scan book row: %w", err)
		}
		books = append(books, book)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating book rows: %w", err)
	}

	return books, nil
}

// GetBooks returns the full catalog. Several endpoints echo the complete
// list back after a mutation.
func (r *BookRepository) GetBooks(ctx context.Context) ([]models.Book, error) {
	return r.SearchBooks(ctx, BookFilter{})
}

// GetBookByID retrieves a single book. Returns sql.ErrNoRows (wrapped) when
// no book has the given id.
func (r *BookRepository) GetBookByID(ctx context.Context, id int64) (*models.Book, error) {
	query := baseBookQuery + " WHERE id = ?"

	var book models.Book
	row := r.db.QueryRowContext(ctx, query, id)
	err := row.Scan(&book.ID, &book.AuthorID, &book.Title, &book.PubYear, &book.Genre)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("book %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get book by ID: %w", err)
	}
	return &book, nil
}

// CreateBook inserts a new book and returns its assigned id. The store
// rejects the insert when author_id names no existing author.
func (r *BookRepository) CreateBook(ctx context.Context, book *models.Book) (int64, error) {
	query := `
		INSERT INTO books (author_id, title, pub_year, genre)
		VALUES (?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query, book.AuthorID, book.Title, book.PubYear, book.Genre)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("%w: author %d", ErrUnknownAuthor, book.AuthorID)
		}
		return 0, fmt.Errorf("failed to insert book: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new book id: %w", err)
	}
	book.ID = id
	return id, nil
}

// UpdateBook applies the present fields of update to an existing book and
// returns the updated row. Returns sql.ErrNoRows (wrapped) for an unknown id.
func (r *BookRepository) UpdateBook(ctx context.Context, id int64, update BookUpdate) (*models.Book, error) {
	book, err := r.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.AuthorID != nil {
		book.AuthorID = *update.AuthorID
	}
	if update.Title != nil {
		book.Title = *update.Title
	}
	if update.PubYear != nil {
		book.PubYear = *update.PubYear
	}
	if update.Genre != nil {
		book.Genre = *update.Genre
	}

	query := `
		UPDATE books
		SET author_id = ?, title = ?, pub_year = ?, genre = ?
		WHERE id = ?
	`
	_, err = r.db.ExecContext(ctx, query, book.AuthorID, book.Title, book.PubYear, book.Genre, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: author %d", ErrUnknownAuthor, book.AuthorID)
		}
		return nil, fmt.Errorf("failed to update book %d: %w", id, err)
	}
	return book, nil
}

// DeleteBook removes a book by id. The id travels as a bound parameter,
// never as query text. Deleting an absent id is not an error.
func (r *BookRepository) DeleteBook(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book %d: %w", id, err)
	}
	return nil
}
