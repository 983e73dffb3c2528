package datastore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rafayk/bookcatalog/models"
)

// newTestDB opens a throwaway on-disk database with the full schema applied.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedAuthor(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()

	author := models.Author{Name: name, Bio: "test bio"}
	require.NoError(t, NewAuthorRepository(db).CreateAuthor(context.Background(), &author))
	return author.ID
}

func seedBook(t *testing.T, db *sql.DB, authorID int64, title, pubYear, genre string) int64 {
	t.Helper()

	book := models.Book{AuthorID: authorID, Title: title, PubYear: pubYear, Genre: genre}
	id, err := NewBookRepository(db).CreateBook(context.Background(), &book)
	require.NoError(t, err)
	return id
}
