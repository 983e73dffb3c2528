package datastore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetUser(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, repo.CreateUser(ctx, "rafay", "$argon2id$stored-hash"))

	user, err := repo.GetUserByUsername(ctx, "rafay")
	require.NoError(t, err)
	assert.Equal(t, "rafay", user.Username)
	assert.Equal(t, "$argon2id$stored-hash", user.PasswordHash)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, repo.CreateUser(ctx, "rafay", "hash-one"))
	err := repo.CreateUser(ctx, "rafay", "hash-two")
	require.Error(t, err)
}

func TestGetUserByUsernameNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetUserByUsername(context.Background(), "nobody")
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCountUsers(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewUserRepository(db)

	count, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.CreateUser(ctx, "rafay", "hash"))

	count, err = repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetUserByUsernameQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectedErr := errors.New("database is locked")
	mock.ExpectQuery("SELECT (.+) FROM users").WillReturnError(expectedErr)

	repo := NewUserRepository(db)
	_, err = repo.GetUserByUsername(context.Background(), "rafay")
	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
