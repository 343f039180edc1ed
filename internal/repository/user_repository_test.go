package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/equipment-inventory/internal/model"
)

func TestUserCreatePopulatesID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("alice", "hash", model.RoleClient, "Alice", "alice@example.com").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(`SELECT created_at FROM users WHERE id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(sampleTime))

	u := &model.User{Username: "alice", PasswordHash: "hash", Role: model.RoleClient, FullName: "Alice", Email: "alice@example.com"}
	require.NoError(t, repo.Create(context.Background(), u))
	require.Equal(t, uint64(7), u.ID)
	require.Equal(t, sampleTime, u.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(errors.New("Error 1062: Duplicate entry 'alice' for key 'uq_users_username'"))

	err := repo.Create(context.Background(), &model.User{Username: "alice"})
	require.ErrorIs(t, err, ErrUsernameExists)
}

func TestUserUpdatePatchesOnlyGivenFields(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	email := "new@example.com"
	mock.ExpectExec(`UPDATE users SET email = \? WHERE id = \?`).
		WithArgs(email, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Update(context.Background(), 3, UserPatch{Email: &email})
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateEmptyPatchIsNoop(t *testing.T) {
	db, _ := newMock(t)
	repo := NewUserRepo(db)

	ok, err := repo.Update(context.Background(), 3, UserPatch{})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUsernameExistsExcludesSelf(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	id := uint64(3)
	mock.ExpectQuery(`SELECT 1 FROM users WHERE username = \? AND id != \? LIMIT 1`).
		WithArgs("alice", id).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err := repo.UsernameExists(context.Background(), "alice", &id)
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByUsernameNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \?`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}
