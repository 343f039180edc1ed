package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/equipment-inventory/internal/model"
	"github.com/iliyamo/equipment-inventory/internal/repository"
)

func TestUserDeleteSelfRefused(t *testing.T) {
	db, _ := newHandlerMock(t)
	h := NewUserHandler(testCfg, repository.NewUserRepo(db))

	// Admin 1 tries to delete admin 1. No query should ever run.
	req := httptest.NewRequest(http.MethodDelete, "/api/users?id=1", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Delete(authedContext(req, rec, 1, model.RoleAdmin)))

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Cannot delete your own account.", decodeBody(t, rec)["error"])
}

func TestUserDeleteOtherAccount(t *testing.T) {
	db, mock := newHandlerMock(t)
	h := NewUserHandler(testCfg, repository.NewUserRepo(db))

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \?`).
		WithArgs(uint64(5)).
		WillReturnRows(userRow(5, "bob", "hash", "client"))
	mock.ExpectExec(`DELETE FROM users WHERE id = \?`).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/api/users?id=5", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Delete(authedContext(req, rec, 1, model.RoleAdmin)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "User deleted.", decodeBody(t, rec)["message"])
}

func TestUserCreateWithAdminRole(t *testing.T) {
	db, mock := newHandlerMock(t)
	h := NewUserHandler(testCfg, repository.NewUserRepo(db))

	mock.ExpectQuery(`SELECT 1 FROM users WHERE username = \?`).
		WithArgs("boss").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("boss", sqlmock.AnyArg(), "admin", "", "").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectQuery(`SELECT created_at FROM users WHERE id = \?`).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	req := jsonRequest(http.MethodPost, "/api/users", `{"username":"boss","password":"secret1","role":"admin"}`)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Post(authedContext(req, rec, 1, model.RoleAdmin)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateValidationFailure(t *testing.T) {
	db, mock := newHandlerMock(t)
	h := NewUserHandler(testCfg, repository.NewUserRepo(db))

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \?`).
		WithArgs(uint64(5)).
		WillReturnRows(userRow(5, "bob", "hash", "client"))

	req := jsonRequest(http.MethodPut, "/api/users?id=5", `{"username":"bad name!","role":"root"}`)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Put(authedContext(req, rec, 1, model.RoleAdmin)))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	msg, _ := decodeBody(t, rec)["error"].(string)
	require.Contains(t, msg, "letters, digits, and underscores")
	require.Contains(t, msg, "role must be either")
}
