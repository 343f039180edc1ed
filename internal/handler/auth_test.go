package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/equipment-inventory/internal/config"
	"github.com/iliyamo/equipment-inventory/internal/repository"
	"github.com/iliyamo/equipment-inventory/internal/session"
)

// testCfg uses the minimum bcrypt cost so hashing does not dominate
// test time.
var testCfg = config.Config{BcryptCost: bcrypt.MinCost, SessionTTLMin: 30}

func newHandlerMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newEcho() *echo.Echo {
	return echo.New()
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(b)
}

func userRow(id uint64, username, hash, role string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "full_name", "email", "created_at"}).
		AddRow(id, username, hash, role, "", "", time.Now())
}

func TestLoginSuccessSetsSessionCookie(t *testing.T) {
	db, mock := newHandlerMock(t)
	store := session.NewMemoryStore(time.Minute)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), store)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \?`).
		WithArgs("alice").
		WillReturnRows(userRow(7, "alice", mustHash(t, "secret1"), "admin"))

	req := jsonRequest(http.MethodPost, "/api/auth?action=login", `{"username":"alice","password":"secret1"}`)
	rec := httptest.NewRecorder()
	c := newEcho().NewContext(req, rec)

	require.NoError(t, h.Post(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "Login successful.", body["message"])

	var sid string
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName {
			sid = ck.Value
			require.True(t, ck.HttpOnly)
			require.Equal(t, http.SameSiteLaxMode, ck.SameSite)
		}
	}
	require.Len(t, sid, 64)

	// The cookie must resolve against the store.
	data, err := store.Get(req.Context(), sid)
	require.NoError(t, err)
	require.Equal(t, uint64(7), data.UserID)
	require.Equal(t, "admin", data.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	db, mock := newHandlerMock(t)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), session.NewMemoryStore(time.Minute))

	mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \?`).
		WithArgs("alice").
		WillReturnRows(userRow(7, "alice", mustHash(t, "secret1"), "admin"))

	req := jsonRequest(http.MethodPost, "/api/auth?action=login", `{"username":"alice","password":"wrong"}`)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Post(newEcho().NewContext(req, rec)))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid username or password.", decodeBody(t, rec)["error"])
}

func TestLoginUnknownUserSameMessage(t *testing.T) {
	db, mock := newHandlerMock(t)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), session.NewMemoryStore(time.Minute))

	mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \?`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := jsonRequest(http.MethodPost, "/api/auth?action=login", `{"username":"ghost","password":"whatever"}`)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Post(newEcho().NewContext(req, rec)))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid username or password.", decodeBody(t, rec)["error"])
}

func TestLoginRequiresJSONContentType(t *testing.T) {
	db, _ := newHandlerMock(t)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), session.NewMemoryStore(time.Minute))

	req := httptest.NewRequest(http.MethodPost, "/api/auth?action=login", strings.NewReader("username=alice"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Post(newEcho().NewContext(req, rec)))

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRegisterForcesClientRole(t *testing.T) {
	db, mock := newHandlerMock(t)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), session.NewMemoryStore(time.Minute))

	mock.ExpectQuery(`SELECT 1 FROM users WHERE username = \?`).
		WithArgs("eve").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("eve", sqlmock.AnyArg(), "client", "", "").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery(`SELECT created_at FROM users WHERE id = \?`).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	// The payload claims admin; registration must ignore it.
	req := jsonRequest(http.MethodPost, "/api/auth?action=register",
		`{"username":"eve","password":"secret1","role":"admin"}`)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Post(newEcho().NewContext(req, rec)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogoutDestroysSession(t *testing.T) {
	db, _ := newHandlerMock(t)
	store := session.NewMemoryStore(time.Minute)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), store)

	sid, err := store.Create(context.Background(), session.Data{UserID: 7, Username: "alice", Role: "admin"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth?action=logout", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sid})
	rec := httptest.NewRecorder()
	require.NoError(t, h.Post(newEcho().NewContext(req, rec)))

	require.Equal(t, http.StatusOK, rec.Code)
	_, err = store.Get(req.Context(), sid)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestMeUnauthenticated(t *testing.T) {
	db, _ := newHandlerMock(t)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), session.NewMemoryStore(time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/api/auth?action=me", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Me(newEcho().NewContext(req, rec)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, decodeBody(t, rec)["authenticated"])
}

func TestUnknownAuthAction(t *testing.T) {
	db, _ := newHandlerMock(t)
	h := NewAuthHandler(testCfg, repository.NewUserRepo(db), session.NewMemoryStore(time.Minute))

	req := jsonRequest(http.MethodPost, "/api/auth?action=nope", `{}`)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Post(newEcho().NewContext(req, rec)))

	require.Equal(t, http.StatusNotFound, rec.Code)
}
