package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/equipment-inventory/internal/model"
	"github.com/iliyamo/equipment-inventory/internal/repository"
)

func TestCartAddAvailableProduct(t *testing.T) {
	db, mock := newHandlerMock(t)
	h := NewCartHandler(repository.NewCartRepo(db))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM products WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(model.StatusAvailable))
	mock.ExpectExec(`INSERT INTO cart`).
		WithArgs(uint64(7), uint64(9), 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\) FROM cart`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	// Quantity omitted: defaults to 1.
	req := jsonRequest(http.MethodPost, "/api/cart", `{"product_id":9}`)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Post(authedContext(req, rec, 7, model.RoleClient)))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "Product added to cart", body["message"])
	require.Equal(t, float64(1), body["cart_count"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCartContains(t *testing.T) {
	db, mock := newHandlerMock(t)
	h := NewCartHandler(repository.NewCartRepo(db))

	mock.ExpectQuery(`SELECT 1 FROM cart WHERE user_id = \? AND product_id = \?`).
		WithArgs(uint64(7), uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	req := httptest.NewRequest(http.MethodGet, "/api/cart?action=contains&product_id=9", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Get(authedContext(req, rec, 7, model.RoleClient)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["in_cart"])
}

func TestCartContainsAbsentProduct(t *testing.T) {
	db, mock := newHandlerMock(t)
	h := NewCartHandler(repository.NewCartRepo(db))

	mock.ExpectQuery(`SELECT 1 FROM cart WHERE user_id = \? AND product_id = \?`).
		WithArgs(uint64(7), uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart?action=contains&product_id=9", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Get(authedContext(req, rec, 7, model.RoleClient)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, decodeBody(t, rec)["in_cart"])
}

func TestCartAddUnavailableProduct(t *testing.T) {
	db, mock := newHandlerMock(t)
	h := NewCartHandler(repository.NewCartRepo(db))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM products`).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(model.StatusMaintenance))
	mock.ExpectRollback()

	req := jsonRequest(http.MethodPost, "/api/cart", `{"product_id":9,"quantity":2}`)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Post(authedContext(req, rec, 7, model.RoleClient)))

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Product is not available.", decodeBody(t, rec)["error"])
}

func TestCartAddMissingProductID(t *testing.T) {
	db, _ := newHandlerMock(t)
	h := NewCartHandler(repository.NewCartRepo(db))

	req := jsonRequest(http.MethodPost, "/api/cart", `{"quantity":2}`)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Post(authedContext(req, rec, 7, model.RoleClient)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartUpdateRejectsZeroQuantity(t *testing.T) {
	db, _ := newHandlerMock(t)
	h := NewCartHandler(repository.NewCartRepo(db))

	req := jsonRequest(http.MethodPut, "/api/cart?id=3", `{"quantity":0}`)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Put(authedContext(req, rec, 7, model.RoleClient)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Quantity must be at least 1", decodeBody(t, rec)["error"])
}

func TestCartUpdateForeignRowNotFound(t *testing.T) {
	db, mock := newHandlerMock(t)
	h := NewCartHandler(repository.NewCartRepo(db))

	mock.ExpectExec(`UPDATE cart SET quantity = \?`).
		WithArgs(2, uint64(3), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	req := jsonRequest(http.MethodPut, "/api/cart?id=3", `{"quantity":2}`)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Put(authedContext(req, rec, 7, model.RoleClient)))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartClear(t *testing.T) {
	db, mock := newHandlerMock(t)
	h := NewCartHandler(repository.NewCartRepo(db))

	mock.ExpectExec(`DELETE FROM cart WHERE user_id = \?`).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	req := httptest.NewRequest(http.MethodDelete, "/api/cart?action=clear", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Delete(authedContext(req, rec, 7, model.RoleClient)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Cart cleared", decodeBody(t, rec)["message"])
}
