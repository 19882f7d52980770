package handler

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaddaouiAyoub/Location-voitures/internal/middleware"
	"github.com/JaddaouiAyoub/Location-voitures/internal/model"
	"github.com/JaddaouiAyoub/Location-voitures/internal/repository"
	"github.com/JaddaouiAyoub/Location-voitures/internal/service"
)

var rentalDetailColumns = []string{
	"id", "user_id", "car_id", "start_date", "end_date",
	"total_price", "status", "created_at", "updated_at",
	"brand", "model", "year", "image_url", "price_per_day",
	"name", "email", "phone",
}

func newRentalHandler(t *testing.T) (*RentalHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	cars := repository.NewCarRepo(db)
	rentals := repository.NewRentalRepo(db)
	return NewRentalHandler(service.NewBookingService(db, cars, rentals)), mock
}

func rentalRowOwnedBy(userID uint64, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(rentalDetailColumns).
		AddRow(42, userID, 7, now, now.Add(48*time.Hour), 100.0, status, now, now,
			"Toyota", "Corolla", 2022, nil, 50.0, "Alice", "alice@example.com", nil)
}

func asUser(c echo.Context, userID uint64, role string) {
	c.Set(middleware.CtxUserID, userID)
	c.Set(middleware.CtxRole, role)
}

func TestRentalCreate_RequiresAuth(t *testing.T) {
	h, _ := newRentalHandler(t)

	req, rec := jsonRequest(http.MethodPost, "/api/rentals",
		`{"car_id":7,"start_date":"2025-06-01","end_date":"2025-06-03"}`)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRentalCreate_EndBeforeStart(t *testing.T) {
	h, _ := newRentalHandler(t)

	req, rec := jsonRequest(http.MethodPost, "/api/rentals",
		`{"car_id":7,"start_date":"2025-06-03","end_date":"2025-06-01"}`)
	c := echo.New().NewContext(req, rec)
	asUser(c, 3, model.RoleClient)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "End date must be after start date")
}

func TestRentalCreate_MissingFields(t *testing.T) {
	h, _ := newRentalHandler(t)

	req, rec := jsonRequest(http.MethodPost, "/api/rentals", `{}`)
	c := echo.New().NewContext(req, rec)
	asUser(c, 3, model.RoleClient)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"car_id"`)
	assert.Contains(t, body, `"start_date"`)
	assert.Contains(t, body, `"end_date"`)
}

func TestRentalCreate_Conflict(t *testing.T) {
	h, mock := newRentalHandler(t)
	now := time.Now()
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(carColumns).
			AddRow(7, "Toyota", "Corolla", 2022, 50.0, model.CarAvailable, nil, nil, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rentals")).
		WithArgs(uint64(7), model.RentalActive, model.RentalCompleted, end, start).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	req, rec := jsonRequest(http.MethodPost, "/api/rentals",
		`{"car_id":7,"start_date":"2025-06-01","end_date":"2025-06-03"}`)
	c := echo.New().NewContext(req, rec)
	asUser(c, 3, model.RoleClient)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Car is not available for the selected dates")
}

func TestRentalGetByID_OwnershipEnforced(t *testing.T) {
	h, mock := newRentalHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.id = ?")).
		WithArgs(uint64(42)).
		WillReturnRows(rentalRowOwnedBy(3, model.RentalActive))

	req, rec := jsonRequest(http.MethodGet, "/api/rentals/42", "")
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("42")
	asUser(c, 8, model.RoleClient) // not the owner

	require.NoError(t, h.GetByID(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized access")
}

func TestRentalGetByID_AdminMayReadAny(t *testing.T) {
	h, mock := newRentalHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.id = ?")).
		WithArgs(uint64(42)).
		WillReturnRows(rentalRowOwnedBy(3, model.RentalActive))

	req, rec := jsonRequest(http.MethodGet, "/api/rentals/42", "")
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("42")
	asUser(c, 1, model.RoleAdmin)

	require.NoError(t, h.GetByID(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRentalUpdateStatus_InvalidStatus(t *testing.T) {
	h, _ := newRentalHandler(t)

	req, rec := jsonRequest(http.MethodPut, "/api/rentals/42/status", `{"status":"Paused"}`)
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("42")
	asUser(c, 3, model.RoleClient)

	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRentalUpdateStatus_NotFound(t *testing.T) {
	h, mock := newRentalHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.id = ?")).
		WithArgs(uint64(999)).
		WillReturnRows(sqlmock.NewRows(rentalDetailColumns))

	req, rec := jsonRequest(http.MethodPut, "/api/rentals/999/status", `{"status":"Cancelled"}`)
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("999")
	asUser(c, 3, model.RoleClient)

	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rental not found")
}

func TestRentalGetAll_AdminSeesEverything(t *testing.T) {
	h, mock := newRentalHandler(t)
	// No user_id constraint on the admin path.
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 ORDER BY r.created_at DESC")).
		WillReturnRows(rentalRowOwnedBy(3, model.RentalActive))

	req, rec := jsonRequest(http.MethodGet, "/api/rentals", "")
	c := echo.New().NewContext(req, rec)
	asUser(c, 1, model.RoleAdmin)

	require.NoError(t, h.GetAll(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalGetAll_ClientSeesOwnOnly(t *testing.T) {
	h, mock := newRentalHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("AND r.user_id = ?")).
		WithArgs(uint64(3)).
		WillReturnRows(rentalRowOwnedBy(3, model.RentalActive))

	req, rec := jsonRequest(http.MethodGet, "/api/rentals", "")
	c := echo.New().NewContext(req, rec)
	asUser(c, 3, model.RoleClient)

	require.NoError(t, h.GetAll(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
