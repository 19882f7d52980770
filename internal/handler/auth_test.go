package handler

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/JaddaouiAyoub/Location-voitures/internal/config"
	"github.com/JaddaouiAyoub/Location-voitures/internal/middleware"
	"github.com/JaddaouiAyoub/Location-voitures/internal/model"
	"github.com/JaddaouiAyoub/Location-voitures/internal/repository"
	"github.com/JaddaouiAyoub/Location-voitures/internal/utils"
)

var testCfg = config.Config{
	JWTSecret:        "access-secret",
	JWTRefreshSecret: "refresh-secret",
	AccessTTLHours:   1,
	RefreshTTLDays:   1,
	BcryptCost:       bcrypt.MinCost,
}

var userColumns = []string{
	"id", "email", "password", "name", "role", "phone", "created_at", "updated_at",
}

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAuthHandler(testCfg, repository.NewUserRepo(db)), mock
}

func jsonRequest(method, path, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func userRow(t *testing.T, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now()
	return sqlmock.NewRows(userColumns).
		AddRow(3, "alice@example.com", string(hash), "Alice", model.RoleClient, nil, now, now)
}

func TestLogin_UnknownEmail(t *testing.T) {
	h, mock := newAuthHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	req, rec := jsonRequest(http.MethodPost, "/api/auth/login",
		`{"email":"ghost@example.com","password":"whatever"}`)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
}

func TestLogin_WrongPassword(t *testing.T) {
	h, mock := newAuthHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("alice@example.com").
		WillReturnRows(userRow(t, "correct-password"))

	req, rec := jsonRequest(http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"wrong-password"}`)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Login(c))
	// Identical to the unknown-email reply so accounts cannot be enumerated.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
}

func TestLogin_Success(t *testing.T) {
	h, mock := newAuthHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("alice@example.com").
		WillReturnRows(userRow(t, "secret123"))

	req, rec := jsonRequest(http.MethodPost, "/api/auth/login",
		`{"email":"Alice@Example.com","password":"secret123"}`)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"accessToken"`)
	assert.Contains(t, body, `"refreshToken"`)
	assert.NotContains(t, body, "password", "hash must never leave the server")
}

func TestRegister_Success(t *testing.T) {
	h, mock := newAuthHandler(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("alice@example.com", sqlmock.AnyArg(), "Alice", model.RoleClient, nil).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(3)).
		WillReturnRows(userRow(t, "secret123"))

	req, rec := jsonRequest(http.MethodPost, "/api/auth/register",
		`{"email":"alice@example.com","password":"secret123","name":"Alice"}`)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"accessToken"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, mock := newAuthHandler(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errDuplicateEntry{})

	req, rec := jsonRequest(http.MethodPost, "/api/auth/register",
		`{"email":"alice@example.com","password":"secret123","name":"Alice"}`)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already registered")
}

type errDuplicateEntry struct{}

func (errDuplicateEntry) Error() string {
	return "Error 1062 (23000): Duplicate entry 'alice@example.com' for key 'users.email'"
}

func TestRegister_ElevatedRoleRequiresAdmin(t *testing.T) {
	h, _ := newAuthHandler(t)

	t.Run("anonymous caller is rejected", func(t *testing.T) {
		req, rec := jsonRequest(http.MethodPost, "/api/auth/register",
			`{"email":"agent@example.com","password":"secret123","name":"Agent","role":"AGENT"}`)
		c := echo.New().NewContext(req, rec)

		require.NoError(t, h.Register(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("client caller is rejected", func(t *testing.T) {
		req, rec := jsonRequest(http.MethodPost, "/api/auth/register",
			`{"email":"agent@example.com","password":"secret123","name":"Agent","role":"ADMIN"}`)
		c := echo.New().NewContext(req, rec)
		c.Set(middleware.CtxUserID, uint64(3))
		c.Set(middleware.CtxRole, model.RoleClient)

		require.NoError(t, h.Register(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRegister_AdminMayCreateAgent(t *testing.T) {
	h, mock := newAuthHandler(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("agent@example.com", sqlmock.AnyArg(), "Agent", model.RoleAgent, nil).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(5)).
		WillReturnRows(userRow(t, "secret123"))

	req, rec := jsonRequest(http.MethodPost, "/api/auth/register",
		`{"email":"agent@example.com","password":"secret123","name":"Agent","role":"AGENT"}`)
	c := echo.New().NewContext(req, rec)
	c.Set(middleware.CtxUserID, uint64(1))
	c.Set(middleware.CtxRole, model.RoleAdmin)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_Validation(t *testing.T) {
	h, _ := newAuthHandler(t)

	req, rec := jsonRequest(http.MethodPost, "/api/auth/register",
		`{"email":"not-an-email","password":"123","name":""}`)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Validation failed")
	assert.Contains(t, body, `"email"`)
	assert.Contains(t, body, `"password"`)
	assert.Contains(t, body, `"name"`)
}

func TestRefresh_InvalidToken(t *testing.T) {
	h, _ := newAuthHandler(t)

	req, rec := jsonRequest(http.MethodPost, "/api/auth/refresh",
		`{"refreshToken":"garbage"}`)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired refresh token")
}

func TestRefresh_UserGone(t *testing.T) {
	h, mock := newAuthHandler(t)
	refresh, err := utils.NewRefreshToken(testCfg.JWTRefreshSecret, 3, 1)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(userColumns))

	req, rec := jsonRequest(http.MethodPost, "/api/auth/refresh",
		`{"refreshToken":"`+refresh.Token+`"}`)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_Success(t *testing.T) {
	h, mock := newAuthHandler(t)
	refresh, err := utils.NewRefreshToken(testCfg.JWTRefreshSecret, 3, 1)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(3)).
		WillReturnRows(userRow(t, "secret123"))

	req, rec := jsonRequest(http.MethodPost, "/api/auth/refresh",
		`{"refreshToken":"`+refresh.Token+`"}`)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"accessToken"`)
	assert.NotContains(t, rec.Body.String(), `"refreshToken"`, "refresh must not rotate the refresh token")
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	h, mock := newAuthHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(3)).
		WillReturnRows(userRow(t, "old-password"))

	req, rec := jsonRequest(http.MethodPut, "/api/auth/password",
		`{"currentPassword":"not-the-old-one","newPassword":"new-password"}`)
	c := echo.New().NewContext(req, rec)
	c.Set(middleware.CtxUserID, uint64(3))
	c.Set(middleware.CtxRole, model.RoleClient)

	require.NoError(t, h.ChangePassword(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Current password is incorrect")
}
