package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/JaddaouiAyoub/Location-voitures/internal/config"
	"github.com/JaddaouiAyoub/Location-voitures/internal/model"
	"github.com/JaddaouiAyoub/Location-voitures/internal/repository"
	"github.com/JaddaouiAyoub/Location-voitures/internal/utils"
)

// AuthHandler serves registration, login, token refresh and the
// authenticated profile endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	Phone    *string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type updateProfileRequest struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// authPayload is the data object returned by register and login.
type authPayload struct {
	User         model.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

func validEmail(s string) bool {
	at := strings.Index(s, "@")
	if at < 1 || at == len(s)-1 {
		return false
	}
	dot := strings.LastIndex(s, ".")
	return dot > at+1 && dot < len(s)-1
}

// Register creates a new account. Anonymous callers always get the CLIENT
// role; requesting ADMIN or AGENT requires an authenticated ADMIN caller.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	var errs []fieldError
	req.Email = strings.TrimSpace(req.Email)
	if !validEmail(req.Email) {
		errs = append(errs, fieldError{Field: "email", Message: "A valid email is required"})
	}
	if len(req.Password) < 6 {
		errs = append(errs, fieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, fieldError{Field: "name", Message: "Name is required"})
	}
	role := req.Role
	if role == "" {
		role = model.RoleClient
	}
	if !model.ValidRole(role) {
		errs = append(errs, fieldError{Field: "role", Message: "Invalid role"})
	}
	if len(errs) > 0 {
		return failValidation(c, errs)
	}

	if role != model.RoleClient && getRole(c) != model.RoleAdmin {
		return fail(c, http.StatusForbidden, "Not allowed to create an account with this role")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Users.Create(ctx, req.Email, req.Password, strings.TrimSpace(req.Name), role, req.Phone, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return fail(c, http.StatusConflict, "Email already registered")
		}
		return err
	}
	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return h.respondWithTokens(c, http.StatusCreated, "Registration successful", user)
}

// Login verifies credentials and issues a fresh token pair. Unknown email
// and wrong password produce the same response, so the endpoint does not
// reveal which accounts exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "Email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusUnauthorized, "Invalid email or password")
		}
		return err
	}
	if !utils.VerifyPassword(user.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "Invalid email or password")
	}
	return h.respondWithTokens(c, http.StatusOK, "Login successful", user)
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return fail(c, http.StatusBadRequest, "Refresh token is required")
	}

	userID, err := utils.ParseRefreshToken(h.Cfg.JWTRefreshSecret, req.RefreshToken)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Invalid or expired refresh token")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusUnauthorized, "Invalid or expired refresh token")
		}
		return err
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, user.ID, user.Email, user.Role, h.Cfg.AccessTTLHours)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Token refreshed", echo.Map{"accessToken": access.Token})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, okID := getUserID(c)
	if !okID {
		return fail(c, http.StatusUnauthorized, "Access token required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, "User not found")
		}
		return err
	}
	return ok(c, http.StatusOK, "Profile retrieved", user)
}

// UpdateProfile changes the caller's display name and phone number.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	userID, okID := getUserID(c)
	if !okID {
		return fail(c, http.StatusUnauthorized, "Access token required")
	}
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return failValidation(c, []fieldError{{Field: "name", Message: "Name is required"}})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, userID, strings.TrimSpace(req.Name), req.Phone); err != nil {
		return err
	}
	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Profile updated", user)
}

// ChangePassword verifies the current password before storing a new hash.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, okID := getUserID(c)
	if !okID {
		return fail(c, http.StatusUnauthorized, "Access token required")
	}
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if len(req.NewPassword) < 6 {
		return failValidation(c, []fieldError{{Field: "newPassword", Message: "Password must be at least 6 characters"}})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(user.PasswordHash, req.CurrentPassword) {
		return fail(c, http.StatusUnauthorized, "Current password is incorrect")
	}
	if err := h.Users.UpdatePassword(ctx, userID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Password changed", nil)
}

func (h *AuthHandler) respondWithTokens(c echo.Context, status int, message string, user model.User) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, user.ID, user.Email, user.Role, h.Cfg.AccessTTLHours)
	if err != nil {
		return err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.JWTRefreshSecret, user.ID, h.Cfg.RefreshTTLDays)
	if err != nil {
		return err
	}
	return ok(c, status, message, authPayload{
		User:         user,
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
	})
}
