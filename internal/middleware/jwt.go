// Package middleware provides reusable Echo middleware: JWT authentication,
// role enforcement, Redis response caching and distributed rate limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/JaddaouiAyoub/Location-voitures/internal/utils"
)

// Context keys populated by the auth middleware.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": msg})
}

// JWTAuth validates a Bearer access token and injects the token's identity
// claims into the request context under CtxUserID/CtxEmail/CtxRole. The
// secret must match the one used when issuing access tokens.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c, "Access token required")
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return unauthorized(c, "Invalid or expired token")
			}
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxEmail, claims.Email)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}

// OptionalJWTAuth populates the identity context when a valid bearer token
// is present but never rejects the request. The register endpoint uses it:
// anonymous callers may sign up, while an authenticated ADMIN may create
// accounts with elevated roles.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				if claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
					c.Set(CtxUserID, claims.UserID)
					c.Set(CtxEmail, claims.Email)
					c.Set(CtxRole, claims.Role)
				}
			}
			return next(c)
		}
	}
}
