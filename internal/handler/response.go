// Package handler implements the HTTP surface: request binding and
// validation, the response envelope, and the centralized error handler.
package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/JaddaouiAyoub/Location-voitures/internal/middleware"
)

// envelope is the uniform response shape of the API:
// {success, message, data?, errors?}.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// fieldError carries field-level validation detail in the errors array.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func ok(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, envelope{Success: false, Message: message})
}

func failValidation(c echo.Context, errs []fieldError) error {
	return c.JSON(http.StatusBadRequest, envelope{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// NewHTTPErrorHandler returns the centralized error handler. Unknown routes
// get the uniform NotFound envelope, recognizable storage errors map onto
// the error taxonomy, and everything else becomes a generic 500.
func NewHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		message := "Internal Server Error"

		var he *echo.HTTPError
		switch {
		case errors.As(err, &he):
			status = he.Code
			if status == http.StatusNotFound {
				message = "Route " + c.Request().URL.Path + " not found"
			} else if s, okMsg := he.Message.(string); okMsg {
				message = s
			}
		case strings.Contains(err.Error(), "1062"): // duplicate key
			status = http.StatusConflict
			message = "Duplicate entry. Resource already exists."
		case strings.Contains(err.Error(), "1452"): // missing foreign row
			status = http.StatusNotFound
			message = "Referenced resource not found"
		default:
			log.Printf("unhandled error: %v", err)
		}
		_ = fail(c, status, message)
	}
}

// getUserID extracts the authenticated user id placed in the context by the
// JWT middleware.
func getUserID(c echo.Context) (uint64, bool) {
	v, okID := c.Get(middleware.CtxUserID).(uint64)
	return v, okID && v != 0
}

func getRole(c echo.Context) string {
	role, _ := c.Get(middleware.CtxRole).(string)
	return role
}
