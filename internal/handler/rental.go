package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/JaddaouiAyoub/Location-voitures/internal/model"
	"github.com/JaddaouiAyoub/Location-voitures/internal/queue"
	"github.com/JaddaouiAyoub/Location-voitures/internal/repository"
	"github.com/JaddaouiAyoub/Location-voitures/internal/service"
)

// RentalHandler serves the booking endpoints. Creation and status changes
// go through the booking engine; this layer handles binding, validation
// and ownership checks.
type RentalHandler struct {
	Booking *service.BookingService
}

func NewRentalHandler(booking *service.BookingService) *RentalHandler {
	return &RentalHandler{Booking: booking}
}

type createRentalRequest struct {
	CarID     uint64 `json:"car_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type updateRentalStatusRequest struct {
	Status string `json:"status"`
}

// Create books a car for the authenticated user.
func (h *RentalHandler) Create(c echo.Context) error {
	userID, okID := getUserID(c)
	if !okID {
		return fail(c, http.StatusUnauthorized, "Access token required")
	}
	var req createRentalRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	var errs []fieldError
	if req.CarID == 0 {
		errs = append(errs, fieldError{Field: "car_id", Message: "Car id is required"})
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		errs = append(errs, fieldError{Field: "start_date", Message: "A valid start date is required"})
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		errs = append(errs, fieldError{Field: "end_date", Message: "A valid end date is required"})
	}
	if len(errs) > 0 {
		return failValidation(c, errs)
	}
	if !end.After(start) {
		return failValidation(c, []fieldError{{Field: "end_date", Message: "End date must be after start date"}})
	}

	detail, err := h.Booking.CreateRental(c.Request().Context(), userID, req.CarID, start, end)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCarNotFound):
			return fail(c, http.StatusNotFound, "Car not found")
		case errors.Is(err, service.ErrCarNotAvailable):
			return fail(c, http.StatusConflict, "Car is not available for the selected dates")
		}
		return err
	}

	publishRentalCreated(detail)
	return ok(c, http.StatusCreated, "Rental created", detail)
}

// publishRentalCreated emits the booking event. Best effort: a broker
// outage must not fail the booking.
func publishRentalCreated(d model.RentalDetail) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	event := queue.RentalCreatedEvent{
		RentalID:   d.ID,
		UserID:     d.UserID,
		UserName:   d.UserName,
		CarID:      d.CarID,
		Brand:      d.Brand,
		Model:      d.CarModel,
		Year:       d.Year,
		StartDate:  d.StartDate.Format("2006-01-02"),
		EndDate:    d.EndDate.Format("2006-01-02"),
		TotalPrice: d.TotalPrice,
		CreatedAt:  d.CreatedAt.Format(time.RFC3339),
	}
	if err := queue.PublishRentalCreated(ctx, event); err != nil {
		log.Printf("rental event publish failed: %v", err)
	}
}

// GetAll lists rentals: every rental for ADMIN callers, only the caller's
// own otherwise. The optional status query narrows the result.
func (h *RentalHandler) GetAll(c echo.Context) error {
	userID, okID := getUserID(c)
	if !okID {
		return fail(c, http.StatusUnauthorized, "Access token required")
	}
	status := c.QueryParam("status")
	if status != "" && !model.ValidRentalStatus(status) {
		return failValidation(c, []fieldError{{Field: "status", Message: "Invalid status"}})
	}
	if getRole(c) == model.RoleAdmin {
		userID = 0 // unrestricted
	}
	rentals, err := h.Booking.ListRentals(c.Request().Context(), userID, status)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Rentals retrieved", rentals)
}

// MyHistory lists the caller's own rentals regardless of role.
func (h *RentalHandler) MyHistory(c echo.Context) error {
	userID, okID := getUserID(c)
	if !okID {
		return fail(c, http.StatusUnauthorized, "Access token required")
	}
	rentals, err := h.Booking.ListRentals(c.Request().Context(), userID, c.QueryParam("status"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Rental history retrieved", rentals)
}

// GetByID returns one rental. Only the owner or an ADMIN may read it.
func (h *RentalHandler) GetByID(c echo.Context) error {
	userID, okID := getUserID(c)
	if !okID {
		return fail(c, http.StatusUnauthorized, "Access token required")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid rental id")
	}
	detail, err := h.Booking.GetRental(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRentalNotFound) {
			return fail(c, http.StatusNotFound, "Rental not found")
		}
		return err
	}
	if detail.UserID != userID && getRole(c) != model.RoleAdmin {
		return fail(c, http.StatusForbidden, "Unauthorized access")
	}
	return ok(c, http.StatusOK, "Rental retrieved", detail)
}

// UpdateStatus moves a rental through its lifecycle. The owner or an ADMIN
// may change it; completing or cancelling releases the car.
func (h *RentalHandler) UpdateStatus(c echo.Context) error {
	userID, okID := getUserID(c)
	if !okID {
		return fail(c, http.StatusUnauthorized, "Access token required")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid rental id")
	}
	var req updateRentalStatusRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if !model.ValidRentalStatus(req.Status) {
		return failValidation(c, []fieldError{{Field: "status", Message: "Invalid status"}})
	}

	ctx := c.Request().Context()
	detail, err := h.Booking.GetRental(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRentalNotFound) {
			return fail(c, http.StatusNotFound, "Rental not found")
		}
		return err
	}
	if detail.UserID != userID && getRole(c) != model.RoleAdmin {
		return fail(c, http.StatusForbidden, "Unauthorized access")
	}

	updated, err := h.Booking.TransitionStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrRentalNotFound) {
			return fail(c, http.StatusNotFound, "Rental not found")
		}
		return err
	}
	return ok(c, http.StatusOK, "Rental status updated", updated)
}
