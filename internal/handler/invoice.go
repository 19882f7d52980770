package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/JaddaouiAyoub/Location-voitures/internal/model"
	"github.com/JaddaouiAyoub/Location-voitures/internal/repository"
	"github.com/JaddaouiAyoub/Location-voitures/internal/service"
)

// InvoiceHandler streams PDF invoices for rentals.
type InvoiceHandler struct {
	Invoices *service.InvoiceService
	Booking  *service.BookingService
}

func NewInvoiceHandler(invoices *service.InvoiceService, booking *service.BookingService) *InvoiceHandler {
	return &InvoiceHandler{Invoices: invoices, Booking: booking}
}

// Download renders the invoice for a rental as a PDF attachment. Only the
// rental's owner or an ADMIN may download it.
func (h *InvoiceHandler) Download(c echo.Context) error {
	userID, okID := getUserID(c)
	if !okID {
		return fail(c, http.StatusUnauthorized, "Access token required")
	}
	rentalID, err := pathID(c, "rentalId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid rental id")
	}

	ctx := c.Request().Context()
	rental, err := h.Booking.GetRental(ctx, rentalID)
	if err != nil {
		if errors.Is(err, repository.ErrRentalNotFound) {
			return fail(c, http.StatusNotFound, "Rental not found")
		}
		return err
	}
	if rental.UserID != userID && getRole(c) != model.RoleAdmin {
		return fail(c, http.StatusForbidden, "Unauthorized access")
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/pdf")
	res.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=invoice-%d.pdf", rentalID))
	res.WriteHeader(http.StatusOK)
	return h.Invoices.Generate(ctx, rentalID, res)
}
