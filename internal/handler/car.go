package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/JaddaouiAyoub/Location-voitures/internal/model"
	"github.com/JaddaouiAyoub/Location-voitures/internal/repository"
	"github.com/JaddaouiAyoub/Location-voitures/internal/service"
)

// CarHandler serves the fleet CRUD endpoints, the map listing and the
// per-car availability check.
type CarHandler struct {
	Cars    *repository.CarRepo
	Booking *service.BookingService
}

func NewCarHandler(cars *repository.CarRepo, booking *service.BookingService) *CarHandler {
	return &CarHandler{Cars: cars, Booking: booking}
}

type carRequest struct {
	Brand       string   `json:"brand"`
	Model       string   `json:"model"`
	Year        int      `json:"year"`
	PricePerDay float64  `json:"price_per_day"`
	Status      string   `json:"status"`
	ImageURL    *string  `json:"image_url"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type availabilityRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (req *carRequest) validate() []fieldError {
	var errs []fieldError
	if strings.TrimSpace(req.Brand) == "" {
		errs = append(errs, fieldError{Field: "brand", Message: "Brand is required"})
	}
	if strings.TrimSpace(req.Model) == "" {
		errs = append(errs, fieldError{Field: "model", Message: "Model is required"})
	}
	if req.Year < 1900 || req.Year > time.Now().Year()+1 {
		errs = append(errs, fieldError{Field: "year", Message: "Year must be between 1900 and next year"})
	}
	if req.PricePerDay < 0 {
		errs = append(errs, fieldError{Field: "price_per_day", Message: "Price per day must not be negative"})
	}
	if req.Status != "" && !model.ValidCarStatus(req.Status) {
		errs = append(errs, fieldError{Field: "status", Message: "Invalid status"})
	}
	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90) {
		errs = append(errs, fieldError{Field: "latitude", Message: "Latitude must be between -90 and 90"})
	}
	if req.Longitude != nil && (*req.Longitude < -180 || *req.Longitude > 180) {
		errs = append(errs, fieldError{Field: "longitude", Message: "Longitude must be between -180 and 180"})
	}
	return errs
}

func (req *carRequest) toModel() *model.Car {
	return &model.Car{
		Brand:       strings.TrimSpace(req.Brand),
		Model:       strings.TrimSpace(req.Model),
		Year:        req.Year,
		PricePerDay: req.PricePerDay,
		Status:      req.Status,
		ImageURL:    req.ImageURL,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}
}

// parseDate accepts plain dates and full RFC 3339 timestamps.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// Create adds a car to the fleet (ADMIN or AGENT).
func (h *CarHandler) Create(c echo.Context) error {
	var req carRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if errs := req.validate(); len(errs) > 0 {
		return failValidation(c, errs)
	}

	ctx := c.Request().Context()
	id, err := h.Cars.Create(ctx, req.toModel())
	if err != nil {
		return err
	}
	car, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, "Car created", car)
}

// GetAll lists cars, optionally filtered by brand, status, price range and
// availability. Public endpoint.
func (h *CarHandler) GetAll(c echo.Context) error {
	f := model.CarFilter{
		Brand:  c.QueryParam("brand"),
		Status: c.QueryParam("status"),
	}
	if f.Status != "" && !model.ValidCarStatus(f.Status) {
		return failValidation(c, []fieldError{{Field: "status", Message: "Invalid status"}})
	}
	if v := c.QueryParam("minPrice"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinPrice = p
		}
	}
	if v := c.QueryParam("maxPrice"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxPrice = p
		}
	}
	f.AvailableOnly = c.QueryParam("available") == "true"

	cars, err := h.Cars.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Cars retrieved", cars)
}

// GetByID returns one car. Public endpoint.
func (h *CarHandler) GetByID(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid car id")
	}
	car, err := h.Cars.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			return fail(c, http.StatusNotFound, "Car not found")
		}
		return err
	}
	return ok(c, http.StatusOK, "Car retrieved", car)
}

// Update replaces a car's fields (ADMIN or AGENT).
func (h *CarHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid car id")
	}
	var req carRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if errs := req.validate(); len(errs) > 0 {
		return failValidation(c, errs)
	}

	ctx := c.Request().Context()
	car := req.toModel()
	if car.Status == "" {
		car.Status = model.CarAvailable
	}
	if err := h.Cars.Update(ctx, id, car); err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			return fail(c, http.StatusNotFound, "Car not found")
		}
		return err
	}
	updated, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Car updated", updated)
}

// Delete removes a car from the fleet (ADMIN only).
func (h *CarHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid car id")
	}
	if err := h.Cars.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			return fail(c, http.StatusNotFound, "Car not found")
		}
		return err
	}
	return ok(c, http.StatusOK, "Car deleted", nil)
}

// GetLocations lists cars that have GPS coordinates, for the map view.
// Public endpoint.
func (h *CarHandler) GetLocations(c echo.Context) error {
	cars, err := h.Cars.ListWithLocations(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Car locations retrieved", cars)
}

// CheckAvailability reports whether the car can be booked over a date
// range. A missing car reports unavailable rather than 404.
func (h *CarHandler) CheckAvailability(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid car id")
	}
	var req availabilityRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return failValidation(c, []fieldError{{Field: "start_date", Message: "A valid start date is required"}})
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return failValidation(c, []fieldError{{Field: "end_date", Message: "A valid end date is required"}})
	}
	if !end.After(start) {
		return failValidation(c, []fieldError{{Field: "end_date", Message: "End date must be after start date"}})
	}

	available, err := h.Booking.IsAvailable(c.Request().Context(), id, start, end)
	if err != nil {
		return err
	}
	message := "Car is available"
	if !available {
		message = "Car is not available for selected dates"
	}
	return ok(c, http.StatusOK, message, echo.Map{"available": available})
}
