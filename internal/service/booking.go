// Package service hosts the booking engine, the invoice generator and the
// dashboard aggregator. Services are constructed once with their storage
// handles and are safe for concurrent use.
package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/JaddaouiAyoub/Location-voitures/internal/model"
	"github.com/JaddaouiAyoub/Location-voitures/internal/repository"
)

// ErrCarNotAvailable is returned when a booking request conflicts with an
// existing rental or the car is in maintenance. Handlers translate it into
// HTTP 409.
var ErrCarNotAvailable = errors.New("car is not available for the selected dates")

// BookingService is the rental workflow engine. It owns every mutation of
// Car.status tied to the rental lifecycle; fleet handlers must not flip a
// car between Rented and Available themselves.
//
// Ownership checks (owner vs ADMIN) are the caller's responsibility; the
// engine trusts the user id it is given.
type BookingService struct {
	db      *sql.DB
	cars    *repository.CarRepo
	rentals *repository.RentalRepo
}

func NewBookingService(db *sql.DB, cars *repository.CarRepo, rentals *repository.RentalRepo) *BookingService {
	if db == nil || cars == nil || rentals == nil {
		panic("nil dependency passed to NewBookingService")
	}
	return &BookingService{db: db, cars: cars, rentals: rentals}
}

// RentalDays converts a date range to billable days: ceil((end-start)/24h)
// with a minimum of one day, so even sub-day spans bill a full day.
func RentalDays(start, end time.Time) int {
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// IsAvailable reports whether a car can be booked for [start,end]. It fails
// closed: a missing car or one in maintenance is reported unavailable.
// Otherwise the car is available iff no Active or Completed rental on it
// overlaps the range.
func (s *BookingService) IsAvailable(ctx context.Context, carID uint64, start, end time.Time) (bool, error) {
	car, err := s.cars.GetByID(ctx, carID)
	if err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			return false, nil
		}
		return false, err
	}
	if car.Status == model.CarMaintenance {
		return false, nil
	}
	n, err := s.rentals.CountOverlapping(ctx, carID, start, end)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// CreateRental books a car for a user over [start,end]. The availability
// check, price computation, rental insert and car status update run in a
// single transaction with the car row locked, so two concurrent requests
// for overlapping dates cannot both succeed. Returns the new rental joined
// with car and user display fields.
//
// Errors: repository.ErrCarNotFound when the car does not exist,
// ErrCarNotAvailable on a date conflict or a car in maintenance.
func (s *BookingService) CreateRental(ctx context.Context, userID, carID uint64, start, end time.Time) (model.RentalDetail, error) {
	var detail model.RentalDetail

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return detail, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	car, err := s.cars.GetByIDForUpdateTx(ctx, tx, carID)
	if err != nil {
		return detail, err
	}
	if car.Status == model.CarMaintenance {
		return detail, ErrCarNotAvailable
	}
	overlaps, err := s.rentals.CountOverlappingTx(ctx, tx, carID, start, end)
	if err != nil {
		return detail, err
	}
	if overlaps > 0 {
		return detail, ErrCarNotAvailable
	}

	rec := model.Rental{
		UserID:     userID,
		CarID:      carID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: float64(RentalDays(start, end)) * car.PricePerDay,
		Status:     model.RentalActive,
	}
	if err := s.rentals.CreateTx(ctx, tx, &rec); err != nil {
		return detail, err
	}
	if err := s.cars.UpdateStatusTx(ctx, tx, carID, model.CarRented); err != nil {
		return detail, err
	}
	if err := tx.Commit(); err != nil {
		return detail, err
	}
	committed = true

	return s.rentals.GetDetail(ctx, rec.ID)
}

// TransitionStatus moves a rental to Active, Completed or Cancelled (the
// caller validates the value) and applies the car side effect: on
// Completed or Cancelled the car is set back to Available. No lookahead is
// performed for other future rentals claiming the car; the next booking
// re-derives availability from the rentals table.
//
// Errors: repository.ErrRentalNotFound when the rental does not exist.
func (s *BookingService) TransitionStatus(ctx context.Context, rentalID uint64, status string) (model.RentalDetail, error) {
	var detail model.RentalDetail

	rental, err := s.rentals.GetDetail(ctx, rentalID)
	if err != nil {
		return detail, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return detail, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := s.rentals.UpdateStatusTx(ctx, tx, rentalID, status); err != nil {
		return detail, err
	}
	if status == model.RentalCompleted || status == model.RentalCancelled {
		if err := s.cars.UpdateStatusTx(ctx, tx, rental.CarID, model.CarAvailable); err != nil {
			return detail, err
		}
	}
	if err := tx.Commit(); err != nil {
		return detail, err
	}
	committed = true

	return s.rentals.GetDetail(ctx, rentalID)
}

// GetRental returns a joined rental by id.
func (s *BookingService) GetRental(ctx context.Context, rentalID uint64) (model.RentalDetail, error) {
	return s.rentals.GetDetail(ctx, rentalID)
}

// ListRentals returns rentals newest-created first. userID 0 is the
// unrestricted ADMIN path; status narrows when non-empty.
func (s *BookingService) ListRentals(ctx context.Context, userID uint64, status string) ([]model.RentalDetail, error) {
	return s.rentals.List(ctx, userID, status)
}
