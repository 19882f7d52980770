package model

import "time"

// Rental status values. Cancelled rentals never block availability;
// Active and Completed rentals on the same car must not overlap.
const (
	RentalActive    = "Active"
	RentalCompleted = "Completed"
	RentalCancelled = "Cancelled"
)

// ValidRentalStatus reports whether s is one of the known rental statuses.
func ValidRentalStatus(s string) bool {
	return s == RentalActive || s == RentalCompleted || s == RentalCancelled
}

// Rental mirrors the 'rentals' table. TotalPrice is computed once at
// creation and never recalculated.
type Rental struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"user_id"`
	CarID      uint64    `json:"car_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	TotalPrice float64   `json:"total_price"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RentalDetail is a rental joined with car and user display fields, as
// returned by detail endpoints, rental listings and the invoice generator.
type RentalDetail struct {
	Rental
	Brand       string  `json:"brand"`
	CarModel    string  `json:"model"`
	Year        int     `json:"year"`
	ImageURL    *string `json:"image_url"`
	PricePerDay float64 `json:"price_per_day"`
	UserName    string  `json:"user_name"`
	UserEmail   string  `json:"user_email"`
	UserPhone   *string `json:"user_phone"`
}
