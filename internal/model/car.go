package model

import "time"

// Car status values. Status is a denormalized cache of the rental state:
// whether a car is actually bookable for a date range is decided by the
// overlap query over rentals, but Maintenance always blocks new bookings.
const (
	CarAvailable   = "Available"
	CarRented      = "Rented"
	CarMaintenance = "Maintenance"
)

// ValidCarStatus reports whether s is one of the known car statuses.
func ValidCarStatus(s string) bool {
	return s == CarAvailable || s == CarRented || s == CarMaintenance
}

// Car mirrors the 'cars' table. Latitude/Longitude are optional GPS
// coordinates used by the map endpoint.
type Car struct {
	ID          uint64    `json:"id"`
	Brand       string    `json:"brand"`
	Model       string    `json:"model"`
	Year        int       `json:"year"`
	PricePerDay float64   `json:"price_per_day"`
	Status      string    `json:"status"`
	ImageURL    *string   `json:"image_url"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CarFilter collects the optional query filters for listing cars. Zero
// values mean "no constraint"; filters are AND-combined.
type CarFilter struct {
	Brand         string  // substring match on brand
	Status        string  // exact status match
	MinPrice      float64 // price_per_day >= MinPrice when > 0
	MaxPrice      float64 // price_per_day <= MaxPrice when > 0
	AvailableOnly bool    // restrict to status = Available
}
