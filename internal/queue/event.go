// Package queue defines the rental.created message payload, its publisher
// and the background consumer that appends confirmed bookings to
// logs/rental.log.
package queue

// RentalCreatedEvent is published after a booking transaction commits. It
// carries enough information for downstream consumers to log, notify or
// feed analytics without querying the primary database.
type RentalCreatedEvent struct {
	RentalID   uint64  `json:"rental_id"`
	UserID     uint64  `json:"user_id"`
	UserName   string  `json:"user_name"`
	CarID      uint64  `json:"car_id"`
	Brand      string  `json:"brand"`
	Model      string  `json:"model"`
	Year       int     `json:"year"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	TotalPrice float64 `json:"total_price"`
	CreatedAt  string  `json:"created_at"`
}
