package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/JaddaouiAyoub/Location-voitures/internal/model"
)

// RentalRepo provides persistence for rentals and the read-side queries
// used by detail endpoints and the dashboard. Joined reads pull car and
// user display fields alongside the rental row, so callers never need a
// second round trip. All timestamps are stored in UTC.
type RentalRepo struct{ DB *sql.DB }

func NewRentalRepo(db *sql.DB) *RentalRepo { return &RentalRepo{DB: db} }

const detailQuery = `SELECT r.id, r.user_id, r.car_id, r.start_date, r.end_date,
       r.total_price, r.status, r.created_at, r.updated_at,
       c.brand, c.model, c.year, c.image_url, c.price_per_day,
       u.name, u.email, u.phone
FROM rentals r
JOIN cars c ON r.car_id = c.id
JOIN users u ON r.user_id = u.id`

// CountOverlapping returns how many rentals block the candidate interval
// [start,end] on a car. A rental blocks when its status is Active or
// Completed and start_date <= end AND end_date >= start; Cancelled rentals
// never block availability.
func (r *RentalRepo) CountOverlapping(ctx context.Context, carID uint64, start, end time.Time) (int, error) {
	return countOverlapping(ctx, r.DB, carID, start, end)
}

// CountOverlappingTx is CountOverlapping within an existing transaction.
func (r *RentalRepo) CountOverlappingTx(ctx context.Context, tx *sql.Tx, carID uint64, start, end time.Time) (int, error) {
	return countOverlapping(ctx, tx, carID, start, end)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func countOverlapping(ctx context.Context, q querier, carID uint64, start, end time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM rentals
WHERE car_id = ?
  AND status IN (?, ?)
  AND start_date <= ? AND end_date >= ?`
	var n int
	err := q.QueryRowContext(ctx, query, carID,
		model.RentalActive, model.RentalCompleted, end, start).Scan(&n)
	return n, err
}

// CreateTx inserts a rental within the scope of an existing transaction and
// populates the generated ID. The caller must commit or rollback.
func (r *RentalRepo) CreateTx(ctx context.Context, tx *sql.Tx, rec *model.Rental) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO rentals (user_id, car_id, start_date, end_date, total_price, status) VALUES (?,?,?,?,?,?)",
		rec.UserID, rec.CarID, rec.StartDate, rec.EndDate, rec.TotalPrice, rec.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return nil
}

// GetDetail returns a rental joined with car and user display fields.
func (r *RentalRepo) GetDetail(ctx context.Context, id uint64) (model.RentalDetail, error) {
	d, err := scanDetail(r.DB.QueryRowContext(ctx, detailQuery+" WHERE r.id = ?", id))
	if err == sql.ErrNoRows {
		return d, ErrRentalNotFound
	}
	return d, err
}

// List returns joined rentals newest-created first. userID 0 lists all
// users (the ADMIN path); a non-empty status narrows further.
func (r *RentalRepo) List(ctx context.Context, userID uint64, status string) ([]model.RentalDetail, error) {
	query := detailQuery + " WHERE 1=1"
	args := []interface{}{}
	if userID != 0 {
		query += " AND r.user_id = ?"
		args = append(args, userID)
	}
	if status != "" {
		query += " AND r.status = ?"
		args = append(args, status)
	}
	query += " ORDER BY r.created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]model.RentalDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// UpdateStatusTx sets a rental's status within an existing transaction.
// total_price is deliberately untouched: it is immutable after creation.
func (r *RentalRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE rentals SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", status, id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrRentalNotFound)
}

// Stats aggregates the rental side of the dashboard. Revenue counts only
// Active and Completed rentals.
type Stats struct {
	Total   int            `json:"total"`
	Active  int            `json:"active"`
	Revenue float64        `json:"revenue"`
	Monthly []MonthRevenue `json:"monthlyRevenue"`
}

// MonthRevenue is one calendar month's revenue roll-up.
type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// GetStatistics computes rental counts, total revenue and the revenue per
// calendar month over the last 6 months (newest month first). The queries
// are independent reads with no snapshot consistency between them.
func (r *RentalRepo) GetStatistics(ctx context.Context) (Stats, error) {
	var s Stats
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM rentals").Scan(&s.Total); err != nil {
		return s, err
	}
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM rentals WHERE status = ?", model.RentalActive).Scan(&s.Active); err != nil {
		return s, err
	}
	var revenue sql.NullFloat64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT SUM(total_price) FROM rentals WHERE status IN (?, ?)",
		model.RentalActive, model.RentalCompleted).Scan(&revenue); err != nil {
		return s, err
	}
	s.Revenue = revenue.Float64

	const monthlyQ = `SELECT DATE_FORMAT(created_at, '%Y-%m') AS month, SUM(total_price) AS revenue
FROM rentals
WHERE status IN (?, ?)
  AND created_at >= DATE_SUB(NOW(), INTERVAL 6 MONTH)
GROUP BY DATE_FORMAT(created_at, '%Y-%m')
ORDER BY month DESC`
	rows, err := r.DB.QueryContext(ctx, monthlyQ, model.RentalActive, model.RentalCompleted)
	if err != nil {
		return s, err
	}
	defer rows.Close()
	s.Monthly = make([]MonthRevenue, 0)
	for rows.Next() {
		var m MonthRevenue
		if err := rows.Scan(&m.Month, &m.Revenue); err != nil {
			return s, err
		}
		s.Monthly = append(s.Monthly, m)
	}
	return s, rows.Err()
}

// RecentRental is a dashboard activity line.
type RecentRental struct {
	ID         uint64    `json:"id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	TotalPrice float64   `json:"total_price"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	Brand      string    `json:"brand"`
	CarModel   string    `json:"model"`
	UserName   string    `json:"user_name"`
}

// GetRecent returns the most recently created rentals, newest first.
func (r *RentalRepo) GetRecent(ctx context.Context, limit int) ([]RecentRental, error) {
	const q = `SELECT r.id, r.start_date, r.end_date, r.total_price, r.status, r.created_at,
       c.brand, c.model, u.name
FROM rentals r
JOIN cars c ON r.car_id = c.id
JOIN users u ON r.user_id = u.id
ORDER BY r.created_at DESC
LIMIT ?`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	recent := make([]RecentRental, 0, limit)
	for rows.Next() {
		var rr RecentRental
		if err := rows.Scan(&rr.ID, &rr.StartDate, &rr.EndDate, &rr.TotalPrice, &rr.Status,
			&rr.CreatedAt, &rr.Brand, &rr.CarModel, &rr.UserName); err != nil {
			return nil, err
		}
		recent = append(recent, rr)
	}
	return recent, rows.Err()
}

func scanDetail(s rowScanner) (model.RentalDetail, error) {
	var d model.RentalDetail
	var image sql.NullString
	var phone sql.NullString
	err := s.Scan(&d.ID, &d.UserID, &d.CarID, &d.StartDate, &d.EndDate,
		&d.TotalPrice, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&d.Brand, &d.CarModel, &d.Year, &image, &d.PricePerDay,
		&d.UserName, &d.UserEmail, &phone)
	if err != nil {
		return d, err
	}
	if image.Valid {
		v := image.String
		d.ImageURL = &v
	}
	if phone.Valid {
		v := phone.String
		d.UserPhone = &v
	}
	return d, nil
}
