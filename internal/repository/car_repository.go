package repository

import (
	"context"
	"database/sql"

	"github.com/JaddaouiAyoub/Location-voitures/internal/model"
)

// CarRepo provides CRUD and availability-support queries for the fleet.
// Car.status is a denormalized cache maintained by the booking engine;
// repository methods mutate it only when explicitly asked to.
type CarRepo struct{ DB *sql.DB }

func NewCarRepo(db *sql.DB) *CarRepo { return &CarRepo{DB: db} }

const carCols = "id,brand,model,year,price_per_day,status,image_url,latitude,longitude,created_at,updated_at"

// Create inserts a car and returns its ID. An empty status defaults to
// Available.
func (r *CarRepo) Create(ctx context.Context, c *model.Car) (uint64, error) {
	if c.Status == "" {
		c.Status = model.CarAvailable
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO cars (brand, model, year, price_per_day, status, image_url, latitude, longitude) VALUES (?,?,?,?,?,?,?,?)",
		c.Brand, c.Model, c.Year, c.PricePerDay, c.Status, c.ImageURL, c.Latitude, c.Longitude)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a car by id.
func (r *CarRepo) GetByID(ctx context.Context, id uint64) (model.Car, error) {
	return scanCar(r.DB.QueryRowContext(ctx,
		"SELECT "+carCols+" FROM cars WHERE id=? LIMIT 1", id))
}

// GetByIDForUpdateTx fetches a car inside a transaction and locks its row
// until commit. The booking engine uses this to serialize concurrent
// bookings on the same car.
func (r *CarRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Car, error) {
	return scanCar(tx.QueryRowContext(ctx,
		"SELECT "+carCols+" FROM cars WHERE id=? LIMIT 1 FOR UPDATE", id))
}

// List returns cars matching the filter, newest first. Each filter is
// AND-combined; an absent filter adds no constraint.
func (r *CarRepo) List(ctx context.Context, f model.CarFilter) ([]model.Car, error) {
	query := "SELECT " + carCols + " FROM cars WHERE 1=1"
	args := []interface{}{}
	if f.Brand != "" {
		query += " AND brand LIKE ?"
		args = append(args, "%"+f.Brand+"%")
	}
	if f.Status != "" {
		query += " AND status = ?"
		args = append(args, f.Status)
	}
	if f.MinPrice > 0 {
		query += " AND price_per_day >= ?"
		args = append(args, f.MinPrice)
	}
	if f.MaxPrice > 0 {
		query += " AND price_per_day <= ?"
		args = append(args, f.MaxPrice)
	}
	if f.AvailableOnly {
		query += " AND status = ?"
		args = append(args, model.CarAvailable)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCars(rows)
}

// ListWithLocations returns cars having GPS coordinates, for map display.
func (r *CarRepo) ListWithLocations(ctx context.Context) ([]model.Car, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+carCols+" FROM cars WHERE latitude IS NOT NULL AND longitude IS NOT NULL ORDER BY status, brand")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCars(rows)
}

// Update replaces the mutable car fields.
func (r *CarRepo) Update(ctx context.Context, id uint64, c *model.Car) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE cars SET brand=?, model=?, year=?, price_per_day=?, status=?, image_url=?, latitude=?, longitude=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		c.Brand, c.Model, c.Year, c.PricePerDay, c.Status, c.ImageURL, c.Latitude, c.Longitude, id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrCarNotFound)
}

// UpdateStatus sets only the status column.
func (r *CarRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE cars SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", status, id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrCarNotFound)
}

// UpdateStatusTx is UpdateStatus within an existing transaction.
func (r *CarRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE cars SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", status, id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrCarNotFound)
}

// Delete removes a car.
func (r *CarRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM cars WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrCarNotFound)
}

// CountByStatus returns the number of cars per status.
func (r *CarRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM cars GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// requireRow maps a zero-row update/delete onto the given sentinel.
func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCarFields(s rowScanner) (model.Car, error) {
	var c model.Car
	var image sql.NullString
	var lat, lng sql.NullFloat64
	err := s.Scan(&c.ID, &c.Brand, &c.Model, &c.Year, &c.PricePerDay, &c.Status,
		&image, &lat, &lng, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	if image.Valid {
		v := image.String
		c.ImageURL = &v
	}
	if lat.Valid {
		v := lat.Float64
		c.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		c.Longitude = &v
	}
	return c, nil
}

func scanCar(row *sql.Row) (model.Car, error) {
	c, err := scanCarFields(row)
	if err == sql.ErrNoRows {
		return c, ErrCarNotFound
	}
	return c, err
}

func collectCars(rows *sql.Rows) ([]model.Car, error) {
	cars := make([]model.Car, 0)
	for rows.Next() {
		c, err := scanCarFields(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}
