package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaddaouiAyoub/Location-voitures/internal/model"
	"github.com/JaddaouiAyoub/Location-voitures/internal/repository"
)

func TestDashboardStatistics(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	svc := NewDashboardService(repository.NewCarRepo(db), repository.NewRentalRepo(db))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM cars GROUP BY status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow(model.CarAvailable, 5).
			AddRow(model.CarRented, 2).
			AddRow(model.CarMaintenance, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rentals")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = ?")).
		WithArgs(model.RentalActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT SUM(total_price) FROM rentals")).
		WithArgs(model.RentalActive, model.RentalCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(1250.0))
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY DATE_FORMAT")).
		WithArgs(model.RentalActive, model.RentalCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"month", "revenue"}).
			AddRow("2025-06", 800.0).
			AddRow("2025-05", 450.0))
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT ?")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "start_date", "end_date", "total_price", "status", "created_at",
			"brand", "model", "name",
		}).AddRow(42, now, now, 100.0, model.RentalActive, now, "Toyota", "Corolla", "Alice"))

	stats, err := svc.GetStatistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, stats.Cars.Total)
	assert.Equal(t, 5, stats.Cars.Available)
	assert.Equal(t, 2, stats.Cars.Rented)
	assert.Equal(t, 1, stats.Cars.Maintenance)
	assert.Equal(t, 5, stats.Cars.StatusDistribution[model.CarAvailable])

	assert.Equal(t, 10, stats.Rentals.Total)
	assert.Equal(t, 2, stats.Rentals.Active)
	assert.Equal(t, 1250.0, stats.Rentals.Revenue)
	require.Len(t, stats.Rentals.Monthly, 2)
	assert.Equal(t, "2025-06", stats.Rentals.Monthly[0].Month)

	require.Len(t, stats.RecentActivity, 1)
	assert.Equal(t, "Toyota", stats.RecentActivity[0].Brand)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardStatistics_NullRevenue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	svc := NewDashboardService(repository.NewCarRepo(db), repository.NewRentalRepo(db))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM cars GROUP BY status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rentals")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = ?")).
		WithArgs(model.RentalActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT SUM(total_price) FROM rentals")).
		WithArgs(model.RentalActive, model.RentalCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(nil))
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY DATE_FORMAT")).
		WithArgs(model.RentalActive, model.RentalCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"month", "revenue"}))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT ?")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "start_date", "end_date", "total_price", "status", "created_at",
			"brand", "model", "name",
		}))

	stats, err := svc.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Cars.Total)
	assert.Zero(t, stats.Rentals.Revenue)
	assert.Empty(t, stats.RecentActivity)
	assert.NoError(t, mock.ExpectationsWereMet())
}
