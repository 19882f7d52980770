package service

import (
	"context"

	"github.com/JaddaouiAyoub/Location-voitures/internal/model"
	"github.com/JaddaouiAyoub/Location-voitures/internal/repository"
)

// DashboardService aggregates fleet and rental state for the admin
// dashboard. Nothing is cached: every call recomputes from the database,
// and the individual queries carry no snapshot consistency between them.
type DashboardService struct {
	cars    *repository.CarRepo
	rentals *repository.RentalRepo
}

func NewDashboardService(cars *repository.CarRepo, rentals *repository.RentalRepo) *DashboardService {
	if cars == nil || rentals == nil {
		panic("nil repository passed to NewDashboardService")
	}
	return &DashboardService{cars: cars, rentals: rentals}
}

// CarStats summarizes the fleet by status.
type CarStats struct {
	Total              int            `json:"total"`
	Available          int            `json:"available"`
	Rented             int            `json:"rented"`
	Maintenance        int            `json:"maintenance"`
	StatusDistribution map[string]int `json:"statusDistribution"`
}

// Statistics is the dashboard payload.
type Statistics struct {
	Cars           CarStats                  `json:"cars"`
	Rentals        repository.Stats          `json:"rentals"`
	RecentActivity []repository.RecentRental `json:"recentActivity"`
}

// GetStatistics assembles car counts, rental roll-ups and the last 10
// rentals.
func (s *DashboardService) GetStatistics(ctx context.Context) (Statistics, error) {
	var stats Statistics

	byStatus, err := s.cars.CountByStatus(ctx)
	if err != nil {
		return stats, err
	}
	stats.Cars = CarStats{
		Available:   byStatus[model.CarAvailable],
		Rented:      byStatus[model.CarRented],
		Maintenance: byStatus[model.CarMaintenance],
		StatusDistribution: map[string]int{
			model.CarAvailable:   byStatus[model.CarAvailable],
			model.CarRented:      byStatus[model.CarRented],
			model.CarMaintenance: byStatus[model.CarMaintenance],
		},
	}
	stats.Cars.Total = stats.Cars.Available + stats.Cars.Rented + stats.Cars.Maintenance

	if stats.Rentals, err = s.rentals.GetStatistics(ctx); err != nil {
		return stats, err
	}
	if stats.RecentActivity, err = s.rentals.GetRecent(ctx, 10); err != nil {
		return stats, err
	}
	return stats, nil
}
