package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/JaddaouiAyoub/Location-voitures/internal/service"
)

// DashboardHandler serves the ADMIN statistics endpoint.
type DashboardHandler struct {
	Stats *service.DashboardService
}

func NewDashboardHandler(stats *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{Stats: stats}
}

func (h *DashboardHandler) GetStatistics(c echo.Context) error {
	stats, err := h.Stats.GetStatistics(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Statistics retrieved", stats)
}
