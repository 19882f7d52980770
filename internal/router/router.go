// Package router wires the HTTP route table: public fleet reads, the auth
// endpoints and the bearer-protected booking, invoice and dashboard
// groups.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/JaddaouiAyoub/Location-voitures/internal/config"
	"github.com/JaddaouiAyoub/Location-voitures/internal/handler"
	"github.com/JaddaouiAyoub/Location-voitures/internal/middleware"
	"github.com/JaddaouiAyoub/Location-voitures/internal/model"
)

// Handlers groups everything Register needs to build the route table.
type Handlers struct {
	Auth      *handler.AuthHandler
	Cars      *handler.CarHandler
	Rentals   *handler.RentalHandler
	Invoices  *handler.InvoiceHandler
	Dashboard *handler.DashboardHandler
}

// Register installs middleware and all routes on e. rdb may be nil, in
// which case caching and rate limiting become pass-throughs.
func Register(e *echo.Echo, cfg config.Config, rdb *redis.Client, h Handlers) {
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	jwtAuth := middleware.JWTAuth(cfg.JWTSecret)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e.GET("/healthz", handler.Health)

	api := e.Group("/api", limiter)

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register, middleware.OptionalJWTAuth(cfg.JWTSecret))
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.GET("/me", h.Auth.Me, jwtAuth)
	auth.PUT("/profile", h.Auth.UpdateProfile, jwtAuth)
	auth.PUT("/password", h.Auth.ChangePassword, jwtAuth)

	cars := api.Group("/cars")
	cars.GET("", h.Cars.GetAll, cache)
	cars.GET("/map/locations", h.Cars.GetLocations, cache)
	cars.GET("/:id", h.Cars.GetByID, cache)
	cars.POST("/:id/check-availability", h.Cars.CheckAvailability, jwtAuth)
	cars.POST("", h.Cars.Create, jwtAuth, middleware.RequireRole(model.RoleAdmin, model.RoleAgent))
	cars.PUT("/:id", h.Cars.Update, jwtAuth, middleware.RequireRole(model.RoleAdmin, model.RoleAgent))
	cars.DELETE("/:id", h.Cars.Delete, jwtAuth, middleware.RequireRole(model.RoleAdmin))

	rentals := api.Group("/rentals", jwtAuth)
	rentals.POST("", h.Rentals.Create)
	rentals.GET("", h.Rentals.GetAll)
	rentals.GET("/my/history", h.Rentals.MyHistory)
	rentals.GET("/:id", h.Rentals.GetByID)
	rentals.PUT("/:id/status", h.Rentals.UpdateStatus)

	api.GET("/invoices/:rentalId", h.Invoices.Download, jwtAuth)
	api.GET("/dashboard/stats", h.Dashboard.GetStatistics, jwtAuth, middleware.RequireRole(model.RoleAdmin))
}
