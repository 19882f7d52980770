package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/JaddaouiAyoub/Location-voitures/internal/config"
	"github.com/JaddaouiAyoub/Location-voitures/internal/database"
	"github.com/JaddaouiAyoub/Location-voitures/internal/handler"
	"github.com/JaddaouiAyoub/Location-voitures/internal/queue"
	"github.com/JaddaouiAyoub/Location-voitures/internal/repository"
	"github.com/JaddaouiAyoub/Location-voitures/internal/router"
	"github.com/JaddaouiAyoub/Location-voitures/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, caching and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	cars := repository.NewCarRepo(db)
	rentals := repository.NewRentalRepo(db)

	booking := service.NewBookingService(db, cars, rentals)
	invoices := service.NewInvoiceService(rentals)
	dashboard := service.NewDashboardService(cars, rentals)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, rdb, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users),
		Cars:      handler.NewCarHandler(cars, booking),
		Rentals:   handler.NewRentalHandler(booking),
		Invoices:  handler.NewInvoiceHandler(invoices, booking),
		Dashboard: handler.NewDashboardHandler(dashboard),
	})

	go func() {
		if err := queue.StartRentalConsumer(); err != nil {
			log.Printf("rental consumer stopped: %v", err)
		}
	}()

	log.Printf("listening on :%s (%s)", cfg.Port, cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
