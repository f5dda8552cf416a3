package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/config"
	"github.com/iliyamo/bus-seat-reservation/internal/database"
	"github.com/iliyamo/bus-seat-reservation/internal/engine"
	"github.com/iliyamo/bus-seat-reservation/internal/handler"
	"github.com/iliyamo/bus-seat-reservation/internal/realtime"
	"github.com/iliyamo/bus-seat-reservation/internal/repository"
	"github.com/iliyamo/bus-seat-reservation/internal/router"
	queue_publisher "github.com/iliyamo/bus-seat-reservation/internal/service"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	seatRepo := repository.NewSeatRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	userRepo := repository.NewUserRepo(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Make sure the fixed 44-seat plan exists, then seed the in-process
	// projection from the store.
	if err := seatRepo.EnsureLayout(ctx); err != nil {
		log.Fatalf("seat layout: %v", err)
	}
	seats := engine.NewSeatMap()
	initial, err := seatRepo.ListAll(ctx)
	if err != nil {
		log.Fatalf("seat load: %v", err)
	}
	seats.Load(initial)

	// Keep the projection converging on the store: deltas published by any
	// instance are applied here in receipt order.
	syncClient := realtime.New(queue_publisher.BrokerURL())
	syncClient.Register(seats)
	go syncClient.Run()
	defer syncClient.Close()

	coordinator := engine.NewCoordinator(seatRepo, cfg.SeatPriceCents, cfg.CommitTimeout)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, userRepo), cfg.JWTSecret)
	router.RegisterBooking(e,
		handler.NewSeatHandler(seats),
		handler.NewBookingHandler(seats, coordinator, bookingRepo),
		cfg.JWTSecret, rdb, config.LoadCacheConfig(), config.LoadRateLimitConfig())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
