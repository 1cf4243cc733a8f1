package main // entry point

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/priyanshu9046/SortMyScene/internal/clock"
	"github.com/priyanshu9046/SortMyScene/internal/config"
	"github.com/priyanshu9046/SortMyScene/internal/database"
	"github.com/priyanshu9046/SortMyScene/internal/handler"
	"github.com/priyanshu9046/SortMyScene/internal/queue"
	"github.com/priyanshu9046/SortMyScene/internal/repository"
	"github.com/priyanshu9046/SortMyScene/internal/reservation"
	"github.com/priyanshu9046/SortMyScene/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	// Redis is optional: when unreachable the limiter and the response
	// cache are disabled and the service still works.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	events := repository.NewEventRepo(db)
	reservations := repository.NewReservationRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	svc := reservation.New(reservations, events, clock.NewSystem(),
		reservation.WithHoldTTL(time.Duration(cfg.HoldTTLMin)*time.Minute))

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	eventHandler := handler.NewEventHandler(events)
	reservationHandler := handler.NewReservationHandler(svc, events)

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, eventHandler, reservationHandler, config.LoadCacheConfig(), rdb)
	router.RegisterReservations(e, reservationHandler, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)

	// Background consumer for booking.confirmed messages. It reconnects on
	// its own and never takes the server down.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
