package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/airlineops/config"
	"github.com/Domenick1991/airlineops/internal/bootstrap"
	"github.com/Domenick1991/airlineops/internal/cache"
	"github.com/Domenick1991/airlineops/internal/kafka"
	"github.com/Domenick1991/airlineops/internal/repository"
	"github.com/Domenick1991/airlineops/internal/service/baggage"
	"github.com/Domenick1991/airlineops/internal/service/booking"
	"github.com/Domenick1991/airlineops/internal/service/flights"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	cacheTTL := time.Duration(cfg.Booking.FlightsCacheTTL) * time.Second
	redisCache := cache.NewRedisCache(cfg.Redis, cacheTTL)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	transactor := repository.NewTransactor(pool, cfg.Booking.TxMaxAttempts)
	ledger := repository.NewSeatLedger(pool)
	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	baggageRepo := repository.NewBaggageRepository(pool)

	flightService := flights.NewFlightService(flightRepo, ledger, redisCache, cacheTTL)
	bookingService := booking.NewBookingService(
		transactor,
		ledger,
		bookingRepo,
		redisCache,
		producer,
		logger,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	baggageService := baggage.NewBaggageService(baggageRepo, bookingRepo, logger)

	err = bootstrap.Run(ctx, cfg, logger, bootstrap.Services{
		Flights: flightService,
		Booking: bookingService,
		Baggage: baggageService,
	})
	if err != nil {
		log.Fatalf("server error: %v", err)
	}
}
