package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/airlineops/api"
	"github.com/Domenick1991/airlineops/config"
	"github.com/Domenick1991/airlineops/internal/middleware"
	"github.com/Domenick1991/airlineops/internal/service/baggage"
	"github.com/Domenick1991/airlineops/internal/service/booking"
	"github.com/Domenick1991/airlineops/internal/service/flights"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Services struct {
	Flights flights.FlightUseCase
	Booking booking.BookingUseCase
	Baggage baggage.BaggageUseCase
}

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, logger *logrus.Logger, svc Services) error {
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, logger, svc),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(cfg *config.Config, logger *logrus.Logger, svc Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	corsCfg := cors.DefaultConfig()
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	router.Use(cors.New(corsCfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	flightHandler := api.NewFlightHandler(svc.Flights)
	bookingHandler := api.NewBookingHandler(svc.Booking)
	baggageHandler := api.NewBaggageHandler(svc.Baggage)

	flightsGroup := router.Group("/flights")
	flightHandler.Register(flightsGroup)

	bookingsGroup := router.Group("/bookings")
	bookingHandler.Register(bookingsGroup)
	baggageHandler.RegisterBookingRoutes(bookingsGroup)

	baggageGroup := router.Group("/baggage")
	baggageHandler.Register(baggageGroup)

	return router
}
