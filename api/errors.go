package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/airlineops/internal/domain"
	"github.com/gin-gonic/gin"
)

// writeError maps domain sentinels to HTTP statuses; anything unrecognized
// gets the fallback (400 for input paths, 500 for read paths).
func writeError(c *gin.Context, err error, fallback int) {
	c.JSON(statusFor(err, fallback), gin.H{"error": err.Error()})
}

func statusFor(err error, fallback int) int {
	switch {
	case errors.Is(err, domain.ErrFlightNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrBaggageNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidSeatClass):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCapacityExhausted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnsupportedMutation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrTransactionConflict):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrGenerationExhausted):
		return http.StatusInternalServerError
	}
	return fallback
}
