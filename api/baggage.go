package api

import (
	"net/http"

	"github.com/Domenick1991/airlineops/internal/domain"
	"github.com/Domenick1991/airlineops/internal/service/baggage"
	"github.com/gin-gonic/gin"
)

type BaggageHandler struct {
	service baggage.BaggageUseCase
}

type baggageStatusRequest struct {
	Status string `json:"status"`
}

type baggageResponse struct {
	TrackingNumber string  `json:"tracking_number"`
	BookingID      int64   `json:"booking_id"`
	FlightID       int64   `json:"flight_id"`
	PassengerID    int64   `json:"passenger_id"`
	Type           string  `json:"type"`
	WeightKg       float64 `json:"weight_kg"`
	Pieces         int     `json:"pieces"`
	Status         string  `json:"status"`
	FeeCents       int64   `json:"fee"`
	Description    string  `json:"description,omitempty"`
}

func newBaggageResponse(b *domain.Baggage) baggageResponse {
	return baggageResponse{
		TrackingNumber: b.TrackingNumber,
		BookingID:      b.BookingID,
		FlightID:       b.FlightID,
		PassengerID:    b.PassengerID,
		Type:           string(b.Type),
		WeightKg:       b.WeightKg,
		Pieces:         b.Pieces,
		Status:         string(b.Status),
		FeeCents:       b.FeeCents,
		Description:    b.Description,
	}
}

func NewBaggageHandler(service baggage.BaggageUseCase) *BaggageHandler {
	return &BaggageHandler{service: service}
}

func (h *BaggageHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.checkIn)
	router.GET("/:trackingNumber", h.track)
	router.PUT("/:trackingNumber/status", h.updateStatus)
}

// RegisterBookingRoutes hangs the per-booking listing off the bookings group.
func (h *BaggageHandler) RegisterBookingRoutes(router *gin.RouterGroup) {
	router.GET("/:id/baggage", h.listByBooking)
}

func (h *BaggageHandler) checkIn(c *gin.Context) {
	var input baggage.CheckInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bag, err := h.service.CheckIn(c.Request.Context(), input)
	if err != nil {
		writeError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusCreated, newBaggageResponse(bag))
}

func (h *BaggageHandler) track(c *gin.Context) {
	bag, err := h.service.Track(c.Request.Context(), c.Param("trackingNumber"))
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, newBaggageResponse(bag))
}

func (h *BaggageHandler) updateStatus(c *gin.Context) {
	var req baggageStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bag, err := h.service.UpdateStatus(c.Request.Context(), c.Param("trackingNumber"), domain.BaggageStatus(req.Status))
	if err != nil {
		writeError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, newBaggageResponse(bag))
}

func (h *BaggageHandler) listByBooking(c *gin.Context) {
	bags, err := h.service.ListByBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}

	out := make([]baggageResponse, 0, len(bags))
	for i := range bags {
		out = append(out, newBaggageResponse(&bags[i]))
	}
	c.JSON(http.StatusOK, out)
}
