package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/airlineops/internal/domain"
	"github.com/Domenick1991/airlineops/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type paymentResponse struct {
	AmountCents   int64  `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	Method        string `json:"method"`
	TransactionID string `json:"transaction_id,omitempty"`
}

type bookingResponse struct {
	BookingID   string          `json:"booking_id"`
	FlightID    int64           `json:"flight_id"`
	PassengerID int64           `json:"passenger_id"`
	SeatClass   string          `json:"seat_class"`
	SeatNumber  string          `json:"seat_number,omitempty"`
	Status      string          `json:"status"`
	Payment     paymentResponse `json:"payment"`
	TravelDate  string          `json:"travel_date"`
	CreatedAt   string          `json:"created_at,omitempty"`
}

func newBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		BookingID:   b.BookingID,
		FlightID:    b.FlightID,
		PassengerID: b.PassengerID,
		SeatClass:   string(b.SeatClass),
		SeatNumber:  b.SeatNumber,
		Status:      string(b.Status),
		Payment: paymentResponse{
			AmountCents:   b.Payment.AmountCents,
			Currency:      b.Payment.Currency,
			Status:        string(b.Payment.Status),
			Method:        string(b.Payment.Method),
			TransactionID: b.Payment.TransactionID,
		},
		TravelDate: b.TravelDate.Format(time.RFC3339),
	}
	if !b.CreatedAt.IsZero() {
		resp.CreatedAt = b.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.PUT("/:id", h.update)
	router.POST("/:id/cancel", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var input booking.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		writeError(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusCreated, newBookingResponse(created))
}

func (h *BookingHandler) list(c *gin.Context) {
	bookings, err := h.service.ListBookings(c.Request.Context())
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, newBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) get(c *gin.Context) {
	found, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(found))
}

func (h *BookingHandler) update(c *gin.Context) {
	var patch booking.UpdateBookingInput
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.UpdateBooking(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(updated))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	cancelled, err := h.service.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(cancelled))
}
