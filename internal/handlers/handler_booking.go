package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cartime-app/cartime-backend/internal/apperrors"
	portssvc "github.com/cartime-app/cartime-backend/internal/core/ports/services"
	"github.com/cartime-app/cartime-backend/internal/dto"
	"github.com/cartime-app/cartime-backend/internal/middleware"
	"github.com/cartime-app/cartime-backend/internal/utils"
)

// bookingHandler handles HTTP requests related to bookings and availability.
type bookingHandler struct {
	bookingService portssvc.BookingSvcFacade
}

// newBookingHandler creates a new bookingHandler.
func newBookingHandler(bs portssvc.BookingSvcFacade) *bookingHandler {
	return &bookingHandler{
		bookingService: bs,
	}
}

// RegisterBookingRoutes registers routes related to bookings.
func RegisterBookingRoutes(rg *gin.RouterGroup, bookingService portssvc.BookingSvcFacade) {
	h := newBookingHandler(bookingService)

	bookings := rg.Group("/bookings")
	{
		bookings.POST("", h.bookAndPay)
		bookings.GET("/my", h.listMyBookings)
		bookings.POST("/:id/cancel", h.cancelBooking)
	}

	cars := rg.Group("/cars")
	{
		cars.GET("/:id/calendar", h.getAvailability)
	}
}

// bookAndPay godoc
// @Summary Book a car and pay from the wallet
// @Description Checks availability, debits the wallet and creates the booking atomically
// @Tags bookings
// @Accept json
// @Produce json
// @Param booking body dto.CreateBookingRequest true "Booking details"
// @Success 201 {object} dto.BookingResponse
// @Failure 400 {object} map[string]string "Invalid dates or request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 402 {object} map[string]interface{} "Insufficient wallet balance"
// @Failure 404 {object} map[string]string "Car not found"
// @Failure 409 {object} map[string]interface{} "Dates already booked"
// @Failure 422 {object} map[string]string "Car not bookable"
// @Failure 423 {object} map[string]string "Wallet frozen"
// @Failure 503 {object} map[string]string "Concurrency conflict, retry"
// @Security BearerAuth
// @Router /bookings [post]
func (h *bookingHandler) bookAndPay(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for BookAndPay", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	booking, err := h.bookingService.BookAndPay(c.Request.Context(), userID, req)
	if err != nil {
		h.writeBookingError(c, logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

// writeBookingError maps coordinator failures to HTTP responses. The
// self-correction errors carry structured detail so clients can react (top up
// the difference, pick other dates) without parsing messages.
func (h *bookingHandler) writeBookingError(c *gin.Context, logger *slog.Logger, err error) {
	var insufficient *apperrors.InsufficientFundsError
	var unavailable *apperrors.DatesUnavailableError

	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":   "Insufficient wallet balance",
			"code":    "INSUFFICIENT_FUNDS",
			"needed":  insufficient.Needed,
			"balance": insufficient.Balance,
		})
	case errors.As(err, &unavailable):
		c.JSON(http.StatusConflict, gin.H{
			"error":         "Selected dates are no longer available",
			"code":          "DATES_UNAVAILABLE",
			"conflictStart": utils.FormatDateOnly(unavailable.ConflictStart),
			"conflictEnd":   utils.FormatDateOnly(unavailable.ConflictEnd),
		})
	case errors.Is(err, apperrors.ErrCarNotBookable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Car is not accepting bookings"})
	case errors.Is(err, apperrors.ErrWalletFrozen):
		c.JSON(http.StatusLocked, gin.H{"error": "Wallet is frozen"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrTransient):
		logger.Warn("Booking failed after retry budget", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "High booking contention, please retry"})
	default:
		logger.Error("Failed to book and pay", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
	}
}

// listMyBookings godoc
// @Summary List the logged-in user's bookings
// @Description Retrieves a newest-first page of bookings
// @Tags bookings
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListBookingsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list bookings"
// @Security BearerAuth
// @Router /bookings/my [get]
func (h *bookingHandler) listMyBookings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListMyBookings", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	bookings, nextToken, err := h.bookingService.ListMyBookings(c.Request.Context(), userID, params.Limit, params.NextToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list bookings", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, dto.ListBookingsResponse{
		Bookings:  dto.ToBookingResponseSlice(bookings),
		NextToken: nextToken,
	})
}

// cancelBooking godoc
// @Summary Cancel a booking
// @Description Cancels the renter's booking and refunds the wallet
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} dto.BookingResponse
// @Failure 400 {object} map[string]string "Booking cannot be cancelled"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not the booking's renter"
// @Failure 404 {object} map[string]string "Booking not found"
// @Failure 500 {object} map[string]string "Failed to cancel booking"
// @Security BearerAuth
// @Router /bookings/{id}/cancel [post]
func (h *bookingHandler) cancelBooking(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	bookingID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		case errors.Is(err, apperrors.ErrWalletFrozen):
			c.JSON(http.StatusLocked, gin.H{"error": "Wallet is frozen"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to cancel booking", slog.String("error", err.Error()), slog.String("booking_id", bookingID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// getAvailability godoc
// @Summary Get a car's booked calendar days
// @Description Lists the days in [from, to) blocked by paid bookings; checkout days are free
// @Tags cars
// @Produce json
// @Param id path string true "Car ID"
// @Param from query string true "Start date (YYYY-MM-DD, inclusive)"
// @Param to query string true "End date (YYYY-MM-DD, exclusive)"
// @Success 200 {object} dto.AvailabilityResponse
// @Failure 400 {object} map[string]string "Invalid date range"
// @Failure 404 {object} map[string]string "Car not found"
// @Failure 500 {object} map[string]string "Failed to load calendar"
// @Security BearerAuth
// @Router /cars/{id}/calendar [get]
func (h *bookingHandler) getAvailability(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	carID := c.Param("id")

	from, err := utils.ParseDateOnly(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' date, expected YYYY-MM-DD"})
		return
	}
	to, err := utils.ParseDateOnly(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' date, expected YYYY-MM-DD"})
		return
	}

	days, err := h.bookingService.GetAvailability(c.Request.Context(), carID, from, to)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to load availability", slog.String("error", err.Error()), slog.String("car_id", carID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load calendar"})
		}
		return
	}

	booked := make([]string, len(days))
	for i, d := range days {
		booked[i] = utils.FormatDateOnly(d)
	}

	c.JSON(http.StatusOK, dto.AvailabilityResponse{
		CarID:       carID,
		From:        utils.FormatDateOnly(from),
		To:          utils.FormatDateOnly(to),
		BookedDates: booked,
	})
}
