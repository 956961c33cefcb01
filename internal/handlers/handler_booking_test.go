package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/cartime-app/cartime-backend/internal/apperrors"
	"github.com/cartime-app/cartime-backend/internal/core/domain"
	portssvc "github.com/cartime-app/cartime-backend/internal/core/ports/services"
	"github.com/cartime-app/cartime-backend/internal/dto"
	"github.com/cartime-app/cartime-backend/internal/handlers"
	"github.com/cartime-app/cartime-backend/internal/middleware"
	"github.com/cartime-app/cartime-backend/internal/utils"
)

// --- Mock BookingService ---
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) BookAndPay(ctx context.Context, renterUserID string, req dto.CreateBookingRequest) (*domain.Booking, error) {
	args := m.Called(ctx, renterUserID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingService) GetAvailability(ctx context.Context, carID string, from, to time.Time) ([]time.Time, error) {
	args := m.Called(ctx, carID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}
func (m *MockBookingService) ListMyBookings(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Booking, *string, error) {
	args := m.Called(ctx, userID, limit, nextToken)
	var bookings []domain.Booking
	if args.Get(0) != nil {
		bookings = args.Get(0).([]domain.Booking)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return bookings, token, args.Error(2)
}
func (m *MockBookingService) CancelBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.BookingSvcFacade = (*MockBookingService)(nil)

// --- Test Suite ---
type BookingHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockBookingService *MockBookingService
	jwtSecret          string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *BookingHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "cartime-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	handlers.RegisterCustomValidators()

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockBookingService = new(MockBookingService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterBookingRoutes(v1, suite.mockBookingService)
}

// futureDate returns a date-only string offset whole days from today (UTC).
func futureDate(days int) string {
	return utils.FormatDateOnly(time.Now().UTC().AddDate(0, 0, days))
}

func (suite *BookingHandlerTestSuite) postBooking(token string, req dto.CreateBookingRequest) *httptest.ResponseRecorder {
	body, err := json.Marshal(req)
	suite.Require().NoError(err)

	httpReq, _ := http.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httpReq)
	return w
}

// --- Test Cases ---

func (suite *BookingHandlerTestSuite) TestBookAndPay_Success() {
	userID := uuid.NewString()
	carID := uuid.NewString()
	req := dto.CreateBookingRequest{
		CarID:        carID,
		StartDate:    futureDate(10),
		EndDate:      futureDate(14),
		ContactPhone: "+60123456789",
	}

	paidAt := time.Now().UTC()
	entryID := uuid.NewString()
	expected := &domain.Booking{
		BookingID:      uuid.NewString(),
		UserID:         userID,
		CarID:          carID,
		CarTitle:       "Perodua Myvi 1.5",
		CarPlate:       "WXY 1234",
		CarNightlyRate: decimal.NewFromInt(30),
		Nights:         4,
		TotalPrice:     decimal.NewFromInt(120),
		CurrencyCode:   "MYR",
		PickupCity:     "Kuala Lumpur",
		ContactPhone:   req.ContactPhone,
		Status:         domain.BookingScheduled,
		PaymentStatus:  domain.PaymentPaid,
		PaymentMethod:  domain.MethodWallet,
		AmountPaid:     decimal.NewFromInt(120),
		PaidAt:         &paidAt,
		LedgerEntryID:  &entryID,
	}

	suite.mockBookingService.On("BookAndPay",
		mock.AnythingOfType("*context.valueCtx"),
		userID,
		req,
	).Return(expected, nil).Once()

	w := suite.postBooking(suite.generateTestToken(userID), req)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.BookingResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.BookingID, resp.BookingID)
	suite.Equal("SCHEDULED", resp.Status)
	suite.Equal("PAID", resp.PaymentStatus)
	suite.True(resp.TotalPrice.Equal(decimal.NewFromInt(120)))

	suite.mockBookingService.AssertExpectations(suite.T())
}

func (suite *BookingHandlerTestSuite) TestBookAndPay_InsufficientFunds() {
	userID := uuid.NewString()
	req := dto.CreateBookingRequest{
		CarID:        uuid.NewString(),
		StartDate:    futureDate(10),
		EndDate:      futureDate(14),
		ContactPhone: "+60123456789",
	}

	suite.mockBookingService.On("BookAndPay", mock.Anything, userID, req).
		Return(nil, &apperrors.InsufficientFundsError{
			Needed:  decimal.NewFromInt(120),
			Balance: decimal.NewFromInt(75),
		}).Once()

	w := suite.postBooking(suite.generateTestToken(userID), req)

	suite.Equal(http.StatusPaymentRequired, w.Code)

	var body map[string]interface{}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("INSUFFICIENT_FUNDS", body["code"])
	suite.Equal("120", fmt.Sprint(body["needed"]))
	suite.Equal("75", fmt.Sprint(body["balance"]))

	suite.mockBookingService.AssertExpectations(suite.T())
}

func (suite *BookingHandlerTestSuite) TestBookAndPay_DatesUnavailable() {
	userID := uuid.NewString()
	req := dto.CreateBookingRequest{
		CarID:        uuid.NewString(),
		StartDate:    futureDate(10),
		EndDate:      futureDate(14),
		ContactPhone: "+60123456789",
	}

	conflictStart, _ := utils.ParseDateOnly(futureDate(12))
	conflictEnd, _ := utils.ParseDateOnly(futureDate(16))
	suite.mockBookingService.On("BookAndPay", mock.Anything, userID, req).
		Return(nil, &apperrors.DatesUnavailableError{
			ConflictStart: conflictStart,
			ConflictEnd:   conflictEnd,
		}).Once()

	w := suite.postBooking(suite.generateTestToken(userID), req)

	suite.Equal(http.StatusConflict, w.Code)

	var body map[string]interface{}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("DATES_UNAVAILABLE", body["code"])
	suite.Equal(futureDate(12), body["conflictStart"])
	suite.Equal(futureDate(16), body["conflictEnd"])
}

func (suite *BookingHandlerTestSuite) TestBookAndPay_CarNotBookable() {
	userID := uuid.NewString()
	req := dto.CreateBookingRequest{
		CarID:        uuid.NewString(),
		StartDate:    futureDate(10),
		EndDate:      futureDate(14),
		ContactPhone: "+60123456789",
	}

	suite.mockBookingService.On("BookAndPay", mock.Anything, userID, req).
		Return(nil, apperrors.ErrCarNotBookable).Once()

	w := suite.postBooking(suite.generateTestToken(userID), req)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *BookingHandlerTestSuite) TestBookAndPay_TransientConflict() {
	userID := uuid.NewString()
	req := dto.CreateBookingRequest{
		CarID:        uuid.NewString(),
		StartDate:    futureDate(10),
		EndDate:      futureDate(14),
		ContactPhone: "+60123456789",
	}

	suite.mockBookingService.On("BookAndPay", mock.Anything, userID, req).
		Return(nil, apperrors.ErrTransient).Once()

	w := suite.postBooking(suite.generateTestToken(userID), req)

	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

func (suite *BookingHandlerTestSuite) TestBookAndPay_InvalidDateFormat() {
	userID := uuid.NewString()
	req := dto.CreateBookingRequest{
		CarID:        uuid.NewString(),
		StartDate:    "10/01/2026",
		EndDate:      futureDate(14),
		ContactPhone: "+60123456789",
	}

	w := suite.postBooking(suite.generateTestToken(userID), req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockBookingService.AssertNotCalled(suite.T(), "BookAndPay")
}

func (suite *BookingHandlerTestSuite) TestBookAndPay_NoToken() {
	req := dto.CreateBookingRequest{
		CarID:        uuid.NewString(),
		StartDate:    futureDate(10),
		EndDate:      futureDate(14),
		ContactPhone: "+60123456789",
	}

	w := suite.postBooking("", req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockBookingService.AssertNotCalled(suite.T(), "BookAndPay")
}

func (suite *BookingHandlerTestSuite) TestGetAvailability_Success() {
	userID := uuid.NewString()
	carID := uuid.NewString()
	from, _ := utils.ParseDateOnly(futureDate(0))
	to, _ := utils.ParseDateOnly(futureDate(7))
	blocked := []time.Time{from.AddDate(0, 0, 2), from.AddDate(0, 0, 3)}

	suite.mockBookingService.On("GetAvailability",
		mock.AnythingOfType("*context.valueCtx"), carID, from, to,
	).Return(blocked, nil).Once()

	url := fmt.Sprintf("/api/v1/cars/%s/calendar?from=%s&to=%s", carID, futureDate(0), futureDate(7))
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.AvailabilityResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(carID, resp.CarID)
	suite.Equal([]string{futureDate(2), futureDate(3)}, resp.BookedDates)
}

func (suite *BookingHandlerTestSuite) TestGetAvailability_BadDates() {
	userID := uuid.NewString()
	url := fmt.Sprintf("/api/v1/cars/%s/calendar?from=not-a-date&to=%s", uuid.NewString(), futureDate(7))
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockBookingService.AssertNotCalled(suite.T(), "GetAvailability")
}

func (suite *BookingHandlerTestSuite) TestListMyBookings_Success() {
	userID := uuid.NewString()
	bookings := []domain.Booking{
		{BookingID: uuid.NewString(), UserID: userID, Status: domain.BookingScheduled},
		{BookingID: uuid.NewString(), UserID: userID, Status: domain.BookingCancelled},
	}

	suite.mockBookingService.On("ListMyBookings",
		mock.Anything, userID, 20, (*string)(nil),
	).Return(bookings, nil, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/bookings/my", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.ListBookingsResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Bookings, 2)
	suite.Nil(resp.NextToken)
}

func (suite *BookingHandlerTestSuite) TestCancelBooking_Forbidden() {
	userID := uuid.NewString()
	bookingID := uuid.NewString()

	suite.mockBookingService.On("CancelBooking", mock.Anything, userID, bookingID).
		Return(nil, apperrors.ErrForbidden).Once()

	url := fmt.Sprintf("/api/v1/bookings/%s/cancel", bookingID)
	req, _ := http.NewRequest(http.MethodPost, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *BookingHandlerTestSuite) TestCancelBooking_Success() {
	userID := uuid.NewString()
	bookingID := uuid.NewString()
	cancelled := &domain.Booking{
		BookingID:     bookingID,
		UserID:        userID,
		Status:        domain.BookingCancelled,
		PaymentStatus: domain.PaymentPaid,
		PaymentMethod: domain.MethodWallet,
		AmountPaid:    decimal.NewFromInt(120),
	}

	suite.mockBookingService.On("CancelBooking", mock.Anything, userID, bookingID).
		Return(cancelled, nil).Once()

	url := fmt.Sprintf("/api/v1/bookings/%s/cancel", bookingID)
	req, _ := http.NewRequest(http.MethodPost, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.BookingResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("CANCELLED", resp.Status)
}

// --- Run Test Suite ---
func TestBookingHandler(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}
