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
)

// --- Mock WalletService ---
type MockWalletFacade struct {
	mock.Mock
}

func (m *MockWalletFacade) GetOrCreateWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}
func (m *MockWalletFacade) RequestTopUp(ctx context.Context, userID string, amount decimal.Decimal) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}
func (m *MockWalletFacade) ApproveTopUp(ctx context.Context, adminUserID, entryID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, adminUserID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}
func (m *MockWalletFacade) RejectTopUp(ctx context.Context, adminUserID, entryID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, adminUserID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}
func (m *MockWalletFacade) ListTransactions(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	args := m.Called(ctx, userID, limit, nextToken)
	var entries []domain.LedgerEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.LedgerEntry)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return entries, token, args.Error(2)
}
func (m *MockWalletFacade) VerifyBalance(ctx context.Context, userID string) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

// Ensure mock implements the interface
var _ portssvc.WalletSvcFacade = (*MockWalletFacade)(nil)

// --- Test Suite ---
type WalletHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockWalletService *MockWalletFacade
	jwtSecret         string
}

// generateToken creates a dummy JWT, optionally carrying the admin role.
func (suite *WalletHandlerTestSuite) generateToken(userID, role string) string {
	claims := jwt.MapClaims{
		"iss": "cartime-test",
		"sub": userID,
		"exp": jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		"iat": jwt.NewNumericDate(time.Now()),
	}
	if role != "" {
		claims["role"] = role
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *WalletHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockWalletService = new(MockWalletFacade)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterWalletRoutes(v1, suite.mockWalletService)

	admin := v1.Group("/admin", middleware.RequireAdmin())
	handlers.RegisterWalletAdminRoutes(admin, suite.mockWalletService)
}

// --- Test Cases ---

func (suite *WalletHandlerTestSuite) TestGetWallet_Success() {
	userID := uuid.NewString()
	wallet := &domain.Wallet{
		WalletID:     uuid.NewString(),
		UserID:       userID,
		CurrencyCode: "MYR",
		Balance:      decimal.NewFromInt(150),
		Status:       domain.WalletActive,
	}

	suite.mockWalletService.On("GetOrCreateWallet",
		mock.AnythingOfType("*context.valueCtx"), userID,
	).Return(wallet, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/wallet", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateToken(userID, ""))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.WalletResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(wallet.WalletID, resp.WalletID)
	suite.Equal("ACTIVE", resp.Status)
	suite.True(resp.Balance.Equal(decimal.NewFromInt(150)))

	suite.mockWalletService.AssertExpectations(suite.T())
}

func (suite *WalletHandlerTestSuite) TestRequestTopUp_Success() {
	userID := uuid.NewString()
	expiresAt := time.Now().UTC().Add(48 * time.Hour)
	entry := &domain.LedgerEntry{
		EntryID:      uuid.NewString(),
		WalletID:     uuid.NewString(),
		UserID:       userID,
		Kind:         domain.EntryTopUp,
		Direction:    domain.DirectionCredit,
		Amount:       decimal.NewFromInt(100),
		CurrencyCode: "MYR",
		Status:       domain.EntryPending,
		Reference:    "CT-AB2C-3DEF",
		ExpiresAt:    &expiresAt,
	}

	suite.mockWalletService.On("RequestTopUp",
		mock.Anything, userID,
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(100)) }),
	).Return(entry, nil).Once()

	body, _ := json.Marshal(dto.TopUpRequest{Amount: decimal.NewFromInt(100)})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/wallet/topup-request", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateToken(userID, ""))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.TopUpResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(entry.Reference, resp.Reference)
	suite.Equal("PENDING", resp.Entry.Status)
	suite.NotNil(resp.ExpiresAt)
}

func (suite *WalletHandlerTestSuite) TestRequestTopUp_AmountOutOfRange() {
	userID := uuid.NewString()

	suite.mockWalletService.On("RequestTopUp", mock.Anything, userID, mock.Anything).
		Return(nil, apperrors.ErrAmountOutOfRange).Once()

	body, _ := json.Marshal(dto.TopUpRequest{Amount: decimal.NewFromInt(5)})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/wallet/topup-request", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateToken(userID, ""))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *WalletHandlerTestSuite) TestRequestTopUp_DuplicatePending() {
	userID := uuid.NewString()

	suite.mockWalletService.On("RequestTopUp", mock.Anything, userID, mock.Anything).
		Return(nil, apperrors.ErrDuplicatePendingTopUp).Once()

	body, _ := json.Marshal(dto.TopUpRequest{Amount: decimal.NewFromInt(100)})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/wallet/topup-request", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateToken(userID, ""))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *WalletHandlerTestSuite) TestRequestTopUp_FrozenWallet() {
	userID := uuid.NewString()

	suite.mockWalletService.On("RequestTopUp", mock.Anything, userID, mock.Anything).
		Return(nil, apperrors.ErrWalletFrozen).Once()

	body, _ := json.Marshal(dto.TopUpRequest{Amount: decimal.NewFromInt(100)})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/wallet/topup-request", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateToken(userID, ""))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusLocked, w.Code)
}

func (suite *WalletHandlerTestSuite) TestListTransactions_Success() {
	userID := uuid.NewString()
	entries := []domain.LedgerEntry{
		{EntryID: uuid.NewString(), Kind: domain.EntryTopUp, Status: domain.EntryApproved},
		{EntryID: uuid.NewString(), Kind: domain.EntryBookingDebit, Status: domain.EntryApproved},
	}
	next := "eyJ0b2tlbiI6Im5leHQifQ"

	suite.mockWalletService.On("ListTransactions",
		mock.Anything, userID, 10, (*string)(nil),
	).Return(entries, &next, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/wallet/transactions?limit=10", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateToken(userID, ""))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.ListTransactionsResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Transactions, 2)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(next, *resp.NextToken)
}

func (suite *WalletHandlerTestSuite) TestApproveTopUp_RequiresAdmin() {
	userID := uuid.NewString()
	entryID := uuid.NewString()

	url := fmt.Sprintf("/api/v1/admin/wallet/topups/%s/approve", entryID)
	req, _ := http.NewRequest(http.MethodPost, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateToken(userID, ""))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockWalletService.AssertNotCalled(suite.T(), "ApproveTopUp")
}

func (suite *WalletHandlerTestSuite) TestApproveTopUp_Success() {
	adminID := uuid.NewString()
	entryID := uuid.NewString()
	before := decimal.NewFromInt(50)
	after := decimal.NewFromInt(150)
	decidedAt := time.Now().UTC()
	entry := &domain.LedgerEntry{
		EntryID:       entryID,
		Kind:          domain.EntryTopUp,
		Direction:     domain.DirectionCredit,
		Amount:        decimal.NewFromInt(100),
		CurrencyCode:  "MYR",
		Status:        domain.EntryApproved,
		BalanceBefore: &before,
		BalanceAfter:  &after,
		DecidedBy:     &adminID,
		DecidedAt:     &decidedAt,
	}

	suite.mockWalletService.On("ApproveTopUp", mock.Anything, adminID, entryID).
		Return(entry, nil).Once()

	url := fmt.Sprintf("/api/v1/admin/wallet/topups/%s/approve", entryID)
	req, _ := http.NewRequest(http.MethodPost, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateToken(adminID, "admin"))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.LedgerEntryResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("APPROVED", resp.Status)
	suite.Require().NotNil(resp.BalanceAfter)
	suite.True(resp.BalanceAfter.Equal(after))

	suite.mockWalletService.AssertExpectations(suite.T())
}

func (suite *WalletHandlerTestSuite) TestApproveTopUp_Expired() {
	adminID := uuid.NewString()
	entryID := uuid.NewString()

	suite.mockWalletService.On("ApproveTopUp", mock.Anything, adminID, entryID).
		Return(nil, apperrors.ErrTopUpExpired).Once()

	url := fmt.Sprintf("/api/v1/admin/wallet/topups/%s/approve", entryID)
	req, _ := http.NewRequest(http.MethodPost, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateToken(adminID, "admin"))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusGone, w.Code)
}

func (suite *WalletHandlerTestSuite) TestRejectTopUp_Success() {
	adminID := uuid.NewString()
	entryID := uuid.NewString()
	entry := &domain.LedgerEntry{
		EntryID:   entryID,
		Kind:      domain.EntryTopUp,
		Direction: domain.DirectionCredit,
		Amount:    decimal.NewFromInt(100),
		Status:    domain.EntryRejected,
	}

	suite.mockWalletService.On("RejectTopUp", mock.Anything, adminID, entryID).
		Return(entry, nil).Once()

	url := fmt.Sprintf("/api/v1/admin/wallet/topups/%s/reject", entryID)
	req, _ := http.NewRequest(http.MethodPost, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateToken(adminID, "admin"))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.LedgerEntryResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("REJECTED", resp.Status)
	suite.Nil(resp.BalanceAfter)
}

func (suite *WalletHandlerTestSuite) TestGetWallet_NoToken() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/wallet", nil)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockWalletService.AssertNotCalled(suite.T(), "GetOrCreateWallet")
}

// --- Run Test Suite ---
func TestWalletHandler(t *testing.T) {
	suite.Run(t, new(WalletHandlerTestSuite))
}
