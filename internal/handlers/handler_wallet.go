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
)

// walletHandler handles HTTP requests related to wallets and top-ups.
type walletHandler struct {
	walletService portssvc.WalletSvcFacade
}

// newWalletHandler creates a new walletHandler.
func newWalletHandler(ws portssvc.WalletSvcFacade) *walletHandler {
	return &walletHandler{
		walletService: ws,
	}
}

// RegisterWalletRoutes registers the renter-facing wallet routes.
func RegisterWalletRoutes(rg *gin.RouterGroup, walletService portssvc.WalletSvcFacade) {
	h := newWalletHandler(walletService)

	wallet := rg.Group("/wallet")
	{
		wallet.GET("", h.getWallet)
		wallet.GET("/transactions", h.listTransactions)
		wallet.POST("/topup-request", h.requestTopUp)
	}
}

// RegisterWalletAdminRoutes registers the admin decision routes.
func RegisterWalletAdminRoutes(rg *gin.RouterGroup, walletService portssvc.WalletSvcFacade) {
	h := newWalletHandler(walletService)

	topups := rg.Group("/wallet/topups")
	{
		topups.POST("/:id/approve", h.approveTopUp)
		topups.POST("/:id/reject", h.rejectTopUp)
	}
}

// getWallet godoc
// @Summary Get the logged-in user's wallet
// @Description Returns the wallet, creating it on first use
// @Tags wallet
// @Produce json
// @Success 200 {object} dto.WalletResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to retrieve wallet"
// @Security BearerAuth
// @Router /wallet [get]
func (h *walletHandler) getWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	wallet, err := h.walletService.GetOrCreateWallet(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to get wallet", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve wallet"})
		return
	}

	c.JSON(http.StatusOK, dto.ToWalletResponse(wallet))
}

// listTransactions godoc
// @Summary List the wallet transaction history
// @Description Retrieves a newest-first page of the logged-in user's ledger entries
// @Tags wallet
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Security BearerAuth
// @Router /wallet/transactions [get]
func (h *walletHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	entries, nextToken, err := h.walletService.ListTransactions(c.Request.Context(), userID, params.Limit, params.NextToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}

	c.JSON(http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.ToLedgerEntryResponseSlice(entries),
		NextToken:    nextToken,
	})
}

// requestTopUp godoc
// @Summary Request a manual top-up
// @Description Queues a top-up for admin review and returns the bank-transfer reference
// @Tags wallet
// @Accept json
// @Produce json
// @Param topup body dto.TopUpRequest true "Top-up amount"
// @Success 201 {object} dto.TopUpResponse
// @Failure 400 {object} map[string]string "Amount out of range"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "A pending top-up already exists"
// @Failure 423 {object} map[string]string "Wallet frozen"
// @Failure 500 {object} map[string]string "Failed to request top-up"
// @Security BearerAuth
// @Router /wallet/topup-request [post]
func (h *walletHandler) requestTopUp(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RequestTopUp", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	entry, err := h.walletService.RequestTopUp(c.Request.Context(), userID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAmountOutOfRange), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicatePendingTopUp):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrWalletFrozen):
			c.JSON(http.StatusLocked, gin.H{"error": "Wallet is frozen"})
		case errors.Is(err, apperrors.ErrReferenceExhausted):
			logger.Error("Reference generation exhausted", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not allocate a top-up reference, please retry"})
		default:
			logger.Error("Failed to request top-up", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request top-up"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.TopUpResponse{
		Entry:     dto.ToLedgerEntryResponse(entry),
		Reference: entry.Reference,
		ExpiresAt: entry.ExpiresAt,
	})
}

// approveTopUp godoc
// @Summary Approve a pending top-up
// @Description Credits the wallet and marks the entry approved atomically
// @Tags admin
// @Produce json
// @Param id path string true "Ledger entry ID"
// @Success 200 {object} dto.LedgerEntryResponse
// @Failure 400 {object} map[string]string "Entry is not a pending top-up"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Admin role required"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 410 {object} map[string]string "Top-up expired"
// @Failure 500 {object} map[string]string "Failed to approve top-up"
// @Security BearerAuth
// @Router /admin/wallet/topups/{id}/approve [post]
func (h *walletHandler) approveTopUp(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	adminUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Admin user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.walletService.ApproveTopUp(c.Request.Context(), adminUserID, entryID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Top-up entry not found"})
		case errors.Is(err, apperrors.ErrTopUpExpired):
			c.JSON(http.StatusGone, gin.H{"error": "Top-up request has expired"})
		case errors.Is(err, apperrors.ErrWalletFrozen):
			c.JSON(http.StatusLocked, gin.H{"error": "Wallet is frozen"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to approve top-up", slog.String("error", err.Error()), slog.String("entry_id", entryID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve top-up"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToLedgerEntryResponse(entry))
}

// rejectTopUp godoc
// @Summary Reject a pending top-up
// @Description Marks the entry rejected; the balance is untouched
// @Tags admin
// @Produce json
// @Param id path string true "Ledger entry ID"
// @Success 200 {object} dto.LedgerEntryResponse
// @Failure 400 {object} map[string]string "Entry is not a pending top-up"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Admin role required"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to reject top-up"
// @Security BearerAuth
// @Router /admin/wallet/topups/{id}/reject [post]
func (h *walletHandler) rejectTopUp(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	adminUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Admin user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.walletService.RejectTopUp(c.Request.Context(), adminUserID, entryID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Top-up entry not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to reject top-up", slog.String("error", err.Error()), slog.String("entry_id", entryID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject top-up"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToLedgerEntryResponse(entry))
}
