package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cartime-app/cartime-backend/internal/apperrors"
	"github.com/cartime-app/cartime-backend/internal/core/domain"
	portsrepo "github.com/cartime-app/cartime-backend/internal/core/ports/repositories"
	portssvc "github.com/cartime-app/cartime-backend/internal/core/ports/services"
	"github.com/cartime-app/cartime-backend/internal/middleware"
	"github.com/cartime-app/cartime-backend/internal/platform/config"
	"github.com/cartime-app/cartime-backend/internal/utils"
)

// walletService implements the ledger store: lazy wallet creation, manual
// top-ups with human references, admin decisions and the transaction history.
type walletService struct {
	walletRepo portsrepo.WalletRepositoryWithTx
	publisher  portssvc.EventPublisher

	defaultCurrencyCode string
	topUpMin            decimal.Decimal
	topUpMax            decimal.Decimal
	topUpExpiry         time.Duration
	referenceAttempts   int
}

// NewWalletService creates a new WalletService. Policy (top-up bounds, expiry,
// reference retry budget) comes from config, never from ambient state.
func NewWalletService(walletRepo portsrepo.WalletRepositoryWithTx, publisher portssvc.EventPublisher, cfg *config.Config) portssvc.WalletSvcFacade {
	return &walletService{
		walletRepo:          walletRepo,
		publisher:           publisher,
		defaultCurrencyCode: cfg.DefaultCurrencyCode,
		topUpMin:            cfg.TopUpMinAmount,
		topUpMax:            cfg.TopUpMaxAmount,
		topUpExpiry:         cfg.TopUpExpiry,
		referenceAttempts:   cfg.TopUpReferenceAttempts,
	}
}

// Ensure walletService implements the portssvc.WalletSvcFacade interface
var _ portssvc.WalletSvcFacade = (*walletService)(nil)

// GetOrCreateWallet returns the user's wallet, creating it lazily on first
// financial interaction. Never creates duplicates for the same owner.
func (s *walletService) GetOrCreateWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	wallet := domain.Wallet{
		WalletID:     uuid.NewString(),
		UserID:       userID,
		CurrencyCode: s.defaultCurrencyCode,
		Balance:      decimal.Zero,
		Status:       domain.WalletActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	return s.walletRepo.CreateWalletIfAbsent(ctx, wallet)
}

// RequestTopUp queues a manual top-up for admin review and hands back the
// entry carrying the bank-transfer reference.
func (s *walletService) RequestTopUp(ctx context.Context, userID string, amount decimal.Decimal) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if amount.LessThan(s.topUpMin) || amount.GreaterThan(s.topUpMax) {
		return nil, fmt.Errorf("%w: amount must be between %s and %s",
			apperrors.ErrAmountOutOfRange, s.topUpMin.StringFixed(2), s.topUpMax.StringFixed(2))
	}

	wallet, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !wallet.IsActive() {
		return nil, apperrors.ErrWalletFrozen
	}

	now := time.Now().UTC()

	if existing, err := s.walletRepo.FindPendingTopUp(ctx, userID, now); err == nil {
		return nil, fmt.Errorf("%w: reference %s for %s",
			apperrors.ErrDuplicatePendingTopUp, existing.Reference, existing.Amount.StringFixed(2))
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	// An expired pending entry no longer counts as queued but would still hold
	// the one-pending-per-user index; void it so the insert below can land.
	if err := s.walletRepo.VoidExpiredTopUps(ctx, userID, now); err != nil {
		return nil, err
	}

	reference, referenceNorm, err := s.generateUniqueReference(ctx)
	if err != nil {
		return nil, err
	}

	expiresAt := now.Add(s.topUpExpiry)
	entry := domain.LedgerEntry{
		EntryID:       uuid.NewString(),
		WalletID:      wallet.WalletID,
		UserID:        userID,
		Kind:          domain.EntryTopUp,
		Direction:     domain.DirectionCredit,
		Amount:        amount,
		CurrencyCode:  wallet.CurrencyCode,
		Status:        domain.EntryPending,
		Reference:     reference,
		ReferenceNorm: referenceNorm,
		ExpiresAt:     &expiresAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.walletRepo.InsertLedgerEntry(ctx, entry); err != nil {
		// A racing request can slip between the pending check and the insert;
		// the partial unique index turns that into a duplicate.
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.ErrDuplicatePendingTopUp
		}
		return nil, err
	}

	logger.Info("Top-up requested",
		slog.String("entry_id", entry.EntryID),
		slog.String("reference", reference),
		slog.String("amount", amount.StringFixed(2)))
	return &entry, nil
}

// generateUniqueReference regenerates on collision with a bounded retry budget.
func (s *walletService) generateUniqueReference(ctx context.Context) (reference, referenceNorm string, err error) {
	for i := 0; i < s.referenceAttempts; i++ {
		reference, err = utils.NewTopUpReference()
		if err != nil {
			return "", "", apperrors.NewAppError(500, "failed to generate top-up reference", err)
		}
		referenceNorm = utils.NormalizeReference(reference)

		exists, err := s.walletRepo.TopUpReferenceExists(ctx, referenceNorm)
		if err != nil {
			return "", "", err
		}
		if !exists {
			return reference, referenceNorm, nil
		}
	}
	return "", "", apperrors.ErrReferenceExhausted
}

// ApproveTopUp credits the wallet and flips the pending entry to approved as
// one atomic unit: the decision update, the balance snapshots and the balance
// change commit together or not at all.
func (s *walletService) ApproveTopUp(ctx context.Context, adminUserID, entryID string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.walletRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.walletRepo.Rollback(ctx, tx)

	entry, err := s.walletRepo.FindLedgerEntryByIDForUpdate(ctx, tx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Kind != domain.EntryTopUp || entry.Status != domain.EntryPending {
		return nil, fmt.Errorf("%w: entry %s is not a pending top-up", apperrors.ErrValidation, entryID)
	}

	now := time.Now().UTC()
	if entry.IsExpired(now) {
		return nil, apperrors.ErrTopUpExpired
	}

	wallet, err := s.walletRepo.FindWalletByIDForUpdate(ctx, tx, entry.WalletID)
	if err != nil {
		return nil, err
	}
	if !wallet.IsActive() {
		return nil, apperrors.ErrWalletFrozen
	}

	before := wallet.Balance
	after := before.Add(entry.Amount)

	if err := s.walletRepo.UpdateLedgerEntryDecisionInTx(ctx, tx, entryID, domain.EntryApproved, adminUserID, now, &before, &after); err != nil {
		return nil, err
	}
	if err := s.walletRepo.UpdateWalletBalanceInTx(ctx, tx, wallet.WalletID, after, adminUserID, now); err != nil {
		return nil, err
	}

	if err := s.walletRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	entry.Status = domain.EntryApproved
	entry.DecidedBy = &adminUserID
	entry.DecidedAt = &now
	entry.BalanceBefore = &before
	entry.BalanceAfter = &after

	logger.Info("Top-up approved",
		slog.String("entry_id", entryID),
		slog.String("wallet_id", wallet.WalletID),
		slog.String("balance_after", after.StringFixed(2)))

	s.publisher.Publish(ctx, domain.Event{
		Name:       domain.EventTopUpApproved,
		OccurredAt: now,
		Payload: map[string]any{
			"entryID":  entry.EntryID,
			"walletID": wallet.WalletID,
			"userID":   entry.UserID,
			"amount":   entry.Amount.StringFixed(2),
		},
	})

	return entry, nil
}

// RejectTopUp flips a pending entry to rejected. No balance change, no snapshots.
func (s *walletService) RejectTopUp(ctx context.Context, adminUserID, entryID string) (*domain.LedgerEntry, error) {
	tx, err := s.walletRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.walletRepo.Rollback(ctx, tx)

	entry, err := s.walletRepo.FindLedgerEntryByIDForUpdate(ctx, tx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Kind != domain.EntryTopUp || entry.Status != domain.EntryPending {
		return nil, fmt.Errorf("%w: entry %s is not a pending top-up", apperrors.ErrValidation, entryID)
	}

	now := time.Now().UTC()
	if err := s.walletRepo.UpdateLedgerEntryDecisionInTx(ctx, tx, entryID, domain.EntryRejected, adminUserID, now, nil, nil); err != nil {
		return nil, err
	}

	if err := s.walletRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	entry.Status = domain.EntryRejected
	entry.DecidedBy = &adminUserID
	entry.DecidedAt = &now
	return entry, nil
}

// ListTransactions retrieves a newest-first page of the user's ledger entries.
func (s *walletService) ListTransactions(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	return s.walletRepo.ListLedgerEntriesByUserID(ctx, userID, limit, nextToken)
}

// VerifyBalance replays the approved entries for the user's wallet and returns
// both the cached balance and the derived sum. They must always be equal; a
// mismatch means the ledger invariant was broken and needs investigation.
func (s *walletService) VerifyBalance(ctx context.Context, userID string) (cached, derived decimal.Decimal, err error) {
	wallet, err := s.walletRepo.FindWalletByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	derived, err = s.walletRepo.SumApprovedEntries(ctx, wallet.WalletID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return wallet.Balance, derived, nil
}
