package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cartime-app/cartime-backend/internal/core/domain"
)

// WalletSvcFacade exposes the ledger store: wallet lifecycle, manual top-ups
// and the transaction history. All balance mutations happen through these
// operations (or through the booking coordinator's atomic unit), never by
// direct field assignment.
type WalletSvcFacade interface {
	// GetOrCreateWallet returns the user's wallet, creating it lazily on first
	// financial interaction. Idempotent.
	GetOrCreateWallet(ctx context.Context, userID string) (*domain.Wallet, error)

	// RequestTopUp queues a manual top-up for admin review. Fails with
	// ErrAmountOutOfRange, ErrDuplicatePendingTopUp or ErrReferenceExhausted.
	RequestTopUp(ctx context.Context, userID string, amount decimal.Decimal) (*domain.LedgerEntry, error)

	// ApproveTopUp credits the wallet and flips the pending entry to approved
	// as one atomic unit. Expired pending entries cannot be approved.
	ApproveTopUp(ctx context.Context, adminUserID, entryID string) (*domain.LedgerEntry, error)

	// RejectTopUp flips a pending entry to rejected. No balance change.
	RejectTopUp(ctx context.Context, adminUserID, entryID string) (*domain.LedgerEntry, error)

	// ListTransactions retrieves a newest-first page of the user's ledger entries.
	ListTransactions(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)

	// VerifyBalance replays the approved entries for the user's wallet and
	// compares against the cached balance. Reconciliation aid.
	VerifyBalance(ctx context.Context, userID string) (cached, derived decimal.Decimal, err error)
}
