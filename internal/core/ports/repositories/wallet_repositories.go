package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/cartime-app/cartime-backend/internal/core/domain"
)

// WalletReader defines read operations for wallet data
type WalletReader interface {
	// FindWalletByUserID retrieves the wallet owned by the given user.
	FindWalletByUserID(ctx context.Context, userID string) (*domain.Wallet, error)

	// FindWalletByID retrieves a wallet by its primary key.
	FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error)
}

// WalletWriter defines write operations for wallet data
type WalletWriter interface {
	// CreateWalletIfAbsent inserts the wallet unless one already exists for the
	// owner, and returns the surviving row either way. Safe under concurrent
	// calls for the same user (unique constraint on user_id).
	CreateWalletIfAbsent(ctx context.Context, wallet domain.Wallet) (*domain.Wallet, error)
}

// LedgerReader defines read operations for ledger entries
type LedgerReader interface {
	// FindLedgerEntryByID retrieves a single ledger entry.
	FindLedgerEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)

	// FindPendingTopUp returns the user's live pending top-up, skipping entries
	// expired as of now. apperrors.ErrNotFound when there is none.
	FindPendingTopUp(ctx context.Context, userID string, now time.Time) (*domain.LedgerEntry, error)

	// TopUpReferenceExists reports whether a normalized reference is already
	// taken by any top-up entry.
	TopUpReferenceExists(ctx context.Context, referenceNorm string) (bool, error)

	// ListLedgerEntriesByUserID retrieves a newest-first page of entries using
	// token-based pagination. Returns the entries and a token for the next page.
	ListLedgerEntriesByUserID(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)

	// SumApprovedEntries replays the ledger for a wallet: credits minus debits
	// across approved entries. Used to verify the balance cache is derivable.
	SumApprovedEntries(ctx context.Context, walletID string) (decimal.Decimal, error)
}

// LedgerWriter defines write operations for ledger entries outside a caller-managed transaction
type LedgerWriter interface {
	// InsertLedgerEntry persists a new entry. Unique-index collisions (pending
	// top-up already queued, reference taken, booking already debited) surface
	// as apperrors.ErrDuplicate.
	InsertLedgerEntry(ctx context.Context, entry domain.LedgerEntry) error

	// VoidExpiredTopUps rejects the user's pending top-ups whose expiry has
	// passed, releasing the one-pending-per-user slot for a new request. No
	// balance change; no-op when nothing expired.
	VoidExpiredTopUps(ctx context.Context, userID string, now time.Time) error
}

// WalletTransactionSupport defines tx-scoped operations used by the atomic units.
// Every balance mutation goes through ApplyLedgerEntryInTx so the entry insert
// and the balance update are inseparable.
type WalletTransactionSupport interface {
	// FindWalletByUserIDForUpdate selects the user's wallet and locks the row.
	FindWalletByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Wallet, error)

	// FindWalletByIDForUpdate selects a wallet by ID and locks the row.
	FindWalletByIDForUpdate(ctx context.Context, tx pgx.Tx, walletID string) (*domain.Wallet, error)

	// ApplyLedgerEntryInTx inserts an approved entry and moves the wallet
	// balance to entry.BalanceAfter in the same transaction.
	ApplyLedgerEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) error

	// FindLedgerEntryByIDForUpdate selects an entry and locks the row, for
	// top-up decisions racing each other.
	FindLedgerEntryByIDForUpdate(ctx context.Context, tx pgx.Tx, entryID string) (*domain.LedgerEntry, error)

	// UpdateLedgerEntryDecisionInTx flips a pending entry to its decided status
	// and records who decided and when.
	UpdateLedgerEntryDecisionInTx(ctx context.Context, tx pgx.Tx, entryID string, status domain.LedgerEntryStatus, decidedBy string, decidedAt time.Time, balanceBefore, balanceAfter *decimal.Decimal) error

	// UpdateWalletBalanceInTx moves the wallet balance. Only valid alongside a
	// ledger entry write in the same transaction.
	UpdateWalletBalanceInTx(ctx context.Context, tx pgx.Tx, walletID string, balance decimal.Decimal, updatedBy string, updatedAt time.Time) error
}

// WalletRepositoryFacade combines all wallet-related repository interfaces
type WalletRepositoryFacade interface {
	WalletReader
	WalletWriter
	LedgerReader
	LedgerWriter
	WalletTransactionSupport
}

// WalletRepositoryWithTx extends WalletRepositoryFacade with transaction capabilities
type WalletRepositoryWithTx interface {
	WalletRepositoryFacade
	TransactionManager
}
