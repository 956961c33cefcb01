package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry mirrors the ledger_entries table. Partial unique indexes enforce
// one approved booking debit per booking, one pending top-up per user and
// reference uniqueness per kind; see migrations/000001_init.up.sql.
type LedgerEntry struct {
	EntryID       string           `db:"entry_id"`
	WalletID      string           `db:"wallet_id"`
	UserID        string           `db:"user_id"`
	Kind          string           `db:"kind"`
	Direction     string           `db:"direction"`
	Amount        decimal.Decimal  `db:"amount"` // CHECK (amount > 0)
	CurrencyCode  string           `db:"currency_code"`
	Status        string           `db:"status"`
	BookingID     *string          `db:"booking_id"`
	Reference     string           `db:"reference"`
	ReferenceNorm string           `db:"reference_norm"`
	BalanceBefore *decimal.Decimal `db:"balance_before"`
	BalanceAfter  *decimal.Decimal `db:"balance_after"`
	DecidedBy     *string          `db:"decided_by"`
	DecidedAt     *time.Time       `db:"decided_at"`
	ExpiresAt     *time.Time       `db:"expires_at"`
	AuditFields
}
