package domain

import (
	"github.com/shopspring/decimal"
)

// WalletStatus defines the operational state of a wallet.
type WalletStatus string

const (
	WalletActive WalletStatus = "ACTIVE"
	WalletFrozen WalletStatus = "FROZEN"
)

// Wallet is a user's prepaid balance. One wallet per user, created lazily on
// first financial interaction and never deleted.
//
// Balance is a materialized view of the ledger: it must always equal the sum of
// approved entries for the wallet (credits positive, debits negative). It is
// only ever mutated together with a ledger entry inside one storage transaction.
type Wallet struct {
	WalletID     string          `json:"walletID"` // Primary key (UUID)
	UserID       string          `json:"userID"`   // Owning user, unique
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"` // Non-negative
	Status       WalletStatus    `json:"status"`
	AuditFields
}

// IsActive reports whether the wallet accepts debits and credits.
func (w *Wallet) IsActive() bool {
	return w.Status == WalletActive
}
