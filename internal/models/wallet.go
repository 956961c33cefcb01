package models

import "github.com/shopspring/decimal"

// Wallet mirrors the wallets table.
type Wallet struct {
	WalletID     string          `db:"wallet_id"`
	UserID       string          `db:"user_id"` // Unique
	CurrencyCode string          `db:"currency_code"`
	Balance      decimal.Decimal `db:"balance"` // CHECK (balance >= 0)
	Status       string          `db:"status"`
	AuditFields
}
