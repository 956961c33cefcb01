package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cartime-app/cartime-backend/internal/core/domain"
)

// TopUpRequest defines the data needed to request a manual top-up.
type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// WalletResponse defines the data returned for a wallet.
type WalletResponse struct {
	WalletID     string          `json:"walletID"`
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`
	Status       string          `json:"status"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ToWalletResponse converts a domain.Wallet to WalletResponse DTO
func ToWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		WalletID:     w.WalletID,
		CurrencyCode: w.CurrencyCode,
		Balance:      w.Balance,
		Status:       string(w.Status),
		UpdatedAt:    w.LastUpdatedAt,
	}
}

// LedgerEntryResponse defines the data returned for a ledger entry.
type LedgerEntryResponse struct {
	EntryID       string           `json:"entryID"`
	Kind          string           `json:"kind"`
	Direction     string           `json:"direction"`
	Amount        decimal.Decimal  `json:"amount"`
	CurrencyCode  string           `json:"currencyCode"`
	Status        string           `json:"status"`
	BookingID     *string          `json:"bookingID,omitempty"`
	Reference     string           `json:"reference,omitempty"`
	BalanceBefore *decimal.Decimal `json:"balanceBefore,omitempty"`
	BalanceAfter  *decimal.Decimal `json:"balanceAfter,omitempty"`
	ExpiresAt     *time.Time       `json:"expiresAt,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// ToLedgerEntryResponse converts a domain.LedgerEntry to LedgerEntryResponse DTO
func ToLedgerEntryResponse(e *domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		EntryID:       e.EntryID,
		Kind:          string(e.Kind),
		Direction:     string(e.Direction),
		Amount:        e.Amount,
		CurrencyCode:  e.CurrencyCode,
		Status:        string(e.Status),
		BookingID:     e.BookingID,
		Reference:     e.Reference,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		ExpiresAt:     e.ExpiresAt,
		CreatedAt:     e.CreatedAt,
	}
}

// ToLedgerEntryResponseSlice converts a slice of domain ledger entries.
func ToLedgerEntryResponseSlice(es []domain.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(es))
	for i := range es {
		out[i] = ToLedgerEntryResponse(&es[i])
	}
	return out
}

// TopUpResponse is returned when a top-up request is accepted: the customer
// transfers the amount with the reference in the payment note.
type TopUpResponse struct {
	Entry     LedgerEntryResponse `json:"entry"`
	Reference string              `json:"reference"`
	ExpiresAt *time.Time          `json:"expiresAt,omitempty"`
}

// ListTransactionsResponse is a page of ledger entries with the next-page token.
type ListTransactionsResponse struct {
	Transactions []LedgerEntryResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}
