package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntryKind classifies the balance-affecting event.
type LedgerEntryKind string

const (
	EntryTopUp        LedgerEntryKind = "TOPUP"
	EntryBookingDebit LedgerEntryKind = "BOOKING_DEBIT"
	EntryRefund       LedgerEntryKind = "REFUND"
	EntryAdjustment   LedgerEntryKind = "ADJUSTMENT"
)

// LedgerDirection indicates whether an entry adds to or removes from the balance.
type LedgerDirection string

const (
	DirectionCredit LedgerDirection = "CREDIT"
	DirectionDebit  LedgerDirection = "DEBIT"
)

// LedgerEntryStatus is the decision state of an entry. Programmatic entries
// (booking debits, refunds) are created already APPROVED; manual top-ups start
// PENDING and are decided by an admin.
type LedgerEntryStatus string

const (
	EntryPending  LedgerEntryStatus = "PENDING"
	EntryApproved LedgerEntryStatus = "APPROVED"
	EntryRejected LedgerEntryStatus = "REJECTED"
)

// LedgerEntry is one immutable balance-affecting event on a wallet.
// BalanceBefore/BalanceAfter snapshot the wallet balance around the mutation
// and are the audit trail used for reconciliation; the wallet's balance field
// must always be derivable by replaying approved entries.
type LedgerEntry struct {
	EntryID      string            `json:"entryID"` // Primary key (UUID)
	WalletID     string            `json:"walletID"`
	UserID       string            `json:"userID"`
	Kind         LedgerEntryKind   `json:"kind"`
	Direction    LedgerDirection   `json:"direction"`
	Amount       decimal.Decimal   `json:"amount"` // Strictly positive
	CurrencyCode string            `json:"currencyCode"`
	Status       LedgerEntryStatus `json:"status"`

	// At most one approved BOOKING_DEBIT entry may reference a given booking.
	BookingID *string `json:"bookingID,omitempty"`

	// Human-presentable reconciliation key for manual bank transfers.
	// ReferenceNorm is the normalized form, unique among entries of the same kind.
	Reference     string `json:"reference,omitempty"`
	ReferenceNorm string `json:"-"`

	// Balance snapshots; nil until the entry is approved and applied.
	BalanceBefore *decimal.Decimal `json:"balanceBefore,omitempty"`
	BalanceAfter  *decimal.Decimal `json:"balanceAfter,omitempty"`

	// Administrative decision fields for manual top-ups.
	DecidedBy *string    `json:"decidedBy,omitempty"`
	DecidedAt *time.Time `json:"decidedAt,omitempty"`

	// A pending top-up past ExpiresAt is void: readers skip it and it can no
	// longer be approved. It is never auto-approved or deleted; the next
	// top-up request flips it to REJECTED to free the pending slot.
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`

	AuditFields
}

// IsExpired reports whether a pending entry is past its expiry at the given time.
func (e *LedgerEntry) IsExpired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}

// SignedAmount returns the entry amount with the direction applied:
// credits positive, debits negative.
func (e *LedgerEntry) SignedAmount() decimal.Decimal {
	if e.Direction == DirectionDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}
