package mapping

import (
	"github.com/cartime-app/cartime-backend/internal/core/domain"
	"github.com/cartime-app/cartime-backend/internal/models"
)

// ToModelWallet converts a domain Wallet to a model Wallet
func ToModelWallet(d domain.Wallet) models.Wallet {
	return models.Wallet{
		WalletID:     d.WalletID,
		UserID:       d.UserID,
		CurrencyCode: d.CurrencyCode,
		Balance:      d.Balance,
		Status:       string(d.Status),
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainWallet converts a model Wallet to a domain Wallet
func ToDomainWallet(m models.Wallet) domain.Wallet {
	return domain.Wallet{
		WalletID:     m.WalletID,
		UserID:       m.UserID,
		CurrencyCode: m.CurrencyCode,
		Balance:      m.Balance,
		Status:       domain.WalletStatus(m.Status),
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLedgerEntry converts a domain LedgerEntry to a model LedgerEntry
func ToModelLedgerEntry(d domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:       d.EntryID,
		WalletID:      d.WalletID,
		UserID:        d.UserID,
		Kind:          string(d.Kind),
		Direction:     string(d.Direction),
		Amount:        d.Amount,
		CurrencyCode:  d.CurrencyCode,
		Status:        string(d.Status),
		BookingID:     d.BookingID,
		Reference:     d.Reference,
		ReferenceNorm: d.ReferenceNorm,
		BalanceBefore: d.BalanceBefore,
		BalanceAfter:  d.BalanceAfter,
		DecidedBy:     d.DecidedBy,
		DecidedAt:     d.DecidedAt,
		ExpiresAt:     d.ExpiresAt,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLedgerEntry converts a model LedgerEntry to a domain LedgerEntry
func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:       m.EntryID,
		WalletID:      m.WalletID,
		UserID:        m.UserID,
		Kind:          domain.LedgerEntryKind(m.Kind),
		Direction:     domain.LedgerDirection(m.Direction),
		Amount:        m.Amount,
		CurrencyCode:  m.CurrencyCode,
		Status:        domain.LedgerEntryStatus(m.Status),
		BookingID:     m.BookingID,
		Reference:     m.Reference,
		ReferenceNorm: m.ReferenceNorm,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		DecidedBy:     m.DecidedBy,
		DecidedAt:     m.DecidedAt,
		ExpiresAt:     m.ExpiresAt,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLedgerEntrySlice converts a slice of model LedgerEntries to domain LedgerEntries
func ToDomainLedgerEntrySlice(ms []models.LedgerEntry) []domain.LedgerEntry {
	ds := make([]domain.LedgerEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLedgerEntry(m)
	}
	return ds
}
