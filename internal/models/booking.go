package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking mirrors the bookings table. Dates are DATE columns read as UTC
// midnight; [start_date, end_date) is half-open.
type Booking struct {
	BookingID      string          `db:"booking_id"`
	UserID         string          `db:"user_id"`
	CarID          string          `db:"car_id"`
	CarTitle       string          `db:"car_title"`
	CarPlate       string          `db:"car_plate"`
	CarNightlyRate decimal.Decimal `db:"car_nightly_rate"`
	StartDate      time.Time       `db:"start_date"`
	EndDate        time.Time       `db:"end_date"`
	Nights         int             `db:"nights"`
	TotalPrice     decimal.Decimal `db:"total_price"`
	CurrencyCode   string          `db:"currency_code"`
	PickupCity     string          `db:"pickup_city"`
	ContactPhone   string          `db:"contact_phone"`
	Status         string          `db:"status"`
	PaymentStatus  string          `db:"payment_status"`
	PaymentMethod  string          `db:"payment_method"`
	AmountPaid     decimal.Decimal `db:"amount_paid"`
	PaidAt         *time.Time      `db:"paid_at"`
	LedgerEntryID  *string         `db:"ledger_entry_id"`
	AuditFields
}
