package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the fulfilment lifecycle of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingScheduled BookingStatus = "SCHEDULED"
	BookingActive    BookingStatus = "ACTIVE"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// PaymentStatus is the payment lifecycle of a booking.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// PaymentMethod identifies how a booking was paid.
type PaymentMethod string

const (
	MethodWallet PaymentMethod = "WALLET"
)

// Booking is a reservation of a car for a half-open date interval
// [StartDate, EndDate): the start day is included, the end day is the checkout
// day and is excluded, so back-to-back bookings never conflict.
//
// Car title, plate and nightly rate are snapshotted at booking time; later
// listing edits never change what the renter agreed to pay.
type Booking struct {
	BookingID string `json:"bookingID"` // Primary key (UUID)
	UserID    string `json:"userID"`    // Renter
	CarID     string `json:"carID"`

	CarTitle       string          `json:"carTitle"`
	CarPlate       string          `json:"carPlate"`
	CarNightlyRate decimal.Decimal `json:"carNightlyRate"`

	StartDate time.Time `json:"startDate"` // UTC midnight, inclusive
	EndDate   time.Time `json:"endDate"`   // UTC midnight, exclusive

	Nights       int             `json:"nights"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	CurrencyCode string          `json:"currencyCode"`

	PickupCity   string `json:"pickupCity"`
	ContactPhone string `json:"contactPhone"`

	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`

	AmountPaid decimal.Decimal `json:"amountPaid"`
	PaidAt     *time.Time      `json:"paidAt,omitempty"`

	// Ledger entry that paid for this booking, set when payment succeeds.
	LedgerEntryID *string `json:"ledgerEntryID,omitempty"`

	AuditFields
}

// BlocksAvailability reports whether this booking holds its dates against other
// renters. Only paid bookings in a live state block: unpaid requests never hold
// inventory ("pay to hold", not "request to hold").
func (b *Booking) BlocksAvailability() bool {
	if b.PaymentStatus != PaymentPaid {
		return false
	}
	switch b.Status {
	case BookingScheduled, BookingActive, BookingConfirmed:
		return true
	}
	return false
}

// TruncateToDay truncates t to UTC midnight. All interval arithmetic uses
// calendar days in a single reference timezone (UTC), never wall-clock hours.
func TruncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NightsBetween returns the number of whole calendar nights between start and
// end after truncation to UTC midnight. The checkout day is not a night.
func NightsBetween(start, end time.Time) int {
	s := TruncateToDay(start)
	e := TruncateToDay(end)
	return int(e.Sub(s).Hours() / 24)
}

// IntervalsOverlap reports whether two half-open intervals [s1,e1) and [s2,e2)
// overlap. Intervals that merely touch (e1 == s2) do not.
func IntervalsOverlap(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
