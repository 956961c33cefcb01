package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cartime-app/cartime-backend/internal/core/domain"
)

// BookingReader defines read operations for booking data
type BookingReader interface {
	// FindBookingByID retrieves a specific booking.
	FindBookingByID(ctx context.Context, bookingID string) (*domain.Booking, error)

	// ListBookingsByUserID retrieves a newest-first page of the user's bookings.
	ListBookingsByUserID(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Booking, *string, error)

	// ListBlockingBookings returns paid, live bookings for the car overlapping
	// [from, to) under half-open semantics. Used by the availability calendar.
	ListBlockingBookings(ctx context.Context, carID string, from, to time.Time) ([]domain.Booking, error)
}

// BookingTransactionSupport defines tx-scoped operations for the booking
// coordinator's atomic unit.
type BookingTransactionSupport interface {
	// FindConflictingBookingInTx runs the availability check inside the
	// caller's transaction snapshot: the first paid, live booking for the car
	// whose [start,end) overlaps the requested interval, or nil when the dates
	// are free. Read-only.
	FindConflictingBookingInTx(ctx context.Context, tx pgx.Tx, carID string, start, end time.Time) (*domain.Booking, error)

	// InsertBookingInTx persists a new booking within the transaction.
	InsertBookingInTx(ctx context.Context, tx pgx.Tx, booking domain.Booking) error

	// FindBookingByIDForUpdate selects a booking and locks the row.
	FindBookingByIDForUpdate(ctx context.Context, tx pgx.Tx, bookingID string) (*domain.Booking, error)

	// UpdateBookingStatusInTx transitions a booking's lifecycle and payment
	// status. Financial core fields (dates, price) are never updated.
	UpdateBookingStatusInTx(ctx context.Context, tx pgx.Tx, bookingID string, status domain.BookingStatus, paymentStatus domain.PaymentStatus, updatedBy string, now time.Time) error
}

// BookingRepositoryFacade combines all booking-related repository interfaces
type BookingRepositoryFacade interface {
	BookingReader
	BookingTransactionSupport
}

// BookingRepositoryWithTx extends BookingRepositoryFacade with transaction capabilities
type BookingRepositoryWithTx interface {
	BookingRepositoryFacade
	TransactionManager
}
