package services

import (
	"context"
	"time"

	"github.com/cartime-app/cartime-backend/internal/core/domain"
	"github.com/cartime-app/cartime-backend/internal/dto"
)

// BookingSvcFacade exposes the booking side: the book-and-pay transaction
// coordinator, the availability calendar and booking lifecycle operations.
type BookingSvcFacade interface {
	// BookAndPay checks availability, debits the renter's wallet and creates
	// the paid booking as one atomic unit. On failure nothing persists.
	// Business failures: ErrValidation, ErrCarNotBookable,
	// DatesUnavailableError, InsufficientFundsError, ErrWalletFrozen.
	// ErrTransient after the bounded retry budget is exhausted.
	BookAndPay(ctx context.Context, renterUserID string, req dto.CreateBookingRequest) (*domain.Booking, error)

	// GetAvailability returns the blocked calendar days for the car in
	// [from, to), applying the same paid-and-live filter as BookAndPay.
	GetAvailability(ctx context.Context, carID string, from, to time.Time) ([]time.Time, error)

	// ListMyBookings retrieves a newest-first page of the renter's bookings.
	ListMyBookings(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Booking, *string, error)

	// CancelBooking cancels the renter's booking and refunds the wallet via a
	// new refund ledger entry; the original debit is never mutated.
	CancelBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error)
}
