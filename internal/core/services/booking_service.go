package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cartime-app/cartime-backend/internal/apperrors"
	"github.com/cartime-app/cartime-backend/internal/core/domain"
	portsrepo "github.com/cartime-app/cartime-backend/internal/core/ports/repositories"
	portssvc "github.com/cartime-app/cartime-backend/internal/core/ports/services"
	"github.com/cartime-app/cartime-backend/internal/dto"
	"github.com/cartime-app/cartime-backend/internal/middleware"
	"github.com/cartime-app/cartime-backend/internal/platform/config"
)

// bookingService coordinates book-and-pay: the availability check, the wallet
// debit and the booking insert execute inside one serializable transaction, so
// two renters racing for the same dates can never both win and a wallet can
// never be debited without its booking persisting.
type bookingService struct {
	bookingRepo portsrepo.BookingRepositoryWithTx
	walletRepo  portsrepo.WalletRepositoryFacade
	carRepo     portsrepo.CarReader
	walletSvc   portssvc.WalletSvcFacade
	publisher   portssvc.EventPublisher

	txAttempts int
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookingRepo portsrepo.BookingRepositoryWithTx,
	walletRepo portsrepo.WalletRepositoryFacade,
	carRepo portsrepo.CarReader,
	walletSvc portssvc.WalletSvcFacade,
	publisher portssvc.EventPublisher,
	cfg *config.Config,
) portssvc.BookingSvcFacade {
	return &bookingService{
		bookingRepo: bookingRepo,
		walletRepo:  walletRepo,
		carRepo:     carRepo,
		walletSvc:   walletSvc,
		publisher:   publisher,
		txAttempts:  cfg.BookingTxAttempts,
	}
}

// Ensure bookingService implements the portssvc.BookingSvcFacade interface
var _ portssvc.BookingSvcFacade = (*bookingService)(nil)

// BookAndPay validates the request, then runs the atomic unit with a bounded
// retry loop. Only transient concurrency failures are retried; business
// rejections return immediately with nothing persisted.
func (s *bookingService) BookAndPay(ctx context.Context, renterUserID string, req dto.CreateBookingRequest) (*domain.Booking, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	start, end, err := req.Interval()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	start = domain.TruncateToDay(start)
	end = domain.TruncateToDay(end)

	nights := domain.NightsBetween(start, end)
	if nights < 1 {
		return nil, fmt.Errorf("%w: end date must be after start date", apperrors.ErrValidation)
	}
	if start.Before(domain.TruncateToDay(time.Now().UTC())) {
		return nil, fmt.Errorf("%w: start date must not be in the past", apperrors.ErrValidation)
	}

	// The wallet row must exist before the serializable attempt so a first-time
	// renter's lazy creation does not race inside the unit.
	if _, err := s.walletSvc.GetOrCreateWallet(ctx, renterUserID); err != nil {
		return nil, err
	}

	var booking *domain.Booking
	for attempt := 1; attempt <= s.txAttempts; attempt++ {
		booking, err = s.bookAndPayOnce(ctx, renterUserID, req, start, end, nights)
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrTransient) {
			return nil, err
		}
		logger.Warn("Book-and-pay attempt hit a concurrency conflict, retrying",
			slog.Int("attempt", attempt),
			slog.String("car_id", req.CarID))
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Booking created and paid",
		slog.String("booking_id", booking.BookingID),
		slog.String("car_id", booking.CarID),
		slog.String("total_price", booking.TotalPrice.StringFixed(2)))

	s.publisher.Publish(ctx, domain.Event{
		Name:       domain.EventBookingCreated,
		OccurredAt: time.Now().UTC(),
		Payload: map[string]any{
			"bookingID":  booking.BookingID,
			"carID":      booking.CarID,
			"userID":     booking.UserID,
			"startDate":  booking.StartDate,
			"endDate":    booking.EndDate,
			"totalPrice": booking.TotalPrice.StringFixed(2),
		},
	})

	return booking, nil
}

// bookAndPayOnce is a single serializable attempt. The rollback in the defer is
// a no-op after a successful commit.
func (s *bookingService) bookAndPayOnce(ctx context.Context, renterUserID string, req dto.CreateBookingRequest, start, end time.Time, nights int) (*domain.Booking, error) {
	tx, err := s.bookingRepo.BeginSerializable(ctx)
	if err != nil {
		return nil, err
	}
	defer s.bookingRepo.Rollback(ctx, tx)

	car, err := s.carRepo.FindCarByIDInTx(ctx, tx, req.CarID)
	if err != nil {
		return nil, err
	}
	if !car.IsBookable() {
		return nil, apperrors.ErrCarNotBookable
	}
	if car.OwnerID == renterUserID {
		return nil, fmt.Errorf("%w: cannot book your own car", apperrors.ErrValidation)
	}

	conflict, err := s.bookingRepo.FindConflictingBookingInTx(ctx, tx, req.CarID, start, end)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, &apperrors.DatesUnavailableError{
			ConflictStart: conflict.StartDate,
			ConflictEnd:   conflict.EndDate,
		}
	}

	total := car.NightlyRate.Mul(decimal.NewFromInt(int64(nights)))

	wallet, err := s.walletRepo.FindWalletByUserIDForUpdate(ctx, tx, renterUserID)
	if err != nil {
		return nil, err
	}
	if !wallet.IsActive() {
		return nil, apperrors.ErrWalletFrozen
	}
	if wallet.Balance.LessThan(total) {
		return nil, &apperrors.InsufficientFundsError{
			Needed:  total,
			Balance: wallet.Balance,
		}
	}

	now := time.Now().UTC()
	bookingID := uuid.NewString()
	entryID := uuid.NewString()

	before := wallet.Balance
	after := before.Sub(total)

	booking := domain.Booking{
		BookingID:      bookingID,
		UserID:         renterUserID,
		CarID:          car.CarID,
		CarTitle:       car.Title,
		CarPlate:       car.PlateNumber,
		CarNightlyRate: car.NightlyRate,
		StartDate:      start,
		EndDate:        end,
		Nights:         nights,
		TotalPrice:     total,
		CurrencyCode:   wallet.CurrencyCode,
		PickupCity:     car.LocationCity,
		ContactPhone:   req.ContactPhone,
		Status:         domain.BookingScheduled,
		PaymentStatus:  domain.PaymentPaid,
		PaymentMethod:  domain.MethodWallet,
		AmountPaid:     total,
		PaidAt:         &now,
		LedgerEntryID:  &entryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     renterUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: renterUserID,
		},
	}

	entry := domain.LedgerEntry{
		EntryID:       entryID,
		WalletID:      wallet.WalletID,
		UserID:        renterUserID,
		Kind:          domain.EntryBookingDebit,
		Direction:     domain.DirectionDebit,
		Amount:        total,
		CurrencyCode:  wallet.CurrencyCode,
		Status:        domain.EntryApproved,
		BookingID:     &bookingID,
		BalanceBefore: &before,
		BalanceAfter:  &after,
		DecidedBy:     &renterUserID,
		DecidedAt:     &now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     renterUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: renterUserID,
		},
	}

	// Booking first: the debit entry references it.
	if err := s.bookingRepo.InsertBookingInTx(ctx, tx, booking); err != nil {
		return nil, err
	}
	if err := s.walletRepo.ApplyLedgerEntryInTx(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := s.bookingRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetAvailability expands the blocking bookings for [from, to) into the set of
// blocked calendar days. A booking's checkout day is never blocked.
func (s *bookingService) GetAvailability(ctx context.Context, carID string, from, to time.Time) ([]time.Time, error) {
	from = domain.TruncateToDay(from)
	to = domain.TruncateToDay(to)
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: 'to' must be after 'from'", apperrors.ErrValidation)
	}

	if _, err := s.carRepo.FindCarByID(ctx, carID); err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.ListBlockingBookings(ctx, carID, from, to)
	if err != nil {
		return nil, err
	}

	seen := map[time.Time]struct{}{}
	for _, b := range bookings {
		if !b.BlocksAvailability() || !domain.IntervalsOverlap(b.StartDate, b.EndDate, from, to) {
			continue
		}
		// Stored timestamps may come back in a non-UTC zone; re-anchor them to
		// UTC midnight so the map keys line up with the iteration keys below.
		day := domain.TruncateToDay(b.StartDate)
		if day.Before(from) {
			day = from
		}
		stop := domain.TruncateToDay(b.EndDate)
		if stop.After(to) {
			stop = to
		}
		for ; day.Before(stop); day = day.AddDate(0, 0, 1) {
			seen[day] = struct{}{}
		}
	}

	days := make([]time.Time, 0, len(seen))
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		if _, ok := seen[day]; ok {
			days = append(days, day)
		}
	}
	return days, nil
}

// ListMyBookings retrieves a newest-first page of the renter's bookings.
func (s *bookingService) ListMyBookings(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Booking, *string, error) {
	return s.bookingRepo.ListBookingsByUserID(ctx, userID, limit, nextToken)
}

// CancelBooking cancels the renter's booking and, when it was paid from the
// wallet, credits the money back through a new refund entry. The original
// debit entry is never mutated; the refund is its own auditable row.
func (s *bookingService) CancelBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.bookingRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.bookingRepo.Rollback(ctx, tx)

	booking, err := s.bookingRepo.FindBookingByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	switch booking.Status {
	case domain.BookingScheduled, domain.BookingConfirmed:
		// cancellable
	default:
		return nil, fmt.Errorf("%w: booking %s cannot be cancelled in status %s",
			apperrors.ErrValidation, bookingID, booking.Status)
	}

	now := time.Now().UTC()
	if err := s.bookingRepo.UpdateBookingStatusInTx(ctx, tx, bookingID, domain.BookingCancelled, booking.PaymentStatus, userID, now); err != nil {
		return nil, err
	}

	if booking.PaymentStatus == domain.PaymentPaid && booking.PaymentMethod == domain.MethodWallet {
		wallet, err := s.walletRepo.FindWalletByUserIDForUpdate(ctx, tx, userID)
		if err != nil {
			return nil, err
		}
		if !wallet.IsActive() {
			return nil, apperrors.ErrWalletFrozen
		}

		before := wallet.Balance
		after := before.Add(booking.AmountPaid)

		refund := domain.LedgerEntry{
			EntryID:       uuid.NewString(),
			WalletID:      wallet.WalletID,
			UserID:        userID,
			Kind:          domain.EntryRefund,
			Direction:     domain.DirectionCredit,
			Amount:        booking.AmountPaid,
			CurrencyCode:  wallet.CurrencyCode,
			Status:        domain.EntryApproved,
			BookingID:     &bookingID,
			BalanceBefore: &before,
			BalanceAfter:  &after,
			DecidedBy:     &userID,
			DecidedAt:     &now,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if err := s.walletRepo.ApplyLedgerEntryInTx(ctx, tx, refund); err != nil {
			return nil, err
		}
	}

	if err := s.bookingRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	booking.Status = domain.BookingCancelled
	booking.LastUpdatedAt = now
	booking.LastUpdatedBy = userID

	logger.Info("Booking cancelled",
		slog.String("booking_id", bookingID),
		slog.String("refunded", booking.AmountPaid.StringFixed(2)))

	s.publisher.Publish(ctx, domain.Event{
		Name:       domain.EventBookingCancelled,
		OccurredAt: now,
		Payload: map[string]any{
			"bookingID": bookingID,
			"carID":     booking.CarID,
			"userID":    userID,
			"refunded":  booking.AmountPaid.StringFixed(2),
		},
	})

	return booking, nil
}
