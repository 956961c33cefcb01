package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cartime-app/cartime-backend/internal/apperrors"
	"github.com/cartime-app/cartime-backend/internal/core/domain"
	portsrepo "github.com/cartime-app/cartime-backend/internal/core/ports/repositories"
	"github.com/cartime-app/cartime-backend/internal/models"
	"github.com/cartime-app/cartime-backend/internal/utils/mapping"
	"github.com/cartime-app/cartime-backend/internal/utils/pagination"
)

type PgxBookingRepository struct {
	BaseRepository
}

// newPgxBookingRepository creates a new repository for booking data.
func newPgxBookingRepository(pool *pgxpool.Pool) portsrepo.BookingRepositoryWithTx {
	return &PgxBookingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxBookingRepository implements portsrepo.BookingRepositoryWithTx
var _ portsrepo.BookingRepositoryWithTx = (*PgxBookingRepository)(nil)

const bookingColumns = `booking_id, user_id, car_id, car_title, car_plate, car_nightly_rate, start_date, end_date, nights, total_price, currency_code, pickup_city, contact_phone, status, payment_status, payment_method, amount_paid, paid_at, ledger_entry_id, created_at, created_by, last_updated_at, last_updated_by`

func scanBooking(r row) (*models.Booking, error) {
	var m models.Booking
	err := r.Scan(
		&m.BookingID,
		&m.UserID,
		&m.CarID,
		&m.CarTitle,
		&m.CarPlate,
		&m.CarNightlyRate,
		&m.StartDate,
		&m.EndDate,
		&m.Nights,
		&m.TotalPrice,
		&m.CurrencyCode,
		&m.PickupCity,
		&m.ContactPhone,
		&m.Status,
		&m.PaymentStatus,
		&m.PaymentMethod,
		&m.AmountPaid,
		&m.PaidAt,
		&m.LedgerEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// blockingFilter selects only bookings that hold their dates: paid, in a live
// lifecycle state. Unpaid requests never block other renters. SQL mirror of
// domain.Booking.BlocksAvailability; keep the two predicates in sync.
const blockingFilter = `payment_status = 'PAID' AND status IN ('SCHEDULED', 'ACTIVE', 'CONFIRMED')`

// FindBookingByID retrieves a specific booking.
func (r *PgxBookingRepository) FindBookingByID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = $1;`
	m, err := scanBooking(r.Pool.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find booking "+bookingID, err)
	}
	booking := mapping.ToDomainBooking(*m)
	return &booking, nil
}

// ListBookingsByUserID retrieves a newest-first page of the user's bookings
// using keyset pagination over (created_at, booking_id).
func (r *PgxBookingRepository) ListBookingsByUserID(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Booking, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
	`
	args := []any{userID}

	if nextToken != nil && *nextToken != "" {
		createdAt, bookingID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` AND (created_at, booking_id) < ($2, $3)`
		args = append(args, createdAt, bookingID)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC, booking_id DESC LIMIT %d;`, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query bookings for user "+userID, err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		m, err := scanBooking(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan booking row", err)
		}
		bookings = append(bookings, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating booking rows", err)
	}

	var token *string
	if len(bookings) > limit {
		bookings = bookings[:limit]
		last := bookings[len(bookings)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.BookingID)
		token = &t
	}

	return mapping.ToDomainBookingSlice(bookings), token, nil
}

// ListBlockingBookings returns paid, live bookings for the car overlapping
// [from, to): existing.start < to AND existing.end > from.
func (r *PgxBookingRepository) ListBlockingBookings(ctx context.Context, carID string, from, to time.Time) ([]domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE car_id = $1 AND ` + blockingFilter + `
		  AND start_date < $3 AND end_date > $2
		ORDER BY start_date;
	`
	rows, err := r.Pool.Query(ctx, query, carID, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query blocking bookings for car "+carID, err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		m, err := scanBooking(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan booking row", err)
		}
		bookings = append(bookings, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating booking rows", err)
	}

	return mapping.ToDomainBookingSlice(bookings), nil
}

// FindConflictingBookingInTx runs the availability check inside the caller's
// transaction snapshot. Returns nil when the dates are free.
func (r *PgxBookingRepository) FindConflictingBookingInTx(ctx context.Context, tx pgx.Tx, carID string, start, end time.Time) (*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE car_id = $1 AND ` + blockingFilter + `
		  AND start_date < $3 AND end_date > $2
		ORDER BY start_date
		LIMIT 1;
	`
	m, err := scanBooking(tx.QueryRow(ctx, query, carID, start, end))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if IsSerializationFailure(err) {
			return nil, apperrors.ErrTransient
		}
		return nil, apperrors.NewAppError(500, "failed to check availability for car "+carID, err)
	}
	booking := mapping.ToDomainBooking(*m)
	return &booking, nil
}

// InsertBookingInTx persists a new booking within the transaction.
func (r *PgxBookingRepository) InsertBookingInTx(ctx context.Context, tx pgx.Tx, booking domain.Booking) error {
	m := mapping.ToModelBooking(booking)
	query := `
		INSERT INTO bookings (
			booking_id, user_id, car_id, car_title, car_plate, car_nightly_rate,
			start_date, end_date, nights, total_price, currency_code,
			pickup_city, contact_phone, status, payment_status, payment_method,
			amount_paid, paid_at, ledger_entry_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);
	`
	_, err := tx.Exec(ctx, query,
		m.BookingID,
		m.UserID,
		m.CarID,
		m.CarTitle,
		m.CarPlate,
		m.CarNightlyRate,
		m.StartDate,
		m.EndDate,
		m.Nights,
		m.TotalPrice,
		m.CurrencyCode,
		m.PickupCity,
		m.ContactPhone,
		m.Status,
		m.PaymentStatus,
		m.PaymentMethod,
		m.AmountPaid,
		m.PaidAt,
		m.LedgerEntryID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if IsSerializationFailure(err) {
			return apperrors.ErrTransient
		}
		return apperrors.NewAppError(500, "failed to insert booking "+booking.BookingID, err)
	}
	return nil
}

// FindBookingByIDForUpdate selects a booking and locks the row.
func (r *PgxBookingRepository) FindBookingByIDForUpdate(ctx context.Context, tx pgx.Tx, bookingID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = $1 FOR UPDATE;`
	m, err := scanBooking(tx.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		if IsSerializationFailure(err) {
			return nil, apperrors.ErrTransient
		}
		return nil, apperrors.NewAppError(500, "failed to lock booking "+bookingID, err)
	}
	booking := mapping.ToDomainBooking(*m)
	return &booking, nil
}

// UpdateBookingStatusInTx transitions lifecycle and payment status. The
// financial core fields (dates, price, rate) are never touched here.
func (r *PgxBookingRepository) UpdateBookingStatusInTx(ctx context.Context, tx pgx.Tx, bookingID string, status domain.BookingStatus, paymentStatus domain.PaymentStatus, updatedBy string, now time.Time) error {
	query := `
		UPDATE bookings
		SET status = $2, payment_status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE booking_id = $1;
	`
	ct, err := tx.Exec(ctx, query, bookingID, string(status), string(paymentStatus), now, updatedBy)
	if err != nil {
		if IsSerializationFailure(err) {
			return apperrors.ErrTransient
		}
		return apperrors.NewAppError(500, "failed to update status for booking "+bookingID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: booking %s", apperrors.ErrNotFound, bookingID)
	}
	return nil
}
