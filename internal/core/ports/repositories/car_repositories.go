package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/cartime-app/cartime-backend/internal/core/domain"
)

// CarReader defines the read-only listing access the booking engine needs.
// Listing management (publish, suspend, pricing edits) lives elsewhere.
type CarReader interface {
	// FindCarByID retrieves a car listing.
	FindCarByID(ctx context.Context, carID string) (*domain.Car, error)

	// FindCarByIDInTx retrieves a car within the caller's transaction snapshot,
	// so the bookable check observes the same state the commit will.
	FindCarByIDInTx(ctx context.Context, tx pgx.Tx, carID string) (*domain.Car, error)
}
