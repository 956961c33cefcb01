package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// Begin starts a new database transaction with default isolation.
	Begin(ctx context.Context) (pgx.Tx, error)

	// BeginSerializable starts a transaction with serializable isolation.
	// The booking coordinator runs its whole unit under this level so that
	// concurrent committers touching the same car or wallet conflict at
	// commit time instead of silently interleaving.
	BeginSerializable(ctx context.Context) (pgx.Tx, error)

	// Commit commits a transaction
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction
	Rollback(ctx context.Context, tx pgx.Tx) error
}
