package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cartime-app/cartime-backend/internal/apperrors"
	"github.com/cartime-app/cartime-backend/internal/core/domain"
	portsrepo "github.com/cartime-app/cartime-backend/internal/core/ports/repositories"
	"github.com/cartime-app/cartime-backend/internal/models"
	"github.com/cartime-app/cartime-backend/internal/utils/mapping"
	"github.com/cartime-app/cartime-backend/internal/utils/pagination"
)

type PgxWalletRepository struct {
	BaseRepository
}

// newPgxWalletRepository creates a new repository for wallet and ledger data.
func newPgxWalletRepository(pool *pgxpool.Pool) portsrepo.WalletRepositoryWithTx {
	return &PgxWalletRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxWalletRepository implements portsrepo.WalletRepositoryWithTx
var _ portsrepo.WalletRepositoryWithTx = (*PgxWalletRepository)(nil)

const walletColumns = `wallet_id, user_id, currency_code, balance, status, created_at, created_by, last_updated_at, last_updated_by`

// row is satisfied by both pgx.Row and pgx.Rows.
type row interface {
	Scan(dest ...any) error
}

func scanWallet(r row) (*domain.Wallet, error) {
	var m models.Wallet
	err := r.Scan(
		&m.WalletID,
		&m.UserID,
		&m.CurrencyCode,
		&m.Balance,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	w := mapping.ToDomainWallet(m)
	return &w, nil
}

// FindWalletByUserID retrieves the wallet owned by the given user.
func (r *PgxWalletRepository) FindWalletByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1;`
	wallet, err := scanWallet(r.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find wallet for user "+userID, err)
	}
	return wallet, nil
}

// FindWalletByID retrieves a wallet by its primary key.
func (r *PgxWalletRepository) FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE wallet_id = $1;`
	wallet, err := scanWallet(r.Pool.QueryRow(ctx, query, walletID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find wallet "+walletID, err)
	}
	return wallet, nil
}

// CreateWalletIfAbsent inserts the wallet unless the owner already has one, and
// returns the surviving row. The unique constraint on user_id makes this safe
// under concurrent first interactions for the same user.
func (r *PgxWalletRepository) CreateWalletIfAbsent(ctx context.Context, wallet domain.Wallet) (*domain.Wallet, error) {
	m := mapping.ToModelWallet(wallet)
	query := `
		INSERT INTO wallets (wallet_id, user_id, currency_code, balance, status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, query,
		m.WalletID,
		m.UserID,
		m.CurrencyCode,
		m.Balance,
		m.Status,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to create wallet for user "+wallet.UserID, err)
	}
	// Re-select: either the row just inserted or the pre-existing one.
	return r.FindWalletByUserID(ctx, wallet.UserID)
}

// FindWalletByUserIDForUpdate selects the user's wallet and locks the row.
// Must be called within a transaction.
func (r *PgxWalletRepository) FindWalletByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE;`
	wallet, err := scanWallet(tx.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		if IsSerializationFailure(err) {
			return nil, apperrors.ErrTransient
		}
		return nil, apperrors.NewAppError(500, "failed to lock wallet for user "+userID, err)
	}
	return wallet, nil
}

// FindWalletByIDForUpdate selects a wallet by ID and locks the row.
func (r *PgxWalletRepository) FindWalletByIDForUpdate(ctx context.Context, tx pgx.Tx, walletID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE wallet_id = $1 FOR UPDATE;`
	wallet, err := scanWallet(tx.QueryRow(ctx, query, walletID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		if IsSerializationFailure(err) {
			return nil, apperrors.ErrTransient
		}
		return nil, apperrors.NewAppError(500, "failed to lock wallet "+walletID, err)
	}
	return wallet, nil
}

const ledgerEntryColumns = `entry_id, wallet_id, user_id, kind, direction, amount, currency_code, status, booking_id, reference, reference_norm, balance_before, balance_after, decided_by, decided_at, expires_at, created_at, created_by, last_updated_at, last_updated_by`

func scanLedgerEntry(r row) (*models.LedgerEntry, error) {
	var m models.LedgerEntry
	err := r.Scan(
		&m.EntryID,
		&m.WalletID,
		&m.UserID,
		&m.Kind,
		&m.Direction,
		&m.Amount,
		&m.CurrencyCode,
		&m.Status,
		&m.BookingID,
		&m.Reference,
		&m.ReferenceNorm,
		&m.BalanceBefore,
		&m.BalanceAfter,
		&m.DecidedBy,
		&m.DecidedAt,
		&m.ExpiresAt,
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

const insertLedgerEntryQuery = `
	INSERT INTO ledger_entries (
		entry_id, wallet_id, user_id, kind, direction, amount, currency_code, status,
		booking_id, reference, reference_norm, balance_before, balance_after,
		decided_by, decided_at, expires_at,
		created_at, created_by, last_updated_at, last_updated_by
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
`

func ledgerEntryArgs(m models.LedgerEntry) []any {
	return []any{
		m.EntryID,
		m.WalletID,
		m.UserID,
		m.Kind,
		m.Direction,
		m.Amount,
		m.CurrencyCode,
		m.Status,
		m.BookingID,
		m.Reference,
		m.ReferenceNorm,
		m.BalanceBefore,
		m.BalanceAfter,
		m.DecidedBy,
		m.DecidedAt,
		m.ExpiresAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	}
}

// InsertLedgerEntry persists a new entry outside a caller-managed transaction.
// Partial unique index collisions surface as apperrors.ErrDuplicate so the
// service can map them to the right business failure.
func (r *PgxWalletRepository) InsertLedgerEntry(ctx context.Context, entry domain.LedgerEntry) error {
	m := mapping.ToModelLedgerEntry(entry)
	_, err := r.Pool.Exec(ctx, insertLedgerEntryQuery, ledgerEntryArgs(m)...)
	if err != nil {
		if IsUniqueViolation(err, "") {
			return fmt.Errorf("%w: ledger entry %s", apperrors.ErrDuplicate, entry.EntryID)
		}
		return apperrors.NewAppError(500, "failed to insert ledger entry "+entry.EntryID, err)
	}
	return nil
}

// ApplyLedgerEntryInTx inserts an approved entry and moves the wallet balance
// to entry.BalanceAfter within the caller's transaction. The two writes are
// never performed separately; that is the ledger's core invariant.
func (r *PgxWalletRepository) ApplyLedgerEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) error {
	if entry.BalanceAfter == nil {
		return apperrors.NewAppError(500, "ledger entry "+entry.EntryID+" has no balance_after snapshot", nil)
	}

	m := mapping.ToModelLedgerEntry(entry)
	if _, err := tx.Exec(ctx, insertLedgerEntryQuery, ledgerEntryArgs(m)...); err != nil {
		if IsUniqueViolation(err, "") {
			return fmt.Errorf("%w: ledger entry %s", apperrors.ErrDuplicate, entry.EntryID)
		}
		if IsSerializationFailure(err) {
			return apperrors.ErrTransient
		}
		return apperrors.NewAppError(500, "failed to insert ledger entry "+entry.EntryID, err)
	}

	return r.UpdateWalletBalanceInTx(ctx, tx, entry.WalletID, *entry.BalanceAfter, m.LastUpdatedBy, m.LastUpdatedAt)
}

// UpdateWalletBalanceInTx moves the wallet balance within the caller's
// transaction. Callers must pair it with a ledger entry write.
func (r *PgxWalletRepository) UpdateWalletBalanceInTx(ctx context.Context, tx pgx.Tx, walletID string, balance decimal.Decimal, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE wallets
		SET balance = $2, last_updated_at = $3, last_updated_by = $4
		WHERE wallet_id = $1;
	`
	ct, err := tx.Exec(ctx, query, walletID, balance, updatedAt, updatedBy)
	if err != nil {
		if IsSerializationFailure(err) {
			return apperrors.ErrTransient
		}
		return apperrors.NewAppError(500, "failed to update balance for wallet "+walletID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: wallet %s not found during balance update", apperrors.ErrNotFound, walletID)
	}
	return nil
}

// FindLedgerEntryByID retrieves a single ledger entry.
func (r *PgxWalletRepository) FindLedgerEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE entry_id = $1;`
	m, err := scanLedgerEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find ledger entry "+entryID, err)
	}
	entry := mapping.ToDomainLedgerEntry(*m)
	return &entry, nil
}

// FindLedgerEntryByIDForUpdate selects an entry and locks the row, so two
// admins deciding the same top-up serialize instead of both applying.
func (r *PgxWalletRepository) FindLedgerEntryByIDForUpdate(ctx context.Context, tx pgx.Tx, entryID string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE entry_id = $1 FOR UPDATE;`
	m, err := scanLedgerEntry(tx.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		if IsSerializationFailure(err) {
			return nil, apperrors.ErrTransient
		}
		return nil, apperrors.NewAppError(500, "failed to lock ledger entry "+entryID, err)
	}
	entry := mapping.ToDomainLedgerEntry(*m)
	return &entry, nil
}

// UpdateLedgerEntryDecisionInTx flips a pending entry to its decided status and
// records the decision fields. Only PENDING rows are updated; deciding an
// already decided entry affects no rows and reports ErrNotFound.
func (r *PgxWalletRepository) UpdateLedgerEntryDecisionInTx(ctx context.Context, tx pgx.Tx, entryID string, status domain.LedgerEntryStatus, decidedBy string, decidedAt time.Time, balanceBefore, balanceAfter *decimal.Decimal) error {
	query := `
		UPDATE ledger_entries
		SET status = $2, decided_by = $3, decided_at = $4, balance_before = $5, balance_after = $6,
		    last_updated_at = $4, last_updated_by = $3
		WHERE entry_id = $1 AND status = 'PENDING';
	`
	ct, err := tx.Exec(ctx, query, entryID, string(status), decidedBy, decidedAt, balanceBefore, balanceAfter)
	if err != nil {
		if IsSerializationFailure(err) {
			return apperrors.ErrTransient
		}
		return apperrors.NewAppError(500, "failed to update decision for ledger entry "+entryID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: pending ledger entry %s", apperrors.ErrNotFound, entryID)
	}
	return nil
}

// FindPendingTopUp returns the user's live pending top-up, skipping expired
// ones. Expired entries stay in the table (they are never auto-approved or
// deleted) but no longer count as queued.
func (r *PgxWalletRepository) FindPendingTopUp(ctx context.Context, userID string, now time.Time) (*domain.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE user_id = $1 AND kind = 'TOPUP' AND status = 'PENDING'
		  AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY created_at DESC
		LIMIT 1;
	`
	m, err := scanLedgerEntry(r.Pool.QueryRow(ctx, query, userID, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find pending top-up for user "+userID, err)
	}
	entry := mapping.ToDomainLedgerEntry(*m)
	return &entry, nil
}

// VoidExpiredTopUps rejects the user's expired pending top-ups so the partial
// unique index stops holding the one-pending-per-user slot for dead entries.
// decided_by stays NULL: nobody decided, the clock did.
func (r *PgxWalletRepository) VoidExpiredTopUps(ctx context.Context, userID string, now time.Time) error {
	query := `
		UPDATE ledger_entries
		SET status = 'REJECTED', decided_at = $2, last_updated_at = $2, last_updated_by = user_id
		WHERE user_id = $1 AND kind = 'TOPUP' AND status = 'PENDING'
		  AND expires_at IS NOT NULL AND expires_at <= $2;
	`
	if _, err := r.Pool.Exec(ctx, query, userID, now); err != nil {
		return apperrors.NewAppError(500, "failed to void expired top-ups for user "+userID, err)
	}
	return nil
}

// TopUpReferenceExists reports whether a normalized reference is already taken
// by any top-up entry.
func (r *PgxWalletRepository) TopUpReferenceExists(ctx context.Context, referenceNorm string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE kind = 'TOPUP' AND reference_norm = $1);`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, referenceNorm).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, "failed to check top-up reference", err)
	}
	return exists, nil
}

// ListLedgerEntriesByUserID retrieves a newest-first page of entries using
// keyset pagination over (created_at, entry_id).
func (r *PgxWalletRepository) ListLedgerEntriesByUserID(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to know whether a next page exists.
	fetchLimit := limit + 1

	query := `
		SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE user_id = $1
	`
	args := []any{userID}

	if nextToken != nil && *nextToken != "" {
		createdAt, entryID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` AND (created_at, entry_id) < ($2, $3)`
		args = append(args, createdAt, entryID)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC, entry_id DESC LIMIT %d;`, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query ledger entries for user "+userID, err)
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		m, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan ledger entry row", err)
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating ledger entry rows", err)
	}

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.EntryID)
		token = &t
	}

	return mapping.ToDomainLedgerEntrySlice(entries), token, nil
}

// SumApprovedEntries replays the ledger for a wallet: credits minus debits over
// approved entries. The wallet balance must always equal this sum. The CASE
// expression is the SQL mirror of domain.LedgerEntry.SignedAmount.
func (r *PgxWalletRepository) SumApprovedEntries(ctx context.Context, walletID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN direction = 'CREDIT' THEN amount ELSE -amount END), 0)
		FROM ledger_entries
		WHERE wallet_id = $1 AND status = 'APPROVED';
	`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, walletID).Scan(&sum); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum approved entries for wallet "+walletID, err)
	}
	return sum, nil
}
