package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cartime-app/cartime-backend/internal/apperrors"
	"github.com/cartime-app/cartime-backend/internal/core/domain"
	portsrepo "github.com/cartime-app/cartime-backend/internal/core/ports/repositories"
	"github.com/cartime-app/cartime-backend/internal/models"
	"github.com/cartime-app/cartime-backend/internal/utils/mapping"
)

type PgxCarRepository struct {
	BaseRepository
}

// newPgxCarRepository creates a read-only repository over car listings.
func newPgxCarRepository(pool *pgxpool.Pool) portsrepo.CarReader {
	return &PgxCarRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxCarRepository implements portsrepo.CarReader
var _ portsrepo.CarReader = (*PgxCarRepository)(nil)

const carColumns = `car_id, owner_id, title, plate_number, nightly_rate, currency_code, location_city, status, created_at, created_by, last_updated_at, last_updated_by`

func scanCar(r row) (*domain.Car, error) {
	var m models.Car
	err := r.Scan(
		&m.CarID,
		&m.OwnerID,
		&m.Title,
		&m.PlateNumber,
		&m.NightlyRate,
		&m.CurrencyCode,
		&m.LocationCity,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	car := mapping.ToDomainCar(m)
	return &car, nil
}

// FindCarByID retrieves a car listing.
func (r *PgxCarRepository) FindCarByID(ctx context.Context, carID string) (*domain.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE car_id = $1;`
	car, err := scanCar(r.Pool.QueryRow(ctx, query, carID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find car "+carID, err)
	}
	return car, nil
}

// FindCarByIDInTx retrieves a car within the caller's transaction snapshot.
func (r *PgxCarRepository) FindCarByIDInTx(ctx context.Context, tx pgx.Tx, carID string) (*domain.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE car_id = $1;`
	car, err := scanCar(tx.QueryRow(ctx, query, carID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		if IsSerializationFailure(err) {
			return nil, apperrors.ErrTransient
		}
		return nil, apperrors.NewAppError(500, "failed to find car "+carID, err)
	}
	return car, nil
}
