package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/cartime-app/cartime-backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	walletRepo := newPgxWalletRepository(dbPool)
	bookingRepo := newPgxBookingRepository(dbPool)
	carRepo := newPgxCarRepository(dbPool)

	return portsrepo.RepositoryProvider{
		WalletRepo:  walletRepo,
		BookingRepo: bookingRepo,
		CarRepo:     carRepo,
	}
}
