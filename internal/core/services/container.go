package services

import (
	portsrepo "github.com/cartime-app/cartime-backend/internal/core/ports/repositories"
	portssvc "github.com/cartime-app/cartime-backend/internal/core/ports/services"
	"github.com/cartime-app/cartime-backend/internal/platform/config"
)

// NewServiceContainer wires the service layer from the repository provider.
func NewServiceContainer(repos portsrepo.RepositoryProvider, publisher portssvc.EventPublisher, cfg *config.Config) *portssvc.ServiceContainer {
	walletSvc := NewWalletService(repos.WalletRepo, publisher, cfg)
	bookingSvc := NewBookingService(repos.BookingRepo, repos.WalletRepo, repos.CarRepo, walletSvc, publisher, cfg)

	return &portssvc.ServiceContainer{
		Wallet:  walletSvc,
		Booking: bookingSvc,
	}
}
