package repositories

// RepositoryProvider bundles the concrete repositories handed to the service
// container at startup.
type RepositoryProvider struct {
	WalletRepo  WalletRepositoryWithTx
	BookingRepo BookingRepositoryWithTx
	CarRepo     CarReader
}
