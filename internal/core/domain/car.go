package domain

import "github.com/shopspring/decimal"

// CarStatus is the publish lifecycle of a listing. Only PUBLISHED cars are
// bookable; the rest of the lifecycle is managed by the listings side.
type CarStatus string

const (
	CarPending   CarStatus = "PENDING"
	CarPublished CarStatus = "PUBLISHED"
	CarSuspended CarStatus = "SUSPENDED"
)

// Car is the read-only listing view the booking engine needs: identity, the
// nightly rate to snapshot into a booking, and whether it is bookable.
type Car struct {
	CarID        string          `json:"carID"` // Primary key (UUID)
	OwnerID      string          `json:"ownerID"`
	Title        string          `json:"title"`
	PlateNumber  string          `json:"plateNumber"`
	NightlyRate  decimal.Decimal `json:"nightlyRate"`
	CurrencyCode string          `json:"currencyCode"`
	LocationCity string          `json:"locationCity"`
	Status       CarStatus       `json:"status"`
	AuditFields
}

// IsBookable reports whether the car accepts new bookings.
func (c *Car) IsBookable() bool {
	return c.Status == CarPublished
}
