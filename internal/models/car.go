package models

import "github.com/shopspring/decimal"

// Car mirrors the cars table. The booking engine only reads listings; the
// publish/suspend lifecycle is owned by the listings side.
type Car struct {
	CarID        string          `db:"car_id"`
	OwnerID      string          `db:"owner_id"`
	Title        string          `db:"title"`
	PlateNumber  string          `db:"plate_number"`
	NightlyRate  decimal.Decimal `db:"nightly_rate"`
	CurrencyCode string          `db:"currency_code"`
	LocationCity string          `db:"location_city"`
	Status       string          `db:"status"`
	AuditFields
}
