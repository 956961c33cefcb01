package mapping

import (
	"github.com/cartime-app/cartime-backend/internal/core/domain"
	"github.com/cartime-app/cartime-backend/internal/models"
)

// ToModelBooking converts a domain Booking to a model Booking
func ToModelBooking(d domain.Booking) models.Booking {
	return models.Booking{
		BookingID:      d.BookingID,
		UserID:         d.UserID,
		CarID:          d.CarID,
		CarTitle:       d.CarTitle,
		CarPlate:       d.CarPlate,
		CarNightlyRate: d.CarNightlyRate,
		StartDate:      d.StartDate,
		EndDate:        d.EndDate,
		Nights:         d.Nights,
		TotalPrice:     d.TotalPrice,
		CurrencyCode:   d.CurrencyCode,
		PickupCity:     d.PickupCity,
		ContactPhone:   d.ContactPhone,
		Status:         string(d.Status),
		PaymentStatus:  string(d.PaymentStatus),
		PaymentMethod:  string(d.PaymentMethod),
		AmountPaid:     d.AmountPaid,
		PaidAt:         d.PaidAt,
		LedgerEntryID:  d.LedgerEntryID,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBooking converts a model Booking to a domain Booking
func ToDomainBooking(m models.Booking) domain.Booking {
	return domain.Booking{
		BookingID:      m.BookingID,
		UserID:         m.UserID,
		CarID:          m.CarID,
		CarTitle:       m.CarTitle,
		CarPlate:       m.CarPlate,
		CarNightlyRate: m.CarNightlyRate,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		Nights:         m.Nights,
		TotalPrice:     m.TotalPrice,
		CurrencyCode:   m.CurrencyCode,
		PickupCity:     m.PickupCity,
		ContactPhone:   m.ContactPhone,
		Status:         domain.BookingStatus(m.Status),
		PaymentStatus:  domain.PaymentStatus(m.PaymentStatus),
		PaymentMethod:  domain.PaymentMethod(m.PaymentMethod),
		AmountPaid:     m.AmountPaid,
		PaidAt:         m.PaidAt,
		LedgerEntryID:  m.LedgerEntryID,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainBookingSlice converts a slice of model Bookings to domain Bookings
func ToDomainBookingSlice(ms []models.Booking) []domain.Booking {
	ds := make([]domain.Booking, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBooking(m)
	}
	return ds
}

// ToDomainCar converts a model Car to a domain Car
func ToDomainCar(m models.Car) domain.Car {
	return domain.Car{
		CarID:        m.CarID,
		OwnerID:      m.OwnerID,
		Title:        m.Title,
		PlateNumber:  m.PlateNumber,
		NightlyRate:  m.NightlyRate,
		CurrencyCode: m.CurrencyCode,
		LocationCity: m.LocationCity,
		Status:       domain.CarStatus(m.Status),
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
