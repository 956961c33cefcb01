package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cartime-app/cartime-backend/internal/core/domain"
	"github.com/cartime-app/cartime-backend/internal/utils"
)

// CreateBookingRequest defines the data needed to book and pay for a car.
// Dates are calendar days: the end date is the checkout day and is not charged.
type CreateBookingRequest struct {
	CarID        string `json:"carID" binding:"required,uuid"`
	StartDate    string `json:"startDate" binding:"required,dateonly"`
	EndDate      string `json:"endDate" binding:"required,dateonly"`
	ContactPhone string `json:"contactPhone" binding:"required"`
}

// Interval parses the request dates as UTC midnights.
func (r *CreateBookingRequest) Interval() (start, end time.Time, err error) {
	start, err = utils.ParseDateOnly(r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = utils.ParseDateOnly(r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// BookingResponse defines the data returned for a booking.
type BookingResponse struct {
	BookingID      string          `json:"bookingID"`
	CarID          string          `json:"carID"`
	CarTitle       string          `json:"carTitle"`
	CarPlate       string          `json:"carPlate"`
	CarNightlyRate decimal.Decimal `json:"carNightlyRate"`
	StartDate      string          `json:"startDate"`
	EndDate        string          `json:"endDate"`
	Nights         int             `json:"nights"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	CurrencyCode   string          `json:"currencyCode"`
	PickupCity     string          `json:"pickupCity"`
	ContactPhone   string          `json:"contactPhone"`
	Status         string          `json:"status"`
	PaymentStatus  string          `json:"paymentStatus"`
	PaymentMethod  string          `json:"paymentMethod"`
	AmountPaid     decimal.Decimal `json:"amountPaid"`
	PaidAt         *time.Time      `json:"paidAt,omitempty"`
	LedgerEntryID  *string         `json:"ledgerEntryID,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ToBookingResponse converts a domain.Booking to BookingResponse DTO
func ToBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		BookingID:      b.BookingID,
		CarID:          b.CarID,
		CarTitle:       b.CarTitle,
		CarPlate:       b.CarPlate,
		CarNightlyRate: b.CarNightlyRate,
		StartDate:      utils.FormatDateOnly(b.StartDate),
		EndDate:        utils.FormatDateOnly(b.EndDate),
		Nights:         b.Nights,
		TotalPrice:     b.TotalPrice,
		CurrencyCode:   b.CurrencyCode,
		PickupCity:     b.PickupCity,
		ContactPhone:   b.ContactPhone,
		Status:         string(b.Status),
		PaymentStatus:  string(b.PaymentStatus),
		PaymentMethod:  string(b.PaymentMethod),
		AmountPaid:     b.AmountPaid,
		PaidAt:         b.PaidAt,
		LedgerEntryID:  b.LedgerEntryID,
		CreatedAt:      b.CreatedAt,
	}
}

// ToBookingResponseSlice converts a slice of domain bookings.
func ToBookingResponseSlice(bs []domain.Booking) []BookingResponse {
	out := make([]BookingResponse, len(bs))
	for i := range bs {
		out[i] = ToBookingResponse(&bs[i])
	}
	return out
}

// ListBookingsResponse is a page of bookings with the token for the next page.
type ListBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// AvailabilityResponse lists the calendar days of [from, to) that are blocked
// by paid bookings. A booking's checkout day is never blocked.
type AvailabilityResponse struct {
	CarID       string   `json:"carID"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	BookedDates []string `json:"bookedDates"`
}
