package apperrors

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InsufficientFundsError carries the amounts the caller needs to self-correct
// (top up the difference). errors.Is(err, ErrInsufficientFunds) holds for it.
type InsufficientFundsError struct {
	Needed  decimal.Decimal
	Balance decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient wallet balance: need %s, have %s", e.Needed.StringFixed(2), e.Balance.StringFixed(2))
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// DatesUnavailableError carries the conflicting interval for client display.
// errors.Is(err, ErrDatesUnavailable) holds for it.
type DatesUnavailableError struct {
	ConflictStart time.Time
	ConflictEnd   time.Time
}

func (e *DatesUnavailableError) Error() string {
	return fmt.Sprintf("selected dates are already booked: conflict [%s, %s)",
		e.ConflictStart.Format("2006-01-02"), e.ConflictEnd.Format("2006-01-02"))
}

func (e *DatesUnavailableError) Unwrap() error {
	return ErrDatesUnavailable
}
