package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller is not allowed to act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrWalletFrozen indicates the wallet rejects debits and credits.
var ErrWalletFrozen = errors.New("wallet is frozen")

// ErrCarNotBookable indicates the car is not published for booking.
var ErrCarNotBookable = errors.New("car not available for booking")

// ErrInsufficientFunds indicates the wallet balance does not cover the requested debit.
var ErrInsufficientFunds = errors.New("insufficient wallet balance")

// ErrDatesUnavailable indicates the requested interval conflicts with a paid booking.
var ErrDatesUnavailable = errors.New("selected dates are already booked")

// ErrDuplicatePendingTopUp indicates the wallet already has a pending top-up request.
var ErrDuplicatePendingTopUp = errors.New("a pending top-up already exists for this wallet")

// ErrAmountOutOfRange indicates a top-up amount outside the configured policy window.
var ErrAmountOutOfRange = errors.New("amount outside allowed top-up range")

// ErrReferenceExhausted indicates the reference generator ran out of retries.
var ErrReferenceExhausted = errors.New("could not generate a unique top-up reference")

// ErrTopUpExpired indicates a pending top-up past its expiry; it is void and cannot be decided.
var ErrTopUpExpired = errors.New("top-up request has expired")

// ErrTransient indicates a retryable infrastructure failure (write conflict, lock
// timeout). It does NOT mean the dates are taken or the balance is short; callers
// may retry the whole operation.
var ErrTransient = errors.New("transient storage conflict, please retry")

// AppError wraps lower-level failures with an HTTP-ish status code and a message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
