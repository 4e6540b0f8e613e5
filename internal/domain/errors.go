package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrRateNotFound        = errors.New("rate not found")
	ErrProviderUnavailable = errors.New("rate provider unavailable")
	ErrProviderAuth        = errors.New("rate provider rejected credentials")
)

// ValidationError is a user input error. It matches ErrInvalidRequest.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidRequest }

var (
	ErrCurrencyRequired  = &ValidationError{msg: "currency code is required"}
	ErrSameCurrencies    = &ValidationError{msg: "cannot exchange the same currencies"}
	ErrDateInFuture      = &ValidationError{msg: "currency exchange date cannot be set to future"}
	ErrRateNotPositive   = &ValidationError{msg: "currency exchange rate cannot be negative or zero"}
	ErrRateOverflow      = &ValidationError{msg: fmt.Sprintf("currency exchange rate overflow, max accepted value length is %d", MaxRateIntegerDigits)}
	ErrRateScaleOverflow = &ValidationError{msg: fmt.Sprintf("currency exchange rate scale overflow, max accepted length is %d", RateScale)}
)

// RateNotFoundError reports that no rate exists for Currency at or before Date.
type RateNotFoundError struct {
	Currency string
	Date     time.Time
}

func (e *RateNotFoundError) Error() string {
	return fmt.Sprintf("currency exchange not found for %s with date %s", e.Currency, e.Date.Format(DateLayout))
}

func (e *RateNotFoundError) Is(target error) bool { return target == ErrRateNotFound }
