package rate

import (
	"fxexchange/internal/domain"
	"time"

	"github.com/shopspring/decimal"
)

// Validator holds the input rules shared by the query path, the merge path and the API.
type Validator struct {
	now func() time.Time
}

// Today is the current calendar date, the latest date a rate may carry.
func (v *Validator) Today() time.Time {
	return domain.DateOf(v.now())
}

// ValidatePair expects normalized codes.
func (v *Validator) ValidatePair(from, to string) error {
	if from == "" || to == "" {
		return domain.ErrCurrencyRequired
	}
	if from == to {
		return domain.ErrSameCurrencies
	}
	return nil
}

func (v *Validator) ValidateDate(date time.Time) error {
	if domain.DateOf(date).After(v.Today()) {
		return domain.ErrDateInFuture
	}
	return nil
}

// ValidateRate checks the rate fits numeric(19,6) and is strictly positive.
func ValidateRate(rate decimal.Decimal) error {
	if rate.Sign() <= 0 {
		return domain.ErrRateNotPositive
	}
	if integerDigits(rate) > domain.MaxRateIntegerDigits {
		return domain.ErrRateOverflow
	}
	if fractionDigits(rate) > domain.RateScale {
		return domain.ErrRateScaleOverflow
	}
	return nil
}

// ValidateEntries rejects the whole batch on the first violation. Each rule is
// applied to every entry before the next rule runs, so a batch with several
// problems always reports the same one.
func (v *Validator) ValidateEntries(entries []domain.RateEntry) error {
	for _, e := range entries {
		if err := v.ValidatePair(e.From, e.To); err != nil {
			return err
		}
	}
	for _, e := range entries {
		if err := v.ValidateDate(e.Date); err != nil {
			return err
		}
	}
	for _, e := range entries {
		if e.Rate.Sign() <= 0 {
			return domain.ErrRateNotPositive
		}
	}
	for _, e := range entries {
		if integerDigits(e.Rate) > domain.MaxRateIntegerDigits {
			return domain.ErrRateOverflow
		}
	}
	for _, e := range entries {
		if fractionDigits(e.Rate) > domain.RateScale {
			return domain.ErrRateScaleOverflow
		}
	}
	return nil
}

// integerDigits is precision minus scale; it goes negative for values below 0.1.
func integerDigits(d decimal.Decimal) int {
	return d.NumDigits() + int(d.Exponent())
}

// fractionDigits is the scale as written, trailing zeros included.
func fractionDigits(d decimal.Decimal) int {
	if exp := int(d.Exponent()); exp < 0 {
		return -exp
	}
	return 0
}

func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}
