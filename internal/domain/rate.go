package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// RatePrecision and RateScale mirror the numeric(19,6) rate column.
	RatePrecision = 19
	RateScale     = 6
	// MaxRateIntegerDigits is the longest integer part a stored rate can have.
	MaxRateIntegerDigits = RatePrecision - RateScale
)

const DateLayout = "2006-01-02"

// ExchangeRate is one point of the base-relative rate time series.
type ExchangeRate struct {
	ID            int64
	CurrencyFrom  string
	CurrencyTo    string
	Rate          decimal.Decimal
	ExchangeDate  time.Time
	AccessCounter int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NaturalKey identifies a rate record; at most one record exists per key.
type NaturalKey struct {
	From string
	To   string
	Date string // DateLayout formatted
}

func (r ExchangeRate) Key() NaturalKey {
	return NaturalKey{From: r.CurrencyFrom, To: r.CurrencyTo, Date: r.ExchangeDate.Format(DateLayout)}
}

// RateEntry is a single observation to be merged into the time series.
type RateEntry struct {
	From string
	To   string
	Date time.Time
	Rate decimal.Decimal
}

// Snapshot is what the upstream provider returns for one fetch.
type Snapshot struct {
	Base  string
	Date  time.Time
	Rates map[string]decimal.Decimal
}

// Quote is the computed exchange between two currencies.
type Quote struct {
	From     string
	To       string
	Exchange decimal.Decimal
}

// MergeResult reports how many records a merge created and updated.
type MergeResult struct {
	Created int
	Updated int
}

// NormalizeCode trims and upper-cases a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DateOf drops the time of day, keeping the calendar date of t in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
