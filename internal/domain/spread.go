package domain

import "time"

// Spread is an append-only entry of a currency's spread history, in percent.
type Spread struct {
	ID        int64
	Currency  string
	Spread    float64
	CreatedAt time.Time
}
