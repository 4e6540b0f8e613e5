package adapters

import (
	"context"
	"fxexchange/internal/domain"
	"time"
)

type RateProvider interface {
	FetchLatest(ctx context.Context, accessKey string, base string) (domain.Snapshot, error)
}

type RateRepository interface {
	FindLatest(ctx context.Context, from string, to string, date time.Time) (domain.ExchangeRate, error)
	IncrementAccessCounter(ctx context.Context, id int64) error
	UpsertAll(ctx context.Context, rates []domain.ExchangeRate) (domain.MergeResult, error)
}

type SpreadRepository interface {
	// FindLatest returns the most recently created spread for currency; ok is false when none exists.
	FindLatest(ctx context.Context, currency string) (spread float64, ok bool, err error)
}
