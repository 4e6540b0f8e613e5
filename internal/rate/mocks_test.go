package rate

import (
	"context"
	"time"

	"fxexchange/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- Testify mocks ---

type MockRateRepository struct{ mock.Mock }

func (m *MockRateRepository) FindLatest(ctx context.Context, from string, to string, date time.Time) (domain.ExchangeRate, error) {
	args := m.Called(ctx, from, to, date)
	r, _ := args.Get(0).(domain.ExchangeRate)
	return r, args.Error(1)
}

func (m *MockRateRepository) IncrementAccessCounter(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRateRepository) UpsertAll(ctx context.Context, rates []domain.ExchangeRate) (domain.MergeResult, error) {
	args := m.Called(ctx, rates)
	res, _ := args.Get(0).(domain.MergeResult)
	return res, args.Error(1)
}

type MockSpreadRepository struct{ mock.Mock }

func (m *MockSpreadRepository) FindLatest(ctx context.Context, currency string) (float64, bool, error) {
	args := m.Called(ctx, currency)
	spread, _ := args.Get(0).(float64)
	return spread, args.Bool(1), args.Error(2)
}

type MockRateProvider struct{ mock.Mock }

func (m *MockRateProvider) FetchLatest(ctx context.Context, accessKey string, base string) (domain.Snapshot, error) {
	args := m.Called(ctx, accessKey, base)
	s, _ := args.Get(0).(domain.Snapshot)
	return s, args.Error(1)
}
