package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSpreadRepository struct{ mock.Mock }

func (m *MockSpreadRepository) FindLatest(ctx context.Context, currency string) (float64, bool, error) {
	args := m.Called(ctx, currency)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

func TestSpreadCache_HitAfterFirstLookup(t *testing.T) {
	repo := new(MockSpreadRepository)
	c, err := NewSpreadCache(repo, 128, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	repo.On("FindLatest", mock.Anything, "EUR").Return(1.5, true, nil).Once()

	spread, ok, err := c.FindLatest(context.Background(), "EUR")
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 1.5, spread, 1e-9)
	c.cache.Wait()

	spread, ok, err = c.FindLatest(context.Background(), "EUR")
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 1.5, spread, 1e-9)

	repo.AssertExpectations(t)
}

func TestSpreadCache_CachesMisses(t *testing.T) {
	repo := new(MockSpreadRepository)
	c, err := NewSpreadCache(repo, 128, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	repo.On("FindLatest", mock.Anything, "GBP").Return(0.0, false, nil).Once()

	_, ok, err := c.FindLatest(context.Background(), "GBP")
	require.NoError(t, err)
	require.False(t, ok)
	c.cache.Wait()

	_, ok, err = c.FindLatest(context.Background(), "GBP")
	require.NoError(t, err)
	require.False(t, ok)
	repo.AssertExpectations(t)
}

func TestSpreadCache_DoesNotCacheErrors(t *testing.T) {
	repo := new(MockSpreadRepository)
	c, err := NewSpreadCache(repo, 128, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	repo.On("FindLatest", mock.Anything, "JPY").Return(0.0, false, errors.New("db down")).Once()
	repo.On("FindLatest", mock.Anything, "JPY").Return(2.0, true, nil).Once()

	_, _, err = c.FindLatest(context.Background(), "JPY")
	require.Error(t, err)
	c.cache.Wait()

	spread, ok, err := c.FindLatest(context.Background(), "JPY")
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 2.0, spread, 1e-9)
	repo.AssertExpectations(t)
}

func TestSpreadCache_ExpiresAfterTTL(t *testing.T) {
	repo := new(MockSpreadRepository)
	c, err := NewSpreadCache(repo, 128, 50*time.Millisecond)
	require.NoError(t, err)
	defer c.Close()

	repo.On("FindLatest", mock.Anything, "CHF").Return(1.0, true, nil).Once()
	repo.On("FindLatest", mock.Anything, "CHF").Return(3.0, true, nil).Once()

	spread, _, err := c.FindLatest(context.Background(), "CHF")
	require.NoError(t, err)
	require.InDelta(t, 1.0, spread, 1e-9)
	c.cache.Wait()

	time.Sleep(1100 * time.Millisecond)

	spread, _, err = c.FindLatest(context.Background(), "CHF")
	require.NoError(t, err)
	require.InDelta(t, 3.0, spread, 1e-9)
	repo.AssertExpectations(t)
}
