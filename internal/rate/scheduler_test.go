package rate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fxexchange/internal/domain"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRefresher struct{ mock.Mock }

func (m *MockRefresher) RefreshLatest(ctx context.Context) (domain.MergeResult, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(domain.MergeResult)
	return res, args.Error(1)
}

func TestNewScheduler_Defaults(t *testing.T) {
	s, err := NewScheduler(new(MockRefresher), "", "")
	require.NoError(t, err)
	require.NotNil(t, s)
	require.False(t, s.running())
	require.Equal(t, "5 12 * * *", s.cron)
	require.Equal(t, "GMT", s.location.String())
}

func TestNewScheduler_InvalidTimeZone(t *testing.T) {
	_, err := NewScheduler(new(MockRefresher), "", "Mars/Olympus")
	require.Error(t, err)
}

func TestScheduler_Start_InvalidCron(t *testing.T) {
	s, err := NewScheduler(new(MockRefresher), "not a cron", "GMT")
	require.NoError(t, err)

	require.Error(t, s.Start(context.Background()))
	require.False(t, s.running())
}

func TestScheduler_Shutdown_NoScheduler_ReturnsNil(t *testing.T) {
	s, err := NewScheduler(new(MockRefresher), "", "")
	require.NoError(t, err)
	require.NoError(t, s.Shutdown())
	require.False(t, s.running())
}

func TestScheduler_Start_And_ContextCancel_ShutsDown(t *testing.T) {
	s, err := NewScheduler(new(MockRefresher), "", "")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	require.True(t, s.running())

	cancel()

	require.Eventually(t, func() bool { return !s.running() }, 2*time.Second, 10*time.Millisecond,
		"expected scheduler to be shutdown after ctx cancel")
}

func TestScheduler_Shutdown_AfterStart_Idempotent(t *testing.T) {
	s, err := NewScheduler(new(MockRefresher), "", "")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	require.True(t, s.running())

	require.NoError(t, s.Shutdown())
	require.False(t, s.running())
	require.NoError(t, s.Shutdown())
}

func TestScheduler_ContextCancelAndShutdown_Concurrent(t *testing.T) {
	s, err := NewScheduler(new(MockRefresher), "", "")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))

	var wg sync.WaitGroup
	errs := make([]error, 3)
	wg.Add(len(errs))
	go func() {
		defer wg.Done()
		cancel()
	}()
	for i := 1; i < len(errs); i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Shutdown()
		}(i)
	}
	wg.Wait()

	require.Eventually(t, func() bool { return !s.running() }, 2*time.Second, 10*time.Millisecond)
	for _, shutdownErr := range errs {
		require.NoError(t, shutdownErr)
	}
	require.NoError(t, s.Shutdown())
}

func TestRunRefresh(t *testing.T) {
	r := new(MockRefresher)
	r.On("RefreshLatest", mock.Anything).Return(domain.MergeResult{Created: 3}, nil).Once()
	require.NoError(t, RunRefresh(context.Background(), "exec-1", r))

	r.On("RefreshLatest", mock.Anything).Return(domain.MergeResult{}, errors.New("provider down")).Once()
	require.EqualError(t, RunRefresh(context.Background(), "exec-2", r), "provider down")
	r.AssertExpectations(t)
}
