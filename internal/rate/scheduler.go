package rate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultRefreshCron     = "5 12 * * *"
	defaultRefreshTimeZone = "GMT"
)

// Scheduler triggers the daily provider refresh.
type Scheduler struct {
	refresher Refresher
	cron      string
	location  *time.Location
	// -----
	mu    sync.Mutex
	sched gocron.Scheduler
}

func (s *Scheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(s.location))
	if err != nil {
		return err
	}

	job := func(jobCtx context.Context) {
		execID := uuid.NewString()
		if refreshErr := RunRefresh(jobCtx, execID, s.refresher); refreshErr != nil {
			logrus.WithError(refreshErr).WithField("exec_id", execID).Error("Rates refresh job failed")
		}
	}

	_, err = scheduler.NewJob(
		gocron.CronJob(s.cron, false),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule refresh job %q: %w", s.cron, err)
	}

	s.mu.Lock()
	s.sched = scheduler
	s.mu.Unlock()
	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

// Shutdown stops the scheduler once; concurrent and repeated calls return nil.
func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	sched := s.sched
	s.sched = nil
	s.mu.Unlock()

	if sched == nil {
		return nil
	}
	return sched.Shutdown()
}

func (s *Scheduler) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched != nil
}

// NewScheduler falls back to 12:05 GMT daily when cron or timeZone are empty.
func NewScheduler(refresher Refresher, cron string, timeZone string) (*Scheduler, error) {
	if cron == "" {
		cron = defaultRefreshCron
	}
	if timeZone == "" {
		timeZone = defaultRefreshTimeZone
	}
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", timeZone, err)
	}
	return &Scheduler{refresher: refresher, cron: cron, location: loc}, nil
}
