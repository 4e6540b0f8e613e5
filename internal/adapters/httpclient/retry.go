package httpclient

import (
	"context"
	"fxexchange/internal/adapters"
	"fxexchange/internal/domain"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// RetryingProvider retries transient provider failures with exponential backoff.
type RetryingProvider struct {
	next       adapters.RateProvider
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

func (p *RetryingProvider) FetchLatest(ctx context.Context, accessKey string, base string) (domain.Snapshot, error) {
	var snapshot domain.Snapshot
	op := func() error {
		s, err := p.next.FetchLatest(ctx, accessKey, base)
		if err != nil {
			if IsPermanent(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		snapshot = s
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logrus.WithError(err).WithFields(logrus.Fields{"base": base, "retry_in": wait}).Warn("Rate provider call failed, retrying")
	}

	b := backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), p.maxRetries), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return domain.Snapshot{}, err
	}
	return snapshot, nil
}

func NewRetryingProvider(next adapters.RateProvider, maxRetries uint64) *RetryingProvider {
	return &RetryingProvider{
		next:       next,
		maxRetries: maxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxElapsedTime = time.Minute
			return b
		},
	}
}
