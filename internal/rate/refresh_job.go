package rate

import (
	"context"
	"fxexchange/internal/domain"
	"time"

	"github.com/sirupsen/logrus"
)

type Refresher interface {
	RefreshLatest(ctx context.Context) (domain.MergeResult, error)
}

// RunRefresh runs one refresh cycle and logs its outcome under execID.
func RunRefresh(ctx context.Context, execID string, refresher Refresher) error {
	log := logrus.WithField("exec_id", execID)
	log.Info("Refreshing rates from provider")

	started := time.Now()
	res, err := refresher.RefreshLatest(ctx)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"created":  res.Created,
		"updated":  res.Updated,
		"duration": time.Since(started).String(),
	}).Info("Rates refresh finished")
	return nil
}
