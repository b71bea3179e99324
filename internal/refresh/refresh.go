// Package refresh re-fetches the station snapshot on a cron schedule.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// SnapshotRefresher starts a snapshot fetch.
type SnapshotRefresher interface {
	RefreshSnapshot(ctx context.Context) error
}

// Refresher triggers snapshot refreshes on a schedule.
type Refresher struct {
	cron     *cron.Cron
	target   SnapshotRefresher
	schedule string
	logger   *slog.Logger

	runCtx context.Context
}

// New validates schedule (standard five-field cron or a descriptor such as
// "@every 5m") and wires the refresh job.
func New(schedule string, target SnapshotRefresher, logger *slog.Logger) (*Refresher, error) {
	r := &Refresher{
		cron:     cron.New(),
		target:   target,
		schedule: schedule,
		logger:   logger,
		runCtx:   context.Background(),
	}
	if _, err := r.cron.AddFunc(schedule, func() { r.refresh(r.runCtx) }); err != nil {
		return nil, fmt.Errorf("schedule snapshot refresh %q: %w", schedule, err)
	}
	return r, nil
}

// Run starts the scheduler and blocks until ctx is cancelled, then waits for
// a running job to finish.
func (r *Refresher) Run(ctx context.Context) error {
	r.runCtx = ctx
	r.logger.Info("snapshot refresh scheduled", "schedule", r.schedule)
	r.cron.Start()

	<-ctx.Done()
	<-r.cron.Stop().Done()
	r.logger.Info("snapshot refresh stopped")
	return nil
}

func (r *Refresher) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.target.RefreshSnapshot(reqCtx); err != nil {
		r.logger.Warn("scheduled snapshot refresh failed", "error", err)
		return
	}
	r.logger.Debug("scheduled snapshot refresh started")
}
