package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepTimeout = 30 * time.Second

// Sweeper evicts finished matches past their retention window.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// CleanupJob runs the match retention sweep on a cron schedule.
type CleanupJob struct {
	sweeper  Sweeper
	schedule string
	logger   *zap.Logger
	cron     *cron.Cron
}

func NewCleanupJob(sweeper Sweeper, schedule string, logger *zap.Logger) *CleanupJob {
	return &CleanupJob{
		sweeper:  sweeper,
		schedule: schedule,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start schedules the sweep. It fails on an invalid schedule.
func (j *CleanupJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		if _, err := j.RunCleanup(context.Background()); err != nil {
			j.logger.Error("Cleanup job failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}

	j.cron.Start()
	j.logger.Info("Cleanup job started", zap.String("schedule", j.schedule))
	return nil
}

// Stop waits for a running sweep to finish.
func (j *CleanupJob) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
		j.logger.Info("Cleanup job stopped")
	}
}

// RunCleanup performs a single sweep.
func (j *CleanupJob) RunCleanup(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	evicted, err := j.sweeper.SweepExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweep expired matches: %w", err)
	}
	if evicted > 0 {
		j.logger.Info("Evicted finished matches", zap.Int("count", evicted))
	}
	return evicted, nil
}
