package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSweeper struct {
	evicted int
	err     error
	calls   int
}

func (s *stubSweeper) SweepExpired(ctx context.Context) (int, error) {
	s.calls++
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("sweep called without deadline")
	}
	return s.evicted, s.err
}

func TestRunCleanup(t *testing.T) {
	sweeper := &stubSweeper{evicted: 3}
	job := NewCleanupJob(sweeper, "@every 1h", zap.NewNop())

	n, err := job.RunCleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, sweeper.calls)
}

func TestRunCleanup_Error(t *testing.T) {
	sweeper := &stubSweeper{err: errors.New("loop stopped")}
	job := NewCleanupJob(sweeper, "@every 1h", zap.NewNop())

	_, err := job.RunCleanup(context.Background())
	assert.ErrorIs(t, err, sweeper.err)
}

func TestStart_InvalidSchedule(t *testing.T) {
	job := NewCleanupJob(&stubSweeper{}, "not a schedule", zap.NewNop())
	assert.Error(t, job.Start())
}

func TestStartStop(t *testing.T) {
	job := NewCleanupJob(&stubSweeper{}, "@every 1h", zap.NewNop())
	require.NoError(t, job.Start())
	job.Stop()
}
