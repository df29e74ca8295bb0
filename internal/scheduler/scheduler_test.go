package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	applog "github.com/monocle-dev/expense-tracker/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingJob(name string, interval time.Duration, runs *atomic.Int64, err error) Job {
	return Job{
		Name:     name,
		Interval: interval,
		Run: func(context.Context) (int64, error) {
			runs.Add(1)
			return 1, err
		},
	}
}

func TestSchedulerRunsImmediatelyAndRepeats(t *testing.T) {
	s := NewScheduler(applog.Discard())
	defer s.Stop()

	var runs atomic.Int64
	s.Add(countingJob("purge", 10*time.Millisecond, &runs, nil))

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	statuses := s.Status()
	require.Len(t, statuses, 1)
	assert.Equal(t, "purge", statuses[0].Name)
	assert.False(t, statuses[0].LastRun.IsZero())
	assert.NoError(t, statuses[0].LastError)
}

func TestSchedulerRecordsFailures(t *testing.T) {
	s := NewScheduler(applog.Discard())
	defer s.Stop()

	var runs atomic.Int64
	boom := errors.New("boom")
	s.Add(countingJob("failing", time.Hour, &runs, boom))

	assert.Eventually(t, func() bool {
		statuses := s.Status()
		return len(statuses) == 1 && errors.Is(statuses[0].LastError, boom)
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerIgnoresDisabledJobs(t *testing.T) {
	s := NewScheduler(applog.Discard())
	defer s.Stop()

	var runs atomic.Int64
	s.Add(countingJob("disabled", 0, &runs, nil))

	assert.Empty(t, s.Status())
	assert.Zero(t, runs.Load())
}

func TestSchedulerReplaceAndRemove(t *testing.T) {
	s := NewScheduler(applog.Discard())
	defer s.Stop()

	var first, second atomic.Int64
	s.Add(countingJob("purge", time.Hour, &first, nil))
	s.Add(countingJob("purge", time.Hour, &second, nil))

	assert.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Len(t, s.Status(), 1)

	s.Remove("purge")
	assert.Empty(t, s.Status())
}

func TestSchedulerStopWaitsAndRejectsNewJobs(t *testing.T) {
	s := NewScheduler(applog.Discard())

	var runs atomic.Int64
	s.Add(countingJob("purge", 5*time.Millisecond, &runs, nil))
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, 5*time.Millisecond)

	s.Stop()
	stopped := runs.Load()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())

	s.Add(countingJob("late", 5*time.Millisecond, &runs, nil))
	assert.Empty(t, s.Status())
}
