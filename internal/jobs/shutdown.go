package jobs

import (
	"log/slog"
	"sync"
	"time"
)

// ShutdownJob stops the process once a deadline passes. The deactivation
// broadcast uses it to give queued messages time to go out.
type ShutdownJob struct {
	exit   func()
	logger *slog.Logger

	mu       sync.Mutex
	timer    *time.Timer
	deadline time.Time
	now      func() time.Time
}

// NewShutdownJob creates a job that calls exit when it fires.
func NewShutdownJob(exit func(), logger *slog.Logger) *ShutdownJob {
	return &ShutdownJob{
		exit:   exit,
		logger: logger.With("component", "shutdown"),
		now:    time.Now,
	}
}

// Schedule arms the job. If a shutdown is already pending, the earlier
// deadline wins.
func (j *ShutdownJob) Schedule(after time.Duration, reason string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	deadline := j.now().Add(after)
	if j.timer != nil && !deadline.Before(j.deadline) {
		j.logger.Info("shutdown already scheduled", "at", j.deadline, "reason", reason)
		return
	}
	if j.timer != nil {
		j.timer.Stop()
	}

	j.deadline = deadline
	j.timer = time.AfterFunc(after, func() {
		j.logger.Warn("shutting down", "reason", reason)
		j.exit()
	})
	j.logger.Info("shutdown scheduled", "in", after, "reason", reason)
}

// Stop cancels a pending shutdown.
func (j *ShutdownJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.timer != nil {
		j.timer.Stop()
		j.timer = nil
		j.deadline = time.Time{}
		j.logger.Info("scheduled shutdown cancelled")
	}
}

// Deadline returns the pending shutdown time, if any.
func (j *ShutdownJob) Deadline() (time.Time, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.deadline, j.timer != nil
}
