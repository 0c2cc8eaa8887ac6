// Package timer runs the delayed transitions of quiz sessions.
package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/aliskhannn/times-table-bot/internal/service"
)

// GocronDeferrer schedules one-shot jobs on a shared gocron scheduler.
type GocronDeferrer struct {
	mu        sync.Mutex // the job builder chain is not safe for concurrent use
	scheduler *gocron.Scheduler
}

// NewGocronDeferrer creates a deferrer and starts its scheduler.
func NewGocronDeferrer() *GocronDeferrer {
	s := gocron.NewScheduler(time.UTC)
	s.StartAsync()

	return &GocronDeferrer{scheduler: s}
}

// Defer runs fn once after delay.
func (d *GocronDeferrer) Defer(delay time.Duration, fn func()) (service.Timer, error) {
	if delay <= 0 {
		return nil, fmt.Errorf("defer: delay must be positive, got %s", delay)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	job, err := d.scheduler.Every(delay).WaitForSchedule().LimitRunsTo(1).Do(fn)
	if err != nil {
		return nil, fmt.Errorf("schedule job: %w", err)
	}

	return &gocronTimer{deferrer: d, job: job}, nil
}

// Pending returns the number of jobs that have not run or been stopped.
func (d *GocronDeferrer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.scheduler.Jobs())
}

// Stop halts the scheduler. Pending jobs never run.
func (d *GocronDeferrer) Stop() {
	d.scheduler.Stop()
}

type gocronTimer struct {
	deferrer *GocronDeferrer
	job      *gocron.Job
}

func (t *gocronTimer) Stop() {
	t.deferrer.mu.Lock()
	defer t.deferrer.mu.Unlock()

	t.deferrer.scheduler.RemoveByReference(t.job)
}
