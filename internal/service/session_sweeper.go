package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionEvicter closes sessions that have been idle for too long.
type SessionEvicter interface {
	EvictIdle(now time.Time, ttl time.Duration) int
	Active() int
}

// SessionSweeper periodically tears down idle quiz sessions.
type SessionSweeper struct {
	sessions SessionEvicter
	schedule string
	idleTTL  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewSessionSweeper creates a sweeper running on a cron schedule such as "@every 10m".
func NewSessionSweeper(sessions SessionEvicter, schedule string, idleTTL time.Duration, logger *zap.Logger) *SessionSweeper {
	return &SessionSweeper{
		sessions: sessions,
		schedule: schedule,
		idleTTL:  idleTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Start runs the sweep loop until ctx is done.
func (s *SessionSweeper) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))

	if _, err := c.AddFunc(s.schedule, s.Sweep); err != nil {
		return fmt.Errorf("add sweep job %q: %w", s.schedule, err)
	}

	c.Start()
	s.logger.Info("session sweeper started",
		zap.String("schedule", s.schedule),
		zap.Duration("idle_ttl", s.idleTTL),
	)

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("session sweeper stopped")

	return nil
}

// Sweep evicts idle sessions once.
func (s *SessionSweeper) Sweep() {
	evicted := s.sessions.EvictIdle(s.now(), s.idleTTL)
	if evicted == 0 {
		return
	}

	s.logger.Info("idle quiz sessions evicted",
		zap.Int("evicted", evicted),
		zap.Int("active", s.sessions.Active()),
	)
}
