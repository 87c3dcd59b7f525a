package stats

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps robfig/cron and keeps the government dashboard snapshot
// warm so dashboard requests normally hit the cache instead of fanning out.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
	spec   string
}

// NewScheduler creates a Scheduler that refreshes every intervalMinutes.
func NewScheduler(engine *Engine, intervalMinutes int) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		engine: engine,
		spec:   fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Start registers the refresh job and starts the scheduler. Also refreshes
// once immediately so the first dashboard request is warm.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.refresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[portal-service] stats refresh scheduled — spec: %s", s.spec)

	go s.refresh(ctx)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[portal-service] stats refresh stopped")
}

func (s *Scheduler) refresh(ctx context.Context) {
	if _, err := s.engine.computeGovernmentDashboard(ctx, 6); err != nil {
		slog.Warn("government dashboard refresh failed", "err", err)
		return
	}
	slog.Info("government dashboard snapshot refreshed")
}
