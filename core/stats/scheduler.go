package stats

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"reportdesk/config"
	"reportdesk/core/store"
	"reportdesk/core/utils"
)

// Scheduler persists a statistics snapshot on a cron schedule so the
// dashboard has history even when nobody calls the live endpoint.
type Scheduler struct {
	cfg    config.SchedulerConfig
	svc    *Service
	store  store.StatsStore
	logger *utils.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

func NewScheduler(cfg config.SchedulerConfig, svc *Service, st store.StatsStore, logger *utils.Logger) *Scheduler {
	return &Scheduler{cfg: cfg, svc: svc, store: st, logger: logger}
}

func (s *Scheduler) StartWithContext(ctx context.Context) error {
	if s == nil || s.svc == nil || !s.cfg.Enabled {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	c := cron.New()
	spec := s.cfg.SnapshotCron
	if spec == "" {
		spec = "0 3 * * *"
	}
	_, err := c.AddFunc(spec, func() {
		if err := s.RunOnce(ctx, time.Now().UTC()); err != nil {
			s.logger.Errorf("stats snapshot failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	s.cron = c
	s.running = true
	return nil
}

func (s *Scheduler) StopWithContext(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()
	if !wasRunning || c == nil {
		return nil
	}
	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) error {
	if s == nil || s.svc == nil {
		return nil
	}
	bundle, err := s.svc.ComputeAt(ctx, now.UTC())
	if err != nil {
		return err
	}
	payload, err := json.Marshal(bundle)
	if err != nil {
		return err
	}
	if _, err := s.store.SaveSnapshot(ctx, now.UTC(), string(payload)); err != nil {
		return err
	}
	s.logger.Printf("stats snapshot saved (%d reports, %d%% resolved)",
		bundle.Totals.TotalReports, bundle.ResolutionRate)
	return nil
}
