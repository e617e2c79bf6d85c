package lock

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Sweeper periodically clears abandoned locks so the UI does not show them
// as held.
type Sweeper struct {
	manager *Manager
	cron    *cron.Cron

	mu      sync.Mutex
	running bool
}

// NewSweeper schedules ReleaseStale with a standard five-field cron
// expression or a descriptor such as "@every 5m".
func NewSweeper(manager *Manager, schedule string) (*Sweeper, error) {
	s := &Sweeper{
		manager: manager,
		cron:    cron.New(),
	}
	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return nil, errors.Wrapf(err, "invalid lock sweep schedule %q", schedule)
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	log.Info("Lock sweeper started")
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	log.Info("Lock sweeper stopped")
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.manager.ReleaseStale(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to release stale locks")
		return
	}
	if n > 0 {
		log.WithField("count", n).Info("Released stale borehole locks")
	}
}
