package sync

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tressly/tressly/internal/event_bus"
	"github.com/tressly/tressly/pkg/google"
)

// Scheduler triggers sync cycles: periodically on a ticker, and off-schedule
// after local mutations and after the Google account is connected. A cycle
// already in flight absorbs the trigger.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
}

func NewScheduler(engine *Engine, bus *event_bus.EventBus, intervalMinutes int) *Scheduler {
	s := &Scheduler{
		engine:   engine,
		interval: time.Duration(intervalMinutes) * time.Minute,
	}

	bus.Subscribe(event_bus.AppointmentChanged, func(event event_bus.Event) error {
		go s.trigger(context.WithoutCancel(event.Context()))
		return nil
	})
	bus.Subscribe(event_bus.GoogleConnected, func(event event_bus.Event) error {
		go s.trigger(context.WithoutCancel(event.Context()))
		return nil
	})
	bus.Subscribe(event_bus.AppointmentDeleted, func(event event_bus.Event) error {
		data, ok := event.Data.(event_bus.AppointmentDeletedData)
		if !ok {
			return nil
		}
		// Local deletions call the calendar directly instead of waiting for
		// the next polling cycle.
		if err := s.engine.OnAppointmentDeleted(event.Context(), data); err != nil {
			log.Errorf("failed to propagate appointment deletion: %v", err)
		}
		return nil
	})

	return s
}

// Run blocks until ctx is cancelled, executing a cycle every interval.
func (s *Scheduler) Run(ctx context.Context) {
	log.Infof("Starting calendar sync scheduler with %s interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Calendar sync scheduler stopped")
			return
		case <-ticker.C:
			s.trigger(ctx)
		}
	}
}

// syncTimeout bounds one full cycle; the remote provider can stall.
const syncTimeout = 2 * time.Minute

func (s *Scheduler) trigger(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	_, err := s.engine.RunFullSync(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrSyncInProgress):
		log.Debug("Sync already running, skipping trigger")
	case errors.Is(err, google.ErrUnauthenticated):
		log.Debug("Google Calendar not connected, skipping sync")
	default:
		log.Warnf("scheduled sync failed: %v", err)
	}
}
