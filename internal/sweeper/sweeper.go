package sweeper

import (
	"context"
	"time"

	"roomsched/internal/bookings/service"
	"roomsched/pkg/logger"
)

// Sweeper periodically releases SCHEDULED bookings whose claim deadline has
// passed without a check-in. A failed pass is logged and the loop keeps
// running; the next tick retries naturally.
type Sweeper struct {
	bookings service.BookingService
	interval time.Duration
	log      *logger.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func New(bookings service.BookingService, interval time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{
		bookings: bookings,
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine. Call Stop to halt it.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.log.Info("Auto-release sweeper started", "interval", s.interval)
		for {
			select {
			case <-ctx.Done():
				s.log.Info("Auto-release sweeper stopped")
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *Sweeper) sweep(ctx context.Context) {
	count, err := s.bookings.ReleaseUnused(ctx)
	if err != nil {
		s.log.Error("Auto-release sweep failed", "error", err)
		return
	}
	if count > 0 {
		s.log.Info("Auto-release sweep completed", "released", count)
	}
}

// Stop halts the loop and waits for the in-flight pass to finish.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}
