package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"roomsched/pkg/logger"
	"roomsched/pkg/model"
)

type mockBookingService struct {
	releaseFunc func(ctx context.Context) (int, error)
}

func (m *mockBookingService) Create(context.Context, string, *model.BookingRequest) (*model.BookingOutcome, error) {
	return nil, nil
}

func (m *mockBookingService) GetByID(context.Context, string) (*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingService) ListForOrganizer(context.Context, string, *time.Time, *time.Time, int, int64) ([]*model.Booking, int64, error) {
	return nil, 0, nil
}

func (m *mockBookingService) Calendar(context.Context, time.Time) (map[string][]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingService) Cancel(context.Context, string, string) (*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingService) CheckIn(context.Context, string, string) (*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingService) ReleaseUnused(ctx context.Context) (int, error) {
	if m.releaseFunc != nil {
		return m.releaseFunc(ctx)
	}
	return 0, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func TestSweeper_RunsPeriodically(t *testing.T) {
	var calls atomic.Int32
	svc := &mockBookingService{
		releaseFunc: func(_ context.Context) (int, error) {
			calls.Add(1)
			return 1, nil
		},
	}

	s := New(svc, 10*time.Millisecond, testLogger())
	s.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if calls.Load() < 2 {
		t.Errorf("expected at least 2 sweep passes, got %d", calls.Load())
	}
}

func TestSweeper_SurvivesFailures(t *testing.T) {
	var calls atomic.Int32
	svc := &mockBookingService{
		releaseFunc: func(_ context.Context) (int, error) {
			calls.Add(1)
			return 0, errors.New("database unavailable")
		},
	}

	s := New(svc, 10*time.Millisecond, testLogger())
	s.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	// The loop must keep ticking through failed passes.
	if calls.Load() < 2 {
		t.Errorf("expected sweeps to continue after failures, got %d", calls.Load())
	}
}

func TestSweeper_StopIsIdempotentBeforeStart(t *testing.T) {
	s := New(&mockBookingService{}, time.Minute, testLogger())
	s.Stop() // must not panic or block
}
