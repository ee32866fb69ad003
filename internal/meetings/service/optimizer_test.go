package service

import (
	"context"
	"testing"
	"time"

	bookingserrors "roomsched/internal/bookings/errors"
	roomserrors "roomsched/internal/rooms/errors"
	"roomsched/pkg/config"
	mongotx "roomsched/pkg/db/mongo"
	"roomsched/pkg/logger"
	"roomsched/pkg/model"
)

// Mock repositories for testing

type mockRoomRepository struct {
	rooms []*model.MeetingRoom
}

func (m *mockRoomRepository) FindAll(_ context.Context) ([]*model.MeetingRoom, error) {
	return m.rooms, nil
}

func (m *mockRoomRepository) FindByIDOrName(_ context.Context, _ string) (*model.MeetingRoom, error) {
	return nil, roomserrors.ErrNotFound
}

func (m *mockRoomRepository) FindByMinCapacity(_ context.Context, capacity int) ([]*model.MeetingRoom, error) {
	var result []*model.MeetingRoom
	for _, r := range m.rooms {
		if r.Capacity >= capacity {
			result = append(result, r)
		}
	}
	return result, nil
}

type mockBookingRepository struct {
	active []*model.Booking
}

func (m *mockBookingRepository) Create(_ context.Context, _ *model.Booking) error { return nil }

func (m *mockBookingRepository) FindByID(_ context.Context, _ string) (*model.Booking, error) {
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindByOrganizer(_ context.Context, _ string, _, _ *time.Time, _ int, _ int64) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) CountByOrganizer(_ context.Context, _ string, _, _ *time.Time) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) FindActiveByRoomInWindow(_ context.Context, roomID string, _, _ time.Time) ([]*model.Booking, error) {
	var result []*model.Booking
	for _, b := range m.active {
		if b.RoomID == roomID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *mockBookingRepository) FindActiveInWindow(_ context.Context, _, _ time.Time) ([]*model.Booking, error) {
	return m.active, nil
}

func (m *mockBookingRepository) FindNonCancelledInWindow(_ context.Context, _, _ time.Time) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) UpdateStatus(_ context.Context, _, _ string) (*model.Booking, error) {
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) ClearAutoRelease(_ context.Context, _ string) (*model.Booking, error) {
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindDueForRelease(_ context.Context, _ time.Time) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) ReleaseIfUnclaimed(_ context.Context, _ string, _ time.Time) (bool, error) {
	return false, nil
}

func (m *mockBookingRepository) ExecuteTransaction(_ context.Context, _ mongotx.TransactionFunc) error {
	return nil
}

func newOptimizerConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		BufferMinutes:     15,
		SearchStepMinutes: 5,
		SearchHorizon:     4 * time.Hour,
		WeightPriority:    10000,
		WeightUtilization: 1,
		WeightCost:        50,
		WeightShift:       2,
	}
}

func newOptimizer(rooms []*model.MeetingRoom, active []*model.Booking, now time.Time) *meetingOptimizer {
	return &meetingOptimizer{
		rooms:    &mockRoomRepository{rooms: rooms},
		bookings: &mockBookingRepository{active: active},
		cfg:      newOptimizerConfig(),
		now:      func() time.Time { return now },
	}
}

var preferred = time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC)

func request(duration, flexibility int, priority string, attendees int, equipment ...string) *model.BookingRequest {
	return &model.BookingRequest{
		AttendeesCount:    attendees,
		Duration:          duration,
		RequiredEquipment: equipment,
		PreferredStart:    preferred,
		Flexibility:       flexibility,
		Priority:          priority,
	}
}

func TestFindOptimalMeeting_NoQualifyingRoom(t *testing.T) {
	rooms := []*model.MeetingRoom{
		{ID: "r1", Name: "Apollo", Capacity: 4, HourlyRate: 20},
	}

	tests := []struct {
		name string
		req  *model.BookingRequest
	}{
		{
			name: "capacity too small",
			req:  request(60, 0, model.PriorityNormal, 10),
		},
		{
			name: "missing equipment",
			req:  request(60, 0, model.PriorityNormal, 2, "projector"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOptimizer(rooms, nil, preferred.Add(-24*time.Hour))
			plan, err := o.FindOptimalMeeting(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if plan.Recommended != nil {
				t.Errorf("expected no recommendation, got %v", plan.Recommended)
			}
			if len(plan.Alternatives) != 0 {
				t.Errorf("expected no alternatives, got %v", plan.Alternatives)
			}
		})
	}
}

func TestFindOptimalMeeting_PrefersCheaperTighterRoom(t *testing.T) {
	rooms := []*model.MeetingRoom{
		{ID: "r1", Name: "Apollo", Capacity: 12, HourlyRate: 50},
		{ID: "r2", Name: "Artemis", Capacity: 4, HourlyRate: 20},
	}

	o := newOptimizer(rooms, nil, preferred.Add(-24*time.Hour))
	plan, err := o.FindOptimalMeeting(context.Background(), request(60, 0, model.PriorityNormal, 4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Recommended == nil || plan.Recommended.ID != "r2" {
		t.Fatalf("expected cheaper tighter room r2, got %v", plan.Recommended)
	}
	if !plan.SuggestedTime.Equal(preferred) {
		t.Errorf("expected preferred start with zero flexibility, got %v", plan.SuggestedTime)
	}
	// Savings against the most expensive eligible room: (50-20) * 1h.
	if plan.CostOptimization != 30 {
		t.Errorf("expected cost optimization 30, got %v", plan.CostOptimization)
	}
}

func TestFindOptimalMeeting_ShiftPenaltyAndTieBreak(t *testing.T) {
	rooms := []*model.MeetingRoom{
		{ID: "r1", Name: "Apollo", Capacity: 4, HourlyRate: 20},
	}
	// Occupies the preferred slot; with the buffer, candidates must keep a 30
	// minute gap on either side.
	active := []*model.Booking{
		{ID: "b1", RoomID: "r1", StartTime: preferred, EndTime: preferred.Add(time.Hour), Status: model.StatusScheduled},
	}

	o := newOptimizer(rooms, active, preferred.Add(-24*time.Hour))
	o.cfg.SearchStepMinutes = 30

	plan, err := o.FindOptimalMeeting(context.Background(), request(60, 120, model.PriorityNormal, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Recommended == nil {
		t.Fatal("expected a recommendation")
	}

	// Free offsets are -120, -90, +90, +120 minutes. The shift penalty makes
	// 90 the best drift, and the stable sort keeps the earlier offset first.
	want := preferred.Add(-90 * time.Minute)
	if !plan.SuggestedTime.Equal(want) {
		t.Errorf("expected suggested start %v, got %v", want, plan.SuggestedTime)
	}
}

func TestFindOptimalMeeting_FallbackScan(t *testing.T) {
	rooms := []*model.MeetingRoom{
		{ID: "r1", Name: "Apollo", Capacity: 4, HourlyRate: 20},
	}
	active := []*model.Booking{
		{ID: "b1", RoomID: "r1", StartTime: preferred, EndTime: preferred.Add(time.Hour), Status: model.StatusScheduled},
	}

	// Zero flexibility and a blocked preferred slot force the forward scan.
	o := newOptimizer(rooms, active, preferred.Add(-24*time.Hour))
	plan, err := o.FindOptimalMeeting(context.Background(), request(60, 0, model.PriorityNormal, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Recommended == nil {
		t.Fatal("expected a fallback recommendation")
	}

	// First conflict-free start: existing end + buffer on both sides.
	want := preferred.Add(90 * time.Minute)
	if !plan.SuggestedTime.Equal(want) {
		t.Errorf("expected fallback start %v, got %v", want, plan.SuggestedTime)
	}
}

func TestFindOptimalMeeting_AlternativesCapped(t *testing.T) {
	rooms := []*model.MeetingRoom{
		{ID: "r1", Name: "Apollo", Capacity: 4, HourlyRate: 20},
	}

	// Flexibility 60 at a 5 minute step yields 25 free candidates in one room.
	o := newOptimizer(rooms, nil, preferred.Add(-24*time.Hour))
	plan, err := o.FindOptimalMeeting(context.Background(), request(60, 60, model.PriorityNormal, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Recommended == nil {
		t.Fatal("expected a recommendation")
	}
	if len(plan.Alternatives) != 5 {
		t.Errorf("expected alternatives capped at 5, got %d", len(plan.Alternatives))
	}
	if !plan.SuggestedTime.Equal(preferred) {
		t.Errorf("expected zero-drift start %v, got %v", preferred, plan.SuggestedTime)
	}
}

func TestFindOptimalMeeting_SkipsCandidatesInThePast(t *testing.T) {
	rooms := []*model.MeetingRoom{
		{ID: "r1", Name: "Apollo", Capacity: 4, HourlyRate: 20},
	}

	// "Now" sits well past every candidate the flex window can produce.
	o := newOptimizer(rooms, nil, preferred.Add(6*time.Hour))
	plan, err := o.FindOptimalMeeting(context.Background(), request(60, 30, model.PriorityNormal, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Recommended != nil {
		t.Errorf("expected no recommendation for an all-past window, got start %v", plan.SuggestedTime)
	}
}
