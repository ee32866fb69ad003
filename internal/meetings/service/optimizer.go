package service

import (
	"context"
	"math"
	"sort"
	"time"

	bookingsrepo "roomsched/internal/bookings/repository"
	roomsrepo "roomsched/internal/rooms/repository"
	"roomsched/pkg/config"
	apperrors "roomsched/pkg/errors"
	"roomsched/pkg/model"
	"roomsched/pkg/schedule"
)

const maxAlternatives = 5

// Candidate is one scored (room, start) proposal.
type Candidate struct {
	Room      *model.MeetingRoom `json:"room"`
	StartTime time.Time          `json:"start_time"`
	EndTime   time.Time          `json:"end_time"`
	Score     float64            `json:"score"`
}

// MeetingPlan is the optimizer result. Recommended is nil when no room
// qualifies on capacity and equipment.
type MeetingPlan struct {
	Recommended      *model.MeetingRoom `json:"recommended,omitempty"`
	SuggestedTime    *time.Time         `json:"suggested_time,omitempty"`
	Alternatives     []Candidate        `json:"alternatives"`
	CostOptimization float64            `json:"cost_optimization"`
}

type MeetingOptimizer interface {
	FindOptimalMeeting(ctx context.Context, req *model.BookingRequest) (*MeetingPlan, error)
}

type meetingOptimizer struct {
	rooms    roomsrepo.RoomRepository
	bookings bookingsrepo.BookingRepository
	cfg      *config.Config
	now      func() time.Time
}

func NewMeetingOptimizer(
	rooms roomsrepo.RoomRepository,
	bookings bookingsrepo.BookingRepository,
	cfg *config.Config,
) MeetingOptimizer {
	return &meetingOptimizer{
		rooms:    rooms,
		bookings: bookings,
		cfg:      cfg,
		now:      time.Now,
	}
}

// FindOptimalMeeting scans every qualifying room across the flexibility
// window in fixed steps and ranks conflict-free candidates. The linear scan
// is deliberate: windows and room counts are small, and a deterministic
// sweep is easy to audit. Ties keep insertion order, which iterates rooms in
// name order and offsets from -flexibility upward.
func (o *meetingOptimizer) FindOptimalMeeting(ctx context.Context, req *model.BookingRequest) (*MeetingPlan, error) {
	duration := time.Duration(req.Duration) * time.Minute
	flex := time.Duration(req.Flexibility) * time.Minute
	buffer := o.cfg.Buffer()
	step := time.Duration(o.cfg.SearchStepMinutes) * time.Minute

	allRooms, err := o.rooms.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to load rooms", err)
	}

	var eligible []*model.MeetingRoom
	for _, room := range allRooms {
		if room.Capacity >= req.AttendeesCount && room.HasEquipment(req.RequiredEquipment) {
			eligible = append(eligible, room)
		}
	}
	if len(eligible) == 0 {
		return &MeetingPlan{Alternatives: []Candidate{}}, nil
	}

	// Bound the conflict data to the scan window plus an hour of slack on
	// each side.
	margin := flex + duration + buffer + time.Hour
	existing, err := o.bookings.FindActiveInWindow(ctx, req.PreferredStart.Add(-margin), req.PreferredStart.Add(margin))
	if err != nil {
		return nil, apperrors.Internal("Failed to load existing bookings", err)
	}
	byRoom := groupByRoom(existing)

	now := o.now()
	var candidates []Candidate
	for _, room := range eligible {
		for delta := -flex; delta <= flex; delta += step {
			start := req.PreferredStart.Add(delta)
			end := start.Add(duration)
			if end.Before(now) {
				continue
			}
			if conflictsAny(byRoom[room.ID], start, end, buffer) {
				continue
			}
			candidates = append(candidates, Candidate{
				Room:      room,
				StartTime: start,
				EndTime:   end,
				Score:     o.score(room, start, req),
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) == 0 {
		candidates, err = o.fallbackScan(ctx, eligible, req, now)
		if err != nil {
			return nil, err
		}
	}
	if len(candidates) == 0 {
		return &MeetingPlan{Alternatives: []Candidate{}}, nil
	}

	top := candidates[0]
	alternatives := candidates[1:]
	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}

	return &MeetingPlan{
		Recommended:      top.Room,
		SuggestedTime:    &top.StartTime,
		Alternatives:     alternatives,
		CostOptimization: costOptimization(eligible, top.Room, req.Duration),
	}, nil
}

// fallbackScan runs when the entire flex window is blocked: walk forward
// from just past the window and return the first free slot per room,
// unscored.
func (o *meetingOptimizer) fallbackScan(ctx context.Context, eligible []*model.MeetingRoom, req *model.BookingRequest, now time.Time) ([]Candidate, error) {
	duration := time.Duration(req.Duration) * time.Minute
	flex := time.Duration(req.Flexibility) * time.Minute
	buffer := o.cfg.Buffer()
	step := time.Duration(o.cfg.SearchStepMinutes) * time.Minute

	scanFrom := req.PreferredStart.Add(flex + buffer)
	scanTo := scanFrom.Add(o.cfg.SearchHorizon)

	existing, err := o.bookings.FindActiveInWindow(ctx, scanFrom.Add(-2*buffer), scanTo.Add(duration+2*buffer))
	if err != nil {
		return nil, apperrors.Internal("Failed to load existing bookings", err)
	}
	byRoom := groupByRoom(existing)

	var candidates []Candidate
	for _, room := range eligible {
		for start := scanFrom; start.Before(scanTo); start = start.Add(step) {
			end := start.Add(duration)
			if end.Before(now) {
				continue
			}
			if conflictsAny(byRoom[room.ID], start, end, buffer) {
				continue
			}
			candidates = append(candidates, Candidate{
				Room:      room,
				StartTime: start,
				EndTime:   end,
			})
			break
		}
	}
	return candidates, nil
}

// score ranks a candidate. Priority dominates by weight construction; unused
// capacity and hourly rate penalize wasteful matches, and drift from the
// preferred start penalizes large schedule shifts.
func (o *meetingOptimizer) score(room *model.MeetingRoom, start time.Time, req *model.BookingRequest) float64 {
	wasted := float64(room.Capacity - req.AttendeesCount)
	if wasted < 0 {
		wasted = 0
	}
	drift := math.Abs(start.Sub(req.PreferredStart).Minutes())

	return o.cfg.WeightPriority*priorityScore(req.Priority) -
		o.cfg.WeightUtilization*wasted -
		o.cfg.WeightCost*room.HourlyRate -
		o.cfg.WeightShift*drift
}

func priorityScore(priority string) float64 {
	switch priority {
	case model.PriorityUrgent:
		return 1000
	case model.PriorityHigh:
		return 500
	case model.PriorityNormal:
		return 100
	case model.PriorityLow:
		return 10
	default:
		return 0
	}
}

// costOptimization reports the savings of the chosen room against the most
// expensive eligible one, as an informational metric.
func costOptimization(eligible []*model.MeetingRoom, chosen *model.MeetingRoom, durationMinutes int) float64 {
	var maxRate float64
	for _, room := range eligible {
		if room.HourlyRate > maxRate {
			maxRate = room.HourlyRate
		}
	}
	savings := (maxRate - chosen.HourlyRate) * float64(durationMinutes) / 60
	if savings < 0 {
		return 0
	}
	return savings
}

func groupByRoom(bookings []*model.Booking) map[string][]*model.Booking {
	byRoom := make(map[string][]*model.Booking, len(bookings))
	for _, b := range bookings {
		byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
	}
	return byRoom
}

func conflictsAny(existing []*model.Booking, start, end time.Time, buffer time.Duration) bool {
	for _, b := range existing {
		if schedule.Overlaps(b.StartTime, b.EndTime, start, end, buffer) {
			return true
		}
	}
	return false
}
