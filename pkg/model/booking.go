package model

import (
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusCancelled = "CANCELLED"
	StatusReleased  = "RELEASED"
)

const (
	PriorityLow    = "LOW"
	PriorityNormal = "NORMAL"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Booking is one allocation of a meeting room for a time interval. Bookings
// are never deleted; lifecycle transitions only move Status forward.
// CANCELLED and RELEASED are terminal.
type Booking struct {
	ID                string     `json:"id,omitempty" bson:"_id,omitempty"`
	OrganizerID       string     `json:"organizer_id" bson:"organizer_id"`
	RoomID            string     `json:"room_id" bson:"room_id"`
	TicketID          string     `json:"ticket_id,omitempty" bson:"ticket_id,omitempty"`
	TicketTitle       string     `json:"ticket_title,omitempty" bson:"ticket_title,omitempty"`
	AttendeesCount    int        `json:"attendees_count" bson:"attendees_count"`
	Duration          int        `json:"duration" bson:"duration"`
	RequiredEquipment []string   `json:"required_equipment,omitempty" bson:"required_equipment,omitempty"`
	PreferredStart    time.Time  `json:"preferred_start" bson:"preferred_start"`
	Flexibility       int        `json:"flexibility" bson:"flexibility"`
	Priority          string     `json:"priority" bson:"priority"`
	StartTime         time.Time  `json:"start_time" bson:"start_time"`
	EndTime           time.Time  `json:"end_time" bson:"end_time"`
	Status            string     `json:"status" bson:"status"`
	AutoReleaseAt     *time.Time `json:"auto_release_at,omitempty" bson:"auto_release_at,omitempty"`
	Cost              float64    `json:"cost" bson:"cost"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at"`
}

// Terminal reports whether the booking can no longer change state.
func (b *Booking) Terminal() bool {
	return b.Status == StatusCancelled || b.Status == StatusReleased
}

// BookingRequest is the client-facing creation payload. RoomName may be left
// empty to let the optimizer pick a room and start time within the
// flexibility window.
type BookingRequest struct {
	AttendeesCount    int       `json:"attendees_count" validate:"required,min=1,max=500"`
	Duration          int       `json:"duration" validate:"required,min=1,max=1440"`
	RequiredEquipment []string  `json:"required_equipment" validate:"omitempty,dive,min=1,max=50"`
	PreferredStart    time.Time `json:"preferred_start" validate:"required"`
	Flexibility       int       `json:"flexibility" validate:"min=0,max=720"`
	Priority          string    `json:"priority" validate:"required,oneof=LOW NORMAL HIGH URGENT"`
	RoomName          string    `json:"room_name" validate:"omitempty,min=1,max=100"`
	TicketTitle       string    `json:"ticket_title" validate:"omitempty,min=1,max=200"`
}

// AlternativeRoom is returned instead of a booking when the requested slot is
// already taken but other rooms could host the meeting.
type AlternativeRoom struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// BookingOutcome is the create result: either Booking is set, or the request
// conflicted and Alternatives carries rooms free at the requested time.
type BookingOutcome struct {
	Booking      *Booking          `json:"booking,omitempty"`
	Message      string            `json:"message,omitempty"`
	Alternatives []AlternativeRoom `json:"alternatives,omitempty"`
}
