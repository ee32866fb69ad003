// Package events publishes booking lifecycle updates to the broadcast
// channel. Delivery is fire-and-forget: a failed publish is logged and never
// surfaces as an operation failure, consumers reconcile on their side.
package events

import (
	"context"
	"time"

	"roomsched/pkg/kafka"
	"roomsched/pkg/logger"
	"roomsched/pkg/model"

	"github.com/google/uuid"
)

const (
	EventCreated   = "created"
	EventCancelled = "cancelled"
	EventCheckedIn = "checked-in"
	EventReleased  = "released"
)

const publishTimeout = 5 * time.Second

type Publisher interface {
	BookingUpdate(ctx context.Context, event string, booking *model.Booking)
}

type bookingUpdatePayload struct {
	Event   string         `json:"event"`
	Booking *model.Booking `json:"booking"`
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{producer: producer, log: log}
}

func (p *kafkaPublisher) BookingUpdate(ctx context.Context, event string, booking *model.Booking) {
	msg, err := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(bookingUpdatePayload{Event: event, Booking: booking}).
		WithHeader(kafka.HeaderEventID, uuid.NewString()).
		WithHeader(kafka.HeaderEventType, event).
		WithHeader(kafka.HeaderSource, "roomsched").
		Build()
	if err != nil {
		p.log.Error("Failed to build booking update event", "event", event, "booking_id", booking.ID, "error", err)
		return
	}

	// Detach from the request context: the booking already committed, a
	// cancelled request must not suppress the event.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.producer.Publish(pubCtx, msg); err != nil {
		p.log.Error("Failed to publish booking update event", "event", event, "booking_id", booking.ID, "error", err)
		return
	}
	p.log.Debug("Booking update event published", "event", event, "booking_id", booking.ID)
}

// NopPublisher discards all events. Used when Kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) BookingUpdate(context.Context, string, *model.Booking) {}
