package model

import "time"

// Ticket is an optional inventory gate for a booking: when a booking names a
// ticket title, the ticket must exist. Purchasing decrements Remaining under
// the distributed lock.
type Ticket struct {
	ID        string  `json:"id,omitempty" bson:"_id,omitempty"`
	Title     string  `json:"title" bson:"title"`
	Price     float64 `json:"price" bson:"price"`
	Remaining int     `json:"remaining" bson:"remaining"`
}

// Order records one purchased ticket unit.
type Order struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string    `json:"user_id" bson:"user_id"`
	TicketID  string    `json:"ticket_id" bson:"ticket_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
