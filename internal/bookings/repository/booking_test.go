package repository

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestOrganizerFilter(t *testing.T) {
	from := time.Date(2030, 3, 4, 9, 0, 0, 0, time.UTC)
	to := time.Date(2030, 3, 4, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		from      *time.Time
		to        *time.Time
		wantStart bool
		wantEnd   bool
	}{
		{name: "no bounds", wantStart: false, wantEnd: false},
		{name: "both bounds", from: &from, to: &to, wantStart: true, wantEnd: true},
		{name: "only from", from: &from, wantStart: true, wantEnd: false},
		{name: "only to", to: &to, wantStart: false, wantEnd: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := organizerFilter("user-1", tt.from, tt.to)

			if filter["organizer_id"] != "user-1" {
				t.Errorf("expected organizer_id filter, got %v", filter)
			}

			start, hasStart := filter["start_time"]
			if hasStart != tt.wantStart {
				t.Fatalf("start_time bound: want %v, got %v", tt.wantStart, hasStart)
			}
			if hasStart && !start.(bson.M)["$gte"].(time.Time).Equal(from) {
				t.Errorf("expected start_time $gte %v, got %v", from, start)
			}

			end, hasEnd := filter["end_time"]
			if hasEnd != tt.wantEnd {
				t.Fatalf("end_time bound: want %v, got %v", tt.wantEnd, hasEnd)
			}
			if hasEnd && !end.(bson.M)["$lte"].(time.Time).Equal(to) {
				t.Errorf("expected end_time $lte %v, got %v", to, end)
			}
		})
	}
}
