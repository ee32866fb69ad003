package model

// MeetingRoom is the bookable unit. Room inventory is owned elsewhere; this
// service only reads it.
type MeetingRoom struct {
	ID         string   `json:"id,omitempty" bson:"_id,omitempty"`
	Name       string   `json:"name" bson:"name"`
	Capacity   int      `json:"capacity" bson:"capacity"`
	Equipment  []string `json:"equipment,omitempty" bson:"equipment,omitempty"`
	HourlyRate float64  `json:"hourly_rate" bson:"hourly_rate"`
	Location   string   `json:"location,omitempty" bson:"location,omitempty"`
}

// HasEquipment reports whether the room carries every required tag.
func (r *MeetingRoom) HasEquipment(required []string) bool {
	if len(required) == 0 {
		return true
	}
	tags := make(map[string]struct{}, len(r.Equipment))
	for _, e := range r.Equipment {
		tags[e] = struct{}{}
	}
	for _, req := range required {
		if _, ok := tags[req]; !ok {
			return false
		}
	}
	return true
}
