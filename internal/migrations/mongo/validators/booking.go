package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"organizer_id", "room_id", "start_time", "end_time", "status"},
		"properties": bson.M{
			"organizer_id": bson.M{"bsonType": "string", "minLength": 1},
			"room_id":      bson.M{"bsonType": "string", "minLength": 1},
			"start_time":   bson.M{"bsonType": "date"},
			"end_time":     bson.M{"bsonType": "date"},
			"status": bson.M{
				"enum": []string{"SCHEDULED", "CANCELLED", "RELEASED"},
			},
			"attendees_count": bson.M{"bsonType": "int", "minimum": 1},
			"duration":        bson.M{"bsonType": "int", "minimum": 1},
			"auto_release_at": bson.M{"bsonType": "date"},
			"cost":            bson.M{"bsonType": []string{"double", "int", "long", "decimal"}, "minimum": 0},
		},
	},
}
