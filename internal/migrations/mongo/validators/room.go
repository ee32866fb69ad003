package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"name", "capacity"},
		"properties": bson.M{
			"name":        bson.M{"bsonType": "string", "minLength": 1},
			"capacity":    bson.M{"bsonType": "int", "minimum": 1},
			"hourly_rate": bson.M{"bsonType": []string{"double", "int", "long", "decimal"}, "minimum": 0},
			"equipment": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "string"},
			},
		},
	},
}
