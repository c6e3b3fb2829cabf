package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DiaryEntry represents one journal entry attached to a plant.
type DiaryEntry struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PlantID   primitive.ObjectID `json:"plant_id" bson:"plant_id"`
	Title     string             `json:"title" bson:"title"`
	PhotoURL  string             `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	Moisture  *float64           `json:"moisture" bson:"moisture"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
}

// DiaryEntryRequest represents the create/update request body
type DiaryEntryRequest struct {
	Title    string   `json:"title"`
	PhotoURL string   `json:"photo_url,omitempty"`
	Moisture *float64 `json:"moisture,omitempty"`
}
