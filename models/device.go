package models

import "time"

// Device links a hardware sensor unit to the plant it monitors. The device
// id is the document id, so re-linking is a merge upsert.
type Device struct {
	ID       string    `json:"id" bson:"_id"`
	PlantID  string    `json:"plant_id" bson:"plant_id"`
	LinkedAt time.Time `json:"linked_at" bson:"linked_at"`
}

// MoistureLog is one sensor reading for a plant.
type MoistureLog struct {
	PlantID   string    `json:"plant_id" bson:"plant_id"`
	DeviceID  string    `json:"device_id,omitempty" bson:"device_id,omitempty"`
	Moisture  float64   `json:"moisture" bson:"moisture"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// MoistureReadingRequest represents the hardware ingestion body
type MoistureReadingRequest struct {
	DeviceID string   `json:"device_id,omitempty"`
	Moisture *float64 `json:"moisture"`
}
