package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scan job statuses
const (
	ScanStatusQueued   = "queued"
	ScanStatusUploaded = "uploaded"
	ScanStatusFailed   = "failed"
)

// ScanJob is a queued photo-capture request for a hardware device. The
// device polls for queued jobs addressed to it, takes a photo, then marks
// the job uploaded with the resulting image URL.
type ScanJob struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PlantID     string             `json:"plant_id" bson:"plant_id"`
	DeviceID    string             `json:"device_id,omitempty" bson:"device_id,omitempty"`
	CreatedBy   string             `json:"created_by" bson:"created_by"`
	Status      string             `json:"status" bson:"status"`
	ImageURL    string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	StoragePath string             `json:"storage_path,omitempty" bson:"storage_path,omitempty"`
	Error       string             `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// CompleteScanRequest is sent by the device when an image is uploaded.
type CompleteScanRequest struct {
	ImageURL    string `json:"image_url"`
	StoragePath string `json:"storage_path,omitempty"`
	Error       string `json:"error,omitempty"`
}
