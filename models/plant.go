package models

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tracking modes
const (
	PlantModePhone    = "phone"
	PlantModeHardware = "hardware"
)

// Plant represents a tracked strawberry plant. OwnerID is the hex id of the
// owning user document; plants without it are ignored by the reminder job.
type Plant struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID       string             `json:"owner_id" bson:"owner_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	NameKey       string             `json:"-" bson:"name_key"` // normalized name, per-owner duplicate check
	Mode          string             `json:"mode" bson:"mode"`
	TrackingDesc  string             `json:"tracking_description,omitempty" bson:"tracking_description,omitempty"`
	TrackingIcon  string             `json:"tracking_icon,omitempty" bson:"tracking_icon,omitempty"`
	Status        string             `json:"status" bson:"status"`
	StatusAlert   string             `json:"status_alert" bson:"status_alert"`
	Moisture      *float64           `json:"moisture" bson:"moisture"`
	PhotoURL      string             `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	LastWateredAt *FlexibleTime      `json:"last_watered_at,omitempty" bson:"last_watered_at,omitempty"`
	LastScanTime  *time.Time         `json:"last_scan_time,omitempty" bson:"last_scan_time,omitempty"`
	Active        bool               `json:"active" bson:"active"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	DeletedAt     *time.Time         `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// MakeNameKey normalizes a plant name for the per-owner uniqueness check.
func MakeNameKey(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), " ")
}

// TrackingDescription returns the display description for a tracking mode.
func TrackingDescription(mode string) string {
	if mode == PlantModeHardware {
		return "Tracking: Hardware Device - Real-time monitoring with specialized sensors"
	}
	return "Tracking: Phone Camera - Manual photo scanning"
}

// TrackingIcon returns the display icon class for a tracking mode.
func TrackingIcon(mode string) string {
	if mode == PlantModeHardware {
		return "bi bi-cpu"
	}
	return "bi bi-camera"
}

// CreatePlantRequest represents the plant creation request body
type CreatePlantRequest struct {
	Name string `json:"name" validate:"required"`
	Mode string `json:"mode,omitempty"`
}

// UpdatePlantRequest represents a partial plant update. Pointer fields
// distinguish "absent" from "set to zero value".
type UpdatePlantRequest struct {
	Name        *string  `json:"name,omitempty"`
	Mode        *string  `json:"mode,omitempty"`
	Status      *string  `json:"status,omitempty"`
	StatusAlert *string  `json:"status_alert,omitempty"`
	Moisture    *float64 `json:"moisture,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}
