package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PushSubscription is a legacy VAPID web-push subscription. Newer clients
// register FCM tokens instead; this channel is kept for older installs.
type PushSubscription struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID   string             `json:"user_id" bson:"user_id"`
	Endpoint string             `json:"endpoint" bson:"endpoint"`
	Keys     PushKeys           `json:"keys" bson:"keys"`
	Created  time.Time          `json:"created_at" bson:"created_at"`
}

// PushKeys holds the encryption keys of a web-push subscription
type PushKeys struct {
	P256dh string `json:"p256dh" bson:"p256dh"`
	Auth   string `json:"auth" bson:"auth"`
}

// SubscribeRequest represents the web-push subscribe request body
type SubscribeRequest struct {
	UserID       string `json:"user_id"`
	Subscription struct {
		Endpoint string   `json:"endpoint"`
		Keys     PushKeys `json:"keys"`
	} `json:"subscription"`
}

// WebPushPayload is the JSON body delivered to the service worker.
type WebPushPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Icon  string            `json:"icon,omitempty"`
	Badge string            `json:"badge,omitempty"`
	Tag   string            `json:"tag,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}
