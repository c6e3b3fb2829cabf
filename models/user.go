package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account in the system. Push device tokens live directly
// on the user document: Tokens is the current list, FCMToken is the legacy
// single-token field older app versions wrote.
type User struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Email         string             `json:"email" bson:"email"`
	Password      string             `json:"-" bson:"password"` // "-" keeps the hash out of responses
	UserType      string             `json:"user_type,omitempty" bson:"user_type,omitempty"`
	Notifications bool               `json:"notifications" bson:"notifications"`
	Tokens        []string           `json:"tokens,omitempty" bson:"tokens,omitempty"`
	FCMToken      string             `json:"fcm_token,omitempty" bson:"fcm_token,omitempty"` // legacy single token
	Admin         int                `json:"admin" bson:"admin"`           // 0 = regular user, 1 = admin
	Superadmin    int                `json:"superadmin" bson:"superadmin"` // 1 = can promote/demote admins
	JoinDate      time.Time          `json:"join_date" bson:"join_date"`
	LastSeen      *time.Time         `json:"last_seen,omitempty" bson:"last_seen,omitempty"`
}

// EffectiveTokens returns the device tokens a push should target: the token
// list when non-empty, else the legacy single token wrapped in a slice, else
// nothing.
func (u *User) EffectiveTokens() []string {
	if len(u.Tokens) > 0 {
		return u.Tokens
	}
	if u.FCMToken != "" {
		return []string{u.FCMToken}
	}
	return nil
}

// RegisterRequest represents the signup request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	UserType string `json:"user_type,omitempty"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ErrorResponse represents an error response body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse represents a generic success response body
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
