package models

import "time"

// AdminRecord mirrors a user's admin privilege into the admins collection,
// keyed by the user's id. The authoritative flag lives on the user document;
// this mirror exists so the admin panel can list privilege history without
// scanning users.
type AdminRecord struct {
	UID       string    `json:"uid" bson:"_id"`
	Email     string    `json:"email,omitempty" bson:"email,omitempty"`
	Admin     bool      `json:"admin" bson:"admin"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	UpdatedBy string    `json:"updated_by" bson:"updated_by"`
}

// PromoteAdminRequest represents the promote-by-email request body
type PromoteAdminRequest struct {
	Email string `json:"email"`
}

// DemoteAdminRequest represents the demote-by-uid request body
type DemoteAdminRequest struct {
	UID string `json:"uid"`
}
