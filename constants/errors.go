package constants

// Common HTTP error messages
const (
	ErrMethodNotAllowed = "Method not allowed"
	ErrServerError      = "Server error"
	ErrInvalidData      = "Invalid request data"
	ErrNotAuthenticated = "Not authenticated"
	ErrInvalidToken     = "Invalid token"
	ErrUserNotFound     = "User not found"
	ErrAdminOnly        = "Access denied - admins only"
	ErrRootOnly         = "Access denied - superadmins only"
	ErrInvalidPlantID   = "Invalid plant id"
	ErrPlantNotFound    = "Plant not found"
	ErrNotPlantOwner    = "You do not own this plant"
	ErrInvalidEntryID   = "Invalid diary entry id"
	ErrEntryNotFound    = "Diary entry not found"
	ErrInvalidJobID     = "Invalid scan job id"
	ErrJobNotFound      = "Scan job not found"
)
