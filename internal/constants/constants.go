package constants

// Context keys
const (
	ContextKeyUserID     = "user_id"
	ContextKeyRequestID  = "request_id"
	ContextKeyResourceID = "resource_id"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 8
	SessionCookieName = "sprint_session"
)
