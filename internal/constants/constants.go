package constants

// Session and context keys
const (
	SessionCookieName   = "pto_session"
	ContextKeyUserID    = "user_id"
	ContextKeyActor     = "actor"
	ContextKeyRequestID = "request_id"
	HeaderRequestID     = "X-Request-ID"
)

// Validation limits
const (
	MinPasswordLength       = 8
	TemporaryPasswordLength = 12
	MaxNotesLength          = 1000
	MaxDraftTextLength      = 4000
	MaxAIGeneratedDrafts    = 10
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"
