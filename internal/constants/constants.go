package constants

// Context keys set by the auth and logging middleware.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyRequestID = "request_id"
)

const (
	MinPasswordLength = 8

	MinPage         = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxVisibleTasks caps how many tasks the grouping engine pulls per user.
	MaxVisibleTasks = 100
)
