package log

// Common field names for structured logging. Call sites use these instead of
// bare strings so records stay greppable across packages.
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldUserID    = "user_id"
	FieldSection   = "section"
	FieldPeriod    = "period"
	FieldAmount    = "amount"
	FieldDate      = "date"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentWorker = "worker"
)
