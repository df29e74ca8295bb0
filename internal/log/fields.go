package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldUserID     = "user_id"
	FieldError      = "error"
	FieldErrorKind  = "error_kind"
	FieldOperation  = "operation"
	FieldEventType  = "event_type"
	FieldExpenseID  = "expense_id"
	FieldShareID    = "share_id"
	FieldCategoryID = "category_id"
	FieldJob        = "job"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAuth      = "auth"
	ComponentUser      = "user"
	ComponentCategory  = "category"
	ComponentExpense   = "expense"
	ComponentSharing   = "sharing"
	ComponentStorage   = "storage"
	ComponentEvents    = "events"
	ComponentAMQP      = "amqp"
	ComponentHub       = "hub"
	ComponentScheduler = "scheduler"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpPublish  = "publish"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
