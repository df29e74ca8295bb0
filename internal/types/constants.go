package types

const (
	ContextUserKey      = "user"
	ContextRequestIDKey = "request_id"

	RequestIDHeader = "X-Request-ID"
	TokenType       = "Bearer"
)
