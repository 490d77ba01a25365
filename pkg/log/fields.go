package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches pkg/middleware context keys)
	FieldUserID = "user_id"
	FieldEmail  = "email"

	// Domain
	FieldChatID   = "chat_id"
	FieldPostID   = "post_id"
	FieldClientID = "client_id"
)
