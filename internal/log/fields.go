package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldOwnerID     = "owner_id"
	FieldRecordID    = "record_id"
	FieldRecordKind  = "record_kind"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldPoints      = "points"
	FieldMirror      = "mirror"
	FieldKey         = "key"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentKV       = "kv"
	ComponentMirror   = "mirror"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentAI       = "ai"
	ComponentIdentity = "identity"
	ComponentReports  = "reports"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpSeed     = "seed"
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpPersist  = "persist"
	OpSync     = "sync"
	OpSuggest  = "suggest"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
