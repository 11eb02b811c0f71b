package models

// ErrorKind classifies a failed invocation.
type ErrorKind string

const (
	ErrorKindHandler ErrorKind = "handler"
	ErrorKindSecret  ErrorKind = "secret"
	ErrorKindTimeout ErrorKind = "timeout"
)

// ErrorInfo records one failed invocation inside an otherwise completed
// dispatch call.
type ErrorInfo struct {
	Kind      ErrorKind `json:"kind"`
	TriggerID string    `json:"trigger_id,omitempty"`
	Message   string    `json:"message"`
}

// DispatchResult aggregates one dispatch call: how many matched handlers
// completed without error, and every per-invocation failure in completion
// order. Zero matches is a valid result with no errors.
type DispatchResult struct {
	TriggersProcessed int         `json:"triggersProcessed"`
	Errors            []ErrorInfo `json:"errors,omitempty"`
}
