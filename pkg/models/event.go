package models

// TriggerInput carries the predicate-shaped fields known at invocation
// time. For webhook events that is the request path and method; other
// kinds leave it empty.
type TriggerInput struct {
	Path   string `json:"path,omitempty"`
	Method string `json:"method,omitempty"`
}

// TriggerIdentity names which trigger family an inbound event belongs to.
type TriggerIdentity struct {
	Provider    ProviderIdentity `json:"provider"     validate:"required"`
	TriggerType TriggerKind      `json:"trigger_type" validate:"required"`
	Input       TriggerInput     `json:"input"`
}

// EventDescriptor is the normalized dispatch-time input: the identity of
// the trigger family plus the opaque event body handed to handlers.
type EventDescriptor struct {
	Trigger TriggerIdentity `json:"trigger" validate:"required"`
	Data    map[string]any  `json:"data"`
}
