// Package events defines event types for dispatch lifecycle notifications.
package events

import (
	"time"

	"github.com/hookflow/hookflow/pkg/models"
)

type EventType string

// Kafka topic for dispatch lifecycle events.
const Topic = "hookflow.dispatches"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	TriggerMatchedEvent    EventType = "trigger.matched"
	HandlerFailedEvent     EventType = "handler.failed"
	DispatchCompletedEvent EventType = "dispatch.completed"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	BundleKey string         `json:"bundle_key"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// TriggerMatched is published once per declaration an event matched,
// before its handler runs.
type TriggerMatched struct {
	BaseEvent

	DispatchID  string             `json:"dispatch_id"`
	TriggerID   string             `json:"trigger_id"`
	TriggerKind models.TriggerKind `json:"trigger_kind"`
}

func (t TriggerMatched) GetType() EventType {
	return TriggerMatchedEvent
}

// HandlerFailed is published for every invocation that ends in an error,
// including timeouts.
type HandlerFailed struct {
	BaseEvent

	DispatchID string           `json:"dispatch_id"`
	Failure    models.ErrorInfo `json:"failure"`
}

func (h HandlerFailed) GetType() EventType {
	return HandlerFailedEvent
}

// DispatchCompleted is published when a dispatch call finishes, whatever
// the per-invocation outcomes were.
type DispatchCompleted struct {
	BaseEvent

	DispatchID string        `json:"dispatch_id"`
	Processed  int           `json:"processed"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"duration"`
}

func (d DispatchCompleted) GetType() EventType {
	return DispatchCompletedEvent
}
