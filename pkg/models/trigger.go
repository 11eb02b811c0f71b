package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// TriggerKind is a provider's trigger verb, the wire name of one event
// family the provider can deliver.
type TriggerKind string

const (
	KindCron    TriggerKind = "cron"
	KindWebhook TriggerKind = "webhook"

	// Provider-specific webhook kinds.
	KindMergeRequestComment TriggerKind = "merge_request_comment"
	KindIssueCreated        TriggerKind = "issue_created"
	KindIssueUpdated        TriggerKind = "issue_updated"
)

// Handler is the user-facing callback bound to a trigger declaration. It
// receives a per-invocation execution context and reports failure through
// the returned error; a failing handler never affects sibling invocations.
type Handler func(ctx context.Context, ectx *ExecutionContext) error

// Predicate holds the kind-specific filter fields of a declaration. Only
// the fields meaningful for the declaration's kind are set; an unset field
// acts as a wildcard during matching.
type Predicate struct {
	// Schedule is a cron expression, cron kind only.
	Schedule string `json:"schedule,omitempty" yaml:"schedule,omitempty"`

	// Path and Method select webhook requests, webhook kind only. Path
	// comparison is exact and case-sensitive; an empty Method matches any.
	Path   string `json:"path,omitempty"   yaml:"path,omitempty"`
	Method string `json:"method,omitempty" yaml:"method,omitempty"`

	// Fields filters provider webhook payloads: every entry must equal the
	// value found at the same (dot-separated) path in the event body.
	Fields map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Filter is an optional expression evaluated against the event body;
	// it must yield a boolean.
	Filter string `json:"filter,omitempty" yaml:"filter,omitempty"`
}

// Declaration is one registered trigger: a provider account, a trigger
// kind, the kind-specific predicate and the handler to invoke. Declarations
// are built once at bundle load and are immutable afterwards.
type Declaration struct {
	ID        string
	Provider  ProviderIdentity
	Kind      TriggerKind
	Predicate Predicate
	Handler   Handler
}

var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks the declaration's predicate against its kind. It is run
// by the bundle loader so that malformed declarations surface as load
// failures, before any event arrives.
func (d Declaration) Validate() error {
	if d.Handler == nil {
		return errors.New("declaration has no handler")
	}

	if d.Provider.Type == "" {
		return errors.New("declaration has no provider type")
	}

	switch d.Kind {
	case KindCron:
		if _, err := cronParser.Parse(d.Predicate.Schedule); err != nil {
			return fmt.Errorf("invalid cron schedule %q: %w", d.Predicate.Schedule, err)
		}
	case KindWebhook:
		if !strings.HasPrefix(d.Predicate.Path, "/") {
			return fmt.Errorf("webhook path %q must start with '/'", d.Predicate.Path)
		}
	case KindMergeRequestComment, KindIssueCreated, KindIssueUpdated:
		// Field filters are free-form; nothing to validate statically.
	default:
		if d.Kind == "" {
			return errors.New("declaration has no trigger kind")
		}
	}

	return nil
}

// Key returns the registry lookup key for this declaration.
func (d Declaration) Key() TriggerKey {
	p := d.Provider.Normalized()

	return TriggerKey{ProviderType: p.Type, ProviderAlias: p.Alias, Kind: d.Kind}
}

// TriggerKey identifies one (provider type, provider alias, kind) triple.
type TriggerKey struct {
	ProviderType  string
	ProviderAlias string
	Kind          TriggerKind
}

func (k TriggerKey) String() string {
	return k.ProviderType + "/" + k.ProviderAlias + "/" + string(k.Kind)
}
