package models

import (
	"context"
	"log/slog"
)

// SecretAccessor resolves named secrets on behalf of one handler
// invocation. Resolution is lazy, happens at most once per name, and the
// resolved value lives only for that invocation.
type SecretAccessor interface {
	// Secret resolves a plain string secret.
	Secret(ctx context.Context, name string) (string, error)

	// SecretObject resolves a secret holding a JSON object and validates
	// it against the given JSON schema before returning it.
	SecretObject(ctx context.Context, name string, schema string) (map[string]any, error)
}

// ProviderClient is a provider-specific API client handed to handlers so
// they can call back into the event source (post a note, add a comment).
type ProviderClient interface {
	ProviderType() string
}

// ExecutionContext is the handler-facing view of one invocation: the event
// body, derived convenience fields, and scoped collaborators. It is built
// fresh per matched declaration and never shared between invocations.
type ExecutionContext struct {
	ID       string
	Provider ProviderIdentity
	Kind     TriggerKind

	// Event is the opaque event body from the descriptor.
	Event map[string]any

	// Headers holds decoded request headers for webhook-delivered events,
	// nil otherwise.
	Headers map[string]string

	Secrets SecretAccessor

	// Client is the provider API client for the declaration's provider,
	// nil for the builtin provider.
	Client ProviderClient

	Logger *slog.Logger
}
