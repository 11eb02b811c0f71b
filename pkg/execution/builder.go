// Package execution builds the handler-facing context for one matched
// declaration: event body, derived fields, scoped logger, secrets access
// and provider clients.
package execution

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/protocol"
)

// Builder constructs ExecutionContexts. One Builder serves all dispatches;
// the contexts it produces are invocation-scoped and never shared.
type Builder struct {
	secrets protocol.SecretResolver
	clients protocol.ProviderClientFactory
	logger  *slog.Logger
}

func NewBuilder(secrets protocol.SecretResolver, clients protocol.ProviderClientFactory, logger *slog.Logger) *Builder {
	return &Builder{
		secrets: secrets,
		clients: clients,
		logger:  logger.With("module", "execution"),
	}
}

// Build produces the context handed to one handler invocation. The secret
// accessor is a fresh per-invocation cache; the provider client comes from
// the client factory and may be nil for providers without a callable API.
func (b *Builder) Build(ctx context.Context, declaration models.Declaration, descriptor models.EventDescriptor) (*models.ExecutionContext, error) {
	invocationID := uuid.New().String()

	var client models.ProviderClient

	if b.clients != nil {
		var err error

		client, err = b.clients.ClientFor(ctx, declaration.Provider)
		if err != nil {
			return nil, fmt.Errorf("building client for %s: %w", declaration.Provider, err)
		}
	}

	return &models.ExecutionContext{
		ID:       invocationID,
		Provider: declaration.Provider.Normalized(),
		Kind:     declaration.Kind,
		Event:    descriptor.Data,
		Headers:  decodeHeaders(descriptor.Data),
		Secrets:  newSecretCache(b.secrets),
		Client:   client,
		Logger: b.logger.With(
			"invocation_id", invocationID,
			"trigger_id", declaration.ID,
			"provider", declaration.Provider.String(),
			"kind", string(declaration.Kind),
		),
	}, nil
}

// decodeHeaders lifts a "headers" object out of webhook event bodies into
// a flat string map. Non-string values are rendered with their default
// formatting so handlers see a uniform shape.
func decodeHeaders(data map[string]any) map[string]string {
	raw, ok := data["headers"].(map[string]any)
	if !ok {
		return nil
	}

	headers := make(map[string]string, len(raw))
	for name, value := range raw {
		headers[name] = fmt.Sprintf("%v", value)
	}

	return headers
}
