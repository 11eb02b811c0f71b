// Package cmd provides common initialization for the command-line
// binaries: event bus, secret resolver and the dispatch stack.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/hookflow/hookflow/pkg/bundle"
	"github.com/hookflow/hookflow/pkg/channels/gochannel"
	"github.com/hookflow/hookflow/pkg/channels/kafka"
	"github.com/hookflow/hookflow/pkg/dispatcher"
	"github.com/hookflow/hookflow/pkg/eventbus"
	"github.com/hookflow/hookflow/pkg/execution"
	"github.com/hookflow/hookflow/pkg/matcher"
	"github.com/hookflow/hookflow/pkg/protocol"
	"github.com/hookflow/hookflow/pkg/providers"
	"github.com/hookflow/hookflow/pkg/registry"
	"github.com/hookflow/hookflow/pkg/secrets"
)

func NewEventBus(provider string, logger *slog.Logger) eventbus.EventBus {
	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), "hookflow")
		if err != nil {
			panic(fmt.Errorf("failed to create Kafka pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	case "memory":
		pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
		if err != nil {
			panic(fmt.Errorf("failed to create in-memory pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	default:
		panic("Unsupported event bus provider: " + provider)
	}
}

// NewSecretResolver selects the secret backend. An empty redisURL selects
// the environment resolver.
func NewSecretResolver(redisURL string) protocol.SecretResolver {
	if redisURL == "" {
		return secrets.NewEnvResolver()
	}

	resolver, err := secrets.NewRedisResolverFromURL(redisURL)
	if err != nil {
		panic(fmt.Errorf("failed to create redis secret resolver: %w", err))
	}

	return resolver
}

// NewDispatcher assembles the full dispatch stack around a handler
// catalog. Both deployment targets share this wiring.
func NewDispatcher(
	catalog *bundle.HandlerCatalog,
	resolver protocol.SecretResolver,
	accounts map[string]providers.AccountConfig,
	bus eventbus.EventPublisher,
	logger *slog.Logger,
) *dispatcher.Dispatcher {
	loader := bundle.NewManifestLoader(catalog, logger)
	reg := registry.NewRegistry(loader, logger)
	m := matcher.NewMatcher(logger)
	builder := execution.NewBuilder(resolver, providers.NewFactory(accounts), logger)

	return dispatcher.NewDispatcher(reg, m, builder, bus, logger)
}
