// Package protocol defines the interfaces between the dispatch runtime and
// its external collaborators: bundle loading, secret resolution and
// provider client construction.
package protocol

import (
	"context"

	"github.com/hookflow/hookflow/pkg/models"
)

// BundleLoader turns a bundle's files and entrypoint into a fixed,
// insertion-ordered list of trigger declarations. The registration pass is
// the only moment user code runs; the runtime never re-enters it after
// load.
type BundleLoader interface {
	Load(ctx context.Context, bundle models.Bundle) ([]models.Declaration, error)
}

// SecretResolver fetches a named secret's raw value from wherever secrets
// live. It must return ErrSecretNotFound (possibly wrapped) for unknown
// names.
type SecretResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// ProviderClientFactory builds API clients for provider accounts. It
// returns nil (and no error) for providers with no callable API, such as
// builtin.
type ProviderClientFactory interface {
	ClientFor(ctx context.Context, identity models.ProviderIdentity) (models.ProviderClient, error)
}
