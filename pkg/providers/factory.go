// Package providers builds provider API clients for handler contexts.
package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/providers/gitlab"
	"github.com/hookflow/hookflow/pkg/providers/jira"
)

// AccountConfig holds the connection settings of one configured provider
// account. Credential resolution happens before the factory is built; the
// dispatch core treats credentials as opaque strings.
type AccountConfig struct {
	BaseURL string
	// Token is the API credential. For Jira it is the API token used with
	// Email for basic auth.
	Token string
	Email string
}

// Factory is the default ProviderClientFactory: a fixed account
// configuration map, with clients built once per identity and reused.
type Factory struct {
	accounts map[string]AccountConfig

	mu      sync.Mutex
	clients map[string]models.ProviderClient
}

// NewFactory builds a factory from identity-keyed account configs, keys
// as produced by ProviderIdentity.String ("gitlab/work").
func NewFactory(accounts map[string]AccountConfig) *Factory {
	return &Factory{
		accounts: accounts,
		clients:  make(map[string]models.ProviderClient),
	}
}

func (f *Factory) ClientFor(_ context.Context, identity models.ProviderIdentity) (models.ProviderClient, error) {
	identity = identity.Normalized()

	// Builtin triggers have no callable API behind them.
	if identity.Type == models.ProviderBuiltin {
		return nil, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	key := identity.String()

	if client, ok := f.clients[key]; ok {
		return client, nil
	}

	account, ok := f.accounts[key]
	if !ok {
		return nil, fmt.Errorf("no account configured for provider %s", key)
	}

	var client models.ProviderClient

	switch identity.Type {
	case models.ProviderGitLab:
		client = gitlab.NewClient(account.BaseURL, account.Token)
	case models.ProviderJira:
		client = jira.NewClient(account.BaseURL, account.Email, account.Token)
	default:
		return nil, fmt.Errorf("unsupported provider type %q", identity.Type)
	}

	f.clients[key] = client

	return client, nil
}
