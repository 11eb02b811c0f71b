package cmd

import (
	"os"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/providers"
)

// AccountsFromEnv reads the default-alias provider accounts from the
// process environment. Multi-alias setups configure the factory directly.
func AccountsFromEnv() map[string]providers.AccountConfig {
	accounts := make(map[string]providers.AccountConfig)

	if url := os.Getenv("GITLAB_URL"); url != "" {
		key := models.ProviderIdentity{Type: models.ProviderGitLab}.String()
		accounts[key] = providers.AccountConfig{
			BaseURL: url,
			Token:   os.Getenv("GITLAB_TOKEN"),
		}
	}

	if url := os.Getenv("JIRA_URL"); url != "" {
		key := models.ProviderIdentity{Type: models.ProviderJira}.String()
		accounts[key] = providers.AccountConfig{
			BaseURL: url,
			Email:   os.Getenv("JIRA_EMAIL"),
			Token:   os.Getenv("JIRA_TOKEN"),
		}
	}

	return accounts
}
