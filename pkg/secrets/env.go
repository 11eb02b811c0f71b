package secrets

import (
	"context"
	"os"
	"strings"
)

// EnvPrefix namespaces secret environment variables so unrelated process
// environment never leaks into handlers.
const EnvPrefix = "HOOKFLOW_SECRET_"

// EnvResolver resolves secrets from the process environment. The secret
// name is upper-cased and dashes become underscores: "gitlab-token" reads
// HOOKFLOW_SECRET_GITLAB_TOKEN.
type EnvResolver struct{}

func NewEnvResolver() *EnvResolver {
	return &EnvResolver{}
}

func (r *EnvResolver) Resolve(_ context.Context, name string) (string, error) {
	key := EnvPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))

	value, ok := os.LookupEnv(key)
	if !ok {
		return "", notFound(name)
	}

	return value, nil
}
