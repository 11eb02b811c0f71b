package execution

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/hookflow/hookflow/pkg/protocol"
)

// secretCache implements models.SecretAccessor for a single invocation.
// Each name is resolved at most once; the cached value dies with the
// invocation, so a rotated secret is observed on the next dispatch.
type secretCache struct {
	resolver protocol.SecretResolver

	mu     sync.Mutex
	values map[string]string
}

func newSecretCache(resolver protocol.SecretResolver) *secretCache {
	return &secretCache{
		resolver: resolver,
		values:   make(map[string]string),
	}
}

func (c *secretCache) Secret(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if value, ok := c.values[name]; ok {
		return value, nil
	}

	value, err := c.resolver.Resolve(ctx, name)
	if err != nil {
		return "", err
	}

	c.values[name] = value

	return value, nil
}

func (c *secretCache) SecretObject(ctx context.Context, name string, schema string) (map[string]any, error) {
	raw, err := c.Secret(ctx, name)
	if err != nil {
		return nil, err
	}

	var value map[string]any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, &SecretValidationError{Name: name, Detail: "value is not a JSON object: " + err.Error()}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewGoLoader(value),
	)
	if err != nil {
		return nil, &SecretValidationError{Name: name, Detail: "schema error: " + err.Error()}
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return nil, &SecretValidationError{Name: name, Detail: strings.Join(details, "; ")}
	}

	return value, nil
}
