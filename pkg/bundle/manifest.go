// Package bundle implements the registration pass that turns a bundle's
// entrypoint into a fixed list of trigger declarations. The entrypoint is
// a YAML manifest referencing handlers by catalog name, so loading never
// leaves a live scripting object around and the registry never re-enters
// user code after load.
package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/hookflow/hookflow/pkg/models"
)

const manifestSchema = `{
	"type": "object",
	"required": ["triggers"],
	"properties": {
		"triggers": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["kind", "handler"],
				"properties": {
					"provider": {
						"type": "object",
						"required": ["type"],
						"properties": {
							"type":  {"type": "string", "minLength": 1},
							"alias": {"type": "string"}
						}
					},
					"kind":     {"type": "string", "minLength": 1},
					"handler":  {"type": "string", "minLength": 1},
					"schedule": {"type": "string"},
					"path":     {"type": "string"},
					"method":   {"type": "string"},
					"fields":   {"type": "object"},
					"filter":   {"type": "string"}
				}
			}
		}
	}
}`

type manifest struct {
	Triggers []manifestTrigger `yaml:"triggers"`
}

type manifestTrigger struct {
	Provider models.ProviderIdentity `yaml:"provider"`
	Kind     models.TriggerKind      `yaml:"kind"`
	Handler  string                  `yaml:"handler"`

	models.Predicate `yaml:",inline"`
}

// ManifestLoader is the repository's BundleLoader: it parses the
// entrypoint manifest, validates it against a schema and resolves each
// declared handler through the catalog. Registration order in the
// manifest becomes declaration order in the registry.
type ManifestLoader struct {
	catalog *HandlerCatalog
	logger  *slog.Logger
}

func NewManifestLoader(catalog *HandlerCatalog, logger *slog.Logger) *ManifestLoader {
	return &ManifestLoader{
		catalog: catalog,
		logger:  logger.With("module", "bundle_loader"),
	}
}

func (l *ManifestLoader) Load(_ context.Context, b models.Bundle) ([]models.Declaration, error) {
	source, ok := b.EntrypointSource()
	if !ok {
		return nil, fmt.Errorf("entrypoint %q not found in bundle files", b.Entrypoint)
	}

	if err := l.validate(source); err != nil {
		return nil, err
	}

	var m manifest
	if err := yaml.Unmarshal([]byte(source), &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	declarations := make([]models.Declaration, 0, len(m.Triggers))

	for i, t := range m.Triggers {
		provider := t.Provider
		if provider.Type == "" {
			provider.Type = models.ProviderBuiltin
		}

		handler, err := l.catalog.Resolve(t.Handler)
		if err != nil {
			return nil, fmt.Errorf("trigger %d: %w", i, err)
		}

		declarations = append(declarations, models.Declaration{
			ID:        fmt.Sprintf("%s-%s-%d", provider.Normalized().Type, t.Kind, i),
			Provider:  provider.Normalized(),
			Kind:      t.Kind,
			Predicate: t.Predicate,
			Handler:   handler,
		})
	}

	l.logger.Debug("Parsed trigger manifest",
		"entrypoint", b.Entrypoint,
		"declarations", len(declarations))

	return declarations, nil
}

func (l *ManifestLoader) validate(source string) error {
	var document any
	if err := yaml.Unmarshal([]byte(source), &document); err != nil {
		return fmt.Errorf("parsing manifest: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(manifestSchema),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return fmt.Errorf("validating manifest: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("invalid manifest: %s", strings.Join(details, "; "))
	}

	return nil
}
