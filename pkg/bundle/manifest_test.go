package bundle_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookflow/hookflow/pkg/bundle"
	"github.com/hookflow/hookflow/pkg/models"
)

const validManifest = `
triggers:
  - provider:
      type: builtin
    kind: webhook
    path: /custom
    method: POST
    handler: first
  - provider:
      type: gitlab
      alias: work
    kind: merge_request_comment
    fields:
      project.id: 42
    handler: second
  - kind: cron
    schedule: "*/5 * * * *"
    handler: first
`

func testCatalog() *bundle.HandlerCatalog {
	catalog := bundle.NewHandlerCatalog()
	catalog.Register("first", func(_ context.Context, _ *models.ExecutionContext) error { return nil })
	catalog.Register("second", func(_ context.Context, _ *models.ExecutionContext) error { return nil })

	return catalog
}

func testBundle(manifest string) models.Bundle {
	return models.Bundle{
		Files:      map[string]string{"main.yaml": manifest},
		Entrypoint: "main.yaml",
	}
}

func TestManifestLoader_Load(t *testing.T) {
	t.Parallel()

	loader := bundle.NewManifestLoader(testCatalog(), slog.Default())

	declarations, err := loader.Load(t.Context(), testBundle(validManifest))
	require.NoError(t, err)
	require.Len(t, declarations, 3)

	// Manifest order becomes registration order.
	assert.Equal(t, models.KindWebhook, declarations[0].Kind)
	assert.Equal(t, "/custom", declarations[0].Predicate.Path)
	assert.Equal(t, "POST", declarations[0].Predicate.Method)

	assert.Equal(t, models.KindMergeRequestComment, declarations[1].Kind)
	assert.Equal(t, "gitlab", declarations[1].Provider.Type)
	assert.Equal(t, "work", declarations[1].Provider.Alias)
	assert.Equal(t, 42, declarations[1].Predicate.Fields["project.id"])

	// Omitted provider falls back to builtin/default.
	assert.Equal(t, models.ProviderBuiltin, declarations[2].Provider.Type)
	assert.Equal(t, models.DefaultAlias, declarations[2].Provider.Alias)

	for _, d := range declarations {
		assert.NotNil(t, d.Handler)
		assert.NotEmpty(t, d.ID)
	}
}

func TestManifestLoader_Load_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		bundle models.Bundle
	}{
		{
			name: "entrypoint missing from files",
			bundle: models.Bundle{
				Files:      map[string]string{"other.yaml": validManifest},
				Entrypoint: "main.yaml",
			},
		},
		{
			name:   "not yaml",
			bundle: testBundle("{{{"),
		},
		{
			name:   "missing triggers key",
			bundle: testBundle("handlers: []"),
		},
		{
			name: "trigger without kind",
			bundle: testBundle(`
triggers:
  - handler: first
`),
		},
		{
			name: "unregistered handler",
			bundle: testBundle(`
triggers:
  - kind: webhook
    path: /x
    handler: nope
`),
		},
	}

	loader := bundle.NewManifestLoader(testCatalog(), slog.Default())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := loader.Load(t.Context(), tt.bundle)
			assert.Error(t, err)
		})
	}
}

func TestHandlerCatalog_Resolve(t *testing.T) {
	t.Parallel()

	catalog := bundle.NewHandlerCatalog()

	_, err := catalog.Resolve("missing")
	assert.Error(t, err)

	catalog.Register("present", func(_ context.Context, _ *models.ExecutionContext) error { return nil })

	handler, err := catalog.Resolve("present")
	require.NoError(t, err)
	assert.NotNil(t, handler)
}
