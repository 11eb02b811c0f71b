package registry_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/registry"
)

type stubLoader struct {
	declarations []models.Declaration
	err          error
	delay        time.Duration
	calls        atomic.Int32
}

func (l *stubLoader) Load(_ context.Context, _ models.Bundle) ([]models.Declaration, error) {
	l.calls.Add(1)

	if l.delay > 0 {
		time.Sleep(l.delay)
	}

	return l.declarations, l.err
}

func noop(_ context.Context, _ *models.ExecutionContext) error {
	return nil
}

func webhookDeclaration(id, path string) models.Declaration {
	return models.Declaration{
		ID:        id,
		Provider:  models.ProviderIdentity{Type: models.ProviderBuiltin},
		Kind:      models.KindWebhook,
		Predicate: models.Predicate{Path: path},
		Handler:   noop,
	}
}

func testBundle() models.Bundle {
	return models.Bundle{
		Files:      map[string]string{"main.yaml": "triggers: []"},
		Entrypoint: "main.yaml",
	}
}

func TestRegistry_Resolve_PreservesRegistrationOrder(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{declarations: []models.Declaration{
		webhookDeclaration("first", "/a"),
		webhookDeclaration("second", "/b"),
		webhookDeclaration("third", "/a"),
	}}

	reg := registry.NewRegistry(loader, slog.Default())

	triggers, err := reg.Resolve(t.Context(), testBundle())
	require.NoError(t, err)
	require.Equal(t, 3, triggers.Len())

	candidates := triggers.Lookup("builtin", "", models.KindWebhook)
	require.Len(t, candidates, 3)
	assert.Equal(t, "first", candidates[0].ID)
	assert.Equal(t, "second", candidates[1].ID)
	assert.Equal(t, "third", candidates[2].ID)
}

func TestRegistry_Lookup_NoTriggersIsNotAnError(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{declarations: []models.Declaration{
		webhookDeclaration("only", "/a"),
	}}

	reg := registry.NewRegistry(loader, slog.Default())

	triggers, err := reg.Resolve(t.Context(), testBundle())
	require.NoError(t, err)

	assert.Empty(t, triggers.Lookup("gitlab", "work", models.KindMergeRequestComment))
	assert.Empty(t, triggers.Lookup("builtin", "default", models.KindCron))
}

func TestRegistry_Resolve_CachesLoadedBundles(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{declarations: []models.Declaration{
		webhookDeclaration("only", "/a"),
	}}

	reg := registry.NewRegistry(loader, slog.Default())
	b := testBundle()

	first, err := reg.Resolve(t.Context(), b)
	require.NoError(t, err)

	second, err := reg.Resolve(t.Context(), b)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestRegistry_Resolve_SingleFlightOnColdCache(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{
		declarations: []models.Declaration{webhookDeclaration("only", "/a")},
		delay:        50 * time.Millisecond,
	}

	reg := registry.NewRegistry(loader, slog.Default())
	b := testBundle()

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := reg.Resolve(context.Background(), b)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), loader.calls.Load(), "cold load must run once")
}

func TestRegistry_Resolve_LoadFailure(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{err: errors.New("entrypoint exploded")}
	reg := registry.NewRegistry(loader, slog.Default())

	_, err := reg.Resolve(t.Context(), testBundle())
	require.Error(t, err)
	assert.True(t, registry.IsBundleLoadError(err))

	// Failures are not cached; a subsequent resolve tries again.
	_, err = reg.Resolve(t.Context(), testBundle())
	require.Error(t, err)
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestRegistry_Resolve_RejectsInvalidDeclarations(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{declarations: []models.Declaration{
		{
			Provider:  models.ProviderIdentity{Type: models.ProviderBuiltin},
			Kind:      models.KindCron,
			Predicate: models.Predicate{Schedule: "bogus"},
			Handler:   noop,
		},
	}}

	reg := registry.NewRegistry(loader, slog.Default())

	_, err := reg.Resolve(t.Context(), testBundle())
	require.Error(t, err)
	assert.True(t, registry.IsBundleLoadError(err))
}

func TestRegistry_Evict(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{declarations: []models.Declaration{
		webhookDeclaration("only", "/a"),
	}}

	reg := registry.NewRegistry(loader, slog.Default())
	b := testBundle()

	_, err := reg.Resolve(t.Context(), b)
	require.NoError(t, err)

	reg.Evict(b)

	_, err = reg.Resolve(t.Context(), b)
	require.NoError(t, err)
	assert.Equal(t, int32(2), loader.calls.Load())
}
