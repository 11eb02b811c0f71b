// Package registry loads a bundle's trigger declarations and serves them
// by (provider type, provider alias, kind), preserving registration order.
package registry

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/protocol"
)

// RegisteredTriggers is the immutable trigger set of one loaded bundle.
// Declarations keep their registration order within each key; later
// invocation initiation follows that order.
type RegisteredTriggers struct {
	byKey map[models.TriggerKey][]models.Declaration
	all   []models.Declaration
}

func newRegisteredTriggers(declarations []models.Declaration) *RegisteredTriggers {
	rt := &RegisteredTriggers{
		byKey: make(map[models.TriggerKey][]models.Declaration),
		all:   declarations,
	}

	for _, d := range declarations {
		key := d.Key()
		rt.byKey[key] = append(rt.byKey[key], d)
	}

	return rt
}

// Lookup returns every declaration registered for the exact (type, alias,
// kind) triple, in registration order. An empty result is a normal
// outcome, not a fault.
func (rt *RegisteredTriggers) Lookup(providerType, providerAlias string, kind models.TriggerKind) []models.Declaration {
	identity := models.ProviderIdentity{Type: providerType, Alias: providerAlias}.Normalized()
	key := models.TriggerKey{ProviderType: identity.Type, ProviderAlias: identity.Alias, Kind: kind}

	return rt.byKey[key]
}

// All returns every declaration of the bundle in registration order.
func (rt *RegisteredTriggers) All() []models.Declaration {
	return rt.all
}

// Len returns the number of registered declarations.
func (rt *RegisteredTriggers) Len() int {
	return len(rt.all)
}

// Registry resolves bundles into RegisteredTriggers through a BundleLoader,
// caching successful loads by bundle content key. The first load of a cold
// key is single-flight so concurrent dispatches neither duplicate the load
// nor observe partial state; later resolves are plain map reads.
type Registry struct {
	loader protocol.BundleLoader
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]*RegisteredTriggers
	group singleflight.Group
}

func NewRegistry(loader protocol.BundleLoader, logger *slog.Logger) *Registry {
	return &Registry{
		loader: loader,
		logger: logger.With("module", "registry"),
		cache:  make(map[string]*RegisteredTriggers),
	}
}

// Resolve returns the trigger set for the bundle, loading it on first use.
// Load failures are returned as *BundleLoadError and are not cached, so a
// corrected bundle with the same key is not needed to recover.
func (r *Registry) Resolve(ctx context.Context, bundle models.Bundle) (*RegisteredTriggers, error) {
	key := bundle.Key()

	r.mu.RLock()
	cached, ok := r.cache[key]
	r.mu.RUnlock()

	if ok {
		return cached, nil
	}

	result, err, _ := r.group.Do(key, func() (any, error) {
		declarations, err := r.loader.Load(ctx, bundle)
		if err != nil {
			return nil, &BundleLoadError{Entrypoint: bundle.Entrypoint, Err: err}
		}

		for _, d := range declarations {
			if err := d.Validate(); err != nil {
				return nil, &BundleLoadError{Entrypoint: bundle.Entrypoint, Err: err}
			}
		}

		rt := newRegisteredTriggers(declarations)

		r.mu.Lock()
		r.cache[key] = rt
		r.mu.Unlock()

		r.logger.Info("Loaded bundle triggers",
			"bundle_key", key,
			"entrypoint", bundle.Entrypoint,
			"declarations", rt.Len())

		return rt, nil
	})
	if err != nil {
		return nil, err
	}

	rt, ok := result.(*RegisteredTriggers)
	if !ok {
		// Unreachable: the group closure only ever returns *RegisteredTriggers.
		return nil, &BundleLoadError{Entrypoint: bundle.Entrypoint, Err: context.Canceled}
	}

	return rt, nil
}

// Evict drops a cached bundle, forcing the next Resolve to reload it.
func (r *Registry) Evict(bundle models.Bundle) {
	r.mu.Lock()
	delete(r.cache, bundle.Key())
	r.mu.Unlock()
}
