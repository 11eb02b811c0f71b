// Package scheduler fires a bundle's cron-kind declarations through the
// dispatcher on their schedules. One cron entry serves all declarations
// sharing a provider identity and schedule; a tick invokes exactly those
// declarations, never cron declarations on other schedules.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hookflow/hookflow/pkg/dispatcher"
	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/registry"
)

const defaultDispatchTimeout = 30 * time.Second

type Scheduler struct {
	registry   *registry.Registry
	dispatcher *dispatcher.Dispatcher
	cron       *cron.Cron
	timeout    time.Duration
	logger     *slog.Logger
}

// entryKey identifies one cron entry: all declarations of a provider
// identity sharing one schedule fire together on that entry's tick.
type entryKey struct {
	provider models.ProviderIdentity
	schedule string
}

func NewScheduler(reg *registry.Registry, d *dispatcher.Dispatcher, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		registry:   reg,
		dispatcher: d,
		cron:       cron.New(),
		timeout:    defaultDispatchTimeout,
		logger:     logger.With("module", "scheduler"),
	}
}

// Register loads the bundle and schedules one cron entry per unique
// (provider identity, schedule) among its cron-kind declarations. It
// returns the number of entries added.
func (s *Scheduler) Register(ctx context.Context, bundle models.Bundle) (int, error) {
	triggers, err := s.registry.Resolve(ctx, bundle)
	if err != nil {
		return 0, err
	}

	seen := make(map[entryKey]bool)
	added := 0

	for _, declaration := range triggers.All() {
		if declaration.Kind != models.KindCron {
			continue
		}

		key := entryKey{
			provider: declaration.Provider.Normalized(),
			schedule: declaration.Predicate.Schedule,
		}
		if seen[key] {
			continue
		}

		seen[key] = true

		_, err := s.cron.AddFunc(key.schedule, func() {
			s.fire(bundle, key)
		})
		if err != nil {
			return added, err
		}

		added++

		s.logger.Info("Scheduled cron entry",
			"provider", key.provider.String(),
			"schedule", key.schedule)
	}

	return added, nil
}

// fire dispatches one tick. The declaration set is re-read from the
// registry and narrowed to the entry's schedule, so declarations on other
// schedules of the same provider never ride along.
func (s *Scheduler) fire(bundle models.Bundle, key entryKey) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	triggers, err := s.registry.Resolve(ctx, bundle)
	if err != nil {
		s.logger.Error("Cron dispatch failed", "schedule", key.schedule, "error", err)

		return
	}

	var matched []models.Declaration

	for _, declaration := range triggers.Lookup(key.provider.Type, key.provider.Alias, models.KindCron) {
		if declaration.Predicate.Schedule == key.schedule {
			matched = append(matched, declaration)
		}
	}

	descriptor := models.EventDescriptor{
		Trigger: models.TriggerIdentity{
			Provider:    key.provider,
			TriggerType: models.KindCron,
		},
		Data: map[string]any{
			"schedule":     key.schedule,
			"scheduled_at": time.Now().UTC().Format(time.RFC3339),
		},
	}

	result := s.dispatcher.DispatchDeclarations(ctx, bundle, descriptor, matched)

	s.logger.Debug("Cron dispatch completed",
		"schedule", key.schedule,
		"processed", result.TriggersProcessed,
		"failed", len(result.Errors))
}

// Start begins firing scheduled entries in the cron runner's goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the runner and returns a context that completes when any
// in-flight fire finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Entries returns the number of scheduled cron entries.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
