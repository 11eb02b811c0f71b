// Package dispatcher orchestrates one dispatch call: resolve the bundle's
// trigger set, match the event, invoke every matched handler concurrently
// and aggregate the outcomes. One misbehaving handler never suppresses its
// siblings.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hookflow/hookflow/pkg/eventbus"
	"github.com/hookflow/hookflow/pkg/events"
	"github.com/hookflow/hookflow/pkg/execution"
	"github.com/hookflow/hookflow/pkg/matcher"
	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/otelhelper"
	"github.com/hookflow/hookflow/pkg/registry"
)

// Dispatcher wires the registry, matcher and context builder into the
// dispatch entry point shared by both deployment targets.
type Dispatcher struct {
	registry *registry.Registry
	matcher  *matcher.Matcher
	builder  *execution.Builder
	bus      eventbus.EventPublisher
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewDispatcher builds a dispatcher. The event bus is optional; a nil bus
// disables lifecycle event publishing.
func NewDispatcher(
	reg *registry.Registry,
	m *matcher.Matcher,
	builder *execution.Builder,
	bus eventbus.EventPublisher,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		matcher:  m,
		builder:  builder,
		bus:      bus,
		tracer:   otel.Tracer("hookflow/dispatcher"),
		logger:   logger.With("module", "dispatcher"),
	}
}

type invocationResult struct {
	triggerID string
	err       *models.ErrorInfo
}

// Dispatch processes one event descriptor against one bundle. The only
// error it returns is a *registry.BundleLoadError; every per-invocation
// failure is recorded in the result instead. Zero matches is a normal
// result with no errors.
//
// Handler invocations start in registration order and run concurrently;
// the caller bounds them through ctx. An invocation still running when ctx
// expires is recorded as a timeout failure, not silently dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, bundle models.Bundle, descriptor models.EventDescriptor) (models.DispatchResult, error) {
	triggers, err := d.registry.Resolve(ctx, bundle)
	if err != nil {
		d.logger.Error("Bundle load failed", "bundle_key", bundle.Key(), "error", err)

		return models.DispatchResult{}, err
	}

	provider := descriptor.Trigger.Provider.Normalized()
	candidates := triggers.Lookup(provider.Type, provider.Alias, descriptor.Trigger.TriggerType)
	matched := d.matcher.Match(descriptor, candidates)

	return d.DispatchDeclarations(ctx, bundle, descriptor, matched), nil
}

// DispatchDeclarations runs the descriptor against an explicit,
// already-selected declaration set from the bundle, skipping lookup and
// matching. The scheduler uses it so a schedule tick invokes exactly the
// declarations registered for that schedule. A completed event is
// published even when the set is empty.
func (d *Dispatcher) DispatchDeclarations(ctx context.Context, bundle models.Bundle, descriptor models.EventDescriptor, matched []models.Declaration) models.DispatchResult {
	started := time.Now()
	dispatchID := uuid.New().String()
	bundleKey := bundle.Key()

	provider := descriptor.Trigger.Provider.Normalized()

	ctx, span := otelhelper.StartSpan(ctx, d.tracer, "dispatcher.dispatch",
		attribute.String(otelhelper.DispatchIDKey, dispatchID),
		attribute.String(otelhelper.BundleKeyKey, bundleKey),
		attribute.String(otelhelper.ProviderTypeKey, provider.Type),
		attribute.String(otelhelper.ProviderAliasKey, provider.Alias),
		attribute.String(otelhelper.TriggerKindKey, string(descriptor.Trigger.TriggerType)),
		attribute.Int(otelhelper.MatchCountKey, len(matched)),
	)
	defer span.End()

	logger := d.logger.With(
		"dispatch_id", dispatchID,
		"bundle_key", bundleKey,
		"provider", provider.String(),
		"trigger_type", string(descriptor.Trigger.TriggerType),
	)

	var result models.DispatchResult

	results := make(chan invocationResult, len(matched))

	for _, declaration := range matched {
		d.publishMatched(ctx, bundleKey, dispatchID, declaration)

		go d.invoke(ctx, declaration, descriptor, results)
	}

	for range matched {
		r := <-results

		if r.err == nil {
			result.TriggersProcessed++

			continue
		}

		result.Errors = append(result.Errors, *r.err)
		d.publishFailed(ctx, bundleKey, dispatchID, *r.err)
	}

	d.publishCompleted(ctx, bundleKey, dispatchID, result, time.Since(started))

	logger.Info("Dispatch completed",
		"matched", len(matched),
		"processed", result.TriggersProcessed,
		"failed", len(result.Errors))

	return result
}

// invoke runs one handler invocation and reports its outcome. The handler
// itself runs in a nested goroutine so an expired context is observed even
// when the handler ignores cancellation.
func (d *Dispatcher) invoke(ctx context.Context, declaration models.Declaration, descriptor models.EventDescriptor, results chan<- invocationResult) {
	ctx, span := otelhelper.StartSpan(ctx, d.tracer, "dispatcher.invoke",
		attribute.String(otelhelper.TriggerIDKey, declaration.ID),
		attribute.String(otelhelper.TriggerKindKey, string(declaration.Kind)),
	)
	defer span.End()

	done := make(chan *models.ErrorInfo, 1)

	go func() {
		done <- d.runHandler(ctx, declaration, descriptor)
	}()

	select {
	case errInfo := <-done:
		results <- invocationResult{triggerID: declaration.ID, err: errInfo}
	case <-ctx.Done():
		results <- invocationResult{
			triggerID: declaration.ID,
			err: &models.ErrorInfo{
				Kind:      models.ErrorKindTimeout,
				TriggerID: declaration.ID,
				Message:   "invocation exceeded dispatch deadline: " + ctx.Err().Error(),
			},
		}
	}
}

func (d *Dispatcher) runHandler(ctx context.Context, declaration models.Declaration, descriptor models.EventDescriptor) (errInfo *models.ErrorInfo) {
	defer func() {
		if r := recover(); r != nil {
			errInfo = &models.ErrorInfo{
				Kind:      models.ErrorKindHandler,
				TriggerID: declaration.ID,
				Message:   fmt.Sprintf("handler panicked: %v", r),
			}
		}
	}()

	ectx, err := d.builder.Build(ctx, declaration, descriptor)
	if err != nil {
		// The handler never ran; the message makes that distinguishable
		// from a failure inside the handler itself.
		return &models.ErrorInfo{
			Kind:      models.ErrorKindHandler,
			TriggerID: declaration.ID,
			Message:   "invocation setup failed: " + err.Error(),
		}
	}

	if err := declaration.Handler(ctx, ectx); err != nil {
		kind := models.ErrorKindHandler
		if execution.IsSecretValidationError(err) {
			kind = models.ErrorKindSecret
		}

		return &models.ErrorInfo{
			Kind:      kind,
			TriggerID: declaration.ID,
			Message:   err.Error(),
		}
	}

	return nil
}

func (d *Dispatcher) publishMatched(ctx context.Context, bundleKey, dispatchID string, declaration models.Declaration) {
	if d.bus == nil {
		return
	}

	event := events.TriggerMatched{
		BaseEvent:   d.baseEvent(events.TriggerMatchedEvent, bundleKey),
		DispatchID:  dispatchID,
		TriggerID:   declaration.ID,
		TriggerKind: declaration.Kind,
	}

	if err := d.bus.Publish(ctx, dispatchID, event); err != nil {
		d.logger.Warn("Failed to publish trigger matched event", "error", err)
	}
}

func (d *Dispatcher) publishFailed(ctx context.Context, bundleKey, dispatchID string, failure models.ErrorInfo) {
	if d.bus == nil {
		return
	}

	event := events.HandlerFailed{
		BaseEvent:  d.baseEvent(events.HandlerFailedEvent, bundleKey),
		DispatchID: dispatchID,
		Failure:    failure,
	}

	if err := d.bus.Publish(ctx, dispatchID, event); err != nil {
		d.logger.Warn("Failed to publish handler failed event", "error", err)
	}
}

func (d *Dispatcher) publishCompleted(ctx context.Context, bundleKey, dispatchID string, result models.DispatchResult, duration time.Duration) {
	if d.bus == nil {
		return
	}

	event := events.DispatchCompleted{
		BaseEvent:  d.baseEvent(events.DispatchCompletedEvent, bundleKey),
		DispatchID: dispatchID,
		Processed:  result.TriggersProcessed,
		Failed:     len(result.Errors),
		Duration:   duration,
	}

	if err := d.bus.Publish(ctx, dispatchID, event); err != nil {
		d.logger.Warn("Failed to publish dispatch completed event", "error", err)
	}
}

func (d *Dispatcher) baseEvent(eventType events.EventType, bundleKey string) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		BundleKey: bundleKey,
	}
}
