// Package matcher filters a bundle's candidate declarations down to the
// ones whose kind-specific predicate accepts an incoming event. Matching
// is pure: it never invokes handlers and has no side effects.
package matcher

import (
	"fmt"
	"log/slog"

	"github.com/Jeffail/gabs/v2"
	"github.com/expr-lang/expr"

	"github.com/hookflow/hookflow/pkg/models"
)

// Matcher applies per-kind predicate checks to registry candidates.
type Matcher struct {
	logger *slog.Logger
}

func NewMatcher(logger *slog.Logger) *Matcher {
	return &Matcher{
		logger: logger.With("module", "matcher"),
	}
}

// Match returns the candidates whose predicate accepts the descriptor,
// preserving the candidates' order. Candidates are expected to already
// share the descriptor's provider identity and kind (the registry lookup
// key), so only the per-event predicate is checked here.
func (m *Matcher) Match(descriptor models.EventDescriptor, candidates []models.Declaration) []models.Declaration {
	var matched []models.Declaration

	for _, candidate := range candidates {
		if m.matches(descriptor, candidate) {
			matched = append(matched, candidate)
		}
	}

	m.logger.Debug("Completed trigger matching",
		"trigger_type", descriptor.Trigger.TriggerType,
		"provider", descriptor.Trigger.Provider.String(),
		"candidates", len(candidates),
		"matches", len(matched))

	return matched
}

func (m *Matcher) matches(descriptor models.EventDescriptor, candidate models.Declaration) bool {
	switch candidate.Kind {
	case models.KindCron:
		// Schedule evaluation belongs to the scheduler; by the time a cron
		// event is dispatched the lookup key has already disambiguated it.
		return true
	case models.KindWebhook:
		return m.matchWebhook(descriptor.Trigger.Input, candidate.Predicate)
	default:
		return m.matchFields(descriptor.Data, candidate) &&
			m.matchFilter(descriptor.Data, candidate)
	}
}

// matchWebhook requires an exact path match and, when the declaration pins
// a method, an exact method match. No path normalization happens here;
// callers supply canonical paths.
func (m *Matcher) matchWebhook(input models.TriggerInput, predicate models.Predicate) bool {
	if input.Path != predicate.Path {
		return false
	}

	if predicate.Method != "" && predicate.Method != input.Method {
		return false
	}

	return true
}

// matchFields checks every predicate field against the value at the same
// dot-separated path in the event body. Fields absent from the predicate
// are wildcards; fields absent from the body fail the declaration that
// requires them.
func (m *Matcher) matchFields(data map[string]any, candidate models.Declaration) bool {
	if len(candidate.Predicate.Fields) == 0 {
		return true
	}

	body := gabs.Wrap(data)

	for path, expected := range candidate.Predicate.Fields {
		value := body.Path(path)
		if value == nil {
			return false
		}

		if fmt.Sprintf("%v", value.Data()) != fmt.Sprintf("%v", expected) {
			return false
		}
	}

	return true
}

// matchFilter evaluates the declaration's optional filter expression with
// the event body as environment. A filter that fails to evaluate or does
// not yield a boolean rejects the event rather than firing a handler on
// uncertain input.
func (m *Matcher) matchFilter(data map[string]any, candidate models.Declaration) bool {
	if candidate.Predicate.Filter == "" {
		return true
	}

	env := map[string]any{"event": data}

	out, err := expr.Eval(candidate.Predicate.Filter, env)
	if err != nil {
		m.logger.Warn("Filter expression failed",
			"trigger_id", candidate.ID,
			"filter", candidate.Predicate.Filter,
			"error", err)

		return false
	}

	accepted, ok := out.(bool)
	if !ok {
		m.logger.Warn("Filter expression is not boolean",
			"trigger_id", candidate.ID,
			"filter", candidate.Predicate.Filter)

		return false
	}

	return accepted
}
