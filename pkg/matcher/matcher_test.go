package matcher_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookflow/hookflow/pkg/matcher"
	"github.com/hookflow/hookflow/pkg/models"
)

func noop(_ context.Context, _ *models.ExecutionContext) error {
	return nil
}

func webhookDescriptor(path, method string) models.EventDescriptor {
	return models.EventDescriptor{
		Trigger: models.TriggerIdentity{
			Provider:    models.ProviderIdentity{Type: models.ProviderBuiltin},
			TriggerType: models.KindWebhook,
			Input:       models.TriggerInput{Path: path, Method: method},
		},
	}
}

func TestMatcher_Webhook(t *testing.T) {
	t.Parallel()

	m := matcher.NewMatcher(slog.Default())

	declA := models.Declaration{
		ID:        "a",
		Kind:      models.KindWebhook,
		Predicate: models.Predicate{Path: "/a"},
		Handler:   noop,
	}
	declB := models.Declaration{
		ID:        "b",
		Kind:      models.KindWebhook,
		Predicate: models.Predicate{Path: "/b"},
		Handler:   noop,
	}

	matched := m.Match(webhookDescriptor("/a", "POST"), []models.Declaration{declA, declB})
	require.Len(t, matched, 1)
	assert.Equal(t, "a", matched[0].ID)

	matched = m.Match(webhookDescriptor("/other", "POST"), []models.Declaration{declA, declB})
	assert.Empty(t, matched)
}

func TestMatcher_Webhook_Method(t *testing.T) {
	t.Parallel()

	m := matcher.NewMatcher(slog.Default())

	anyMethod := models.Declaration{
		ID:        "any",
		Kind:      models.KindWebhook,
		Predicate: models.Predicate{Path: "/hook"},
		Handler:   noop,
	}
	postOnly := models.Declaration{
		ID:        "post",
		Kind:      models.KindWebhook,
		Predicate: models.Predicate{Path: "/hook", Method: "POST"},
		Handler:   noop,
	}

	candidates := []models.Declaration{anyMethod, postOnly}

	matched := m.Match(webhookDescriptor("/hook", "POST"), candidates)
	assert.Len(t, matched, 2)

	matched = m.Match(webhookDescriptor("/hook", "GET"), candidates)
	require.Len(t, matched, 1)
	assert.Equal(t, "any", matched[0].ID)
}

func TestMatcher_Webhook_NoPathNormalization(t *testing.T) {
	t.Parallel()

	m := matcher.NewMatcher(slog.Default())

	decl := models.Declaration{
		ID:        "exact",
		Kind:      models.KindWebhook,
		Predicate: models.Predicate{Path: "/hook"},
		Handler:   noop,
	}

	assert.Empty(t, m.Match(webhookDescriptor("/hook/", ""), []models.Declaration{decl}))
	assert.Empty(t, m.Match(webhookDescriptor("/Hook", ""), []models.Declaration{decl}))
}

func TestMatcher_ProviderFields_WildcardAndExact(t *testing.T) {
	t.Parallel()

	m := matcher.NewMatcher(slog.Default())

	wildcard := models.Declaration{
		ID:      "wildcard",
		Kind:    models.KindIssueCreated,
		Handler: noop,
	}
	exact := models.Declaration{
		ID:        "exact",
		Kind:      models.KindIssueCreated,
		Predicate: models.Predicate{Fields: map[string]any{"projectKey": "X"}},
		Handler:   noop,
	}

	candidates := []models.Declaration{wildcard, exact}

	descriptor := models.EventDescriptor{
		Trigger: models.TriggerIdentity{
			Provider:    models.ProviderIdentity{Type: models.ProviderJira},
			TriggerType: models.KindIssueCreated,
		},
		Data: map[string]any{"projectKey": "X"},
	}

	matched := m.Match(descriptor, candidates)
	require.Len(t, matched, 2, "wildcard and exact both match project X")

	descriptor.Data["projectKey"] = "Y"

	matched = m.Match(descriptor, candidates)
	require.Len(t, matched, 1, "only wildcard matches project Y")
	assert.Equal(t, "wildcard", matched[0].ID)
}

func TestMatcher_ProviderFields_NestedPath(t *testing.T) {
	t.Parallel()

	m := matcher.NewMatcher(slog.Default())

	decl := models.Declaration{
		ID:        "nested",
		Kind:      models.KindMergeRequestComment,
		Predicate: models.Predicate{Fields: map[string]any{"project.id": 42}},
		Handler:   noop,
	}

	descriptor := models.EventDescriptor{
		Trigger: models.TriggerIdentity{
			Provider:    models.ProviderIdentity{Type: models.ProviderGitLab},
			TriggerType: models.KindMergeRequestComment,
		},
		// JSON decoding produces float64 for numbers; the comparison must
		// still hold against the manifest's int.
		Data: map[string]any{"project": map[string]any{"id": float64(42)}},
	}

	assert.Len(t, m.Match(descriptor, []models.Declaration{decl}), 1)

	descriptor.Data = map[string]any{"project": map[string]any{"id": float64(7)}}
	assert.Empty(t, m.Match(descriptor, []models.Declaration{decl}))

	descriptor.Data = map[string]any{}
	assert.Empty(t, m.Match(descriptor, []models.Declaration{decl}), "declared field absent from body fails")
}

func TestMatcher_FilterExpression(t *testing.T) {
	t.Parallel()

	m := matcher.NewMatcher(slog.Default())

	decl := models.Declaration{
		ID:        "filtered",
		Kind:      models.KindIssueCreated,
		Predicate: models.Predicate{Filter: `event.severity == "high"`},
		Handler:   noop,
	}

	descriptor := models.EventDescriptor{
		Trigger: models.TriggerIdentity{
			Provider:    models.ProviderIdentity{Type: models.ProviderJira},
			TriggerType: models.KindIssueCreated,
		},
		Data: map[string]any{"severity": "high"},
	}

	assert.Len(t, m.Match(descriptor, []models.Declaration{decl}), 1)

	descriptor.Data["severity"] = "low"
	assert.Empty(t, m.Match(descriptor, []models.Declaration{decl}))
}

func TestMatcher_FilterExpression_Invalid(t *testing.T) {
	t.Parallel()

	m := matcher.NewMatcher(slog.Default())

	tests := []struct {
		name   string
		filter string
	}{
		{name: "unparseable", filter: `event.severity ==`},
		{name: "non boolean result", filter: `event.severity`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			decl := models.Declaration{
				ID:        "bad-filter",
				Kind:      models.KindIssueCreated,
				Predicate: models.Predicate{Filter: tt.filter},
				Handler:   noop,
			}

			descriptor := models.EventDescriptor{
				Data: map[string]any{"severity": "high"},
			}

			assert.Empty(t, m.Match(descriptor, []models.Declaration{decl}))
		})
	}
}

func TestMatcher_Cron_AlwaysMatches(t *testing.T) {
	t.Parallel()

	m := matcher.NewMatcher(slog.Default())

	decl := models.Declaration{
		ID:        "tick",
		Kind:      models.KindCron,
		Predicate: models.Predicate{Schedule: "*/5 * * * *"},
		Handler:   noop,
	}

	descriptor := models.EventDescriptor{
		Trigger: models.TriggerIdentity{
			Provider:    models.ProviderIdentity{Type: models.ProviderBuiltin},
			TriggerType: models.KindCron,
		},
	}

	assert.Len(t, m.Match(descriptor, []models.Declaration{decl}), 1)
}

func TestMatcher_PreservesCandidateOrder(t *testing.T) {
	t.Parallel()

	m := matcher.NewMatcher(slog.Default())

	candidates := []models.Declaration{
		{ID: "one", Kind: models.KindWebhook, Predicate: models.Predicate{Path: "/x"}, Handler: noop},
		{ID: "two", Kind: models.KindWebhook, Predicate: models.Predicate{Path: "/x"}, Handler: noop},
		{ID: "three", Kind: models.KindWebhook, Predicate: models.Predicate{Path: "/x"}, Handler: noop},
	}

	matched := m.Match(webhookDescriptor("/x", ""), candidates)
	require.Len(t, matched, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{matched[0].ID, matched[1].ID, matched[2].ID})
}
