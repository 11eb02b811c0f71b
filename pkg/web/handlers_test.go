package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookflow/hookflow/pkg/bundle"
	"github.com/hookflow/hookflow/pkg/dispatcher"
	"github.com/hookflow/hookflow/pkg/execution"
	"github.com/hookflow/hookflow/pkg/matcher"
	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/registry"
	"github.com/hookflow/hookflow/pkg/render"
	"github.com/hookflow/hookflow/pkg/secrets"
	"github.com/hookflow/hookflow/pkg/web"
)

const testManifest = `
triggers:
  - kind: webhook
    path: /custom
    handler: record
`

type recorder struct {
	mu     sync.Mutex
	events []map[string]any
}

func (r *recorder) handle(_ context.Context, ectx *models.ExecutionContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ectx.Event)

	return nil
}

func setupTestApp(t *testing.T) (*fiber.App, *recorder) {
	t.Helper()

	logger := slog.Default()
	rec := &recorder{}

	catalog := bundle.NewHandlerCatalog()
	catalog.Register("record", rec.handle)

	loader := bundle.NewManifestLoader(catalog, logger)
	reg := registry.NewRegistry(loader, logger)
	m := matcher.NewMatcher(logger)
	builder := execution.NewBuilder(secrets.NewStaticResolver(nil), nil, logger)
	d := dispatcher.NewDispatcher(reg, m, builder, nil, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())
	handlers := web.NewAPIHandlers(d, validate, 5*time.Second, logger)

	app := fiber.New()
	app.Post("/execute", handlers.Execute)
	app.Get("/health", handlers.HealthCheck)

	return app, rec
}

func executePayload(path, method string, data map[string]any) map[string]any {
	return map[string]any{
		"userCode": map[string]any{
			"files":      map[string]string{"main.yaml": testManifest},
			"entrypoint": "main.yaml",
		},
		"trigger": map[string]any{
			"provider":     map[string]string{"type": "builtin", "alias": "default"},
			"trigger_type": "webhook",
			"input":        map[string]string{"path": path, "method": method},
		},
		"data": data,
	}
}

func postExecute(t *testing.T, app *fiber.App, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/execute", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeResponse(t *testing.T, resp *http.Response) render.ContainerResponse {
	t.Helper()

	var decoded render.ContainerResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))

	return decoded
}

func TestExecute_MatchingWebhook(t *testing.T) {
	t.Parallel()

	app, rec := setupTestApp(t)

	payload := executePayload("/custom", "POST", map[string]any{
		"body": map[string]any{"message": "Hello from test invocation!"},
	})

	resp := postExecute(t, app, payload)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	decoded := decodeResponse(t, resp)
	assert.Equal(t, http.StatusOK, decoded.StatusCode)
	assert.Equal(t, 1, decoded.TriggersProcessed)
	assert.Contains(t, decoded.Message, "1")

	require.Len(t, rec.events, 1)
	body, ok := rec.events[0]["body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Hello from test invocation!", body["message"])
}

func TestExecute_NonMatchingPath(t *testing.T) {
	t.Parallel()

	app, rec := setupTestApp(t)

	resp := postExecute(t, app, executePayload("/other", "", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode, "zero matches is a completed dispatch")

	decoded := decodeResponse(t, resp)
	assert.Equal(t, 0, decoded.TriggersProcessed)
	assert.Empty(t, rec.events)
}

func TestExecute_BundleLoadFailure(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	payload := executePayload("/custom", "POST", nil)
	payload["userCode"] = map[string]any{
		"files":      map[string]string{"main.yaml": "{{{"},
		"entrypoint": "main.yaml",
	}

	resp := postExecute(t, app, payload)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	decoded := decodeResponse(t, resp)
	assert.Equal(t, http.StatusInternalServerError, decoded.StatusCode)
	assert.Equal(t, 0, decoded.TriggersProcessed)
}

func TestExecute_InvalidRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload any
	}{
		{
			name:    "not an object",
			payload: "plain string",
		},
		{
			name:    "missing userCode",
			payload: map[string]any{"trigger": map[string]any{"trigger_type": "webhook"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, _ := setupTestApp(t)

			resp := postExecute(t, app, tt.payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
