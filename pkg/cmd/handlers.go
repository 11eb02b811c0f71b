package cmd

import (
	"context"
	"errors"

	"github.com/hookflow/hookflow/pkg/bundle"
	"github.com/hookflow/hookflow/pkg/models"
)

// NewHandlerCatalog builds the catalog with the native handlers both
// binaries ship. Embedding applications register their own handlers on
// top of these.
func NewHandlerCatalog() *bundle.HandlerCatalog {
	catalog := bundle.NewHandlerCatalog()

	catalog.Register("log", logHandler)
	catalog.Register("echo", echoHandler)

	return catalog
}

// logHandler records the full event body, useful for wiring checks.
func logHandler(_ context.Context, ectx *models.ExecutionContext) error {
	ectx.Logger.Info("Received event", "event", ectx.Event)

	return nil
}

// echoHandler logs the event's body.message field, the conventional smoke
// test payload.
func echoHandler(_ context.Context, ectx *models.ExecutionContext) error {
	body, _ := ectx.Event["body"].(map[string]any)
	message, ok := body["message"]
	if !ok {
		return errors.New("event has no body.message field")
	}

	ectx.Logger.Info("Echo", "message", message)

	return nil
}
