// Package lambda implements the serverless deployment target: a handler
// that decodes the shared dispatch request shape and an AWS Lambda custom
// runtime loop that feeds it. The envelope it produces carries the
// container payload JSON-encoded as a string body, as the function
// platform requires.
package lambda

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hookflow/hookflow/pkg/dispatcher"
	"github.com/hookflow/hookflow/pkg/render"
	"github.com/hookflow/hookflow/pkg/web"
)

type Handler struct {
	dispatcher *dispatcher.Dispatcher
	validator  *validator.Validate
	timeout    time.Duration
	logger     *slog.Logger
}

func NewHandler(d *dispatcher.Dispatcher, validate *validator.Validate, timeout time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		dispatcher: d,
		validator:  validate,
		timeout:    timeout,
		logger:     logger.With("module", "lambda"),
	}
}

// Handle processes one invocation payload and always returns a well-formed
// envelope; transport-level failure is reserved for payloads that cannot
// be decoded at all.
func (h *Handler) Handle(ctx context.Context, payload []byte) render.ServerlessResponse {
	var req web.ExecuteRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return errorEnvelope(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return errorEnvelope(http.StatusBadRequest, "Invalid request: "+err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	result, err := h.dispatcher.Dispatch(ctx, req.UserCode, req.Descriptor())
	if err != nil {
		h.logger.Error("Dispatch failed", "error", err)
	}

	response, renderErr := render.Serverless(result, err)
	if renderErr != nil {
		return errorEnvelope(http.StatusInternalServerError, renderErr.Error())
	}

	return response
}

func errorEnvelope(status int, message string) render.ServerlessResponse {
	body, _ := json.Marshal(map[string]any{"message": message})

	return render.ServerlessResponse{StatusCode: status, Body: string(body)}
}
