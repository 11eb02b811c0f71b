// Package web exposes the container target's HTTP surface: the dispatch
// entry point and a health check.
package web

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/hookflow/hookflow/pkg/dispatcher"
	"github.com/hookflow/hookflow/pkg/render"
)

type APIHandlers struct {
	dispatcher *dispatcher.Dispatcher
	validator  *validator.Validate
	timeout    time.Duration
	logger     *slog.Logger
}

// NewAPIHandlers builds the handler set. timeout bounds one dispatch call
// end to end; handlers still running when it expires are recorded as
// timed out in the rendered response.
func NewAPIHandlers(d *dispatcher.Dispatcher, validate *validator.Validate, timeout time.Duration, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dispatcher: d,
		validator:  validate,
		timeout:    timeout,
		logger:     logger.With("module", "web"),
	}
}

// Execute is POST /execute. A completed dispatch always answers 200, even
// when individual handlers failed; only a bundle load failure answers 500.
func (h *APIHandlers) Execute(c fiber.Ctx) error {
	var req ExecuteRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Invalid request: "+err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	result, err := h.dispatcher.Dispatch(ctx, req.UserCode, req.Descriptor())
	if err != nil {
		h.logger.Error("Dispatch failed", "error", err)
	}

	response := render.Container(result, err)

	return c.Status(response.StatusCode).JSON(response)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}
