package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	cli "github.com/urfave/cli/v3"

	"github.com/hookflow/hookflow/pkg/cmd"
	"github.com/hookflow/hookflow/pkg/log"
	"github.com/hookflow/hookflow/pkg/otelhelper"
	"github.com/hookflow/hookflow/pkg/web"
)

func run(ctx context.Context, command *cli.Command) error {
	logger := log.WithModule("hookflow-server")

	tracerProvider, err := otelhelper.InitTracer(ctx, "hookflow-server")
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}

	defer func() {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			slog.Error("Failed to shutdown tracer provider", "error", err)
		}
	}()

	timeout, err := time.ParseDuration(command.String("dispatch-timeout"))
	if err != nil {
		return fmt.Errorf("invalid dispatch timeout: %w", err)
	}

	bus := cmd.NewEventBus(command.String("event-bus"), logger)
	defer bus.Close()

	dispatcher := cmd.NewDispatcher(
		cmd.NewHandlerCatalog(),
		cmd.NewSecretResolver(command.String("redis-url")),
		cmd.AccountsFromEnv(),
		bus,
		logger,
	)

	validate := validator.New(validator.WithRequiredStructEnabled())
	handlers := web.NewAPIHandlers(dispatcher, validate, timeout, logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Post("/execute", handlers.Execute)
	app.Get("/health", handlers.HealthCheck)

	port := command.Int("port")
	logger.Info("Starting dispatch server", "port", port)

	return app.Listen(":" + strconv.Itoa(port))
}
