// Package main provides the hookflow serverless entrypoint: a custom
// runtime loop answering Lambda-style invocations with the serverless
// envelope.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	cli "github.com/urfave/cli/v3"

	"github.com/hookflow/hookflow/pkg/cmd"
	"github.com/hookflow/hookflow/pkg/lambda"
	"github.com/hookflow/hookflow/pkg/log"
)

const defaultDispatchTimeout = "30s"

func main() {
	command := &cli.Command{
		Name:  "hookflow-lambda",
		Usage: "Serve dispatch invocations through the Lambda custom runtime API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "runtime-api",
				Usage:   "Lambda runtime API address",
				Sources: cli.EnvVars("AWS_LAMBDA_RUNTIME_API"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the secret backend (environment variables when empty)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "dispatch-timeout",
				Usage:   "Overall deadline for one dispatch call",
				Value:   defaultDispatchTimeout,
				Sources: cli.EnvVars("DISPATCH_TIMEOUT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("hookflow-lambda")

			apiAddress := command.String("runtime-api")
			if apiAddress == "" {
				return errors.New("runtime API address is not set")
			}

			timeout, err := time.ParseDuration(command.String("dispatch-timeout"))
			if err != nil {
				return fmt.Errorf("invalid dispatch timeout: %w", err)
			}

			// No event bus in the single-shot target; lifecycle events
			// would outlive the invocation that produced them.
			dispatcher := cmd.NewDispatcher(
				cmd.NewHandlerCatalog(),
				cmd.NewSecretResolver(command.String("redis-url")),
				cmd.AccountsFromEnv(),
				nil,
				logger,
			)

			validate := validator.New(validator.WithRequiredStructEnabled())
			handler := lambda.NewHandler(dispatcher, validate, timeout, logger)

			return lambda.NewRuntime(apiAddress, handler, logger).Run(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		log.WithModule("hookflow-lambda").Error("Runtime failed", "error", err)
		os.Exit(1)
	}
}
