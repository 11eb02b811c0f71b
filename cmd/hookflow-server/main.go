// Package main provides the hookflow container server: the long-lived
// dispatch target exposing POST /execute.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/hookflow/hookflow/pkg/log"
)

const (
	defaultPort            = 9090
	defaultDispatchTimeout = "30s"
)

func main() {
	cmd := &cli.Command{
		Name:                  "hookflow-server",
		Usage:                 "Dispatch inbound events to a bundle's matching trigger handlers",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the dispatch server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus for dispatch lifecycle events (memory, kafka)",
				Value:   "memory",
				Sources: cli.EnvVars("EVENT_BUS"),
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

			return run(ctx, command)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.WithModule("server").Error("Server failed", "error", err)
		os.Exit(1)
	}
}
