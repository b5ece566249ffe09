package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/storefront/cmd/app/commands"
	"github.com/allisson/storefront/internal/app"
	"github.com/allisson/storefront/internal/config"
)

func retentionFlags(subject string) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:     "days",
			Aliases:  []string{"d"},
			Required: true,
			Usage:    "Delete " + subject + " older than this many days",
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Aliases: []string{"n"},
			Value:   false,
			Usage:   "Show how many " + subject + " would be deleted without deleting",
		},
		formatFlag(),
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func getMaintenanceCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "clean-refresh-tokens",
			Usage: "Delete refresh tokens that expired more than the specified days ago",
			Flags: retentionFlags("expired refresh tokens"),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunCleanRefreshTokens(
					ctx,
					tokenUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("days")),
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "purge-dead-letters",
			Usage: "Delete dead letters recorded more than the specified days ago",
			Flags: retentionFlags("dead letters"),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				deadLetterUseCase, err := container.DeadLetterUseCase()
				if err != nil {
					return err
				}

				return commands.RunPurgeDeadLetters(
					ctx,
					deadLetterUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("days")),
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-dead-letters",
			Usage: "List recorded dead letters, newest first",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "offset",
					Value: 0,
					Usage: "Number of dead letters to skip",
				},
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Value:   50,
					Usage:   "Maximum number of dead letters to list",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				deadLetterUseCase, err := container.DeadLetterUseCase()
				if err != nil {
					return err
				}

				return commands.RunListDeadLetters(
					ctx,
					deadLetterUseCase,
					commands.DefaultIO().Writer,
					int(cmd.Int("offset")),
					int(cmd.Int("limit")),
					cmd.String("format"),
				)
			},
		},
	}
}
