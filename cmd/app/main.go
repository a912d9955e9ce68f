package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/notesapp/internal"
	pkgconfig "github.com/starford/notesapp/pkg/config"
)

var version = "dev"

type runner func(ctx context.Context, opts ...internal.Option) error

// action loads the config file and hands it to the given entry point.
func action(run runner) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		configPath := cmd.String("config")

		cfg := internal.NewDefaultConfig()
		if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		if db := cmd.String("db"); db != "" {
			cfg.SQLite.Path = db
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
			internal.WithVersion(version),
		}

		if err := run(ctx, opts...); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}
		return nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "notesapp",
		Usage:  "Prioritised notes with live search, sort and undo",
		Action: action(internal.Run),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Path to the SQLite database, overrides sqlite.path",
				Sources: cli.EnvVars("NOTES_DB"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with SSE and WebSocket live queries",
				Action: action(internal.Run),
			},
			{
				Name:   "shell",
				Usage:  "Open the interactive notes terminal",
				Action: action(internal.RunShell),
			},
			{
				Name:   "mcp",
				Usage:  "Serve the notes tools over MCP stdio",
				Action: action(internal.RunMCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
