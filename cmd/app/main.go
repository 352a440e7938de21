package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/scholarsync/internal"
	pkgconfig "github.com/starford/scholarsync/pkg/config"
)

var version = "dev"

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, opts...); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "scholarsync",
		Usage:   "Class email alerts and syllabus calendars for students",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
