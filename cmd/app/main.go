package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/magazine/internal"
	pkgconfig "github.com/starford/magazine/pkg/config"
)

var version = "dev"

// Exit codes of the validate command.
const (
	exitInvalid = 2
	exitFailed  = 1
)

func loadConfig(cmd *cli.Command, required bool) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	load := pkgconfig.LoadIfExists[internal.Config]
	if required {
		load = pkgconfig.Load[internal.Config]
	}
	if err := load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if dir := cmd.String("dir"); dir != "" {
		cfg.Content.Dir = dir
		cfg.Content.BaseURL = ""
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, !cmd.IsSet("dir"))
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return cli.Exit(err.Error(), exitFailed)
	}

	report, err := internal.RunValidate(ctx, internal.WithConfig(cfg), internal.WithLogger(logger))
	if err != nil {
		return cli.Exit(err.Error(), exitFailed)
	}

	report.Log(logger)
	if !report.OK() {
		return cli.Exit(fmt.Sprintf("validation failed: %d error(s), %d warning(s)", report.Errors(), report.Warnings()), exitInvalid)
	}
	fmt.Fprintln(cmd.Root().Writer, "Validation passed")
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func main() {
	dirFlag := &cli.StringFlag{
		Name:    "dir",
		Aliases: []string{"d"},
		Usage:   "Local content directory; overrides content.dir and content.base_url",
		Sources: cli.EnvVars("MAGAZINE_CONTENT_DIR"),
	}

	cmd := &cli.Command{
		Name:    "magazine",
		Usage:   "Newsletter magazine: manifest-driven articles served as home, list and article views",
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
			dirFlag,
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the JSON API with live reload",
				Action: serve,
			},
			{
				Name:   "validate",
				Usage:  "Check the manifest and article headers (exit 0 ok, 2 invalid, 1 could not run)",
				Action: runValidate,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		var exit cli.ExitCoder
		if errors.As(err, &exit) {
			os.Exit(exit.ExitCode())
		}
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
