package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/labnote/internal"
	"github.com/starford/labnote/internal/labservice"
	"github.com/starford/labnote/internal/search"
	pkgconfig "github.com/starford/labnote/pkg/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func appOptions(cfg *internal.Config) []internal.Option {
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, appOptions(cfg)...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, appOptions(cfg)...)
}

// withLab runs fn against a freshly synced lab. Logs go to stderr so
// stdout carries only command output.
func withLab(ctx context.Context, cmd *cli.Command, fn func(*labservice.Service) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	lab, err := internal.OpenLab(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer lab.Close()
	return fn(lab.Service)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.Args().First()
	if query == "" {
		return fmt.Errorf("usage: labnote search <query>")
	}
	kind, ok := search.ParseKind(cmd.String("kind"))
	if !ok {
		return fmt.Errorf("unknown kind %q", cmd.String("kind"))
	}
	return withLab(ctx, cmd, func(svc *labservice.Service) error {
		return printJSON(os.Stdout, svc.Search(query, kind))
	})
}

func listHistory(ctx context.Context, cmd *cli.Command) error {
	return withLab(ctx, cmd, func(svc *labservice.Service) error {
		for _, q := range svc.History() {
			fmt.Fprintln(os.Stdout, q)
		}
		return nil
	})
}

func clearHistory(ctx context.Context, cmd *cli.Command) error {
	return withLab(ctx, cmd, func(svc *labservice.Service) error {
		svc.ClearHistory()
		return nil
	})
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	out := cmd.String("out")
	if out == "" {
		out = labservice.ExportFileName(time.Now())
	}
	return withLab(ctx, cmd, func(svc *labservice.Service) error {
		if out == "-" {
			return printJSON(os.Stdout, svc.Export(ctx))
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		if err := printJSON(f, svc.Export(ctx)); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "exported to", out)
		return nil
	})
}

func main() {
	cmd := &cli.Command{
		Name:    "labnote",
		Usage:   "Lab notebook over a Markdown vault with ranked search and search history",
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
				Usage:  "Run the HTTP API and the vault watcher",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
			{
				Name:      "search",
				Usage:     "Run a search and print the ranked results as JSON",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Only print results of this kind (entry, notebook, tag)",
					},
				},
				Action: runSearch,
			},
			{
				Name:  "history",
				Usage: "Inspect the search history",
				Commands: []*cli.Command{
					{Name: "list", Usage: "Print committed queries, most recent first", Action: listHistory},
					{Name: "clear", Usage: "Forget all committed queries", Action: clearHistory},
				},
			},
			{
				Name:  "export",
				Usage: "Write every entry and notebook to a JSON file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output path, or - for stdout (default labnotes-export-YYYY-MM-DD.json)",
					},
				},
				Action: runExport,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
