package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/metaviz/internal"
	"github.com/starford/metaviz/internal/collector"
	pkgconfig "github.com/starford/metaviz/pkg/config"
)

var version = "dev"

// options loads the configuration. An explicitly given config file must
// exist; the default one may be absent.
func options(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	load := pkgconfig.Optional[internal.Config]
	if cmd.IsSet("config") {
		load = pkgconfig.Load[internal.Config]
	}
	if err := load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, opts...)
}

func fetchMetadata(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.FetchMetadata(ctx, opts...)
}

func buildIndex(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.BuildIndex(ctx, opts...)
}

func relationStats(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	job := collector.RelationJob{
		Snapshot:   cmd.String("snapshot"),
		Relation:   cmd.String("relation"),
		SourceType: cmd.String("source"),
		TargetType: cmd.String("target"),
	}
	return internal.RelationStats(ctx, cmd.String("raw"), job, opts...)
}

func flattenReports(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.Flatten(ctx, cmd.String("in"), cmd.String("out"), cmd.String("db"), opts...)
}

func searchReports(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.SearchReports(ctx, cmd.String("db"), cmd.String("query"), int(cmd.Int("limit")), os.Stdout, opts...)
}

func main() {
	cmd := &cli.Command{
		Name:    "metaviz",
		Usage:   "Dashboard of MetaIS registry metadata and relation statistics",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (.yaml or .toml)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the dashboard over HTTP",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the statistics over MCP on stdin/stdout",
				Action: mcp,
			},
			{
				Name:   "fetch-metadata",
				Usage:  "Download node and relation type metadata from the registry",
				Action: fetchMetadata,
			},
			{
				Name:   "build-index",
				Usage:  "Rebuild stats/index.json from the stats directories",
				Action: buildIndex,
			},
			{
				Name:   "relation-stats",
				Usage:  "Compute the statistics of one relation from raw dumps",
				Action: relationStats,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "snapshot", Usage: "Snapshot date, e.g. 2025-11-10", Required: true},
					&cli.StringFlag{Name: "relation", Usage: "Relation technical name, e.g. PO_je_gestor_KS", Required: true},
					&cli.StringFlag{Name: "source", Usage: "Source node type, e.g. PO", Required: true},
					&cli.StringFlag{Name: "target", Usage: "Target node type, e.g. KS", Required: true},
					&cli.StringFlag{Name: "raw", Usage: "Directory holding relations/ and nodes/ dumps", Value: "output"},
				},
			},
			{
				Name:   "flatten",
				Usage:  "Convert TABLE report JSON files to CSV",
				Action: flattenReports,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Usage: "Directory of report JSON files", Value: "data/json"},
					&cli.StringFlag{Name: "out", Usage: "Directory for CSV files", Value: "data/csv"},
					&cli.StringFlag{Name: "db", Usage: "Optional SQLite database receiving the reports"},
				},
			},
			{
				Name:   "search-reports",
				Usage:  "Search rows of reports stored by flatten --db",
				Action: searchReports,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "db", Usage: "SQLite report database", Required: true},
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Search text", Required: true},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of rows", Value: 20},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
