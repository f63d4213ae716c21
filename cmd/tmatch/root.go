package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vault-md/tmatch/internal/config"
	"github.com/vault-md/tmatch/internal/database"
	"github.com/vault-md/tmatch/internal/logging"
	"github.com/vault-md/tmatch/internal/scope"
	"github.com/vault-md/tmatch/internal/usecase"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	owner        string
	organization string
	dbPath       string
	configPath   string
	logLevel     string
	logFormat    string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:          "tmatch",
		Short:        "tmatch - a translation memory with fuzzy matching",
		Long:         "tmatch remembers translated segments per owner and organization and suggests them for similar text.",
		Version:      version,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.owner, "owner", "", "Owner id (defaults to "+scope.OwnerEnvVar+" or the OS user)")
	flags.StringVar(&opts.organization, "org", "", "Organization id for shared memory")
	flags.StringVar(&opts.dbPath, "db", "", "Database path (defaults to the data directory)")
	flags.StringVar(&opts.configPath, "config", "", "Config file path")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format: auto, console, json")

	rootCmd.AddCommand(newLookupCmd(opts))
	rootCmd.AddCommand(newStoreCmd(opts))
	rootCmd.AddCommand(newImportCmd(opts))
	rootCmd.AddCommand(newAcceptCmd(opts))
	rootCmd.AddCommand(newStatsCmd(opts))
	rootCmd.AddCommand(newClearCmd(opts))
	rootCmd.AddCommand(newDeleteCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newShowCmd(opts))
	rootCmd.AddCommand(newMCPCmd(opts))

	return rootCmd
}

func (o *globalOptions) resolveScope() (scope.Scope, error) {
	return scope.ResolveScope(scope.ScopeOptions{
		Owner:        o.owner,
		Organization: o.organization,
		DetectOwner:  true,
	})
}

// engine bundles what a command needs to talk to the translation memory.
type engine struct {
	cfg    *config.Config
	logger *slog.Logger
	dbCtx  *database.Context
	memory *usecase.Memory
}

// openEngine loads settings, applies flag overrides and opens the database.
func (o *globalOptions) openEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
	if o.dbPath != "" {
		cfg.Storage.DBPath = o.dbPath
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, err
	}

	dbPath := cfg.ResolvedDBPath()
	dbCtx, err := database.CreateDatabase(dbPath)
	if err != nil {
		return nil, err
	}

	total, err := database.NewEntryRepository(dbCtx).Count(ctx)
	if err != nil {
		_ = database.CloseDatabase(dbCtx)
		return nil, fmt.Errorf("count entries: %w", err)
	}
	logging.NewComponentLogger(logger, "cli").DebugContext(ctx, "translation memory opened",
		slog.String("db_path", dbPath),
		slog.Int64("entries", total),
	)

	memory := usecase.NewMemory(dbCtx,
		usecase.WithLogger(logger),
		usecase.WithMatching(cfg.Matching),
	)

	return &engine{cfg: cfg, logger: logger, dbCtx: dbCtx, memory: memory}, nil
}

func (e *engine) Close() error {
	return database.CloseDatabase(e.dbCtx)
}
