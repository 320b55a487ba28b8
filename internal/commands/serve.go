package commands

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/r2x-tools/reedsmap/internal/config"
	"github.com/r2x-tools/reedsmap/internal/logging"
	"github.com/r2x-tools/reedsmap/internal/mapping"
	"github.com/r2x-tools/reedsmap/internal/store"
	"github.com/r2x-tools/reedsmap/internal/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the mapping API server",
		Long: `Serve runs the HTTP API: dataset catalog lookups, mapping document
validation, CSV harmonization jobs and run history. Configuration comes
from environment variables (see the README), optionally via a .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Env-driven logging settings replace whatever the root flags set up
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"mapping_path", cfg.Mapping.Path,
		"harmonize_max_concurrent", cfg.Harmonize.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Load the mapping table and overrides
	table, err := loadConfiguredTable(cfg.Mapping)
	if err != nil {
		return err
	}
	registry := mapping.NewRegistry(table)
	slog.Info("mapping loaded",
		"datasets", registry.Count(),
		"inputs", len(registry.Inputs()),
		"required", len(registry.RequiredKeys()),
	)

	// Run history: PostgreSQL when configured, in-memory otherwise
	ctx := context.Background()
	var runs store.Store
	if cfg.Database.URL != "" {
		pg, err := store.OpenPostgres(ctx, cfg.Database)
		if err != nil {
			return err
		}
		runs = pg
		if u, err := url.Parse(cfg.Database.URL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		} else {
			slog.Info("connected to database")
		}
	} else {
		runs = store.NewMemoryStore()
		slog.Info("no database configured, keeping run history in memory")
	}
	defer runs.Close()

	server := web.NewServer(cfg, registry, runs)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr()); err != nil {
		slog.Info("server stopped", "error", err)
	}
	return nil
}

// loadConfiguredTable loads the mapping selected by MappingConfig, applying
// overrides when configured.
func loadConfiguredTable(cfg config.MappingConfig) (mapping.Table, error) {
	var (
		table mapping.Table
		err   error
	)
	if cfg.Path == "" {
		table, err = mapping.LoadDefault()
	} else {
		table, err = mapping.LoadFile(cfg.Path)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Overrides != "" {
		overrides, err := mapping.LoadOverrides(cfg.Overrides)
		if err != nil {
			return nil, err
		}
		table, err = mapping.Merge(table, overrides)
		if err != nil {
			return nil, err
		}
	}
	return table, nil
}
