package main

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/approval_engine/internal/core/ports/repositories"
	"github.com/SscSPs/approval_engine/internal/platform/config"
	"github.com/SscSPs/approval_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/approval_engine/internal/repositories/database/sqlite"
	"github.com/SscSPs/approval_engine/internal/repositories/memory"
	"github.com/SscSPs/approval_engine/pkg/database"
)

// openStore connects the configured backend and, when migrate is set, brings
// its schema up to date. The returned func releases the connection.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		if migrate {
			logger.Info("Running database migrations...")
			if err := database.RunMigrations(logger, cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				return portsrepo.RepositoryProvider{}, nil, err
			}
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		logger.Info("Database connection pool established.")
		return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		store := sqlite.New(db)
		if migrate {
			if err := store.Init(ctx); err != nil {
				_ = db.Close()
				return portsrepo.RepositoryProvider{}, nil, err
			}
		}
		logger.Info("SQLite database opened", slog.String("path", cfg.SQLitePath))
		return store.Provider(), func() {
			if err := db.Close(); err != nil {
				logger.Error("Error closing sqlite database", slog.String("error", err.Error()))
			}
		}, nil

	case config.DriverMemory:
		logger.Warn("Using in-memory store; all data is lost on exit")
		store := memory.New()
		store.SeedDefaultRoles()
		return store.Provider(), func() {}, nil
	}
	return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
}
