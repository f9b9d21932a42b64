package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	scoredb "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories"
	scoremigrations "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories/migrations"
	"github.com/Gr33nOps/VTcade/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// Open connects to Postgres with the given configuration and returns a bun.DB.
func Open(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*bun.DB, error) {
	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	db.RegisterModel((*scoredb.BestScore)(nil), (*scoredb.SubmissionEvent)(nil))

	if logger != nil {
		logger.InfoContext(ctx, "Connected to PostgreSQL")
	}
	return db, nil
}

// Migrators returns the migrators of every module that owns tables, keyed by module name.
func Migrators(db *bun.DB) map[string]*migrate.Migrator {
	return map[string]*migrate.Migrator{
		"score": migrate.NewMigrator(db, scoremigrations.Migrations),
	}
}

// Migrate initializes the migration tables and applies pending migrations of every module.
func Migrate(ctx context.Context, db *bun.DB) error {
	for name, migrator := range Migrators(db) {
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to init migrations for %s: %w", name, err)
		}
		if _, err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", name, err)
		}
	}
	return nil
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return sqldb, nil
}
