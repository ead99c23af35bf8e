package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/internal/runtimeconfig"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

// MigrationsRoot is the directory inside the migrations filesystem that holds
// one sub-directory per driver.
const MigrationsRoot = "data/sql/migrations"

// Migrate applies pending migrations for the configured driver. It opens its
// own connection so closing the migrator never closes the caller's pool.
// Running it on an up-to-date database is a no-op.
func Migrate(ctx context.Context, cfg runtimeconfig.StorageConfig, migrations fs.FS, logger interfaces.Logger) error {
	if logger == nil {
		logger = logging.NoOp()
	}
	driver := driverName(cfg.Driver)
	if driver == runtimeconfig.StorageMemory {
		return ErrMemoryDriver
	}

	source, err := iofs.New(migrations, path.Join(MigrationsRoot, driver))
	if err != nil {
		return fmt.Errorf("storage: migration source: %w", err)
	}

	sqlDB, instance, err := openMigrationTarget(ctx, driver, cfg.DSN)
	if err != nil {
		_ = source.Close()
		return err
	}
	defer sqlDB.Close()

	m, err := migrate.NewWithInstance("iofs", source, driver, instance)
	if err != nil {
		_ = source.Close()
		return fmt.Errorf("storage: create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("storage.migrate.close_source_failed", "error", srcErr)
		}
		if dbErr != nil {
			logger.Warn("storage.migrate.close_database_failed", "error", dbErr)
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("storage.migrate.up_to_date", "driver", driver)
			return nil
		}
		return fmt.Errorf("storage: run migrations: %w", err)
	}
	version, _, _ := m.Version()
	logger.Info("storage.migrate.applied", "driver", driver, "version", version)
	return nil
}

func openMigrationTarget(ctx context.Context, driver, dsn string) (*sql.DB, database.Driver, error) {
	if dsn == "" {
		return nil, nil, ErrDSNRequired
	}
	switch driver {
	case runtimeconfig.StorageSQLite:
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: open sqlite: %w", err)
		}
		instance, err := migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("storage: sqlite migration driver: %w", err)
		}
		return sqlDB, instance, nil
	case runtimeconfig.StoragePostgres:
		sqlDB, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: open postgres: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("storage: ping postgres: %w", err)
		}
		instance, err := migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("storage: postgres migration driver: %w", err)
		}
		return sqlDB, instance, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", runtimeconfig.ErrStorageDriverUnknown, driver)
	}
}
