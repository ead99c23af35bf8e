package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/internal/runtimeconfig"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

var (
	ErrMemoryDriver = errors.New("storage: memory driver has no database")
	ErrDSNRequired  = errors.New("storage: dsn is required")
)

// Open connects to the configured SQL backend and verifies the connection.
func Open(ctx context.Context, cfg runtimeconfig.StorageConfig, logger interfaces.Logger) (*bun.DB, error) {
	if logger == nil {
		logger = logging.NoOp()
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, ErrDSNRequired
	}

	var db *bun.DB
	switch driver := driverName(cfg.Driver); driver {
	case runtimeconfig.StorageSQLite:
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("storage: open sqlite: %w", err)
		}
		if isMemoryDSN(dsn) {
			sqlDB.SetMaxOpenConns(1)
		}
		db = bun.NewDB(sqlDB, sqlitedialect.New())
	case runtimeconfig.StoragePostgres:
		sqlDB, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("storage: open postgres: %w", err)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())
	case runtimeconfig.StorageMemory:
		return nil, ErrMemoryDriver
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrStorageDriverUnknown, driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", cfg.Driver, err)
	}
	logger.Info("storage.opened", "driver", driverName(cfg.Driver))
	return db, nil
}

func driverName(value string) string {
	driver := strings.ToLower(strings.TrimSpace(value))
	if driver == "" {
		return runtimeconfig.StorageMemory
	}
	return driver
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
