package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"

	sites "github.com/goliatone/go-sites"
	"github.com/goliatone/go-sites/internal/di"
	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/internal/runtimeconfig"
	"github.com/goliatone/go-sites/internal/storage"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

// Options captures what the CLIs pass to BuildModule.
type Options struct {
	ConfigPath     string
	EnvFiles       []string
	LoggerProvider interfaces.LoggerProvider
	// Configure runs after the config is loaded and before it is validated again.
	Configure func(*runtimeconfig.Config)
}

// Module wraps the sites module and the database it was built on, if any.
type Module struct {
	Module *sites.Module
	Config runtimeconfig.Config
	DB     *bun.DB
	Logger interfaces.Logger
}

// Close releases the database pool.
func (m *Module) Close() error {
	if m == nil || m.DB == nil {
		return nil
	}
	return m.DB.Close()
}

// LoadEnv reads .env style files. Missing files are ignored so deployments
// can rely on the real environment alone.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if strings.TrimSpace(file) == "" {
			continue
		}
		_ = godotenv.Load(file)
	}
}

// BuildModule loads configuration, opens and migrates storage when a SQL
// driver is selected, and constructs the sites module.
func BuildModule(ctx context.Context, opts Options) (*Module, error) {
	LoadEnv(opts.EnvFiles...)

	cfg, err := runtimeconfig.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.Configure != nil {
		opts.Configure(&cfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("validate config: %w", err)
		}
	}

	provider := opts.LoggerProvider
	if provider == nil {
		provider, err = di.LoggerProviderFromConfig(cfg)
		if err != nil {
			return nil, err
		}
	}
	diOpts := []di.Option{}
	if provider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(provider))
	}

	var db *bun.DB
	if cfg.StorageDriver() != runtimeconfig.StorageMemory {
		storageLogger := logging.StorageLogger(provider)
		if cfg.Storage.Migrate {
			if err := storage.Migrate(ctx, cfg.Storage, sites.GetMigrationsFS(), storageLogger); err != nil {
				return nil, fmt.Errorf("migrate storage: %w", err)
			}
		}
		db, err = storage.Open(ctx, cfg.Storage, storageLogger)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		diOpts = append(diOpts, di.WithBunDB(db))
	}

	module, err := sites.New(cfg, diOpts...)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("initialise sites module: %w", err)
	}

	return &Module{
		Module: module,
		Config: cfg,
		DB:     db,
		Logger: logging.ModuleLogger(provider, "sites.cmd"),
	}, nil
}
