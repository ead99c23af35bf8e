package runtimeconfig

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

var (
	ErrDefaultLocaleInvalid    = errors.New("sites config: default locale is invalid")
	ErrStorageDriverUnknown    = errors.New("sites config: storage driver is invalid")
	ErrStorageDSNRequired      = errors.New("sites config: storage dsn is required for sql drivers")
	ErrCacheTTLInvalid         = errors.New("sites config: cache ttl must be zero or positive")
	ErrServerAddrRequired      = errors.New("sites config: server address is required")
	ErrLoggingProviderRequired = errors.New("sites config: logging provider is required")
	ErrLoggingProviderUnknown  = errors.New("sites config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("sites config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("sites config: logging format is invalid")
	ErrComponentIdentifier     = errors.New("sites config: component identifier is required")
)

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

var localePattern = regexp.MustCompile(`^[a-z]{2,3}(-[a-z0-9]{2,8})*$`)

// Config aggregates runtime settings for the sites module. Field tags drive
// cleanenv so the same struct loads from YAML files and the environment.
type Config struct {
	DefaultLocale string           `yaml:"default_locale" env:"DEFAULT_LOCALE"`
	Locales       []string         `yaml:"locales" env:"SITES_LOCALES" env-separator:","`
	Storage       StorageConfig    `yaml:"storage" env-prefix:"SITES_STORAGE_"`
	Cache         CacheConfig      `yaml:"cache" env-prefix:"SITES_CACHE_"`
	Logging       LoggingConfig    `yaml:"logging" env-prefix:"SITES_LOG_"`
	Server        ServerConfig     `yaml:"server" env-prefix:"SITES_SERVER_"`
	Navigation    NavigationConfig `yaml:"navigation"`
	Components    ComponentsConfig `yaml:"components"`
	Features      Features         `yaml:"features" env-prefix:"SITES_FEATURE_"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver  string `yaml:"driver" env:"DRIVER"`
	DSN     string `yaml:"dsn" env:"DSN"`
	Migrate bool   `yaml:"migrate" env:"MIGRATE"`
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled" env:"ENABLED"`
	DefaultTTL time.Duration `yaml:"default_ttl" env:"TTL"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider" env:"PROVIDER"`
	Level     string   `yaml:"level" env:"LEVEL"`
	Format    string   `yaml:"format" env:"FORMAT"`
	AddSource bool     `yaml:"add_source" env:"ADD_SOURCE"`
	Focus     []string `yaml:"focus" env:"FOCUS" env-separator:","`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	BasePath        string        `yaml:"base_path" env:"BASE_PATH"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// NavigationConfig captures routing configuration for navigation URL resolution.
// RouteConfig is only set programmatically.
type NavigationConfig struct {
	RouteConfig *urlkit.Config       `yaml:"-"`
	URLKit      URLKitResolverConfig `yaml:"urlkit"`
}

// URLKitResolverConfig configures the go-urlkit based resolver.
type URLKitResolverConfig struct {
	DefaultGroup string            `yaml:"default_group"`
	LocaleGroups map[string]string `yaml:"locale_groups"`
	DefaultRoute string            `yaml:"default_route"`
	SlugParam    string            `yaml:"slug_param"`
	LocaleParam  string            `yaml:"locale_param"`
}

// ComponentsConfig seeds the component registry.
type ComponentsConfig struct {
	Definitions []ComponentDefinitionConfig `yaml:"definitions"`
}

// ComponentDefinitionConfig registers a renderable section identifier.
type ComponentDefinitionConfig struct {
	Identifier string         `yaml:"identifier"`
	Name       string         `yaml:"name"`
	Schema     map[string]any `yaml:"schema"`
}

// Features toggles optional functionality.
type Features struct {
	Metrics bool `yaml:"metrics" env:"METRICS"`
	Logger  bool `yaml:"logger" env:"LOGGER"`
}

// DefaultConfig returns the defaults used when no file or environment overrides exist.
func DefaultConfig() Config {
	return Config{
		DefaultLocale: "en",
		Locales:       []string{"en"},
		Storage: StorageConfig{
			Driver: StorageMemory,
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Features: Features{
			Metrics: true,
			Logger:  true,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if !ValidLocale(cfg.DefaultLocale) {
		return fmt.Errorf("%w: %q", ErrDefaultLocaleInvalid, cfg.DefaultLocale)
	}

	switch driver := normalize(cfg.Storage.Driver); driver {
	case "", StorageMemory:
	case StorageSQLite, StoragePostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
	}

	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return ErrServerAddrRequired
	}

	for _, def := range cfg.Components.Definitions {
		if strings.TrimSpace(def.Identifier) == "" {
			return ErrComponentIdentifier
		}
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider != "console" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// StorageDriver returns the normalized driver name, defaulting to memory.
func (cfg Config) StorageDriver() string {
	if driver := normalize(cfg.Storage.Driver); driver != "" {
		return driver
	}
	return StorageMemory
}

// NormalizeLocale lower-cases and trims a locale code.
func NormalizeLocale(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// ValidLocale reports whether code is an acceptable locale tag such as "en" or "pt-br".
func ValidLocale(code string) bool {
	return localePattern.MatchString(NormalizeLocale(code))
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "zap":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
