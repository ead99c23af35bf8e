package sites

import "github.com/goliatone/go-sites/internal/runtimeconfig"

var (
	ErrDefaultLocaleInvalid    = runtimeconfig.ErrDefaultLocaleInvalid
	ErrStorageDriverUnknown    = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired      = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid         = runtimeconfig.ErrCacheTTLInvalid
	ErrServerAddrRequired      = runtimeconfig.ErrServerAddrRequired
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrComponentIdentifier     = runtimeconfig.ErrComponentIdentifier
)

type (
	Config                    = runtimeconfig.Config
	StorageConfig             = runtimeconfig.StorageConfig
	CacheConfig               = runtimeconfig.CacheConfig
	LoggingConfig             = runtimeconfig.LoggingConfig
	ServerConfig              = runtimeconfig.ServerConfig
	NavigationConfig          = runtimeconfig.NavigationConfig
	URLKitResolverConfig      = runtimeconfig.URLKitResolverConfig
	ComponentsConfig          = runtimeconfig.ComponentsConfig
	ComponentDefinitionConfig = runtimeconfig.ComponentDefinitionConfig
	Features                  = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML file, when path is set, and applies environment overrides.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
