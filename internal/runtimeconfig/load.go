package runtimeconfig

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load starts from DefaultConfig, applies the YAML file at path when given,
// then environment overrides. The result is validated before it is returned.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if strings.TrimSpace(path) != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read config from environment: %w", err)
	}

	cfg.DefaultLocale = NormalizeLocale(cfg.DefaultLocale)
	for i, locale := range cfg.Locales {
		cfg.Locales[i] = NormalizeLocale(locale)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
