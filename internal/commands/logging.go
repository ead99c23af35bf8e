package commands

import (
	"strings"

	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

// CommandLogger returns the logger for handlers of one sites module, named
// sites.commands.<module>. A leading "sites." on module is ignored so callers
// can pass either "pages" or "sites.pages".
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := commandModule(module)
	return logging.WithFields(logging.ModuleLogger(provider, "sites.commands."+name), map[string]any{
		"component":      "command",
		"command_module": name,
	})
}

func commandModule(module string) string {
	name := strings.ToLower(strings.TrimSpace(module))
	name = strings.Trim(strings.TrimPrefix(name, "sites."), ".")
	if name == "" {
		return "core"
	}
	return name
}
