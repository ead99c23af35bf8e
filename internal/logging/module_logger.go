package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-sites/pkg/interfaces"
)

const (
	rootModule       = "sites"
	projectsModule   = "sites.projects"
	pagesModule      = "sites.pages"
	resolverModule   = "sites.resolver"
	navigationModule = "sites.navigation"
	leadsModule      = "sites.leads"
	httpModule       = "sites.http"
	storageModule    = "sites.storage"
	provisionModule  = "sites.provision"
)

const fieldPageSlug = "slug"

// ModuleLogger returns the logger for module, tagged with a "module" field.
// A nil provider or blank module name yields the sites root no-op logger.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module = strings.TrimSpace(module); module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// ProjectsLogger returns the logger namespace reserved for project services.
func ProjectsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, projectsModule)
}

// PagesLogger returns the logger namespace reserved for page editing.
func PagesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pagesModule)
}

// ResolverLogger returns the logger namespace reserved for the content tree resolver.
func ResolverLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, resolverModule)
}

// NavigationLogger returns the logger namespace reserved for navigation.
func NavigationLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, navigationModule)
}

// LeadsLogger returns the logger namespace reserved for quote requests.
func LeadsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, leadsModule)
}

// HTTPLogger returns the logger namespace reserved for the HTTP adapter.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// StorageLogger returns the logger namespace reserved for database setup and migrations.
func StorageLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storageModule)
}

// ProvisionLogger returns the logger namespace reserved for template provisioning.
func ProvisionLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, provisionModule)
}

// WithPageContext enriches the logger with the lookup key of a page request.
// Empty values are ignored.
func WithPageContext(logger interfaces.Logger, projectID, slug, locale string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(projectID); trimmed != "" {
		fields[FieldProjectID] = trimmed
	}
	if trimmed := strings.TrimSpace(slug); trimmed != "" {
		fields[fieldPageSlug] = trimmed
	}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[FieldLocale] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
