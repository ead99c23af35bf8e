package di

import (
	"fmt"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sites/internal/commands"
	"github.com/goliatone/go-sites/internal/components"
	sitehttp "github.com/goliatone/go-sites/internal/http"
	"github.com/goliatone/go-sites/internal/leads"
	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/internal/logging/console"
	"github.com/goliatone/go-sites/internal/logging/gologger"
	"github.com/goliatone/go-sites/internal/logging/zaplogger"
	"github.com/goliatone/go-sites/internal/navigation"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/internal/projects"
	"github.com/goliatone/go-sites/internal/provision"
	"github.com/goliatone/go-sites/internal/resolver"
	"github.com/goliatone/go-sites/internal/runtimeconfig"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

// Container wires module dependencies. Repositories are in-memory unless a
// bun database is supplied.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB         *bun.DB
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	projectRepo projects.ProjectRepository
	pageRepo    pages.PageRepository
	sectionRepo pages.SectionRepository
	fieldRepo   pages.FieldRepository
	navRepo     navigation.Repository
	leadRepo    leads.Repository

	projectDependents []projects.DependentsCleaner
	pageCleaners      []pages.ReferenceCleaner
	pageGuards        []pages.ReferenceGuard

	urlResolver  navigation.URLResolver
	routeManager *urlkit.RouteManager
	registry     *components.Registry
	metrics      *sitehttp.Metrics

	projectSvc  projects.Service
	pageSvc     pages.Service
	navSvc      navigation.Service
	leadSvc     leads.Service
	resolver    *resolver.Resolver
	validator   *components.Validator
	provisioner *provision.Provisioner
	api         *sitehttp.API
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB switches every repository to the SQL implementation.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache service used by SQL repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the provider derived from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithURLResolver overrides how navigation items that link pages become URLs.
func WithURLResolver(resolver navigation.URLResolver) Option {
	return func(c *Container) {
		c.urlResolver = resolver
	}
}

// WithProjectService overrides the default project service binding.
func WithProjectService(svc projects.Service) Option {
	return func(c *Container) {
		c.projectSvc = svc
	}
}

// WithPageService overrides the default page service binding.
func WithPageService(svc pages.Service) Option {
	return func(c *Container) {
		c.pageSvc = svc
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	memoryPages := pages.NewMemoryRepositories()
	memoryNav := navigation.NewMemoryRepository()
	memoryLeads := leads.NewMemoryRepository()

	c := &Container{
		Config:            cfg,
		cacheTTL:          cacheTTL,
		projectRepo:       projects.NewMemoryProjectRepository(),
		pageRepo:          memoryPages.Pages,
		sectionRepo:       memoryPages.Sections,
		fieldRepo:         memoryPages.Fields,
		navRepo:           memoryNav,
		leadRepo:          memoryLeads,
		projectDependents: []projects.DependentsCleaner{memoryPages, memoryNav, memoryLeads},
		pageCleaners:      []pages.ReferenceCleaner{memoryNav},
		pageGuards:        []pages.ReferenceGuard{memoryNav},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogger(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureNavigation()
	if err := c.configureComponents(); err != nil {
		return nil, err
	}

	if c.projectSvc == nil {
		c.projectSvc = projects.NewService(c.projectRepo,
			projects.WithLogger(logging.ProjectsLogger(c.loggerProvider)),
			projects.WithDependents(c.projectDependents...),
		)
	}

	if c.pageSvc == nil {
		c.pageSvc = pages.NewService(c.pageRepo, c.sectionRepo, c.fieldRepo, c.projectRepo,
			pages.WithLogger(logging.PagesLogger(c.loggerProvider)),
			pages.WithReferenceCleaners(c.pageCleaners...),
			pages.WithReferenceGuards(c.pageGuards...),
		)
	}

	navOpts := []navigation.ServiceOption{
		navigation.WithLogger(logging.NavigationLogger(c.loggerProvider)),
	}
	if c.urlResolver != nil {
		navOpts = append(navOpts, navigation.WithURLResolver(c.urlResolver))
	}
	c.navSvc = navigation.NewService(c.navRepo, c.pageRepo, navOpts...)

	c.leadSvc = leads.NewService(c.leadRepo,
		leads.WithLogger(logging.LeadsLogger(c.loggerProvider)),
		leads.WithProjectLookup(c.projectRepo),
	)

	c.resolver = resolver.New(c.pageRepo, c.sectionRepo, c.fieldRepo, c.projectRepo,
		resolver.WithDefaultLocale(cfg.DefaultLocale),
		resolver.WithLogger(logging.ResolverLogger(c.loggerProvider)),
	)
	c.validator = components.NewValidator(c.registry)

	c.provisioner = provision.New(c.projectSvc, c.pageSvc,
		provision.WithLogger(logging.ProvisionLogger(c.loggerProvider)),
		provision.WithNavigation(c.navSvc),
	)

	if cfg.Features.Metrics {
		c.metrics = sitehttp.NewMetrics("sites")
	}
	c.api = sitehttp.NewAPI(
		sitehttp.WithBasePath(cfg.Server.BasePath),
		sitehttp.WithDefaultLocale(cfg.DefaultLocale),
		sitehttp.WithProjectService(c.projectSvc),
		sitehttp.WithPageService(c.pageSvc),
		sitehttp.WithResolver(c.resolver),
		sitehttp.WithNavigationService(c.navSvc),
		sitehttp.WithLeadService(c.leadSvc),
		sitehttp.WithPageValidator(c.validator),
		sitehttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
		sitehttp.WithCommandLogger(commands.CommandLogger(c.loggerProvider, "http")),
		sitehttp.WithMetrics(c.metrics),
	)

	return c, nil
}

func (c *Container) configureLogger() error {
	if c.loggerProvider != nil {
		return nil
	}
	provider, err := LoggerProviderFromConfig(c.Config)
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

// LoggerProviderFromConfig builds the provider named by cfg.Logging. It
// returns nil when the logger feature is off.
func LoggerProviderFromConfig(cfg runtimeconfig.Config) (interfaces.LoggerProvider, error) {
	if !cfg.Features.Logger {
		return nil, nil
	}
	logCfg := cfg.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "", "console":
		level, _ := console.ParseLevel(logCfg.Level)
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return nil, fmt.Errorf("di: configure gologger: %w", err)
		}
		return provider, nil
	case "zap":
		provider, err := zaplogger.NewProvider(zaplogger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
		})
		if err != nil {
			return nil, fmt.Errorf("di: configure zap: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, logCfg.Provider)
	}
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		cfg.TTL = c.cacheTTL
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

// configureRepositories swaps in the SQL repositories. Foreign keys cascade
// there, so the in-memory cleaners are dropped.
func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		return
	}
	contentNamespaces := append(pages.CacheNamespaces(), navigation.CacheNamespace())
	c.projectRepo = projects.NewBunProjectRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer, contentNamespaces...)

	content := pages.NewBunRepositoriesWithCache(c.bunDB, c.cacheService, c.keySerializer, navigation.CacheNamespace())
	c.pageRepo = content.Pages
	c.sectionRepo = content.Sections
	c.fieldRepo = content.Fields

	navRepo := navigation.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.navRepo = navRepo
	c.pageGuards = []pages.ReferenceGuard{navRepo}
	c.leadRepo = leads.NewBunRepository(c.bunDB)

	c.projectDependents = nil
	c.pageCleaners = nil
}

func (c *Container) configureNavigation() {
	if c.urlResolver != nil {
		return
	}

	navCfg := c.Config.Navigation
	if navCfg.RouteConfig == nil {
		return
	}

	manager := urlkit.NewRouteManager(navCfg.RouteConfig)
	c.routeManager = manager

	c.urlResolver = navigation.NewURLKitResolver(navigation.URLKitResolverOptions{
		Manager:      manager,
		DefaultGroup: strings.TrimSpace(navCfg.URLKit.DefaultGroup),
		LocaleGroups: navCfg.URLKit.LocaleGroups,
		DefaultRoute: strings.TrimSpace(navCfg.URLKit.DefaultRoute),
		SlugParam:    strings.TrimSpace(navCfg.URLKit.SlugParam),
		LocaleParam:  strings.TrimSpace(navCfg.URLKit.LocaleParam),
	})
}

func (c *Container) configureComponents() error {
	defs := make([]components.Component, 0, len(c.Config.Components.Definitions))
	for _, def := range c.Config.Components.Definitions {
		defs = append(defs, components.Component{
			Identifier: strings.TrimSpace(def.Identifier),
			Name:       def.Name,
			Schema:     def.Schema,
		})
	}
	registry, err := components.NewRegistry(defs...)
	if err != nil {
		return fmt.Errorf("di: component registry: %w", err)
	}
	c.registry = registry
	return nil
}

// LoggerProvider exposes the configured logger provider. It is nil when
// logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// ProjectService returns the configured project service.
func (c *Container) ProjectService() projects.Service {
	return c.projectSvc
}

// PageService returns the configured page service.
func (c *Container) PageService() pages.Service {
	return c.pageSvc
}

// NavigationService returns the configured navigation service.
func (c *Container) NavigationService() navigation.Service {
	return c.navSvc
}

// LeadService returns the configured quote request service.
func (c *Container) LeadService() leads.Service {
	return c.leadSvc
}

// Resolver returns the content tree resolver.
func (c *Container) Resolver() *resolver.Resolver {
	return c.resolver
}

// ComponentRegistry returns the registry seeded from configuration.
func (c *Container) ComponentRegistry() *components.Registry {
	return c.registry
}

// ComponentValidator returns the editor-side page validator.
func (c *Container) ComponentValidator() *components.Validator {
	return c.validator
}

// Provisioner returns the template provisioner.
func (c *Container) Provisioner() *provision.Provisioner {
	return c.provisioner
}

// HTTPAPI returns the HTTP adapter.
func (c *Container) HTTPAPI() *sitehttp.API {
	return c.api
}

// Metrics returns the Prometheus collectors, or nil when metrics are disabled.
func (c *Container) Metrics() *sitehttp.Metrics {
	return c.metrics
}

// RouteManager returns the urlkit manager built from the navigation route
// config, if any.
func (c *Container) RouteManager() *urlkit.RouteManager {
	return c.routeManager
}
