package sites

import (
	"github.com/goliatone/go-sites/internal/components"
	"github.com/goliatone/go-sites/internal/di"
	sitehttp "github.com/goliatone/go-sites/internal/http"
	"github.com/goliatone/go-sites/internal/leads"
	"github.com/goliatone/go-sites/internal/navigation"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/internal/projects"
	"github.com/goliatone/go-sites/internal/provision"
	"github.com/goliatone/go-sites/internal/resolver"
)

// ProjectService exports the project service contract.
type ProjectService = projects.Service

// PageService exports the page editing contract.
type PageService = pages.Service

// NavigationService exports the menu contract.
type NavigationService = navigation.Service

// LeadService exports the quote request contract.
type LeadService = leads.Service

// Resolver exports the content tree resolver.
type Resolver = *resolver.Resolver

// ComponentRegistry exports the renderable identifier registry.
type ComponentRegistry = *components.Registry

// ComponentValidator exports the editor-side page validator.
type ComponentValidator = *components.Validator

// Provisioner exports the template provisioner.
type Provisioner = *provision.Provisioner

// HTTPAPI exports the HTTP adapter.
type HTTPAPI = *sitehttp.API

// Snapshot types served by the resolver.
type (
	PageSnapshot     = resolver.PageSnapshot
	ResolvedSnapshot = resolver.ResolvedSnapshot
	SiteSnapshot     = resolver.SiteSnapshot
)

// Module represents the top level sites runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a sites module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Projects returns the configured project service.
func (m *Module) Projects() ProjectService {
	return m.container.ProjectService()
}

// Pages returns the configured page service.
func (m *Module) Pages() PageService {
	return m.container.PageService()
}

// Navigation returns the configured navigation service.
func (m *Module) Navigation() NavigationService {
	return m.container.NavigationService()
}

// Leads returns the configured quote request service.
func (m *Module) Leads() LeadService {
	return m.container.LeadService()
}

// Resolver returns the content tree resolver.
func (m *Module) Resolver() Resolver {
	return m.container.Resolver()
}

// Components returns the component registry.
func (m *Module) Components() ComponentRegistry {
	return m.container.ComponentRegistry()
}

// ComponentValidator returns the editor-side page validator.
func (m *Module) ComponentValidator() ComponentValidator {
	return m.container.ComponentValidator()
}

// Provisioner returns the template provisioner.
func (m *Module) Provisioner() Provisioner {
	return m.container.Provisioner()
}

// HTTP returns the HTTP adapter.
func (m *Module) HTTP() HTTPAPI {
	return m.container.HTTPAPI()
}
