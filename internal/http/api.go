package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	leadscmd "github.com/goliatone/go-sites/internal/commands/leads"
	pagescmd "github.com/goliatone/go-sites/internal/commands/pages"
	projectscmd "github.com/goliatone/go-sites/internal/commands/projects"
	"github.com/goliatone/go-sites/internal/components"
	"github.com/goliatone/go-sites/internal/leads"
	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/internal/navigation"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/internal/projects"
	"github.com/goliatone/go-sites/internal/resolver"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

// SnapshotResolver is the read side the public routes depend on.
type SnapshotResolver interface {
	ResolveSnapshot(ctx context.Context, projectID uuid.UUID, slug, locale string) (*resolver.ResolvedSnapshot, error)
	SnapshotByID(ctx context.Context, pageID uuid.UUID) (resolver.PageSnapshot, error)
	PublicSite(ctx context.Context, projectSlug string) (resolver.SiteSnapshot, error)
}

// PageValidator reports sections that will not render.
type PageValidator interface {
	ValidatePage(ctx context.Context, snapshot resolver.PageSnapshot) (components.Report, error)
}

// API serves the public read routes and the editor routes.
type API struct {
	basePath      string
	defaultLocale string
	projects      projects.Service
	pages         pages.Service
	resolver      SnapshotResolver
	navigation    navigation.Service
	leads         leads.Service
	validator     PageValidator
	logger        interfaces.Logger
	cmdLogger     interfaces.Logger
	metrics       *Metrics

	transferOwnership *projectscmd.TransferOwnershipHandler
	setHeadquarters   *projectscmd.SetHeadquartersHandler
	reorderSections   *pagescmd.ReorderSectionsHandler
	updateFields      *pagescmd.UpdateFieldsHandler
	submitQuote       *leadscmd.SubmitQuoteRequestHandler
}

// Option configures the API.
type Option func(*API)

// NewAPI builds the API. Command handlers are derived from the services
// supplied, so options must be set before first use.
func NewAPI(opts ...Option) *API {
	api := &API{
		defaultLocale: "en",
		logger:        logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	cmdLogger := api.cmdLogger
	if cmdLogger == nil {
		cmdLogger = api.logger
	}
	if api.projects != nil {
		api.transferOwnership = projectscmd.NewTransferOwnershipHandler(api.projects, cmdLogger)
		api.setHeadquarters = projectscmd.NewSetHeadquartersHandler(api.projects, cmdLogger)
	}
	if api.pages != nil {
		api.reorderSections = pagescmd.NewReorderSectionsHandler(api.pages, cmdLogger)
		api.updateFields = pagescmd.NewUpdateFieldsHandler(api.pages, cmdLogger)
	}
	if api.leads != nil {
		api.submitQuote = leadscmd.NewSubmitQuoteRequestHandler(api.leads, cmdLogger)
	}
	return api
}

func WithBasePath(path string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithDefaultLocale sets the locale used when a navigation request omits one.
func WithDefaultLocale(locale string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(locale); trimmed != "" {
			api.defaultLocale = trimmed
		}
	}
}

func WithProjectService(service projects.Service) Option {
	return func(api *API) {
		api.projects = service
	}
}

func WithPageService(service pages.Service) Option {
	return func(api *API) {
		api.pages = service
	}
}

func WithResolver(resolver SnapshotResolver) Option {
	return func(api *API) {
		api.resolver = resolver
	}
}

func WithNavigationService(service navigation.Service) Option {
	return func(api *API) {
		api.navigation = service
	}
}

func WithLeadService(service leads.Service) Option {
	return func(api *API) {
		api.leads = service
	}
}

func WithPageValidator(validator PageValidator) Option {
	return func(api *API) {
		api.validator = validator
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// WithCommandLogger sets the logger handed to command handlers. It defaults
// to the API logger.
func WithCommandLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		api.cmdLogger = logger
	}
}

// WithMetrics enables request metrics and mounts /metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(api *API) {
		api.metrics = metrics
	}
}

// Register mounts every route on mux.
func (api *API) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: api is nil")
	}

	base := joinPath(api.basePath, "")

	mux.HandleFunc("GET "+joinPath(base, "healthz"), api.handleHealth)
	if api.metrics != nil {
		mux.Handle("GET "+joinPath(base, "metrics"), api.metrics.Handler())
	}

	api.registerPublicRoutes(mux, base)
	api.registerProjectRoutes(mux, base)
	api.registerPageRoutes(mux, base)
	api.registerNavigationRoutes(mux, base)
	return nil
}

// Handler returns a mux with every route mounted and the request middleware applied.
func (api *API) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := api.Register(mux); err != nil {
		return nil, err
	}
	return withRequestID(withObservability(api.logger, api.metrics, mux)), nil
}

func (api *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func unavailable(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" || trimmedBase == "/" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}
