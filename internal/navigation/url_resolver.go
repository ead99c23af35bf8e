package navigation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-sites/internal/pages"
)

// ResolveRequest carries the page an item links to.
type ResolveRequest struct {
	Item   *Item
	Page   *pages.Page
	Locale string
}

// URLResolver turns a page reference into an href.
type URLResolver interface {
	Resolve(ctx context.Context, req ResolveRequest) (string, error)
}

// PathResolver uses the stored page path, or "/<slug>" when it is empty.
type PathResolver struct{}

func (PathResolver) Resolve(_ context.Context, req ResolveRequest) (string, error) {
	if req.Page == nil {
		return "", nil
	}
	if path := strings.TrimSpace(req.Page.Path); path != "" {
		return path, nil
	}
	return "/" + req.Page.Slug, nil
}

// URLKitResolverOptions configures the go-urlkit backed resolver.
type URLKitResolverOptions struct {
	Manager      *urlkit.RouteManager
	DefaultGroup string
	LocaleGroups map[string]string
	DefaultRoute string
	SlugParam    string
	LocaleParam  string
	// Fallback resolves pages when no group or route is configured.
	Fallback URLResolver
}

// URLKitResolver builds page URLs from go-urlkit route groups, picking the
// group by item locale.
type URLKitResolver struct {
	manager      *urlkit.RouteManager
	defaultGroup string
	localeGroups map[string]string
	defaultRoute string
	slugParam    string
	localeParam  string
	fallback     URLResolver

	mu         sync.RWMutex
	groupCache map[string]*urlkit.Group
}

// NewURLKitResolver constructs a resolver backed by go-urlkit.
func NewURLKitResolver(opts URLKitResolverOptions) *URLKitResolver {
	if opts.SlugParam == "" {
		opts.SlugParam = "slug"
	}
	if opts.Fallback == nil {
		opts.Fallback = PathResolver{}
	}
	groups := make(map[string]string, len(opts.LocaleGroups))
	for locale, group := range opts.LocaleGroups {
		groups[strings.ToLower(strings.TrimSpace(locale))] = strings.TrimSpace(group)
	}
	return &URLKitResolver{
		manager:      opts.Manager,
		defaultGroup: strings.TrimSpace(opts.DefaultGroup),
		localeGroups: groups,
		defaultRoute: strings.TrimSpace(opts.DefaultRoute),
		slugParam:    strings.TrimSpace(opts.SlugParam),
		localeParam:  strings.TrimSpace(opts.LocaleParam),
		fallback:     opts.Fallback,
		groupCache:   make(map[string]*urlkit.Group),
	}
}

func (r *URLKitResolver) Resolve(ctx context.Context, req ResolveRequest) (string, error) {
	if req.Page == nil {
		return "", nil
	}
	groupPath := r.defaultGroup
	if path, ok := r.localeGroups[strings.ToLower(req.Locale)]; ok && path != "" {
		groupPath = path
	}
	if r.manager == nil || groupPath == "" || r.defaultRoute == "" {
		return r.fallback.Resolve(ctx, req)
	}

	group, err := r.groupForPath(groupPath)
	if err != nil {
		return "", err
	}
	builder, err := safeBuilder(group, r.defaultRoute)
	if err != nil {
		return "", err
	}
	if r.slugParam != "" {
		builder.WithParam(r.slugParam, req.Page.Slug)
	}
	if r.localeParam != "" && req.Locale != "" {
		builder.WithParam(r.localeParam, req.Locale)
	}
	return builder.Build()
}

func (r *URLKitResolver) groupForPath(path string) (*urlkit.Group, error) {
	r.mu.RLock()
	group, ok := r.groupCache[path]
	r.mu.RUnlock()
	if ok {
		return group, nil
	}

	parts := strings.Split(path, ".")
	current, err := lookupGroup(r.manager, parts[0])
	if err != nil {
		return nil, err
	}
	for _, part := range parts[1:] {
		if current, err = lookupChildGroup(current, part); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.groupCache[path] = current
	r.mu.Unlock()
	return current, nil
}

// go-urlkit panics on unknown groups and routes.

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			builder, err = nil, fmt.Errorf("navigation: urlkit route %q: %v", route, rec)
		}
	}()
	return group.Builder(route), nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group, err = nil, fmt.Errorf("navigation: route group %q not found", name)
		}
	}()
	return manager.Group(name), nil
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group, err = nil, fmt.Errorf("navigation: child group %q not found", name)
		}
	}()
	return parent.Group(name), nil
}
