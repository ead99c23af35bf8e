package http

import (
	"net/http"

	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/internal/navigation"
)

func (api *API) registerPublicRoutes(mux *http.ServeMux, base string) {
	mux.HandleFunc("GET "+joinPath(base, "sites/{slug}/public"), api.handlePublicSite)
	mux.HandleFunc("GET "+joinPath(base, "pages"), api.handlePageResolve)
	mux.HandleFunc("GET "+joinPath(base, "pages/{id}/snapshot"), api.handlePageSnapshot)
	mux.HandleFunc("GET "+joinPath(base, "navigation"), api.handleNavigationResolve)
}

func (api *API) handlePublicSite(w http.ResponseWriter, r *http.Request) {
	if api.resolver == nil {
		unavailable(w)
		return
	}
	site, err := api.resolver.PublicSite(r.Context(), r.PathValue("slug"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

// handlePageResolve selects a page for (project, slug, locale), falling back
// to the default locale, and reports which locale was served.
func (api *API) handlePageResolve(w http.ResponseWriter, r *http.Request) {
	if api.resolver == nil {
		unavailable(w)
		return
	}
	query := r.URL.Query()
	projectID, err := parseUUID(query.Get("project"))
	if err != nil {
		writeBadRequest(w, "invalid project")
		return
	}
	r = r.WithContext(logging.ContextWithSite(r.Context(), projectID.String(), query.Get("locale")))
	resolved, err := api.resolver.ResolveSnapshot(r.Context(), projectID, query.Get("slug"), query.Get("locale"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if resolved.FallbackUsed {
		api.metrics.recordFallback(resolved.RequestedLocale)
	}
	writeJSON(w, http.StatusOK, resolved)
}

func (api *API) handlePageSnapshot(w http.ResponseWriter, r *http.Request) {
	if api.resolver == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	snapshot, err := api.resolver.SnapshotByID(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (api *API) handleNavigationResolve(w http.ResponseWriter, r *http.Request) {
	if api.navigation == nil {
		unavailable(w)
		return
	}
	query := r.URL.Query()
	projectID, err := parseUUID(query.Get("project"))
	if err != nil {
		writeBadRequest(w, "invalid project")
		return
	}
	location := navigation.Location(query.Get("location"))
	if location == "" {
		location = navigation.LocationHeader
	}
	locale := query.Get("locale")
	if locale == "" {
		locale = api.defaultLocale
	}
	r = r.WithContext(logging.ContextWithSite(r.Context(), projectID.String(), locale))
	items, err := api.navigation.Resolve(r.Context(), projectID, location, locale)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
