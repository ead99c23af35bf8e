package http

import (
	"net/http"

	"github.com/google/uuid"

	leadscmd "github.com/goliatone/go-sites/internal/commands/leads"
	projectscmd "github.com/goliatone/go-sites/internal/commands/projects"
	"github.com/goliatone/go-sites/internal/leads"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/internal/projects"
)

type projectCreatePayload struct {
	ID               *uuid.UUID                `json:"id,omitempty"`
	Slug             string                    `json:"slug"`
	Name             string                    `json:"name"`
	OwnerID          *uuid.UUID                `json:"owner_id,omitempty"`
	TemplateKey      string                    `json:"template_key,omitempty"`
	IsHeadquarters   bool                      `json:"is_headquarters,omitempty"`
	PrimaryColor     string                    `json:"primary_color,omitempty"`
	SecondaryColor   string                    `json:"secondary_color,omitempty"`
	AccentColor      string                    `json:"accent_color,omitempty"`
	HeaderBackground projects.HeaderBackground `json:"header_background,omitempty"`
}

type projectUpdatePayload struct {
	Name             *string                    `json:"name,omitempty"`
	TemplateKey      *string                    `json:"template_key,omitempty"`
	PrimaryColor     *string                    `json:"primary_color,omitempty"`
	SecondaryColor   *string                    `json:"secondary_color,omitempty"`
	AccentColor      *string                    `json:"accent_color,omitempty"`
	HeaderBackground *projects.HeaderBackground `json:"header_background,omitempty"`
}

type ownerPayload struct {
	OwnerID *uuid.UUID `json:"owner_id"`
}

type pageCreatePayload struct {
	ID              *uuid.UUID `json:"id,omitempty"`
	Slug            string     `json:"slug"`
	Locale          string     `json:"locale"`
	Path            string     `json:"path,omitempty"`
	Title           string     `json:"title,omitempty"`
	Order           int        `json:"order,omitempty"`
	IsPublished     bool       `json:"is_published,omitempty"`
	MetaTitle       string     `json:"meta_title,omitempty"`
	MetaDescription string     `json:"meta_description,omitempty"`
	MetaSlug        string     `json:"meta_slug,omitempty"`
	Indexable       *bool      `json:"indexable,omitempty"`
}

type quoteRequestPayload struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Company    string `json:"company,omitempty"`
	Service    string `json:"service,omitempty"`
	Message    string `json:"message,omitempty"`
	Locale     string `json:"locale,omitempty"`
	SourcePath string `json:"source_path,omitempty"`
}

type quoteRequestList struct {
	Items []*leads.QuoteRequest `json:"items"`
	Total int                   `json:"total"`
}

func (api *API) registerProjectRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "projects")
	mux.HandleFunc("GET "+root, api.handleProjectList)
	mux.HandleFunc("POST "+root, api.handleProjectCreate)
	mux.HandleFunc("GET "+root+"/{id}", api.handleProjectGet)
	mux.HandleFunc("PUT "+root+"/{id}", api.handleProjectUpdate)
	mux.HandleFunc("DELETE "+root+"/{id}", api.handleProjectDelete)
	mux.HandleFunc("PUT "+root+"/{id}/owner", api.handleProjectOwner)
	mux.HandleFunc("PUT "+root+"/{id}/headquarters", api.handleProjectHeadquarters)
	mux.HandleFunc("GET "+root+"/{id}/pages", api.handleProjectPages)
	mux.HandleFunc("POST "+root+"/{id}/pages", api.handlePageCreate)
	mux.HandleFunc("GET "+root+"/{id}/quote-requests", api.handleQuoteRequestList)
	mux.HandleFunc("POST "+root+"/{id}/quote-requests", api.handleQuoteRequestSubmit)
}

func (api *API) handleProjectList(w http.ResponseWriter, r *http.Request) {
	if api.projects == nil {
		unavailable(w)
		return
	}
	list, err := api.projects.List(r.Context())
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *API) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	if api.projects == nil {
		unavailable(w)
		return
	}
	var payload projectCreatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json payload")
		return
	}
	owner := projects.Unowned()
	if payload.OwnerID != nil {
		owner = projects.Owned(*payload.OwnerID)
	}
	record, err := api.projects.Create(r.Context(), projects.CreateProjectRequest{
		ID:               payload.ID,
		Slug:             payload.Slug,
		Name:             payload.Name,
		Owner:            owner,
		TemplateKey:      payload.TemplateKey,
		IsHeadquarters:   payload.IsHeadquarters,
		PrimaryColor:     payload.PrimaryColor,
		SecondaryColor:   payload.SecondaryColor,
		AccentColor:      payload.AccentColor,
		HeaderBackground: payload.HeaderBackground,
	})
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (api *API) handleProjectGet(w http.ResponseWriter, r *http.Request) {
	if api.projects == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	record, err := api.projects.Get(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handleProjectUpdate(w http.ResponseWriter, r *http.Request) {
	if api.projects == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var payload projectUpdatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json payload")
		return
	}
	record, err := api.projects.Update(r.Context(), projects.UpdateProjectRequest{
		ID:               id,
		Name:             payload.Name,
		TemplateKey:      payload.TemplateKey,
		PrimaryColor:     payload.PrimaryColor,
		SecondaryColor:   payload.SecondaryColor,
		AccentColor:      payload.AccentColor,
		HeaderBackground: payload.HeaderBackground,
	})
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handleProjectDelete(w http.ResponseWriter, r *http.Request) {
	if api.projects == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	if err := api.projects.Delete(r.Context(), id); err != nil {
		api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handleProjectOwner(w http.ResponseWriter, r *http.Request) {
	if api.projects == nil || api.transferOwnership == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var payload ownerPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json payload")
		return
	}
	cmd := projectscmd.TransferOwnershipCommand{ProjectID: id, OwnerID: payload.OwnerID}
	if err := api.transferOwnership.Execute(r.Context(), cmd); err != nil {
		api.writeError(w, r, err)
		return
	}
	api.writeProject(w, r, id)
}

func (api *API) handleProjectHeadquarters(w http.ResponseWriter, r *http.Request) {
	if api.projects == nil || api.setHeadquarters == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	if err := api.setHeadquarters.Execute(r.Context(), projectscmd.SetHeadquartersCommand{ProjectID: id}); err != nil {
		api.writeError(w, r, err)
		return
	}
	api.writeProject(w, r, id)
}

func (api *API) writeProject(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	record, err := api.projects.Get(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handleProjectPages(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	list, err := api.pages.ListPages(r.Context(), id, r.URL.Query().Get("locale"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *API) handlePageCreate(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	projectID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var payload pageCreatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json payload")
		return
	}
	record, err := api.pages.CreatePage(r.Context(), pages.CreatePageRequest{
		ID:          payload.ID,
		ProjectID:   projectID,
		Slug:        payload.Slug,
		Locale:      payload.Locale,
		Path:        payload.Path,
		Title:       payload.Title,
		Order:       payload.Order,
		IsPublished: payload.IsPublished,
		Meta: pages.Meta{
			Title:       payload.MetaTitle,
			Description: payload.MetaDescription,
			Slug:        payload.MetaSlug,
			Indexable:   payload.Indexable,
		},
	})
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (api *API) handleQuoteRequestList(w http.ResponseWriter, r *http.Request) {
	if api.leads == nil {
		unavailable(w)
		return
	}
	projectID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	query := r.URL.Query()
	items, total, err := api.leads.List(r.Context(), projectID, parseIntQuery(query.Get("limit"), 50), parseIntQuery(query.Get("offset"), 0))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []*leads.QuoteRequest{}
	}
	writeJSON(w, http.StatusOK, quoteRequestList{Items: items, Total: total})
}

// handleQuoteRequestSubmit dispatches the submit command with a pre-assigned
// id, then reads the stored record back for the response.
func (api *API) handleQuoteRequestSubmit(w http.ResponseWriter, r *http.Request) {
	if api.leads == nil || api.submitQuote == nil {
		unavailable(w)
		return
	}
	projectID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var payload quoteRequestPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json payload")
		return
	}
	id := uuid.New()
	cmd := leadscmd.SubmitQuoteRequestCommand{Request: leads.SubmitRequest{
		ID:         id,
		ProjectID:  projectID,
		Name:       payload.Name,
		Email:      payload.Email,
		Phone:      payload.Phone,
		Company:    payload.Company,
		Service:    payload.Service,
		Message:    payload.Message,
		Locale:     payload.Locale,
		SourcePath: payload.SourcePath,
	}}
	if err := api.submitQuote.Execute(r.Context(), cmd); err != nil {
		api.writeError(w, r, err)
		return
	}
	record, err := api.leads.Get(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.metrics.recordQuoteRequest()
	writeJSON(w, http.StatusCreated, record)
}
