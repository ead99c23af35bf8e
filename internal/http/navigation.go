package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/navigation"
)

type navigationCreatePayload struct {
	ID        *uuid.UUID          `json:"id,omitempty"`
	ProjectID uuid.UUID           `json:"project_id"`
	Label     string              `json:"label"`
	Locale    string              `json:"locale"`
	Location  navigation.Location `json:"location"`
	Order     *int                `json:"order,omitempty"`
	URL       *string             `json:"url,omitempty"`
	PageID    *uuid.UUID          `json:"page_id,omitempty"`
}

type navigationUpdatePayload struct {
	Label  *string    `json:"label,omitempty"`
	Locale *string    `json:"locale,omitempty"`
	Order  *int       `json:"order,omitempty"`
	URL    *string    `json:"url,omitempty"`
	PageID *uuid.UUID `json:"page_id,omitempty"`
}

type navigationOrderPayload struct {
	ProjectID uuid.UUID           `json:"project_id"`
	Location  navigation.Location `json:"location"`
	Locale    string              `json:"locale"`
	IDs       []uuid.UUID         `json:"ids"`
}

func (api *API) registerNavigationRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "navigation")
	mux.HandleFunc("POST "+root, api.handleNavigationCreate)
	mux.HandleFunc("PUT "+root+"/order", api.handleNavigationReorder)
	mux.HandleFunc("GET "+root+"/{id}", api.handleNavigationGet)
	mux.HandleFunc("PUT "+root+"/{id}", api.handleNavigationUpdate)
	mux.HandleFunc("DELETE "+root+"/{id}", api.handleNavigationDelete)
}

func (api *API) handleNavigationCreate(w http.ResponseWriter, r *http.Request) {
	if api.navigation == nil {
		unavailable(w)
		return
	}
	var payload navigationCreatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json payload")
		return
	}
	record, err := api.navigation.Create(r.Context(), navigation.CreateItemRequest{
		ID:        payload.ID,
		ProjectID: payload.ProjectID,
		Label:     payload.Label,
		Locale:    payload.Locale,
		Location:  payload.Location,
		Order:     payload.Order,
		URL:       payload.URL,
		PageID:    payload.PageID,
	})
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (api *API) handleNavigationGet(w http.ResponseWriter, r *http.Request) {
	if api.navigation == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	record, err := api.navigation.Get(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handleNavigationUpdate(w http.ResponseWriter, r *http.Request) {
	if api.navigation == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var payload navigationUpdatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json payload")
		return
	}
	record, err := api.navigation.Update(r.Context(), navigation.UpdateItemRequest{
		ID:     id,
		Label:  payload.Label,
		Locale: payload.Locale,
		Order:  payload.Order,
		URL:    payload.URL,
		PageID: payload.PageID,
	})
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handleNavigationDelete(w http.ResponseWriter, r *http.Request) {
	if api.navigation == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	if err := api.navigation.Delete(r.Context(), id); err != nil {
		api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handleNavigationReorder(w http.ResponseWriter, r *http.Request) {
	if api.navigation == nil {
		unavailable(w)
		return
	}
	var payload navigationOrderPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json payload")
		return
	}
	items, err := api.navigation.Reorder(r.Context(), navigation.ReorderRequest{
		ProjectID:  payload.ProjectID,
		Location:   payload.Location,
		Locale:     payload.Locale,
		OrderedIDs: payload.IDs,
	})
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
