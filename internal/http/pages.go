package http

import (
	"net/http"

	"github.com/google/uuid"

	pagescmd "github.com/goliatone/go-sites/internal/commands/pages"
	"github.com/goliatone/go-sites/internal/pages"
)

type pageUpdatePayload struct {
	Slug            *string `json:"slug,omitempty"`
	Locale          *string `json:"locale,omitempty"`
	Path            *string `json:"path,omitempty"`
	Title           *string `json:"title,omitempty"`
	Order           *int    `json:"order,omitempty"`
	IsPublished     *bool   `json:"is_published,omitempty"`
	MetaTitle       *string `json:"meta_title,omitempty"`
	MetaDescription *string `json:"meta_description,omitempty"`
	MetaSlug        *string `json:"meta_slug,omitempty"`
	Indexable       *bool   `json:"indexable,omitempty"`
}

type pageClonePayload struct {
	Locale string `json:"locale"`
	Path   string `json:"path,omitempty"`
	Title  string `json:"title,omitempty"`
}

type fieldPayload struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type sectionCreatePayload struct {
	Identifier   string         `json:"identifier"`
	InternalName string         `json:"internal_name,omitempty"`
	Position     *int           `json:"position,omitempty"`
	Fields       []fieldPayload `json:"fields,omitempty"`
}

type orderPayload struct {
	IDs []uuid.UUID `json:"ids"`
}

type fieldValuesPayload struct {
	Values map[string]string `json:"values"`
}

type fieldValuePayload struct {
	Value string `json:"value"`
}

func (api *API) registerPageRoutes(mux *http.ServeMux, base string) {
	pagesRoot := joinPath(base, "pages")
	mux.HandleFunc("GET "+pagesRoot+"/{id}", api.handlePageGet)
	mux.HandleFunc("PUT "+pagesRoot+"/{id}", api.handlePageUpdate)
	mux.HandleFunc("DELETE "+pagesRoot+"/{id}", api.handlePageDelete)
	mux.HandleFunc("POST "+pagesRoot+"/{id}/clone", api.handlePageClone)
	mux.HandleFunc("GET "+pagesRoot+"/{id}/validation", api.handlePageValidation)
	mux.HandleFunc("GET "+pagesRoot+"/{id}/sections", api.handleSectionList)
	mux.HandleFunc("POST "+pagesRoot+"/{id}/sections", api.handleSectionCreate)
	mux.HandleFunc("PUT "+pagesRoot+"/{id}/sections/order", api.handleSectionReorder)

	sectionsRoot := joinPath(base, "sections")
	mux.HandleFunc("DELETE "+sectionsRoot+"/{id}", api.handleSectionDelete)
	mux.HandleFunc("GET "+sectionsRoot+"/{id}/fields", api.handleFieldList)
	mux.HandleFunc("POST "+sectionsRoot+"/{id}/fields", api.handleFieldCreate)
	mux.HandleFunc("PUT "+sectionsRoot+"/{id}/fields", api.handleFieldValues)
	mux.HandleFunc("PUT "+sectionsRoot+"/{id}/fields/order", api.handleFieldReorder)

	fieldsRoot := joinPath(base, "fields")
	mux.HandleFunc("PUT "+fieldsRoot+"/{id}", api.handleFieldUpdate)
	mux.HandleFunc("DELETE "+fieldsRoot+"/{id}", api.handleFieldDelete)
}

func (api *API) handlePageGet(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	record, err := api.pages.GetPage(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handlePageUpdate(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var payload pageUpdatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json payload")
		return
	}
	record, err := api.pages.UpdatePage(r.Context(), pages.UpdatePageRequest{
		ID:              id,
		Slug:            payload.Slug,
		Locale:          payload.Locale,
		Path:            payload.Path,
		Title:           payload.Title,
		Order:           payload.Order,
		IsPublished:     payload.IsPublished,
		MetaTitle:       payload.MetaTitle,
		MetaDescription: payload.MetaDescription,
		MetaSlug:        payload.MetaSlug,
		Indexable:       payload.Indexable,
	})
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handlePageDelete(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	if err := api.pages.DeletePage(r.Context(), id); err != nil {
		api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handlePageClone(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var payload pageClonePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json payload")
		return
	}
	record, err := api.pages.ClonePageToLocale(r.Context(), pages.ClonePageRequest{
		PageID:       id,
		TargetLocale: payload.Locale,
		Path:         payload.Path,
		Title:        payload.Title,
	})
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// handlePageValidation reports sections the component registry cannot
// render. The public read path never runs this check.
func (api *API) handlePageValidation(w http.ResponseWriter, r *http.Request) {
	if api.resolver == nil || api.validator == nil {
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
	report, err := api.validator.ValidatePage(r.Context(), snapshot)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (api *API) handleSectionList(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	list, err := api.pages.ListSections(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *API) handleSectionCreate(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var payload sectionCreatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json payload")
		return
	}
	fields := make([]pages.FieldInput, 0, len(payload.Fields))
	for _, field := range payload.Fields {
		fields = append(fields, pages.FieldInput{Key: field.Key, Value: field.Value})
	}
	record, err := api.pages.AddSection(r.Context(), pages.AddSectionRequest{
		PageID:       id,
		Identifier:   payload.Identifier,
		InternalName: payload.InternalName,
		Position:     payload.Position,
		Fields:       fields,
	})
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (api *API) handleSectionReorder(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil || api.reorderSections == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var payload orderPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json payload")
		return
	}
	cmd := pagescmd.ReorderSectionsCommand{PageID: id, SectionIDs: payload.IDs}
	if err := api.reorderSections.Execute(r.Context(), cmd); err != nil {
		api.writeError(w, r, err)
		return
	}
	list, err := api.pages.ListSections(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *API) handleSectionDelete(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	if err := api.pages.DeleteSection(r.Context(), id); err != nil {
		api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handleFieldList(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	list, err := api.pages.ListFields(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *API) handleFieldCreate(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var payload fieldPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json payload")
		return
	}
	record, err := api.pages.AddField(r.Context(), pages.AddFieldRequest{
		SectionID: id,
		Key:       payload.Key,
		Value:     payload.Value,
	})
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// handleFieldValues writes several keys of a section in one command.
func (api *API) handleFieldValues(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil || api.updateFields == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var payload fieldValuesPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json payload")
		return
	}
	cmd := pagescmd.UpdateFieldsCommand{SectionID: id, Values: payload.Values}
	if err := api.updateFields.Execute(r.Context(), cmd); err != nil {
		api.writeError(w, r, err)
		return
	}
	list, err := api.pages.ListFields(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *API) handleFieldReorder(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var payload orderPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json payload")
		return
	}
	list, err := api.pages.ReorderFields(r.Context(), id, payload.IDs)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *API) handleFieldUpdate(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var payload fieldValuePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid json payload")
		return
	}
	record, err := api.pages.UpdateFieldValue(r.Context(), id, payload.Value)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handleFieldDelete(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		unavailable(w)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	if err := api.pages.DeleteField(r.Context(), id); err != nil {
		api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
