package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/leads"
	"github.com/goliatone/go-sites/internal/navigation"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/internal/projects"
	schemavalidation "github.com/goliatone/go-sites/internal/validation"
)

type errorResponse struct {
	Error   string                   `json:"error"`
	Message string                   `json:"message,omitempty"`
	Fields  map[string]string        `json:"fields,omitempty"`
	Issues  []schemavalidation.Issue `json:"issues,omitempty"`
}

var conflictErrors = []error{
	projects.ErrSlugExists,
	projects.ErrHeadquartersExists,
	pages.ErrPageExists,
	pages.ErrDuplicateFieldKey,
}

var badRequestErrors = []error{
	projects.ErrSlugRequired,
	projects.ErrSlugInvalid,
	projects.ErrNameRequired,
	projects.ErrColorInvalid,
	projects.ErrHeaderBackgroundInvalid,
	projects.ErrOwnerRequired,
	projects.ErrProjectIDRequired,
	pages.ErrProjectRequired,
	pages.ErrSlugRequired,
	pages.ErrSlugInvalid,
	pages.ErrLocaleInvalid,
	pages.ErrPageIDRequired,
	pages.ErrSectionIDRequired,
	pages.ErrFieldIDRequired,
	pages.ErrIdentifierRequired,
	pages.ErrPositionInvalid,
	pages.ErrFieldKeyRequired,
	pages.ErrUnknownFieldKey,
	pages.ErrNoFieldValues,
	pages.ErrReorderMismatch,
	pages.ErrCloneSameLocale,
	navigation.ErrProjectRequired,
	navigation.ErrItemIDRequired,
	navigation.ErrLabelRequired,
	navigation.ErrLocationInvalid,
	navigation.ErrLocaleInvalid,
	navigation.ErrTargetRequired,
	navigation.ErrTargetConflict,
	navigation.ErrReorderMismatch,
	leads.ErrProjectRequired,
	leads.ErrIDRequired,
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

func (api *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		api.logger.WithContext(r.Context()).Error("http.handler_failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	if isNotFound(err) {
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()}
	}

	var crossLocale *navigation.CrossLocaleReferenceError
	if errors.As(err, &crossLocale) || errors.Is(err, navigation.ErrPageOtherProject) {
		return http.StatusUnprocessableEntity, errorResponse{Error: "invalid_reference", Message: err.Error()}
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return http.StatusBadRequest, errorResponse{
			Error:   "validation_failed",
			Message: "request validation failed",
			Fields:  fieldMessages(fieldErrs),
		}
	}

	if errors.Is(err, schemavalidation.ErrSchemaValidation) || errors.Is(err, schemavalidation.ErrSchemaInvalid) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
			Issues:  schemavalidation.Issues(err),
		}
	}

	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return http.StatusConflict, errorResponse{Error: "conflict", Message: err.Error()}
		}
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()}
		}
	}
	if goerrors.IsCategory(err, goerrors.CategoryValidation) {
		return http.StatusBadRequest, errorResponse{Error: "validation_failed", Message: err.Error()}
	}

	return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "internal server error"}
}

func isNotFound(err error) bool {
	return projects.IsNotFound(err) ||
		pages.IsNotFound(err) ||
		navigation.IsNotFound(err) ||
		leads.IsNotFound(err)
}

func fieldMessages(errs validation.Errors) map[string]string {
	out := make(map[string]string, len(errs))
	for key, err := range errs {
		if err != nil {
			out[key] = err.Error()
		}
	}
	return out
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	return uuid.Parse(trimmed)
}

func parseIntQuery(value string, defaultValue int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed < 0 {
		return defaultValue
	}
	return parsed
}
