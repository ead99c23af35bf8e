package logging

import (
	"context"
	"maps"
	"strings"
)

type contextFieldsKey struct{}

// Request scoped field names shared by the HTTP adapter and the backends.
const (
	FieldRequestID = "request_id"
	FieldProjectID = "project_id"
	FieldLocale    = "locale"
)

// ContextWithFields returns ctx carrying fields merged over any it already
// carries. Backends add them to entries logged through WithContext.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	cleaned := cleanFields(fields)
	if ctx == nil || len(cleaned) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(cleaned))
	}
	maps.Copy(merged, cleaned)
	return context.WithValue(ctx, contextFieldsKey{}, merged)
}

// ContextFields returns a copy of the fields stored on ctx.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(contextFieldsKey{}).(map[string]any)
	if len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// ContextWithRequestID tags ctx with the id of the request being served.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return ContextWithFields(ctx, map[string]any{FieldRequestID: id})
}

// RequestID returns the request id stored on ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ContextFields(ctx)[FieldRequestID].(string)
	return id
}

// ContextWithSite tags ctx with the project and locale a public request
// targets. Empty values are skipped.
func ContextWithSite(ctx context.Context, projectID, locale string) context.Context {
	fields := map[string]any{}
	if projectID = strings.TrimSpace(projectID); projectID != "" {
		fields[FieldProjectID] = projectID
	}
	if locale = strings.TrimSpace(locale); locale != "" {
		fields[FieldLocale] = locale
	}
	return ContextWithFields(ctx, fields)
}
