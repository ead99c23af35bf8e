package logging

import (
	"maps"
	"slices"
	"strings"

	"github.com/goliatone/go-sites/pkg/interfaces"
)

// WithFields attaches fields to logger when it implements FieldsLogger.
// Blank keys are dropped.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil {
		return logger
	}
	cleaned := cleanFields(fields)
	if len(cleaned) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(cleaned)
	}
	return logger
}

// SortedPairs flattens fields into key/value arguments ordered by key, for
// backends that only accept variadic pairs.
func SortedPairs(fields map[string]any) []any {
	keys := slices.Sorted(maps.Keys(fields))
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func cleanFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		if key = strings.TrimSpace(key); key != "" {
			out[key] = value
		}
	}
	return out
}
