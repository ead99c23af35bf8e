package logging

import (
	"context"
	"testing"
)

func TestContextFieldsMergeAndCopy(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), " req-1 ")
	ctx = ContextWithSite(ctx, "p-1", "")
	ctx = ContextWithFields(ctx, map[string]any{" ": "dropped", FieldLocale: "es"})

	fields := ContextFields(ctx)
	if len(fields) != 3 || fields[FieldRequestID] != "req-1" || fields[FieldProjectID] != "p-1" || fields[FieldLocale] != "es" {
		t.Fatalf("unexpected fields %v", fields)
	}
	fields[FieldLocale] = "mutated"
	if RequestID(ctx) != "req-1" || ContextFields(ctx)[FieldLocale] != "es" {
		t.Fatalf("expected stored fields to be isolated, got %v", ContextFields(ctx))
	}
}

func TestContextHelpersIgnoreEmptyInput(t *testing.T) {
	base := context.Background()
	if ctx := ContextWithRequestID(base, "  "); ctx != base {
		t.Fatal("expected blank request id to leave context untouched")
	}
	if ctx := ContextWithSite(base, "", ""); ctx != base {
		t.Fatal("expected empty site to leave context untouched")
	}
	if RequestID(base) != "" || ContextFields(base) != nil {
		t.Fatal("expected bare context to carry nothing")
	}
}

func TestWithFieldsDropsBlankKeys(t *testing.T) {
	rec := &recordingLogger{}
	_ = WithFields(rec, map[string]any{"": 1, " ": 2})
	if len(rec.fields) != 0 {
		t.Fatalf("expected blank keys to skip the logger, got %v", rec.fields)
	}
	_ = WithFields(rec, map[string]any{" module ": "sites.http"})
	if len(rec.fields) != 1 || rec.fields[0]["module"] != "sites.http" {
		t.Fatalf("expected trimmed key, got %v", rec.fields)
	}
	if got := SortedPairs(map[string]any{"b": 2, "a": 1}); len(got) != 4 || got[0] != "a" || got[2] != "b" {
		t.Fatalf("expected sorted pairs, got %v", got)
	}
}
