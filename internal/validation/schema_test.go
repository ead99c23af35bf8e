package validation

import (
	"errors"
	"testing"
)

func TestNormalizeSchemaFromFieldShorthand(t *testing.T) {
	schema := NormalizeSchema(map[string]any{
		"fields": []any{
			map[string]any{"name": "title", "required": true},
			"subtitle",
			map[string]any{"name": "count", "type": "integer"},
		},
	})
	if schema == nil {
		t.Fatal("expected normalized schema")
	}
	if schema["additionalProperties"] != false {
		t.Fatalf("expected closed object, got %v", schema["additionalProperties"])
	}
	props := schema["properties"].(map[string]any)
	if props["subtitle"].(map[string]any)["type"] != "string" {
		t.Fatalf("expected string default, got %v", props["subtitle"])
	}
	if props["count"].(map[string]any)["type"] != "integer" {
		t.Fatalf("expected declared type, got %v", props["count"])
	}
	required := schema["required"].([]any)
	if len(required) != 1 || required[0] != "title" {
		t.Fatalf("unexpected required %v", required)
	}
}

func TestNormalizeSchemaWithoutConstraintsIsNil(t *testing.T) {
	if NormalizeSchema(nil) != nil {
		t.Fatal("expected nil schema for nil definition")
	}
	if NormalizeSchema(map[string]any{"label": "Hero"}) != nil {
		t.Fatal("expected nil schema when no fields are declared")
	}
	schema, err := Compile(map[string]any{})
	if err != nil || schema != nil {
		t.Fatalf("expected nil schema and error, got %v %v", schema, err)
	}
	if err := schema.Validate(map[string]any{"anything": "goes"}); err != nil {
		t.Fatalf("nil schema should accept every payload, got %v", err)
	}
}

func TestValidatePayloadReportsIssues(t *testing.T) {
	definition := map[string]any{
		"fields": []any{
			map[string]any{"name": "title", "required": true},
		},
	}

	if err := ValidatePayload(definition, map[string]any{"title": "Welcome"}); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	err := ValidatePayload(definition, map[string]any{"extra": "x"})
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
	if issues := Issues(err); len(issues) == 0 {
		t.Fatal("expected at least one issue")
	}
}

func TestCompileRejectsBrokenSchema(t *testing.T) {
	_, err := Compile(map[string]any{"type": 42})
	if !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}
