package components_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-sites/internal/components"
	"github.com/goliatone/go-sites/internal/resolver"
)

func newRegistry(t *testing.T) *components.Registry {
	t.Helper()
	registry, err := components.NewRegistry(
		components.Component{
			Identifier: "hero-01",
			Name:       "Hero",
			Schema: map[string]any{
				"fields": []any{
					map[string]any{"name": "title", "required": true},
					"subtitle",
				},
			},
		},
		components.Component{Identifier: "contact-01", Name: "Contact"},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return registry
}

func TestRegistryLookup(t *testing.T) {
	registry := newRegistry(t)

	component, result := registry.Lookup("hero-01")
	if result != components.Resolved || component.Name != "Hero" {
		t.Fatalf("expected hero to resolve, got %v %+v", result, component)
	}
	if _, result := registry.Lookup("slider-09"); result != components.UnknownIdentifier {
		t.Fatalf("expected unknown identifier, got %v", result)
	}
	if registry.HasRenderer("slider-09") {
		t.Fatal("expected no renderer for unknown identifier")
	}
	if got := registry.Identifiers(); len(got) != 2 || got[0] != "contact-01" {
		t.Fatalf("unexpected identifiers %v", got)
	}
}

func TestRegistryRejectsDuplicatesAndBlankIdentifiers(t *testing.T) {
	registry := newRegistry(t)

	if err := registry.Register(components.Component{Identifier: "hero-01"}); !errors.Is(err, components.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := registry.Register(components.Component{Identifier: "  "}); !errors.Is(err, components.ErrIdentifierRequired) {
		t.Fatalf("expected ErrIdentifierRequired, got %v", err)
	}
}

func TestValidatorReportsWarnings(t *testing.T) {
	validator := components.NewValidator(newRegistry(t))

	report, err := validator.ValidatePage(context.Background(), resolver.PageSnapshot{
		Slug:   "home",
		Locale: "en",
		Sections: []resolver.SectionSnapshot{
			{Identifier: "hero-01", Fields: []resolver.FieldSnapshot{{Key: "subtitle", Value: "x"}}},
			{Identifier: "slider-09", Fields: []resolver.FieldSnapshot{}},
			{Identifier: "contact-01", Fields: []resolver.FieldSnapshot{{Key: "email", Value: "a"}, {Key: "email", Value: "b"}}},
		},
	})
	if err != nil {
		t.Fatalf("ValidatePage: %v", err)
	}
	if report.Valid {
		t.Fatal("expected report to be invalid")
	}

	codes := map[components.WarningCode]int{}
	for _, warning := range report.Warnings {
		codes[warning.Code]++
	}
	if codes[components.WarningSchemaViolation] == 0 {
		t.Fatalf("expected schema violation for missing title, got %+v", report.Warnings)
	}
	if codes[components.WarningUnresolvedIdentifier] != 1 {
		t.Fatalf("expected one unresolved identifier, got %+v", report.Warnings)
	}
	if codes[components.WarningDuplicateFieldKey] != 1 {
		t.Fatalf("expected one duplicate key, got %+v", report.Warnings)
	}
}

func TestValidatorAcceptsRenderablePage(t *testing.T) {
	validator := components.NewValidator(newRegistry(t))

	report, err := validator.ValidatePage(context.Background(), resolver.PageSnapshot{
		Sections: []resolver.SectionSnapshot{
			{Identifier: "hero-01", Fields: []resolver.FieldSnapshot{{Key: "title", Value: "Welcome"}}},
			{Identifier: "contact-01", Fields: []resolver.FieldSnapshot{}},
		},
	})
	if err != nil {
		t.Fatalf("ValidatePage: %v", err)
	}
	if !report.Valid || len(report.Warnings) != 0 {
		t.Fatalf("expected clean report, got %+v", report)
	}
}
