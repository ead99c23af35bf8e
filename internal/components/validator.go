package components

import (
	"context"
	"fmt"

	"github.com/goliatone/go-sites/internal/resolver"
	"github.com/goliatone/go-sites/internal/validation"
)

// WarningCode classifies editor warnings.
type WarningCode string

const (
	WarningUnresolvedIdentifier WarningCode = "unresolved_identifier"
	WarningSchemaViolation      WarningCode = "schema_violation"
	WarningDuplicateFieldKey    WarningCode = "duplicate_field_key"
)

// Warning points at a section that will not render as authored.
type Warning struct {
	Code         WarningCode `json:"code"`
	SectionIndex int         `json:"section_index"`
	Identifier   string      `json:"identifier"`
	FieldKey     string      `json:"field_key,omitempty"`
	Message      string      `json:"message"`
}

// Report is the outcome of validating a page.
type Report struct {
	Slug     string    `json:"slug"`
	Locale   string    `json:"locale"`
	Valid    bool      `json:"valid"`
	Warnings []Warning `json:"warnings"`
}

// Validator checks page snapshots against the registry. It is editor tooling
// and is never called on the public read path.
type Validator struct {
	registry *Registry
}

// NewValidator constructs a validator over registry.
func NewValidator(registry *Registry) *Validator {
	return &Validator{registry: registry}
}

// ValidatePage reports every section of snapshot that cannot render.
func (v *Validator) ValidatePage(ctx context.Context, snapshot resolver.PageSnapshot) (Report, error) {
	report := Report{
		Slug:     snapshot.Slug,
		Locale:   snapshot.Locale,
		Warnings: []Warning{},
	}

	for i, section := range snapshot.Sections {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}

		payload := make(map[string]any, len(section.Fields))
		for _, field := range section.Fields {
			if _, dup := payload[field.Key]; dup {
				report.Warnings = append(report.Warnings, Warning{
					Code:         WarningDuplicateFieldKey,
					SectionIndex: i,
					Identifier:   section.Identifier,
					FieldKey:     field.Key,
					Message:      fmt.Sprintf("field %q appears more than once", field.Key),
				})
				continue
			}
			payload[field.Key] = field.Value
		}

		if !v.registry.HasRenderer(section.Identifier) {
			report.Warnings = append(report.Warnings, Warning{
				Code:         WarningUnresolvedIdentifier,
				SectionIndex: i,
				Identifier:   section.Identifier,
				Message:      fmt.Sprintf("no renderer registered for %q", section.Identifier),
			})
			continue
		}

		if err := v.registry.schema(section.Identifier).Validate(payload); err != nil {
			for _, issue := range validation.Issues(err) {
				report.Warnings = append(report.Warnings, Warning{
					Code:         WarningSchemaViolation,
					SectionIndex: i,
					Identifier:   section.Identifier,
					Message:      fmt.Sprintf("%s: %s", issueLocation(issue.Location), issue.Message),
				})
			}
		}
	}

	report.Valid = len(report.Warnings) == 0
	return report, nil
}

func issueLocation(location string) string {
	if location == "" {
		return "#"
	}
	return location
}
