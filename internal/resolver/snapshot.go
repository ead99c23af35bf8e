package resolver

import (
	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/pages"
)

// Resolution is the outcome of page selection. ServedLocale differs from
// RequestedLocale only when FallbackUsed is set.
type Resolution struct {
	Page            *pages.Page
	RequestedLocale string
	ServedLocale    string
	FallbackUsed    bool
}

// PageSnapshot is the nested page tree delivered to renderers.
type PageSnapshot struct {
	ID       uuid.UUID         `json:"id"`
	Slug     string            `json:"slug"`
	Locale   string            `json:"locale"`
	Title    string            `json:"title"`
	Path     string            `json:"path"`
	Meta     MetaSnapshot      `json:"meta"`
	Sections []SectionSnapshot `json:"sections"`
}

// MetaSnapshot carries the SEO attributes of a page.
type MetaSnapshot struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	Indexable   bool   `json:"indexable"`
}

// SectionSnapshot is a section with its ordered fields. Fields is never nil so
// an empty section encodes as "fields": [].
type SectionSnapshot struct {
	Identifier   string          `json:"identifier"`
	InternalName string          `json:"internal_name"`
	Fields       []FieldSnapshot `json:"fields"`
}

// FieldSnapshot is a single key/value pair.
type FieldSnapshot struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ResolvedSnapshot pairs a page tree with the locale decision that selected it.
type ResolvedSnapshot struct {
	RequestedLocale string       `json:"requested_locale"`
	ServedLocale    string       `json:"served_locale"`
	FallbackUsed    bool         `json:"fallback_used"`
	Page            PageSnapshot `json:"page"`
}

// SiteSnapshot is the public tree of a project.
type SiteSnapshot struct {
	Slug        string         `json:"slug"`
	Name        string         `json:"name"`
	TemplateKey string         `json:"template_key"`
	Theme       ThemeSnapshot  `json:"theme"`
	Pages       []PageSnapshot `json:"pages"`
}

// ThemeSnapshot carries project branding.
type ThemeSnapshot struct {
	PrimaryColor     string `json:"primary_color,omitempty"`
	SecondaryColor   string `json:"secondary_color,omitempty"`
	AccentColor      string `json:"accent_color,omitempty"`
	HeaderBackground string `json:"header_background"`
}
