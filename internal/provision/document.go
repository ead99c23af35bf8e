package provision

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// FrontMatter is the YAML header of a template page file.
type FrontMatter struct {
	Slug        string             `yaml:"slug"`
	Title       string             `yaml:"title"`
	Path        string             `yaml:"path"`
	Order       int                `yaml:"order"`
	Published   bool               `yaml:"published"`
	Meta        MetaMatter         `yaml:"meta"`
	BodySection string             `yaml:"body_section"`
	Sections    []SectionMatter    `yaml:"sections"`
	Navigation  []NavigationMatter `yaml:"navigation"`
}

// MetaMatter carries page SEO attributes.
type MetaMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Slug        string `yaml:"slug"`
	Indexable   *bool  `yaml:"indexable"`
}

// SectionMatter declares one section and its fields in order.
type SectionMatter struct {
	Identifier   string        `yaml:"identifier"`
	InternalName string        `yaml:"internal_name"`
	Fields       []FieldMatter `yaml:"fields"`
}

// FieldMatter is a key/value pair.
type FieldMatter struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// NavigationMatter links the page from a header or footer menu.
type NavigationMatter struct {
	Location string `yaml:"location"`
	Label    string `yaml:"label"`
	Order    *int   `yaml:"order"`
}

// Document is a parsed template page file.
type Document struct {
	File   string
	Locale string
	Front  FrontMatter
	Body   []byte
}

// ParseDocument splits source into frontmatter and markdown body.
func ParseDocument(file, locale string, source []byte) (*Document, error) {
	var front FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &front)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter %s: %w", file, err)
	}
	return &Document{
		File:   file,
		Locale: locale,
		Front:  front,
		Body:   bytes.TrimSpace(body),
	}, nil
}

// Renderer turns markdown bodies into HTML field values.
type Renderer struct {
	engine goldmark.Markdown
}

// NewRenderer builds a goldmark engine with GFM and heading IDs. Raw HTML in
// markdown is escaped.
func NewRenderer() *Renderer {
	return &Renderer{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

// Render converts markdown to HTML.
func (r *Renderer) Render(markdown []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert(markdown, &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return buf.String(), nil
}
