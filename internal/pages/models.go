package pages

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Page is a locale-specific document of a project. (project, slug, locale) is unique.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID              uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	ProjectID       uuid.UUID  `bun:"project_id,notnull,type:uuid" json:"project_id"`
	Slug            string     `bun:"slug,notnull" json:"slug"`
	Locale          string     `bun:"locale,notnull" json:"locale"`
	Path            string     `bun:"path" json:"path"`
	Title           string     `bun:"title" json:"title"`
	Order           int        `bun:"sort_order,notnull,default:0" json:"order"`
	IsPublished     bool       `bun:"is_published,notnull,default:false" json:"is_published"`
	MetaTitle       string     `bun:"meta_title" json:"meta_title,omitempty"`
	MetaDescription string     `bun:"meta_description" json:"meta_description,omitempty"`
	MetaSlug        string     `bun:"meta_slug" json:"meta_slug,omitempty"`
	Indexable       bool       `bun:"indexable,notnull,default:true" json:"indexable"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
	Sections        []*Section `bun:"rel:has-many,join:id=page_id" json:"sections,omitempty"`
}

// Section is an ordered block of a page. Identifier is opaque to the content
// core and names the component that renders it.
type Section struct {
	bun.BaseModel `bun:"table:sections,alias:s"`

	ID           uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PageID       uuid.UUID `bun:"page_id,notnull,type:uuid" json:"page_id"`
	Identifier   string    `bun:"identifier,notnull" json:"identifier"`
	InternalName string    `bun:"internal_name" json:"internal_name"`
	Order        int       `bun:"sort_order,notnull,default:0" json:"order"`
	CreatedAt    time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
	Fields       []*Field  `bun:"rel:has-many,join:id=section_id" json:"fields,omitempty"`
}

// Field is an ordered key/value pair of a section. (section, key) is unique.
type Field struct {
	bun.BaseModel `bun:"table:fields,alias:f"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	SectionID uuid.UUID `bun:"section_id,notnull,type:uuid" json:"section_id"`
	Key       string    `bun:"key,notnull" json:"key"`
	Value     string    `bun:"value" json:"value"`
	Order     int       `bun:"sort_order,notnull,default:0" json:"order"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}
