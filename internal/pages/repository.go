package pages

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PageRepository persists pages.
type PageRepository interface {
	Create(ctx context.Context, page *Page) (*Page, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	// FindByKey returns every page stored under (project, slug, locale),
	// oldest first. More than one row only happens with legacy imports.
	FindByKey(ctx context.Context, projectID uuid.UUID, slug, locale string) ([]*Page, error)
	// ListByProject returns pages ordered by order, locale, then creation.
	// An empty locale lists every locale.
	ListByProject(ctx context.Context, projectID uuid.UUID, locale string) ([]*Page, error)
	Update(ctx context.Context, page *Page) (*Page, error)
	// Delete removes the page with its sections and fields atomically.
	Delete(ctx context.Context, id uuid.UUID) error
	// CreateTree inserts a page with its sections and fields atomically.
	CreateTree(ctx context.Context, page *Page, sections []*Section, fields []*Field) error
	// ReplaceTree overwrites an existing page row and swaps its sections and
	// fields for the given ones atomically.
	ReplaceTree(ctx context.Context, page *Page, sections []*Section, fields []*Field) error
}

// SectionRepository persists page sections.
type SectionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Section, error)
	// ListByPage returns sections ordered by order then insertion.
	ListByPage(ctx context.Context, pageID uuid.UUID) ([]*Section, error)
	// InsertAt stores the section at section.Order, shifting later siblings,
	// and stores its initial fields, all atomically.
	InsertAt(ctx context.Context, section *Section, fields []*Field) (*Section, error)
	Update(ctx context.Context, section *Section) (*Section, error)
	// Delete removes the section and its fields atomically, closing the order gap.
	Delete(ctx context.Context, id uuid.UUID) error
	// Reorder assigns dense orders 0..n-1 following orderedIDs atomically.
	Reorder(ctx context.Context, pageID uuid.UUID, orderedIDs []uuid.UUID, at time.Time) error
}

// FieldRepository persists section fields.
type FieldRepository interface {
	Create(ctx context.Context, field *Field) (*Field, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Field, error)
	// ListBySection returns fields ordered by order then insertion.
	ListBySection(ctx context.Context, sectionID uuid.UUID) ([]*Field, error)
	// ListBySections returns fields of every section, grouped by section id.
	ListBySections(ctx context.Context, sectionIDs []uuid.UUID) (map[uuid.UUID][]*Field, error)
	UpdateValue(ctx context.Context, id uuid.UUID, value string, at time.Time) (*Field, error)
	// UpdateValues writes every key of values or none of them.
	UpdateValues(ctx context.Context, sectionID uuid.UUID, values map[string]string, at time.Time) ([]*Field, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, sectionID uuid.UUID, orderedIDs []uuid.UUID, at time.Time) error
}

// NotFoundError is returned when a page, section, or field lookup misses.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// SortPages orders pages by order, locale, creation, then id.
func SortPages(records []*Page) {
	slices.SortStableFunc(records, func(a, b *Page) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Locale, b.Locale); c != 0 {
			return c
		}
		return compareInsertion(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
}

// SortSections orders sections by order with insertion as the tie-break.
func SortSections(records []*Section) {
	slices.SortStableFunc(records, func(a, b *Section) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return compareInsertion(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
}

// SortFields orders fields by order with insertion as the tie-break.
func SortFields(records []*Field) {
	slices.SortStableFunc(records, func(a, b *Field) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return compareInsertion(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
}

func compareInsertion(aAt, bAt time.Time, aID, bID uuid.UUID) int {
	if c := aAt.Compare(bAt); c != 0 {
		return c
	}
	return cmp.Compare(aID.String(), bID.String())
}

// NewPageRepository creates a go-repository-bun repository for Page records.
func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord: func() *Page { return &Page{} },
		GetID: func(p *Page) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Page, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(p *Page) string {
			return p.ID.String()
		},
	})
}

// NewSectionRepository creates a go-repository-bun repository for Section records.
func NewSectionRepository(db *bun.DB) repository.Repository[*Section] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Section]{
		NewRecord: func() *Section { return &Section{} },
		GetID: func(s *Section) uuid.UUID {
			return s.ID
		},
		SetID: func(s *Section, id uuid.UUID) {
			s.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(s *Section) string {
			return s.ID.String()
		},
	})
}

// NewFieldRepository creates a go-repository-bun repository for Field records.
func NewFieldRepository(db *bun.DB) repository.Repository[*Field] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Field]{
		NewRecord: func() *Field { return &Field{} },
		GetID: func(f *Field) uuid.UUID {
			return f.ID
		},
		SetID: func(f *Field, id uuid.UUID) {
			f.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(f *Field) string {
			return f.ID.String()
		},
	})
}
