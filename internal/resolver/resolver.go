package resolver

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/internal/projects"
	"github.com/goliatone/go-sites/internal/runtimeconfig"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

// DefaultLocale is used when no WithDefaultLocale option is supplied.
const DefaultLocale = "en"

// PageReader is the read side of the page repository.
type PageReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*pages.Page, error)
	FindByKey(ctx context.Context, projectID uuid.UUID, slug, locale string) ([]*pages.Page, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, locale string) ([]*pages.Page, error)
}

// SectionReader lists the sections of a page.
type SectionReader interface {
	ListByPage(ctx context.Context, pageID uuid.UUID) ([]*pages.Section, error)
}

// FieldReader lists the fields of many sections at once.
type FieldReader interface {
	ListBySections(ctx context.Context, sectionIDs []uuid.UUID) (map[uuid.UUID][]*pages.Field, error)
}

// ProjectReader looks up projects by slug.
type ProjectReader interface {
	GetBySlug(ctx context.Context, slug string) (*projects.Project, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDefaultLocale sets the single fallback locale.
func WithDefaultLocale(locale string) Option {
	return func(r *Resolver) {
		if normalized := runtimeconfig.NormalizeLocale(locale); normalized != "" {
			r.defaultLocale = normalized
		}
	}
}

// WithLogger wires the logger used for data integrity warnings.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver selects pages with locale fallback and assembles their content
// trees. It only reads, so a single instance is safe for concurrent use.
type Resolver struct {
	pages         PageReader
	sections      SectionReader
	fields        FieldReader
	projects      ProjectReader
	defaultLocale string
	logger        interfaces.Logger
}

// New constructs a Resolver.
func New(pageReader PageReader, sections SectionReader, fields FieldReader, projectReader ProjectReader, opts ...Option) *Resolver {
	r := &Resolver{
		pages:         pageReader,
		sections:      sections,
		fields:        fields,
		projects:      projectReader,
		defaultLocale: DefaultLocale,
		logger:        logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultLocale reports the fallback locale of this resolver.
func (r *Resolver) DefaultLocale() string {
	return r.defaultLocale
}

// ResolvePage selects the page stored under (project, slug, requested locale),
// falling back once to the default locale. An empty requested locale asks for
// the default locale directly.
func (r *Resolver) ResolvePage(ctx context.Context, projectID uuid.UUID, slug, requestedLocale string) (*Resolution, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pages.ErrSlugRequired
	}
	requested := r.defaultLocale
	if strings.TrimSpace(requestedLocale) != "" {
		normalized, err := pages.NormalizeLocale(requestedLocale)
		if err != nil {
			return nil, err
		}
		requested = normalized
	}

	page, err := r.lookup(ctx, projectID, slug, requested)
	if err != nil {
		return nil, err
	}
	if page != nil {
		return &Resolution{Page: page, RequestedLocale: requested, ServedLocale: requested}, nil
	}

	if requested != r.defaultLocale {
		page, err = r.lookup(ctx, projectID, slug, r.defaultLocale)
		if err != nil {
			return nil, err
		}
		if page != nil {
			logging.WithPageContext(r.logger, projectID.String(), slug, requested).
				Debug("page.locale_fallback", "served_locale", r.defaultLocale)
			return &Resolution{
				Page:            page,
				RequestedLocale: requested,
				ServedLocale:    r.defaultLocale,
				FallbackUsed:    true,
			}, nil
		}
	}

	return nil, &pages.NotFoundError{Resource: "page", Key: slug + "@" + requested}
}

func (r *Resolver) lookup(ctx context.Context, projectID uuid.UUID, slug, locale string) (*pages.Page, error) {
	matches, err := r.pages.FindByKey(ctx, projectID, slug, locale)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	}

	oldest := slices.MinFunc(matches, func(a, b *pages.Page) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	logging.WithPageContext(r.logger, projectID.String(), slug, locale).
		Warn("page.ambiguous_match", "candidates", len(matches), "page_id", oldest.ID)
	return oldest, nil
}

// BuildSnapshot assembles the ordered section and field tree of page.
func (r *Resolver) BuildSnapshot(ctx context.Context, page *pages.Page) (PageSnapshot, error) {
	sections, err := r.sections.ListByPage(ctx, page.ID)
	if err != nil {
		return PageSnapshot{}, err
	}
	sections = slices.Clone(sections)
	pages.SortSections(sections)

	ids := make([]uuid.UUID, len(sections))
	for i, section := range sections {
		ids[i] = section.ID
	}
	fieldsBySection, err := r.fields.ListBySections(ctx, ids)
	if err != nil {
		return PageSnapshot{}, err
	}

	snapshot := PageSnapshot{
		ID:     page.ID,
		Slug:   page.Slug,
		Locale: page.Locale,
		Title:  page.Title,
		Path:   page.Path,
		Meta: MetaSnapshot{
			Title:       page.MetaTitle,
			Description: page.MetaDescription,
			Slug:        page.MetaSlug,
			Indexable:   page.Indexable,
		},
		Sections: make([]SectionSnapshot, 0, len(sections)),
	}
	for _, section := range sections {
		fields := slices.Clone(fieldsBySection[section.ID])
		pages.SortFields(fields)

		entry := SectionSnapshot{
			Identifier:   section.Identifier,
			InternalName: section.InternalName,
			Fields:       make([]FieldSnapshot, 0, len(fields)),
		}
		for _, field := range fields {
			entry.Fields = append(entry.Fields, FieldSnapshot{Key: field.Key, Value: field.Value})
		}
		snapshot.Sections = append(snapshot.Sections, entry)
	}
	return snapshot, nil
}

// SnapshotByID loads a page by id and assembles its tree.
func (r *Resolver) SnapshotByID(ctx context.Context, pageID uuid.UUID) (PageSnapshot, error) {
	page, err := r.pages.GetByID(ctx, pageID)
	if err != nil {
		return PageSnapshot{}, err
	}
	return r.BuildSnapshot(ctx, page)
}

// ResolveSnapshot runs page selection and assembles the selected tree.
func (r *Resolver) ResolveSnapshot(ctx context.Context, projectID uuid.UUID, slug, locale string) (*ResolvedSnapshot, error) {
	resolution, err := r.ResolvePage(ctx, projectID, slug, locale)
	if err != nil {
		return nil, err
	}
	snapshot, err := r.BuildSnapshot(ctx, resolution.Page)
	if err != nil {
		return nil, err
	}
	return &ResolvedSnapshot{
		RequestedLocale: resolution.RequestedLocale,
		ServedLocale:    resolution.ServedLocale,
		FallbackUsed:    resolution.FallbackUsed,
		Page:            snapshot,
	}, nil
}

// PublicSite assembles every published page of a project, ordered by page
// order, then locale, then creation.
func (r *Resolver) PublicSite(ctx context.Context, projectSlug string) (SiteSnapshot, error) {
	project, err := r.projects.GetBySlug(ctx, strings.TrimSpace(projectSlug))
	if err != nil {
		return SiteSnapshot{}, err
	}
	records, err := r.pages.ListByProject(ctx, project.ID, "")
	if err != nil {
		return SiteSnapshot{}, err
	}
	records = slices.Clone(records)
	pages.SortPages(records)

	site := SiteSnapshot{
		Slug:        project.Slug,
		Name:        project.Name,
		TemplateKey: project.TemplateKey,
		Theme: ThemeSnapshot{
			PrimaryColor:     project.PrimaryColor,
			SecondaryColor:   project.SecondaryColor,
			AccentColor:      project.AccentColor,
			HeaderBackground: string(project.HeaderBackground),
		},
		Pages: []PageSnapshot{},
	}
	for _, page := range records {
		if !page.IsPublished {
			continue
		}
		snapshot, err := r.BuildSnapshot(ctx, page)
		if err != nil {
			return SiteSnapshot{}, err
		}
		site.Pages = append(site.Pages, snapshot)
	}
	return site, nil
}
