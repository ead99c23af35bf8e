package pages

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/internal/projects"
	"github.com/goliatone/go-sites/internal/runtimeconfig"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

// Service edits the content tree of a project.
type Service interface {
	CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error)
	GetPage(ctx context.Context, id uuid.UUID) (*Page, error)
	ListPages(ctx context.Context, projectID uuid.UUID, locale string) ([]*Page, error)
	UpdatePage(ctx context.Context, req UpdatePageRequest) (*Page, error)
	DeletePage(ctx context.Context, id uuid.UUID) error
	ClonePageToLocale(ctx context.Context, req ClonePageRequest) (*Page, error)
	// SaveTree creates the page, or replaces an existing one, together with
	// its whole section tree in one write. It reports whether it created.
	SaveTree(ctx context.Context, req SaveTreeRequest) (*Page, bool, error)

	AddSection(ctx context.Context, req AddSectionRequest) (*Section, error)
	ListSections(ctx context.Context, pageID uuid.UUID) ([]*Section, error)
	DeleteSection(ctx context.Context, id uuid.UUID) error
	ReorderSections(ctx context.Context, pageID uuid.UUID, orderedIDs []uuid.UUID) ([]*Section, error)

	AddField(ctx context.Context, req AddFieldRequest) (*Field, error)
	ListFields(ctx context.Context, sectionID uuid.UUID) ([]*Field, error)
	UpdateFieldValue(ctx context.Context, id uuid.UUID, value string) (*Field, error)
	UpdateFields(ctx context.Context, sectionID uuid.UUID, values map[string]string) ([]*Field, error)
	DeleteField(ctx context.Context, id uuid.UUID) error
	ReorderFields(ctx context.Context, sectionID uuid.UUID, orderedIDs []uuid.UUID) ([]*Field, error)
}

// ProjectLookup resolves the project a page belongs to.
type ProjectLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*projects.Project, error)
}

// ReferenceCleaner removes records that point at a page. SQL repositories
// cascade inside PageRepository.Delete and do not need one.
type ReferenceCleaner interface {
	DeleteByPage(ctx context.Context, pageID uuid.UUID) error
}

// ReferenceGuard vets a page locale change against the records linking to
// the page. A guard returns an error when the change would leave a reference
// pointing across locales.
type ReferenceGuard interface {
	CheckPageLocale(ctx context.Context, pageID uuid.UUID, locale string) error
}

// Meta carries the SEO attributes of a page.
type Meta struct {
	Title       string
	Description string
	Slug        string
	Indexable   *bool
}

// CreatePageRequest captures the data required to create a page.
type CreatePageRequest struct {
	ID          *uuid.UUID
	ProjectID   uuid.UUID
	Slug        string
	Locale      string
	Path        string
	Title       string
	Order       int
	IsPublished bool
	Meta        Meta
}

// UpdatePageRequest carries mutable page attributes. Nil leaves a value unchanged.
type UpdatePageRequest struct {
	ID              uuid.UUID
	Slug            *string
	Locale          *string
	Path            *string
	Title           *string
	Order           *int
	IsPublished     *bool
	MetaTitle       *string
	MetaDescription *string
	MetaSlug        *string
	Indexable       *bool
}

// ClonePageRequest copies a page and its content tree into another locale.
type ClonePageRequest struct {
	PageID       uuid.UUID
	TargetLocale string
	Path         string
	Title        string
}

// FieldInput is a key/value pair supplied when creating sections.
type FieldInput struct {
	ID    *uuid.UUID
	Key   string
	Value string
}

// AddSectionRequest appends a section, or inserts it at Position when set.
type AddSectionRequest struct {
	ID           *uuid.UUID
	PageID       uuid.UUID
	Identifier   string
	InternalName string
	Position     *int
	Fields       []FieldInput
}

// TreeSection is one section of a page written with SaveTree.
type TreeSection struct {
	ID           *uuid.UUID
	Identifier   string
	InternalName string
	Fields       []FieldInput
}

// SaveTreeRequest carries a page and its sections in display order. When
// Page.ID names an existing page its project, slug, and locale are kept and
// everything else is overwritten.
type SaveTreeRequest struct {
	Page     CreatePageRequest
	Sections []TreeSection
}

// AddFieldRequest appends a field to a section.
type AddFieldRequest struct {
	ID        *uuid.UUID
	SectionID uuid.UUID
	Key       string
	Value     string
}

// IDGenerator produces record identifiers.
type IDGenerator func() uuid.UUID

// ServiceOption configures the page service.
type ServiceOption func(*service)

// WithClock overrides the internal time source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides the ID generator.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger wires the logger used for editing events.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithReferenceCleaners registers cleaners that run after a page is deleted.
func WithReferenceCleaners(cleaners ...ReferenceCleaner) ServiceOption {
	return func(s *service) {
		for _, cleaner := range cleaners {
			if cleaner != nil {
				s.cleaners = append(s.cleaners, cleaner)
			}
		}
	}
}

// WithReferenceGuards registers guards consulted before a page changes locale.
func WithReferenceGuards(guards ...ReferenceGuard) ServiceOption {
	return func(s *service) {
		for _, guard := range guards {
			if guard != nil {
				s.guards = append(s.guards, guard)
			}
		}
	}
}

type service struct {
	pages    PageRepository
	sections SectionRepository
	fields   FieldRepository
	projects ProjectLookup
	now      func() time.Time
	id       IDGenerator
	logger   interfaces.Logger
	cleaners []ReferenceCleaner
	guards   []ReferenceGuard
}

// NewService constructs the page editing service.
func NewService(pages PageRepository, sections SectionRepository, fields FieldRepository, lookup ProjectLookup, opts ...ServiceOption) Service {
	s := &service{
		pages:    pages,
		sections: sections,
		fields:   fields,
		projects: lookup,
		now:      time.Now,
		id:       uuid.New,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	record, err := s.newPage(ctx, req, s.now().UTC())
	if err != nil {
		return nil, err
	}
	created, err := s.pages.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	logging.WithPageContext(s.logger, created.ProjectID.String(), created.Slug, created.Locale).
		Info("page.created", "page_id", created.ID)
	return created, nil
}

// newPage validates req and builds the record without storing it.
func (s *service) newPage(ctx context.Context, req CreatePageRequest, now time.Time) (*Page, error) {
	if req.ProjectID == uuid.Nil {
		return nil, ErrProjectRequired
	}
	slug, err := normalizePageSlug(req.Slug)
	if err != nil {
		return nil, err
	}
	locale, err := normalizeLocale(req.Locale)
	if err != nil {
		return nil, err
	}
	if _, err := s.projects.GetByID(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	existing, err := s.pages.FindByKey(ctx, req.ProjectID, slug, locale)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrPageExists
	}

	id := s.id()
	if req.ID != nil && *req.ID != uuid.Nil {
		id = *req.ID
	}
	indexable := true
	if req.Meta.Indexable != nil {
		indexable = *req.Meta.Indexable
	}
	return &Page{
		ID:              id,
		ProjectID:       req.ProjectID,
		Slug:            slug,
		Locale:          locale,
		Path:            strings.TrimSpace(req.Path),
		Title:           strings.TrimSpace(req.Title),
		Order:           req.Order,
		IsPublished:     req.IsPublished,
		MetaTitle:       strings.TrimSpace(req.Meta.Title),
		MetaDescription: strings.TrimSpace(req.Meta.Description),
		MetaSlug:        strings.TrimSpace(req.Meta.Slug),
		Indexable:       indexable,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (s *service) GetPage(ctx context.Context, id uuid.UUID) (*Page, error) {
	if id == uuid.Nil {
		return nil, ErrPageIDRequired
	}
	return s.pages.GetByID(ctx, id)
}

func (s *service) ListPages(ctx context.Context, projectID uuid.UUID, locale string) ([]*Page, error) {
	if projectID == uuid.Nil {
		return nil, ErrProjectRequired
	}
	if strings.TrimSpace(locale) != "" {
		normalized, err := normalizeLocale(locale)
		if err != nil {
			return nil, err
		}
		locale = normalized
	}
	return s.pages.ListByProject(ctx, projectID, locale)
}

func (s *service) UpdatePage(ctx context.Context, req UpdatePageRequest) (*Page, error) {
	if req.ID == uuid.Nil {
		return nil, ErrPageIDRequired
	}
	page, err := s.pages.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	keyChanged, localeChanged := false, false
	if req.Slug != nil {
		slug, err := normalizePageSlug(*req.Slug)
		if err != nil {
			return nil, err
		}
		keyChanged = keyChanged || slug != page.Slug
		page.Slug = slug
	}
	if req.Locale != nil {
		locale, err := normalizeLocale(*req.Locale)
		if err != nil {
			return nil, err
		}
		localeChanged = locale != page.Locale
		keyChanged = keyChanged || localeChanged
		page.Locale = locale
	}
	if localeChanged {
		for _, guard := range s.guards {
			if err := guard.CheckPageLocale(ctx, page.ID, page.Locale); err != nil {
				return nil, err
			}
		}
	}
	if keyChanged {
		existing, err := s.pages.FindByKey(ctx, page.ProjectID, page.Slug, page.Locale)
		if err != nil {
			return nil, err
		}
		for _, candidate := range existing {
			if candidate.ID != page.ID {
				return nil, ErrPageExists
			}
		}
	}

	if req.Path != nil {
		page.Path = strings.TrimSpace(*req.Path)
	}
	if req.Title != nil {
		page.Title = strings.TrimSpace(*req.Title)
	}
	if req.Order != nil {
		page.Order = *req.Order
	}
	if req.IsPublished != nil {
		page.IsPublished = *req.IsPublished
	}
	if req.MetaTitle != nil {
		page.MetaTitle = strings.TrimSpace(*req.MetaTitle)
	}
	if req.MetaDescription != nil {
		page.MetaDescription = strings.TrimSpace(*req.MetaDescription)
	}
	if req.MetaSlug != nil {
		page.MetaSlug = strings.TrimSpace(*req.MetaSlug)
	}
	if req.Indexable != nil {
		page.Indexable = *req.Indexable
	}
	page.UpdatedAt = s.now().UTC()

	return s.pages.Update(ctx, page)
}

func (s *service) DeletePage(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrPageIDRequired
	}
	if err := s.pages.Delete(ctx, id); err != nil {
		return err
	}
	for _, cleaner := range s.cleaners {
		if err := cleaner.DeleteByPage(ctx, id); err != nil {
			return err
		}
	}
	s.logger.Info("page.deleted", "page_id", id)
	return nil
}

func (s *service) ClonePageToLocale(ctx context.Context, req ClonePageRequest) (*Page, error) {
	if req.PageID == uuid.Nil {
		return nil, ErrPageIDRequired
	}
	locale, err := normalizeLocale(req.TargetLocale)
	if err != nil {
		return nil, err
	}
	source, err := s.pages.GetByID(ctx, req.PageID)
	if err != nil {
		return nil, err
	}
	if source.Locale == locale {
		return nil, ErrCloneSameLocale
	}

	sections, err := s.sections.ListByPage(ctx, source.ID)
	if err != nil {
		return nil, err
	}
	sectionIDs := make([]uuid.UUID, len(sections))
	for i, section := range sections {
		sectionIDs[i] = section.ID
	}
	fieldsBySection, err := s.fields.ListBySections(ctx, sectionIDs)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	clone := &Page{
		ID:              s.id(),
		ProjectID:       source.ProjectID,
		Slug:            source.Slug,
		Locale:          locale,
		Path:            source.Path,
		Title:           source.Title,
		Order:           source.Order,
		IsPublished:     false,
		MetaTitle:       source.MetaTitle,
		MetaDescription: source.MetaDescription,
		MetaSlug:        source.MetaSlug,
		Indexable:       source.Indexable,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if path := strings.TrimSpace(req.Path); path != "" {
		clone.Path = path
	}
	if title := strings.TrimSpace(req.Title); title != "" {
		clone.Title = title
	}

	var (
		clonedSections []*Section
		clonedFields   []*Field
	)
	for i, section := range sections {
		copied := &Section{
			ID:           s.id(),
			PageID:       clone.ID,
			Identifier:   section.Identifier,
			InternalName: section.InternalName,
			Order:        i,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		clonedSections = append(clonedSections, copied)
		for j, field := range fieldsBySection[section.ID] {
			clonedFields = append(clonedFields, &Field{
				ID:        s.id(),
				SectionID: copied.ID,
				Key:       field.Key,
				Value:     field.Value,
				Order:     j,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
	}

	if err := s.pages.CreateTree(ctx, clone, clonedSections, clonedFields); err != nil {
		return nil, err
	}
	logging.WithPageContext(s.logger, clone.ProjectID.String(), clone.Slug, clone.Locale).
		Info("page.cloned", "source_page_id", source.ID, "page_id", clone.ID, "sections", len(clonedSections))
	return s.pages.GetByID(ctx, clone.ID)
}

func (s *service) AddSection(ctx context.Context, req AddSectionRequest) (*Section, error) {
	if req.PageID == uuid.Nil {
		return nil, ErrPageIDRequired
	}
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		return nil, ErrIdentifierRequired
	}
	position := -1
	if req.Position != nil {
		if *req.Position < 0 {
			return nil, ErrPositionInvalid
		}
		position = *req.Position
	}

	if err := validateFieldInputs(req.Fields); err != nil {
		return nil, err
	}

	id := s.id()
	if req.ID != nil && *req.ID != uuid.Nil {
		id = *req.ID
	}
	now := s.now().UTC()
	section := &Section{
		ID:           id,
		PageID:       req.PageID,
		Identifier:   identifier,
		InternalName: strings.TrimSpace(req.InternalName),
		Order:        position,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	fields := make([]*Field, 0, len(req.Fields))
	for i, input := range req.Fields {
		fieldID := s.id()
		if input.ID != nil && *input.ID != uuid.Nil {
			fieldID = *input.ID
		}
		fields = append(fields, &Field{
			ID:        fieldID,
			SectionID: id,
			Key:       strings.TrimSpace(input.Key),
			Value:     input.Value,
			Order:     i,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	created, err := s.sections.InsertAt(ctx, section, fields)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("section.added", "page_id", created.PageID, "section_id", created.ID, "order", created.Order)
	return created, nil
}

func (s *service) ListSections(ctx context.Context, pageID uuid.UUID) ([]*Section, error) {
	if pageID == uuid.Nil {
		return nil, ErrPageIDRequired
	}
	return s.sections.ListByPage(ctx, pageID)
}

func (s *service) DeleteSection(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrSectionIDRequired
	}
	return s.sections.Delete(ctx, id)
}

func (s *service) ReorderSections(ctx context.Context, pageID uuid.UUID, orderedIDs []uuid.UUID) ([]*Section, error) {
	if pageID == uuid.Nil {
		return nil, ErrPageIDRequired
	}
	if err := s.sections.Reorder(ctx, pageID, orderedIDs, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.sections.ListByPage(ctx, pageID)
}

func (s *service) AddField(ctx context.Context, req AddFieldRequest) (*Field, error) {
	if req.SectionID == uuid.Nil {
		return nil, ErrSectionIDRequired
	}
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return nil, ErrFieldKeyRequired
	}
	siblings, err := s.fields.ListBySection(ctx, req.SectionID)
	if err != nil {
		return nil, err
	}

	id := s.id()
	if req.ID != nil && *req.ID != uuid.Nil {
		id = *req.ID
	}
	now := s.now().UTC()
	return s.fields.Create(ctx, &Field{
		ID:        id,
		SectionID: req.SectionID,
		Key:       key,
		Value:     req.Value,
		Order:     len(siblings),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *service) ListFields(ctx context.Context, sectionID uuid.UUID) ([]*Field, error) {
	if sectionID == uuid.Nil {
		return nil, ErrSectionIDRequired
	}
	return s.fields.ListBySection(ctx, sectionID)
}

func (s *service) UpdateFieldValue(ctx context.Context, id uuid.UUID, value string) (*Field, error) {
	if id == uuid.Nil {
		return nil, ErrFieldIDRequired
	}
	return s.fields.UpdateValue(ctx, id, value, s.now().UTC())
}

func (s *service) UpdateFields(ctx context.Context, sectionID uuid.UUID, values map[string]string) ([]*Field, error) {
	if sectionID == uuid.Nil {
		return nil, ErrSectionIDRequired
	}
	if len(values) == 0 {
		return nil, ErrNoFieldValues
	}
	updated, err := s.fields.UpdateValues(ctx, sectionID, values, s.now().UTC())
	if err != nil {
		var unknown *UnknownFieldKeysError
		if errors.As(err, &unknown) {
			s.logger.Warn("fields.update_rejected", "section_id", sectionID, "unknown_keys", unknown.Keys)
		}
		return nil, err
	}
	return updated, nil
}

func (s *service) DeleteField(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrFieldIDRequired
	}
	return s.fields.Delete(ctx, id)
}

func (s *service) ReorderFields(ctx context.Context, sectionID uuid.UUID, orderedIDs []uuid.UUID) ([]*Field, error) {
	if sectionID == uuid.Nil {
		return nil, ErrSectionIDRequired
	}
	if err := s.fields.Reorder(ctx, sectionID, orderedIDs, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.fields.ListBySection(ctx, sectionID)
}

func (s *service) SaveTree(ctx context.Context, req SaveTreeRequest) (*Page, bool, error) {
	for _, section := range req.Sections {
		if strings.TrimSpace(section.Identifier) == "" {
			return nil, false, ErrIdentifierRequired
		}
		if err := validateFieldInputs(section.Fields); err != nil {
			return nil, false, err
		}
	}

	var existing *Page
	if req.Page.ID != nil && *req.Page.ID != uuid.Nil {
		found, err := s.pages.GetByID(ctx, *req.Page.ID)
		switch {
		case err == nil:
			existing = found
		case !IsNotFound(err):
			return nil, false, err
		}
	}

	now := s.now().UTC()
	var page *Page
	if existing == nil {
		record, err := s.newPage(ctx, req.Page, now)
		if err != nil {
			return nil, false, err
		}
		page = record
	} else {
		page = existing
		page.Path = strings.TrimSpace(req.Page.Path)
		page.Title = strings.TrimSpace(req.Page.Title)
		page.Order = req.Page.Order
		page.IsPublished = req.Page.IsPublished
		page.MetaTitle = strings.TrimSpace(req.Page.Meta.Title)
		page.MetaDescription = strings.TrimSpace(req.Page.Meta.Description)
		page.MetaSlug = strings.TrimSpace(req.Page.Meta.Slug)
		if req.Page.Meta.Indexable != nil {
			page.Indexable = *req.Page.Meta.Indexable
		}
		page.UpdatedAt = now
	}

	sections := make([]*Section, 0, len(req.Sections))
	var fields []*Field
	for i, input := range req.Sections {
		sectionID := s.id()
		if input.ID != nil && *input.ID != uuid.Nil {
			sectionID = *input.ID
		}
		sections = append(sections, &Section{
			ID:           sectionID,
			PageID:       page.ID,
			Identifier:   strings.TrimSpace(input.Identifier),
			InternalName: strings.TrimSpace(input.InternalName),
			Order:        i,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		for j, field := range input.Fields {
			fieldID := s.id()
			if field.ID != nil && *field.ID != uuid.Nil {
				fieldID = *field.ID
			}
			fields = append(fields, &Field{
				ID:        fieldID,
				SectionID: sectionID,
				Key:       strings.TrimSpace(field.Key),
				Value:     field.Value,
				Order:     j,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
	}

	logger := logging.WithPageContext(s.logger, page.ProjectID.String(), page.Slug, page.Locale)
	if existing == nil {
		if err := s.pages.CreateTree(ctx, page, sections, fields); err != nil {
			return nil, false, err
		}
		logger.Info("page.tree_created", "page_id", page.ID, "sections", len(sections))
	} else {
		if err := s.pages.ReplaceTree(ctx, page, sections, fields); err != nil {
			return nil, false, err
		}
		logger.Info("page.tree_replaced", "page_id", page.ID, "sections", len(sections))
	}

	saved, err := s.pages.GetByID(ctx, page.ID)
	if err != nil {
		return nil, false, err
	}
	return saved, existing == nil, nil
}

func validateFieldInputs(inputs []FieldInput) error {
	seen := make(map[string]struct{}, len(inputs))
	for _, input := range inputs {
		key := strings.TrimSpace(input.Key)
		if key == "" {
			return ErrFieldKeyRequired
		}
		if _, dup := seen[key]; dup {
			return ErrDuplicateFieldKey
		}
		seen[key] = struct{}{}
	}
	return nil
}

func normalizePageSlug(value string) (string, error) {
	slug, err := projects.NormalizeSlug(value)
	switch {
	case errors.Is(err, projects.ErrSlugRequired):
		return "", ErrSlugRequired
	case err != nil:
		return "", ErrSlugInvalid
	}
	return slug, nil
}

func normalizeLocale(value string) (string, error) {
	if !runtimeconfig.ValidLocale(value) {
		return "", ErrLocaleInvalid
	}
	return runtimeconfig.NormalizeLocale(value), nil
}

// NormalizeLocale lower-cases a locale code and validates its shape.
func NormalizeLocale(value string) (string, error) {
	return normalizeLocale(value)
}
