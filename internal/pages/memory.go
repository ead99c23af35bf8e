package pages

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepositories groups the in-memory page, section, and field
// repositories. They share one store so cascades and batch writes are atomic.
type MemoryRepositories struct {
	Pages    PageRepository
	Sections SectionRepository
	Fields   FieldRepository

	store *memoryStore
}

type memoryStore struct {
	mu       sync.RWMutex
	pages    map[uuid.UUID]*Page
	sections map[uuid.UUID]*Section
	fields   map[uuid.UUID]*Field
}

// NewMemoryRepositories constructs empty in-memory repositories.
func NewMemoryRepositories() *MemoryRepositories {
	store := &memoryStore{
		pages:    make(map[uuid.UUID]*Page),
		sections: make(map[uuid.UUID]*Section),
		fields:   make(map[uuid.UUID]*Field),
	}
	return &MemoryRepositories{
		Pages:    &memoryPageRepository{store: store},
		Sections: &memorySectionRepository{store: store},
		Fields:   &memoryFieldRepository{store: store},
		store:    store,
	}
}

// DeleteByProject removes every page of a project with its sections and fields.
func (m *MemoryRepositories) DeleteByProject(_ context.Context, projectID uuid.UUID) error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, page := range s.pages {
		if page.ProjectID == projectID {
			s.deletePageLocked(id)
		}
	}
	return nil
}

func (s *memoryStore) deletePageLocked(id uuid.UUID) {
	for sectionID, section := range s.sections {
		if section.PageID == id {
			s.deleteSectionLocked(sectionID)
		}
	}
	delete(s.pages, id)
}

func (s *memoryStore) deleteSectionLocked(id uuid.UUID) {
	for fieldID, field := range s.fields {
		if field.SectionID == id {
			delete(s.fields, fieldID)
		}
	}
	delete(s.sections, id)
}

func (s *memoryStore) pageKeyTakenLocked(projectID uuid.UUID, slug, locale string, except uuid.UUID) bool {
	for id, page := range s.pages {
		if id != except && page.ProjectID == projectID && page.Slug == slug && page.Locale == locale {
			return true
		}
	}
	return false
}

func (s *memoryStore) sectionsOfLocked(pageID uuid.UUID) []*Section {
	out := []*Section{}
	for _, section := range s.sections {
		if section.PageID == pageID {
			out = append(out, section)
		}
	}
	SortSections(out)
	return out
}

func (s *memoryStore) fieldsOfLocked(sectionID uuid.UUID) []*Field {
	out := []*Field{}
	for _, field := range s.fields {
		if field.SectionID == sectionID {
			out = append(out, field)
		}
	}
	SortFields(out)
	return out
}

type memoryPageRepository struct {
	store *memoryStore
}

func (r *memoryPageRepository) Create(_ context.Context, page *Page) (*Page, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pageKeyTakenLocked(page.ProjectID, page.Slug, page.Locale, uuid.Nil) {
		return nil, ErrPageExists
	}
	cloned := clonePage(page)
	s.pages[cloned.ID] = cloned
	return clonePage(cloned), nil
}

func (r *memoryPageRepository) GetByID(_ context.Context, id uuid.UUID) (*Page, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.pages[id]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: id.String()}
	}
	return clonePage(record), nil
}

func (r *memoryPageRepository) FindByKey(_ context.Context, projectID uuid.UUID, slug, locale string) ([]*Page, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*Page{}
	for _, page := range s.pages {
		if page.ProjectID == projectID && page.Slug == slug && page.Locale == locale {
			out = append(out, clonePage(page))
		}
	}
	slices.SortFunc(out, func(a, b *Page) int {
		return compareInsertion(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return out, nil
}

func (r *memoryPageRepository) ListByProject(_ context.Context, projectID uuid.UUID, locale string) ([]*Page, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*Page{}
	for _, page := range s.pages {
		if page.ProjectID != projectID {
			continue
		}
		if locale != "" && page.Locale != locale {
			continue
		}
		out = append(out, clonePage(page))
	}
	SortPages(out)
	return out, nil
}

func (r *memoryPageRepository) Update(_ context.Context, page *Page) (*Page, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pages[page.ID]; !ok {
		return nil, &NotFoundError{Resource: "page", Key: page.ID.String()}
	}
	if s.pageKeyTakenLocked(page.ProjectID, page.Slug, page.Locale, page.ID) {
		return nil, ErrPageExists
	}
	cloned := clonePage(page)
	s.pages[cloned.ID] = cloned
	return clonePage(cloned), nil
}

func (r *memoryPageRepository) Delete(_ context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pages[id]; !ok {
		return &NotFoundError{Resource: "page", Key: id.String()}
	}
	s.deletePageLocked(id)
	return nil
}

func (r *memoryPageRepository) CreateTree(_ context.Context, page *Page, sections []*Section, fields []*Field) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pageKeyTakenLocked(page.ProjectID, page.Slug, page.Locale, uuid.Nil) {
		return ErrPageExists
	}
	s.pages[page.ID] = clonePage(page)
	for _, section := range sections {
		s.sections[section.ID] = cloneSection(section)
	}
	for _, field := range fields {
		s.fields[field.ID] = cloneField(field)
	}
	return nil
}

func (r *memoryPageRepository) ReplaceTree(_ context.Context, page *Page, sections []*Section, fields []*Field) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pages[page.ID]; !ok {
		return &NotFoundError{Resource: "page", Key: page.ID.String()}
	}
	if s.pageKeyTakenLocked(page.ProjectID, page.Slug, page.Locale, page.ID) {
		return ErrPageExists
	}
	for sectionID, section := range s.sections {
		if section.PageID == page.ID {
			s.deleteSectionLocked(sectionID)
		}
	}
	s.pages[page.ID] = clonePage(page)
	for _, section := range sections {
		s.sections[section.ID] = cloneSection(section)
	}
	for _, field := range fields {
		s.fields[field.ID] = cloneField(field)
	}
	return nil
}

type memorySectionRepository struct {
	store *memoryStore
}

func (r *memorySectionRepository) GetByID(_ context.Context, id uuid.UUID) (*Section, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.sections[id]
	if !ok {
		return nil, &NotFoundError{Resource: "section", Key: id.String()}
	}
	return cloneSection(record), nil
}

func (r *memorySectionRepository) ListByPage(_ context.Context, pageID uuid.UUID) ([]*Section, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	siblings := s.sectionsOfLocked(pageID)
	out := make([]*Section, 0, len(siblings))
	for _, section := range siblings {
		out = append(out, cloneSection(section))
	}
	return out, nil
}

func (r *memorySectionRepository) InsertAt(_ context.Context, section *Section, fields []*Field) (*Section, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pages[section.PageID]; !ok {
		return nil, &NotFoundError{Resource: "page", Key: section.PageID.String()}
	}
	siblings := s.sectionsOfLocked(section.PageID)
	cloned := cloneSection(section)
	cloned.Order = clampPosition(cloned.Order, len(siblings))
	for _, sibling := range siblings {
		if sibling.Order >= cloned.Order {
			sibling.Order++
		}
	}
	s.sections[cloned.ID] = cloned
	for _, field := range fields {
		s.fields[field.ID] = cloneField(field)
	}
	return cloneSection(cloned), nil
}

func (r *memorySectionRepository) Update(_ context.Context, section *Section) (*Section, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sections[section.ID]; !ok {
		return nil, &NotFoundError{Resource: "section", Key: section.ID.String()}
	}
	cloned := cloneSection(section)
	s.sections[cloned.ID] = cloned
	return cloneSection(cloned), nil
}

func (r *memorySectionRepository) Delete(_ context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sections[id]
	if !ok {
		return &NotFoundError{Resource: "section", Key: id.String()}
	}
	s.deleteSectionLocked(id)
	for _, sibling := range s.sectionsOfLocked(existing.PageID) {
		if sibling.Order > existing.Order {
			sibling.Order--
		}
	}
	return nil
}

func (r *memorySectionRepository) Reorder(_ context.Context, pageID uuid.UUID, orderedIDs []uuid.UUID, at time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	siblings := s.sectionsOfLocked(pageID)
	ids := make([]uuid.UUID, len(siblings))
	for i, section := range siblings {
		ids[i] = section.ID
	}
	if !sameMembers(ids, orderedIDs) {
		return ErrReorderMismatch
	}
	for i, id := range orderedIDs {
		section := s.sections[id]
		section.Order = i
		section.UpdatedAt = at
	}
	return nil
}

type memoryFieldRepository struct {
	store *memoryStore
}

func (r *memoryFieldRepository) Create(_ context.Context, field *Field) (*Field, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sections[field.SectionID]; !ok {
		return nil, &NotFoundError{Resource: "section", Key: field.SectionID.String()}
	}
	for _, existing := range s.fieldsOfLocked(field.SectionID) {
		if existing.Key == field.Key {
			return nil, ErrDuplicateFieldKey
		}
	}
	cloned := cloneField(field)
	s.fields[cloned.ID] = cloned
	return cloneField(cloned), nil
}

func (r *memoryFieldRepository) GetByID(_ context.Context, id uuid.UUID) (*Field, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.fields[id]
	if !ok {
		return nil, &NotFoundError{Resource: "field", Key: id.String()}
	}
	return cloneField(record), nil
}

func (r *memoryFieldRepository) ListBySection(_ context.Context, sectionID uuid.UUID) ([]*Field, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields := s.fieldsOfLocked(sectionID)
	out := make([]*Field, 0, len(fields))
	for _, field := range fields {
		out = append(out, cloneField(field))
	}
	return out, nil
}

func (r *memoryFieldRepository) ListBySections(_ context.Context, sectionIDs []uuid.UUID) (map[uuid.UUID][]*Field, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uuid.UUID][]*Field, len(sectionIDs))
	for _, sectionID := range sectionIDs {
		for _, field := range s.fieldsOfLocked(sectionID) {
			out[sectionID] = append(out[sectionID], cloneField(field))
		}
	}
	return out, nil
}

func (r *memoryFieldRepository) UpdateValue(_ context.Context, id uuid.UUID, value string, at time.Time) (*Field, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.fields[id]
	if !ok {
		return nil, &NotFoundError{Resource: "field", Key: id.String()}
	}
	record.Value = value
	record.UpdatedAt = at
	return cloneField(record), nil
}

func (r *memoryFieldRepository) UpdateValues(_ context.Context, sectionID uuid.UUID, values map[string]string, at time.Time) ([]*Field, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sections[sectionID]; !ok {
		return nil, &NotFoundError{Resource: "section", Key: sectionID.String()}
	}
	fields := s.fieldsOfLocked(sectionID)
	byKey := make(map[string]*Field, len(fields))
	for _, field := range fields {
		byKey[field.Key] = field
	}
	var unknown []string
	for key := range values {
		if _, ok := byKey[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		return nil, &UnknownFieldKeysError{Keys: unknown}
	}

	for key, value := range values {
		field := byKey[key]
		field.Value = value
		field.UpdatedAt = at
	}
	out := make([]*Field, 0, len(fields))
	for _, field := range fields {
		out = append(out, cloneField(field))
	}
	return out, nil
}

func (r *memoryFieldRepository) Delete(_ context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.fields[id]
	if !ok {
		return &NotFoundError{Resource: "field", Key: id.String()}
	}
	delete(s.fields, id)
	for _, sibling := range s.fieldsOfLocked(existing.SectionID) {
		if sibling.Order > existing.Order {
			sibling.Order--
		}
	}
	return nil
}

func (r *memoryFieldRepository) Reorder(_ context.Context, sectionID uuid.UUID, orderedIDs []uuid.UUID, at time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := s.fieldsOfLocked(sectionID)
	ids := make([]uuid.UUID, len(fields))
	for i, field := range fields {
		ids[i] = field.ID
	}
	if !sameMembers(ids, orderedIDs) {
		return ErrReorderMismatch
	}
	for i, id := range orderedIDs {
		field := s.fields[id]
		field.Order = i
		field.UpdatedAt = at
	}
	return nil
}

func clampPosition(position, length int) int {
	if position < 0 || position > length {
		return length
	}
	return position
}

func sameMembers(current, requested []uuid.UUID) bool {
	if len(current) != len(requested) {
		return false
	}
	seen := make(map[uuid.UUID]struct{}, len(requested))
	for _, id := range requested {
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
	}
	for _, id := range current {
		if _, ok := seen[id]; !ok {
			return false
		}
	}
	return true
}

func clonePage(src *Page) *Page {
	if src == nil {
		return nil
	}
	cloned := *src
	cloned.Sections = nil
	return &cloned
}

func cloneSection(src *Section) *Section {
	if src == nil {
		return nil
	}
	cloned := *src
	cloned.Fields = nil
	return &cloned
}

func cloneField(src *Field) *Field {
	if src == nil {
		return nil
	}
	cloned := *src
	return &cloned
}
