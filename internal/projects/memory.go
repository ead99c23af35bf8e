package projects

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryProjectRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Project
	bySlug map[string]uuid.UUID
}

// NewMemoryProjectRepository constructs an in-memory project repository.
func NewMemoryProjectRepository() ProjectRepository {
	return &memoryProjectRepository{
		byID:   make(map[uuid.UUID]*Project),
		bySlug: make(map[string]uuid.UUID),
	}
}

func (m *memoryProjectRepository) Create(_ context.Context, project *Project) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bySlug[project.Slug]; exists {
		return nil, ErrSlugExists
	}
	cloned := cloneProject(project)
	m.byID[cloned.ID] = cloned
	m.bySlug[cloned.Slug] = cloned.ID
	return cloneProject(cloned), nil
}

func (m *memoryProjectRepository) GetByID(_ context.Context, id uuid.UUID) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "project", Key: id.String()}
	}
	return cloneProject(record), nil
}

func (m *memoryProjectRepository) GetBySlug(_ context.Context, slug string) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.bySlug[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "project", Key: slug}
	}
	return cloneProject(m.byID[id]), nil
}

func (m *memoryProjectRepository) GetHeadquarters(_ context.Context) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *Project
	for _, record := range m.sortedLocked() {
		if record.IsHeadquarters {
			found = record
			break
		}
	}
	if found == nil {
		return nil, &NotFoundError{Resource: "project", Key: "headquarters"}
	}
	return cloneProject(found), nil
}

func (m *memoryProjectRepository) List(_ context.Context) ([]*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sorted := m.sortedLocked()
	out := make([]*Project, 0, len(sorted))
	for _, record := range sorted {
		out = append(out, cloneProject(record))
	}
	return out, nil
}

func (m *memoryProjectRepository) Update(_ context.Context, project *Project) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[project.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "project", Key: project.ID.String()}
	}
	if project.Slug != existing.Slug {
		if _, taken := m.bySlug[project.Slug]; taken {
			return nil, ErrSlugExists
		}
		delete(m.bySlug, existing.Slug)
		m.bySlug[project.Slug] = project.ID
	}
	cloned := cloneProject(project)
	m.byID[cloned.ID] = cloned
	return cloneProject(cloned), nil
}

func (m *memoryProjectRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "project", Key: id.String()}
	}
	delete(m.byID, id)
	delete(m.bySlug, existing.Slug)
	return nil
}

func (m *memoryProjectRepository) TransferOwnership(_ context.Context, id uuid.UUID, owner Ownership, at time.Time) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "project", Key: id.String()}
	}
	record.Owner = owner
	record.UpdatedAt = at
	return cloneProject(record), nil
}

func (m *memoryProjectRepository) SetHeadquarters(_ context.Context, id uuid.UUID, at time.Time) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "project", Key: id.String()}
	}
	for otherID, record := range m.byID {
		if otherID != id && record.IsHeadquarters {
			record.IsHeadquarters = false
			record.UpdatedAt = at
		}
	}
	target.IsHeadquarters = true
	target.UpdatedAt = at
	return cloneProject(target), nil
}

func (m *memoryProjectRepository) sortedLocked() []*Project {
	records := make([]*Project, 0, len(m.byID))
	for _, record := range m.byID {
		records = append(records, record)
	}
	slices.SortFunc(records, func(a, b *Project) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return records
}

func cloneProject(src *Project) *Project {
	if src == nil {
		return nil
	}
	cloned := *src
	return &cloned
}
