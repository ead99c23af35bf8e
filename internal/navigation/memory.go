package navigation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository stores navigation items in memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Item
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]*Item)}
}

func (m *MemoryRepository) Create(_ context.Context, item *Item) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cloned := cloneItem(item)
	m.items[cloned.ID] = cloned
	return cloneItem(cloned), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	return cloneItem(item), nil
}

func (m *MemoryRepository) List(_ context.Context, projectID uuid.UUID, location Location, locale string) ([]*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(projectID, location, locale, true), nil
}

func (m *MemoryRepository) listLocked(projectID uuid.UUID, location Location, locale string, clone bool) []*Item {
	out := []*Item{}
	for _, item := range m.items {
		if item.ProjectID != projectID || item.Location != location || item.Locale != locale {
			continue
		}
		if clone {
			out = append(out, cloneItem(item))
		} else {
			out = append(out, item)
		}
	}
	SortItems(out)
	return out
}

func (m *MemoryRepository) Update(_ context.Context, item *Item) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return nil, &NotFoundError{Key: item.ID.String()}
	}
	cloned := cloneItem(item)
	m.items[cloned.ID] = cloned
	return cloneItem(cloned), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return &NotFoundError{Key: id.String()}
	}
	delete(m.items, id)
	return nil
}

func (m *MemoryRepository) Reorder(_ context.Context, projectID uuid.UUID, location Location, locale string, orderedIDs []uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.listLocked(projectID, location, locale, false)
	if !sameMembers(current, orderedIDs) {
		return ErrReorderMismatch
	}
	for i, id := range orderedIDs {
		item := m.items[id]
		item.Order = i
		item.UpdatedAt = at
	}
	return nil
}

// DeleteByProject removes every item of a project.
func (m *MemoryRepository) DeleteByProject(_ context.Context, projectID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, item := range m.items {
		if item.ProjectID == projectID {
			delete(m.items, id)
		}
	}
	return nil
}

// DeleteByPage removes every item linking to a page.
func (m *MemoryRepository) DeleteByPage(_ context.Context, pageID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, item := range m.items {
		if item.PageID != nil && *item.PageID == pageID {
			delete(m.items, id)
		}
	}
	return nil
}

// CheckPageLocale rejects moving a page to locale while items of another
// locale still link to it.
func (m *MemoryRepository) CheckPageLocale(_ context.Context, pageID uuid.UUID, locale string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.PageID != nil && *item.PageID == pageID && item.Locale != locale {
			return &CrossLocaleReferenceError{ItemLocale: item.Locale, PageLocale: locale, PageID: pageID}
		}
	}
	return nil
}

func sameMembers(current []*Item, requested []uuid.UUID) bool {
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
	for _, item := range current {
		if _, ok := seen[item.ID]; !ok {
			return false
		}
	}
	return true
}

func cloneItem(src *Item) *Item {
	if src == nil {
		return nil
	}
	cloned := *src
	if src.URL != nil {
		url := *src.URL
		cloned.URL = &url
	}
	if src.PageID != nil {
		pageID := *src.PageID
		cloned.PageID = &pageID
	}
	return &cloned
}
