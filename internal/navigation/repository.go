package navigation

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

// Repository persists navigation items.
type Repository interface {
	Create(ctx context.Context, item *Item) (*Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	// List returns the items of one menu ordered by order, then creation.
	List(ctx context.Context, projectID uuid.UUID, location Location, locale string) ([]*Item, error)
	Update(ctx context.Context, item *Item) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Reorder assigns dense orders 0..n-1 following orderedIDs atomically.
	Reorder(ctx context.Context, projectID uuid.UUID, location Location, locale string, orderedIDs []uuid.UUID, at time.Time) error
}

// NotFoundError is returned when a navigation item lookup misses.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("navigation item %q not found", e.Key)
}

// SortItems orders items by order with creation then id as tie-breaks.
func SortItems(items []*Item) {
	slices.SortStableFunc(items, func(a, b *Item) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}

// NewItemRepository creates a go-repository-bun repository for navigation items.
func NewItemRepository(db *bun.DB) repository.Repository[*Item] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Item]{
		NewRecord: func() *Item { return &Item{} },
		GetID: func(i *Item) uuid.UUID {
			return i.ID
		},
		SetID: func(i *Item, id uuid.UUID) {
			i.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(i *Item) string {
			return i.ID.String()
		},
	})
}
