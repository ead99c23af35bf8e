package navigation

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sites/internal/storage"
)

// CacheNamespace is the go-repository-cache namespace of navigation items.
func CacheNamespace() string {
	return storage.CacheNamespace[Item]()
}

// BunRepository implements Repository with optional caching.
type BunRepository struct {
	db    *bun.DB
	repo  repository.Repository[*Item]
	cache storage.CacheInvalidator
}

// NewBunRepository creates a navigation repository without caching.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache creates a navigation repository with caching services.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewItemRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	return &BunRepository{db: db, repo: base, cache: storage.NewCacheInvalidator(svc, CacheNamespace())}
}

func (r *BunRepository) Create(ctx context.Context, item *Item) (*Item, error) {
	record, err := r.repo.Create(ctx, item)
	if err != nil {
		return nil, mapRepositoryError(err, item.ID.String())
	}
	return record, r.InvalidateCache(ctx)
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunRepository) List(ctx context.Context, projectID uuid.UUID, location Location, locale string) ([]*Item, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.project_id = ?", projectID).
				Where("?TableAlias.location = ?", location).
				Where("?TableAlias.locale = ?", locale)
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, projectID.String())
	}
	SortItems(records)
	return records, nil
}

func (r *BunRepository) Update(ctx context.Context, item *Item) (*Item, error) {
	record, err := r.repo.Update(ctx, item,
		repository.UpdateByID(item.ID.String()),
		repository.UpdateColumns("label", "locale", "location", "sort_order", "url", "page_id", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, item.ID.String())
	}
	return record, r.InvalidateCache(ctx)
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().Model((*Item)(nil)).Where("?TableAlias.id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete navigation item: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return &NotFoundError{Key: id.String()}
	}
	return r.InvalidateCache(ctx)
}

func (r *BunRepository) Reorder(ctx context.Context, projectID uuid.UUID, location Location, locale string, orderedIDs []uuid.UUID, at time.Time) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var current []*Item
		if err := tx.NewSelect().
			Model(&current).
			Where("?TableAlias.project_id = ?", projectID).
			Where("?TableAlias.location = ?", location).
			Where("?TableAlias.locale = ?", locale).
			Scan(ctx); err != nil {
			return err
		}
		if !sameMembers(current, orderedIDs) {
			return ErrReorderMismatch
		}
		for i, id := range orderedIDs {
			if _, err := tx.NewUpdate().
				Model((*Item)(nil)).
				Set("sort_order = ?", i).
				Set("updated_at = ?", at).
				Where("?TableAlias.id = ?", id).
				Exec(ctx); err != nil {
				return fmt.Errorf("reorder navigation item %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.InvalidateCache(ctx)
}

// CheckPageLocale rejects moving a page to locale while items of another
// locale still link to it.
func (r *BunRepository) CheckPageLocale(ctx context.Context, pageID uuid.UUID, locale string) error {
	var conflicting []*Item
	if err := r.db.NewSelect().
		Model(&conflicting).
		Where("?TableAlias.page_id = ?", pageID).
		Where("?TableAlias.locale <> ?", locale).
		OrderExpr("?TableAlias.created_at ASC, ?TableAlias.id ASC").
		Limit(1).
		Scan(ctx); err != nil {
		return fmt.Errorf("navigation reference lookup: %w", err)
	}
	if len(conflicting) > 0 {
		return &CrossLocaleReferenceError{ItemLocale: conflicting[0].Locale, PageLocale: locale, PageID: pageID}
	}
	return nil
}

func (r *BunRepository) InvalidateCache(ctx context.Context) error {
	return r.cache.Invalidate(ctx)
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("navigation repository error: %w", err)
}
