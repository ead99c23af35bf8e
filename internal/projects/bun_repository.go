package projects

import (
	"context"
	"database/sql"
	"errors"
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

// CacheNamespace is the go-repository-cache namespace of project records.
func CacheNamespace() string {
	return storage.CacheNamespace[Project]()
}

// BunProjectRepository implements ProjectRepository with optional caching.
type BunProjectRepository struct {
	db      *bun.DB
	repo    repository.Repository[*Project]
	cache   storage.CacheInvalidator
	cascade storage.CacheInvalidator
}

// NewBunProjectRepository creates a project repository without caching.
func NewBunProjectRepository(db *bun.DB) *BunProjectRepository {
	return NewBunProjectRepositoryWithCache(db, nil, nil)
}

// NewBunProjectRepositoryWithCache creates a project repository with caching
// services. dependents names the cache namespaces of the repositories whose
// rows a project delete cascades into.
func NewBunProjectRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer, dependents ...string) *BunProjectRepository {
	base := NewProjectRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	invalidator := storage.NewCacheInvalidator(svc, CacheNamespace())
	return &BunProjectRepository{
		db:      db,
		repo:    base,
		cache:   invalidator,
		cascade: invalidator.With(dependents...),
	}
}

func (r *BunProjectRepository) Create(ctx context.Context, project *Project) (*Project, error) {
	record, err := r.repo.Create(ctx, project)
	if err != nil {
		return nil, mapRepositoryError(err, "project", project.Slug)
	}
	return record, r.InvalidateCache(ctx)
}

func (r *BunProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "project", id.String())
	}
	return record, nil
}

func (r *BunProjectRepository) GetBySlug(ctx context.Context, slug string) (*Project, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "project", slug)
	}
	return record, nil
}

func (r *BunProjectRepository) GetHeadquarters(ctx context.Context) (*Project, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.is_headquarters = ?", true).
				OrderExpr("?TableAlias.created_at ASC, ?TableAlias.id ASC")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "project", "headquarters")
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "project", Key: "headquarters"}
	}
	return records[0], nil
}

func (r *BunProjectRepository) List(ctx context.Context) ([]*Project, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.created_at ASC, ?TableAlias.id ASC")
		}),
	)
	return records, err
}

func (r *BunProjectRepository) Update(ctx context.Context, project *Project) (*Project, error) {
	record, err := r.repo.Update(ctx, project)
	if err != nil {
		return nil, mapRepositoryError(err, "project", project.ID.String())
	}
	return record, r.InvalidateCache(ctx)
}

// Delete removes the project and everything it owns in one transaction.
func (r *BunProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		cascade := []struct {
			table string
			where string
		}{
			{"fields", "section_id IN (SELECT s.id FROM sections AS s JOIN pages AS p ON p.id = s.page_id WHERE p.project_id = ?)"},
			{"sections", "page_id IN (SELECT p.id FROM pages AS p WHERE p.project_id = ?)"},
			{"navigation_items", "project_id = ?"},
			{"pages", "project_id = ?"},
			{"quote_requests", "project_id = ?"},
		}
		for _, step := range cascade {
			if _, err := tx.NewDelete().TableExpr(step.table).Where(step.where, id).Exec(ctx); err != nil {
				return fmt.Errorf("delete %s: %w", step.table, err)
			}
		}

		res, err := tx.NewDelete().
			Model((*Project)(nil)).
			Where("?TableAlias.id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return &NotFoundError{Resource: "project", Key: id.String()}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.cascade.Invalidate(ctx)
}

func (r *BunProjectRepository) TransferOwnership(ctx context.Context, id uuid.UUID, owner Ownership, at time.Time) (*Project, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*Project)(nil)).
			Set("owner_id = ?", owner).
			Set("updated_at = ?", at).
			Where("?TableAlias.id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("transfer ownership: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return &NotFoundError{Resource: "project", Key: id.String()}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return r.selectByID(ctx, id)
}

func (r *BunProjectRepository) SetHeadquarters(ctx context.Context, id uuid.UUID, at time.Time) (*Project, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*Project)(nil)).
			Where("?TableAlias.id = ?", id).
			Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return &NotFoundError{Resource: "project", Key: id.String()}
		}

		if _, err := tx.NewUpdate().
			Model((*Project)(nil)).
			Set("is_headquarters = ?", false).
			Set("updated_at = ?", at).
			Where("?TableAlias.is_headquarters = ?", true).
			Where("?TableAlias.id <> ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("clear headquarters: %w", err)
		}

		_, err = tx.NewUpdate().
			Model((*Project)(nil)).
			Set("is_headquarters = ?", true).
			Set("updated_at = ?", at).
			Where("?TableAlias.id = ?", id).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return r.selectByID(ctx, id)
}

func (r *BunProjectRepository) InvalidateCache(ctx context.Context) error {
	return r.cache.Invalidate(ctx)
}

func (r *BunProjectRepository) selectByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	record := &Project{}
	err := r.db.NewSelect().Model(record).Where("?TableAlias.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "project", Key: id.String()}
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}

	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}

	return fmt.Errorf("%s repository error: %w", resource, err)
}
