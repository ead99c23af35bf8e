package pages

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

// CacheNamespaces lists the go-repository-cache namespaces of the content
// tree. A write to any level of the tree can change what a cached read of
// another level returns, so every write clears all of them.
func CacheNamespaces() []string {
	return []string{
		storage.CacheNamespace[Page](),
		storage.CacheNamespace[Section](),
		storage.CacheNamespace[Field](),
	}
}

// BunRepositories groups the SQL-backed page, section, and field repositories.
type BunRepositories struct {
	Pages    *BunPageRepository
	Sections *BunSectionRepository
	Fields   *BunFieldRepository
}

// NewBunRepositories creates the content tree repositories without caching.
func NewBunRepositories(db *bun.DB) *BunRepositories {
	return NewBunRepositoriesWithCache(db, nil, nil)
}

// NewBunRepositoriesWithCache creates the content tree repositories and wraps
// their reads with go-repository-cache when both cache arguments are set.
// dependents names the namespaces of other cached repositories whose rows a
// page delete removes.
func NewBunRepositoriesWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer, dependents ...string) *BunRepositories {
	pageRepo := NewPageRepository(db)
	sectionRepo := NewSectionRepository(db)
	fieldRepo := NewFieldRepository(db)

	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		pageRepo = repositorycache.New(pageRepo, cacheService, serializer)
		sectionRepo = repositorycache.New(sectionRepo, cacheService, serializer)
		fieldRepo = repositorycache.New(fieldRepo, cacheService, serializer)
		svc = cacheService
	}
	invalidator := storage.NewCacheInvalidator(svc, CacheNamespaces()...)

	return &BunRepositories{
		Pages:    &BunPageRepository{db: db, repo: pageRepo, cache: invalidator, cascade: invalidator.With(dependents...)},
		Sections: &BunSectionRepository{db: db, repo: sectionRepo, cache: invalidator},
		Fields:   &BunFieldRepository{db: db, repo: fieldRepo, cache: invalidator},
	}
}

// BunPageRepository implements PageRepository.
type BunPageRepository struct {
	db      *bun.DB
	repo    repository.Repository[*Page]
	cache   storage.CacheInvalidator
	cascade storage.CacheInvalidator
}

func (r *BunPageRepository) Create(ctx context.Context, page *Page) (*Page, error) {
	taken, err := r.db.NewSelect().
		Model((*Page)(nil)).
		Where("?TableAlias.project_id = ?", page.ProjectID).
		Where("?TableAlias.slug = ?", page.Slug).
		Where("?TableAlias.locale = ?", page.Locale).
		Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("page key lookup: %w", err)
	}
	if taken {
		return nil, ErrPageExists
	}

	record, err := r.repo.Create(ctx, page)
	if err != nil {
		return nil, mapRepositoryError(err, "page", page.Slug)
	}
	return record, r.cache.Invalidate(ctx)
}

func (r *BunPageRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "page", id.String())
	}
	return record, nil
}

func (r *BunPageRepository) FindByKey(ctx context.Context, projectID uuid.UUID, slug, locale string) ([]*Page, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.project_id = ?", projectID).
				Where("?TableAlias.slug = ?", slug).
				Where("?TableAlias.locale = ?", locale).
				OrderExpr("?TableAlias.created_at ASC, ?TableAlias.id ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page", slug)
	}
	return records, nil
}

func (r *BunPageRepository) ListByProject(ctx context.Context, projectID uuid.UUID, locale string) ([]*Page, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.Where("?TableAlias.project_id = ?", projectID)
			if locale != "" {
				q = q.Where("?TableAlias.locale = ?", locale)
			}
			return q
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page", projectID.String())
	}
	SortPages(records)
	return records, nil
}

func (r *BunPageRepository) Update(ctx context.Context, page *Page) (*Page, error) {
	taken, err := r.db.NewSelect().
		Model((*Page)(nil)).
		Where("?TableAlias.project_id = ?", page.ProjectID).
		Where("?TableAlias.slug = ?", page.Slug).
		Where("?TableAlias.locale = ?", page.Locale).
		Where("?TableAlias.id <> ?", page.ID).
		Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("page key lookup: %w", err)
	}
	if taken {
		return nil, ErrPageExists
	}

	record, err := r.repo.Update(ctx, page,
		repository.UpdateByID(page.ID.String()),
		repository.UpdateColumns(
			"slug",
			"locale",
			"path",
			"title",
			"sort_order",
			"is_published",
			"meta_title",
			"meta_description",
			"meta_slug",
			"indexable",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page", page.ID.String())
	}
	return record, r.cache.Invalidate(ctx)
}

// Delete removes the page, its sections, its fields, and the navigation items
// linking to it in one transaction.
func (r *BunPageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			TableExpr("fields").
			Where("section_id IN (SELECT s.id FROM sections AS s WHERE s.page_id = ?)", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete fields: %w", err)
		}
		if _, err := tx.NewDelete().TableExpr("sections").Where("page_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete sections: %w", err)
		}
		if _, err := tx.NewDelete().TableExpr("navigation_items").Where("page_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete navigation items: %w", err)
		}
		res, err := tx.NewDelete().Model((*Page)(nil)).Where("?TableAlias.id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete page: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return &NotFoundError{Resource: "page", Key: id.String()}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.cascade.Invalidate(ctx)
}

func (r *BunPageRepository) CreateTree(ctx context.Context, page *Page, sections []*Section, fields []*Field) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := tx.NewSelect().
			Model((*Page)(nil)).
			Where("?TableAlias.project_id = ?", page.ProjectID).
			Where("?TableAlias.slug = ?", page.Slug).
			Where("?TableAlias.locale = ?", page.Locale).
			Exists(ctx)
		if err != nil {
			return err
		}
		if taken {
			return ErrPageExists
		}
		if _, err := tx.NewInsert().Model(page).Exec(ctx); err != nil {
			return fmt.Errorf("insert page: %w", err)
		}
		if len(sections) > 0 {
			if _, err := tx.NewInsert().Model(&sections).Exec(ctx); err != nil {
				return fmt.Errorf("insert sections: %w", err)
			}
		}
		if len(fields) > 0 {
			if _, err := tx.NewInsert().Model(&fields).Exec(ctx); err != nil {
				return fmt.Errorf("insert fields: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.cache.Invalidate(ctx)
}

func (r *BunPageRepository) ReplaceTree(ctx context.Context, page *Page, sections []*Section, fields []*Field) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := tx.NewSelect().
			Model((*Page)(nil)).
			Where("?TableAlias.project_id = ?", page.ProjectID).
			Where("?TableAlias.slug = ?", page.Slug).
			Where("?TableAlias.locale = ?", page.Locale).
			Where("?TableAlias.id <> ?", page.ID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if taken {
			return ErrPageExists
		}

		res, err := tx.NewUpdate().
			Model(page).
			Column(
				"slug",
				"locale",
				"path",
				"title",
				"sort_order",
				"is_published",
				"meta_title",
				"meta_description",
				"meta_slug",
				"indexable",
				"updated_at",
			).
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update page: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return &NotFoundError{Resource: "page", Key: page.ID.String()}
		}

		if _, err := tx.NewDelete().
			TableExpr("fields").
			Where("section_id IN (SELECT s.id FROM sections AS s WHERE s.page_id = ?)", page.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete fields: %w", err)
		}
		if _, err := tx.NewDelete().TableExpr("sections").Where("page_id = ?", page.ID).Exec(ctx); err != nil {
			return fmt.Errorf("delete sections: %w", err)
		}
		if len(sections) > 0 {
			if _, err := tx.NewInsert().Model(&sections).Exec(ctx); err != nil {
				return fmt.Errorf("insert sections: %w", err)
			}
		}
		if len(fields) > 0 {
			if _, err := tx.NewInsert().Model(&fields).Exec(ctx); err != nil {
				return fmt.Errorf("insert fields: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.cache.Invalidate(ctx)
}

// BunSectionRepository implements SectionRepository.
type BunSectionRepository struct {
	db    *bun.DB
	repo  repository.Repository[*Section]
	cache storage.CacheInvalidator
}

func (r *BunSectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*Section, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "section", id.String())
	}
	return record, nil
}

func (r *BunSectionRepository) ListByPage(ctx context.Context, pageID uuid.UUID) ([]*Section, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.page_id = ?", pageID)
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "section", pageID.String())
	}
	SortSections(records)
	return records, nil
}

func (r *BunSectionRepository) InsertAt(ctx context.Context, section *Section, fields []*Field) (*Section, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*Page)(nil)).Where("?TableAlias.id = ?", section.PageID).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return &NotFoundError{Resource: "page", Key: section.PageID.String()}
		}

		count, err := tx.NewSelect().Model((*Section)(nil)).Where("?TableAlias.page_id = ?", section.PageID).Count(ctx)
		if err != nil {
			return err
		}
		section.Order = clampPosition(section.Order, count)

		if _, err := tx.NewUpdate().
			Model((*Section)(nil)).
			Set("sort_order = sort_order + 1").
			Where("?TableAlias.page_id = ?", section.PageID).
			Where("?TableAlias.sort_order >= ?", section.Order).
			Exec(ctx); err != nil {
			return fmt.Errorf("shift sections: %w", err)
		}
		if _, err := tx.NewInsert().Model(section).Exec(ctx); err != nil {
			return fmt.Errorf("insert section: %w", err)
		}
		if len(fields) > 0 {
			if _, err := tx.NewInsert().Model(&fields).Exec(ctx); err != nil {
				return fmt.Errorf("insert fields: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := r.cache.Invalidate(ctx); err != nil {
		return nil, err
	}
	return section, nil
}

func (r *BunSectionRepository) Update(ctx context.Context, section *Section) (*Section, error) {
	record, err := r.repo.Update(ctx, section,
		repository.UpdateByID(section.ID.String()),
		repository.UpdateColumns("identifier", "internal_name", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "section", section.ID.String())
	}
	return record, r.cache.Invalidate(ctx)
}

func (r *BunSectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := &Section{}
		if err := tx.NewSelect().Model(existing).Where("?TableAlias.id = ?", id).Scan(ctx); err != nil {
			return mapScanError(err, "section", id.String())
		}
		if _, err := tx.NewDelete().TableExpr("fields").Where("section_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete fields: %w", err)
		}
		if _, err := tx.NewDelete().Model((*Section)(nil)).Where("?TableAlias.id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete section: %w", err)
		}
		_, err := tx.NewUpdate().
			Model((*Section)(nil)).
			Set("sort_order = sort_order - 1").
			Where("?TableAlias.page_id = ?", existing.PageID).
			Where("?TableAlias.sort_order > ?", existing.Order).
			Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}
	return r.cache.Invalidate(ctx)
}

func (r *BunSectionRepository) Reorder(ctx context.Context, pageID uuid.UUID, orderedIDs []uuid.UUID, at time.Time) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var current []uuid.UUID
		if err := tx.NewSelect().
			Model((*Section)(nil)).
			Column("id").
			Where("?TableAlias.page_id = ?", pageID).
			Scan(ctx, &current); err != nil {
			return err
		}
		if !sameMembers(current, orderedIDs) {
			return ErrReorderMismatch
		}
		for i, id := range orderedIDs {
			if _, err := tx.NewUpdate().
				Model((*Section)(nil)).
				Set("sort_order = ?", i).
				Set("updated_at = ?", at).
				Where("?TableAlias.id = ?", id).
				Exec(ctx); err != nil {
				return fmt.Errorf("reorder section %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.cache.Invalidate(ctx)
}

// BunFieldRepository implements FieldRepository.
type BunFieldRepository struct {
	db    *bun.DB
	repo  repository.Repository[*Field]
	cache storage.CacheInvalidator
}

func (r *BunFieldRepository) Create(ctx context.Context, field *Field) (*Field, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*Section)(nil)).Where("?TableAlias.id = ?", field.SectionID).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return &NotFoundError{Resource: "section", Key: field.SectionID.String()}
		}
		taken, err := tx.NewSelect().
			Model((*Field)(nil)).
			Where("?TableAlias.section_id = ?", field.SectionID).
			Where("?TableAlias.\"key\" = ?", field.Key).
			Exists(ctx)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateFieldKey
		}
		_, err = tx.NewInsert().Model(field).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return field, r.cache.Invalidate(ctx)
}

func (r *BunFieldRepository) GetByID(ctx context.Context, id uuid.UUID) (*Field, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "field", id.String())
	}
	return record, nil
}

func (r *BunFieldRepository) ListBySection(ctx context.Context, sectionID uuid.UUID) ([]*Field, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.section_id = ?", sectionID)
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "field", sectionID.String())
	}
	SortFields(records)
	return records, nil
}

func (r *BunFieldRepository) ListBySections(ctx context.Context, sectionIDs []uuid.UUID) (map[uuid.UUID][]*Field, error) {
	out := make(map[uuid.UUID][]*Field, len(sectionIDs))
	if len(sectionIDs) == 0 {
		return out, nil
	}
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.section_id IN (?)", bun.In(sectionIDs))
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "field", "sections")
	}
	SortFields(records)
	for _, record := range records {
		out[record.SectionID] = append(out[record.SectionID], record)
	}
	return out, nil
}

func (r *BunFieldRepository) UpdateValue(ctx context.Context, id uuid.UUID, value string, at time.Time) (*Field, error) {
	res, err := r.db.NewUpdate().
		Model((*Field)(nil)).
		Set("value = ?", value).
		Set("updated_at = ?", at).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update field value: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, &NotFoundError{Resource: "field", Key: id.String()}
	}
	if err := r.cache.Invalidate(ctx); err != nil {
		return nil, err
	}
	record := &Field{}
	if err := r.db.NewSelect().Model(record).Where("?TableAlias.id = ?", id).Scan(ctx); err != nil {
		return nil, mapScanError(err, "field", id.String())
	}
	return record, nil
}

func (r *BunFieldRepository) UpdateValues(ctx context.Context, sectionID uuid.UUID, values map[string]string, at time.Time) ([]*Field, error) {
	var updated []*Field
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*Section)(nil)).Where("?TableAlias.id = ?", sectionID).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return &NotFoundError{Resource: "section", Key: sectionID.String()}
		}

		var current []*Field
		if err := tx.NewSelect().Model(&current).Where("?TableAlias.section_id = ?", sectionID).Scan(ctx); err != nil {
			return err
		}
		known := make(map[string]struct{}, len(current))
		for _, field := range current {
			known[field.Key] = struct{}{}
		}
		var unknown []string
		for key := range values {
			if _, ok := known[key]; !ok {
				unknown = append(unknown, key)
			}
		}
		if len(unknown) > 0 {
			return &UnknownFieldKeysError{Keys: unknown}
		}

		for _, field := range current {
			value, ok := values[field.Key]
			if !ok {
				continue
			}
			if _, err := tx.NewUpdate().
				Model((*Field)(nil)).
				Set("value = ?", value).
				Set("updated_at = ?", at).
				Where("?TableAlias.id = ?", field.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("update field %s: %w", field.Key, err)
			}
			field.Value = value
			field.UpdatedAt = at
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	SortFields(updated)
	return updated, r.cache.Invalidate(ctx)
}

func (r *BunFieldRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := &Field{}
		if err := tx.NewSelect().Model(existing).Where("?TableAlias.id = ?", id).Scan(ctx); err != nil {
			return mapScanError(err, "field", id.String())
		}
		if _, err := tx.NewDelete().Model((*Field)(nil)).Where("?TableAlias.id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete field: %w", err)
		}
		_, err := tx.NewUpdate().
			Model((*Field)(nil)).
			Set("sort_order = sort_order - 1").
			Where("?TableAlias.section_id = ?", existing.SectionID).
			Where("?TableAlias.sort_order > ?", existing.Order).
			Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}
	return r.cache.Invalidate(ctx)
}

func (r *BunFieldRepository) Reorder(ctx context.Context, sectionID uuid.UUID, orderedIDs []uuid.UUID, at time.Time) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var current []uuid.UUID
		if err := tx.NewSelect().
			Model((*Field)(nil)).
			Column("id").
			Where("?TableAlias.section_id = ?", sectionID).
			Scan(ctx, &current); err != nil {
			return err
		}
		if !sameMembers(current, orderedIDs) {
			return ErrReorderMismatch
		}
		for i, id := range orderedIDs {
			if _, err := tx.NewUpdate().
				Model((*Field)(nil)).
				Set("sort_order = ?", i).
				Set("updated_at = ?", at).
				Where("?TableAlias.id = ?", id).
				Exec(ctx); err != nil {
				return fmt.Errorf("reorder field %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.cache.Invalidate(ctx)
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

func mapScanError(err error, resource, key string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return err
}
