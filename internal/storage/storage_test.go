package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/internal/projects"
	"github.com/goliatone/go-sites/internal/runtimeconfig"
	"github.com/goliatone/go-sites/internal/storage"
)

func sqliteConfig(t *testing.T) runtimeconfig.StorageConfig {
	t.Helper()
	return runtimeconfig.StorageConfig{
		Driver: runtimeconfig.StorageSQLite,
		DSN:    "file:" + filepath.Join(t.TempDir(), "sites.db") + "?_foreign_keys=on",
	}
}

func TestMigrateIsIdempotentAndBacksRepositories(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)
	migrations := os.DirFS(filepath.Join("..", ".."))

	if err := storage.Migrate(ctx, cfg, migrations, nil); err != nil {
		t.Fatalf("first Migrate: %v", err)
	}
	if err := storage.Migrate(ctx, cfg, migrations, nil); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	db, err := storage.Open(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	projectRepo := projects.NewBunProjectRepository(db)
	project, err := projectRepo.Create(ctx, &projects.Project{
		ID:               uuid.New(),
		Slug:             "acme",
		Name:             "Acme",
		HeaderBackground: projects.HeaderSolid,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	repos := pages.NewBunRepositories(db)
	page := &pages.Page{ID: uuid.New(), ProjectID: project.ID, Slug: "about", Locale: "en", CreatedAt: now, UpdatedAt: now}
	if _, err := repos.Pages.Create(ctx, page); err != nil {
		t.Fatalf("create page: %v", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO pages (id, project_id, slug, locale) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), project.ID.String(), "about", "en")
	if err == nil {
		t.Fatal("expected unique index to reject duplicate (project, slug, locale)")
	}
}

func TestMigrationCreatesSingleHeadquartersIndex(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)
	if err := storage.Migrate(ctx, cfg, os.DirFS(filepath.Join("..", "..")), nil); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	db, err := storage.Open(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	insert := `INSERT INTO projects (id, slug, name, is_headquarters) VALUES (?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, insert, uuid.NewString(), "hq", "HQ", 1); err != nil {
		t.Fatalf("first headquarters: %v", err)
	}
	if _, err := db.ExecContext(ctx, insert, uuid.NewString(), "tenant", "Tenant", 0); err != nil {
		t.Fatalf("regular project: %v", err)
	}
	if _, err := db.ExecContext(ctx, insert, uuid.NewString(), "hq-2", "HQ 2", 1); err == nil {
		t.Fatal("expected partial unique index to reject a second headquarters")
	}
}

func TestOpenRejectsMemoryDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), runtimeconfig.StorageConfig{Driver: "memory", DSN: "x"}, nil)
	if !errors.Is(err, storage.ErrMemoryDriver) {
		t.Fatalf("expected ErrMemoryDriver, got %v", err)
	}
}
