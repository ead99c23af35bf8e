package projects_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sites/internal/projects"
	"github.com/goliatone/go-sites/pkg/testsupport"
)

func newBunRepository(t *testing.T) (*projects.BunProjectRepository, *bun.DB) {
	t.Helper()
	db := testsupport.NewBunDB(t, (*projects.Project)(nil))
	testsupport.ExecAll(t, db,
		`CREATE TABLE pages (id TEXT PRIMARY KEY, project_id TEXT)`,
		`CREATE TABLE sections (id TEXT PRIMARY KEY, page_id TEXT)`,
		`CREATE TABLE fields (id TEXT PRIMARY KEY, section_id TEXT)`,
		`CREATE TABLE navigation_items (id TEXT PRIMARY KEY, project_id TEXT)`,
		`CREATE TABLE quote_requests (id TEXT PRIMARY KEY, project_id TEXT)`,
	)
	return projects.NewBunProjectRepository(db), db
}

func countRows(t *testing.T, db *bun.DB, table string) int {
	t.Helper()
	n, err := db.NewSelect().TableExpr(table).Count(context.Background())
	if err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestBunProjectRepositoryOwnershipRoundTrip(t *testing.T) {
	repo, _ := newBunRepository(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	created, err := repo.Create(ctx, &projects.Project{
		ID:               uuid.New(),
		Slug:             "acme",
		Name:             "Acme",
		HeaderBackground: projects.HeaderSolid,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	fetched, err := repo.GetBySlug(ctx, "acme")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if fetched.Owner.IsOwned() {
		t.Fatal("expected NULL owner to scan as unowned")
	}

	user := uuid.New()
	owned, err := repo.TransferOwnership(ctx, created.ID, projects.Owned(user), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("TransferOwnership: %v", err)
	}
	if got, ok := owned.Owner.Owner(); !ok || got != user {
		t.Fatalf("expected owner %s, got %v", user, owned.Owner)
	}

	if _, err := repo.TransferOwnership(ctx, uuid.New(), projects.Unowned(), now); !projects.IsNotFound(err) {
		t.Fatalf("expected not found for unknown project, got %v", err)
	}
}

func TestBunProjectRepositorySetHeadquartersSwitchesFlag(t *testing.T) {
	repo, _ := newBunRepository(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := repo.Create(ctx, &projects.Project{ID: uuid.New(), Slug: "hq", Name: "HQ", IsHeadquarters: true, HeaderBackground: projects.HeaderSolid, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := repo.Create(ctx, &projects.Project{ID: uuid.New(), Slug: "tenant", Name: "Tenant", HeaderBackground: projects.HeaderSolid, CreatedAt: now.Add(time.Minute), UpdatedAt: now})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	if _, err := repo.SetHeadquarters(ctx, second.ID, now.Add(time.Hour)); err != nil {
		t.Fatalf("SetHeadquarters: %v", err)
	}

	hq, err := repo.GetHeadquarters(ctx)
	if err != nil {
		t.Fatalf("GetHeadquarters: %v", err)
	}
	if hq.ID != second.ID {
		t.Fatalf("expected %s as headquarters, got %s", second.ID, hq.ID)
	}
	old, err := repo.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if old.IsHeadquarters {
		t.Fatal("expected previous headquarters to be cleared")
	}
}

func TestBunProjectRepositoryDeleteCascades(t *testing.T) {
	repo, db := newBunRepository(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	project, err := repo.Create(ctx, &projects.Project{ID: uuid.New(), Slug: "acme", Name: "Acme", HeaderBackground: projects.HeaderSolid, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	other := uuid.New()
	pageID := uuid.NewString()
	sectionID := uuid.NewString()

	testsupport.ExecAll(t, db,
		`INSERT INTO pages (id, project_id) VALUES ('`+pageID+`', '`+project.ID.String()+`')`,
		`INSERT INTO pages (id, project_id) VALUES ('`+uuid.NewString()+`', '`+other.String()+`')`,
		`INSERT INTO sections (id, page_id) VALUES ('`+sectionID+`', '`+pageID+`')`,
		`INSERT INTO fields (id, section_id) VALUES ('`+uuid.NewString()+`', '`+sectionID+`')`,
		`INSERT INTO navigation_items (id, project_id) VALUES ('`+uuid.NewString()+`', '`+project.ID.String()+`')`,
		`INSERT INTO quote_requests (id, project_id) VALUES ('`+uuid.NewString()+`', '`+project.ID.String()+`')`,
	)

	if err := repo.Delete(ctx, project.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	for table, want := range map[string]int{"pages": 1, "sections": 0, "fields": 0, "navigation_items": 0, "quote_requests": 0, "projects": 0} {
		if got := countRows(t, db, table); got != want {
			t.Fatalf("expected %d rows in %s, got %d", want, table, got)
		}
	}
	if err := repo.Delete(ctx, project.ID); !projects.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
