package navigation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/navigation"
	"github.com/goliatone/go-sites/pkg/testsupport"
)

func TestBunRepositoryListAndReorder(t *testing.T) {
	db := testsupport.NewBunDB(t, (*navigation.Item)(nil))
	repo := navigation.NewBunRepository(db)
	ctx := context.Background()
	projectID := uuid.New()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i, label := range []string{"Home", "About", "Contact"} {
		url := "/" + label
		item, err := repo.Create(ctx, &navigation.Item{
			ID:        uuid.New(),
			ProjectID: projectID,
			Label:     label,
			Locale:    "en",
			Location:  navigation.LocationHeader,
			Order:     i,
			URL:       &url,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, item.ID)
	}
	pageID := uuid.New()
	if _, err := repo.Create(ctx, &navigation.Item{
		ID: uuid.New(), ProjectID: projectID, Label: "Início", Locale: "pt",
		Location: navigation.LocationHeader, PageID: &pageID, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("Create pt: %v", err)
	}

	items, err := repo.List(ctx, projectID, navigation.LocationHeader, "en")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 || items[0].Label != "Home" {
		t.Fatalf("unexpected items %+v", items)
	}
	if items[0].PageID != nil {
		t.Fatal("expected NULL page id to scan as nil")
	}

	if err := repo.Reorder(ctx, projectID, navigation.LocationHeader, "en", []uuid.UUID{ids[2], ids[1], ids[0]}, now); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	items, _ = repo.List(ctx, projectID, navigation.LocationHeader, "en")
	if items[0].Label != "Contact" || items[2].Label != "Home" {
		t.Fatalf("unexpected order after reorder: %s, %s", items[0].Label, items[2].Label)
	}

	if err := repo.Reorder(ctx, projectID, navigation.LocationHeader, "en", ids[:2], now); !errors.Is(err, navigation.ErrReorderMismatch) {
		t.Fatalf("expected ErrReorderMismatch, got %v", err)
	}

	pt, _ := repo.List(ctx, projectID, navigation.LocationHeader, "pt")
	if len(pt) != 1 || pt[0].PageID == nil || *pt[0].PageID != pageID {
		t.Fatalf("unexpected pt items %+v", pt)
	}

	if err := repo.Delete(ctx, ids[0]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, ids[0]); !navigation.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func newCachedRepository(t *testing.T) *navigation.BunRepository {
	t.Helper()
	db := testsupport.NewBunDB(t, (*navigation.Item)(nil))
	cacheService, err := repocache.NewCacheService(repocache.DefaultConfig())
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}
	return navigation.NewBunRepositoryWithCache(db, cacheService, repocache.NewDefaultKeySerializer())
}

func TestCachedBunRepositorySeesReorderAndDelete(t *testing.T) {
	repo := newCachedRepository(t)
	ctx := context.Background()
	projectID := uuid.New()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i, label := range []string{"A", "B"} {
		url := "/" + label
		item, err := repo.Create(ctx, &navigation.Item{
			ID: uuid.New(), ProjectID: projectID, Label: label, Locale: "en",
			Location: navigation.LocationFooter, Order: i, URL: &url, CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, item.ID)
	}

	labelsOf := func() []string {
		t.Helper()
		items, err := repo.List(ctx, projectID, navigation.LocationFooter, "en")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.Label)
		}
		return out
	}

	if got := labelsOf(); len(got) != 2 || got[0] != "A" {
		t.Fatalf("unexpected initial menu %v", got)
	}
	if _, err := repo.GetByID(ctx, ids[0]); err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if err := repo.Reorder(ctx, projectID, navigation.LocationFooter, "en", []uuid.UUID{ids[1], ids[0]}, now); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if got := labelsOf(); len(got) != 2 || got[0] != "B" || got[1] != "A" {
		t.Fatalf("expected reordered menu [B A], got %v", got)
	}

	if err := repo.Delete(ctx, ids[0]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := labelsOf(); len(got) != 1 || got[0] != "B" {
		t.Fatalf("expected [B] after delete, got %v", got)
	}
	if _, err := repo.GetByID(ctx, ids[0]); !navigation.IsNotFound(err) {
		t.Fatalf("expected deleted item to miss, got %v", err)
	}
}

func TestBunRepositoryCheckPageLocale(t *testing.T) {
	db := testsupport.NewBunDB(t, (*navigation.Item)(nil))
	repo := navigation.NewBunRepository(db)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pageID := uuid.New()

	if _, err := repo.Create(ctx, &navigation.Item{
		ID: uuid.New(), ProjectID: uuid.New(), Label: "About", Locale: "en",
		Location: navigation.LocationHeader, PageID: &pageID, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.CheckPageLocale(ctx, pageID, "en"); err != nil {
		t.Fatalf("expected same locale to pass, got %v", err)
	}
	err := repo.CheckPageLocale(ctx, pageID, "pt")
	var crossLocale *navigation.CrossLocaleReferenceError
	if !errors.As(err, &crossLocale) {
		t.Fatalf("expected CrossLocaleReferenceError, got %v", err)
	}
	if crossLocale.ItemLocale != "en" || crossLocale.PageLocale != "pt" {
		t.Fatalf("unexpected error detail %+v", crossLocale)
	}
	if err := repo.CheckPageLocale(ctx, uuid.New(), "pt"); err != nil {
		t.Fatalf("expected unreferenced page to pass, got %v", err)
	}
}
