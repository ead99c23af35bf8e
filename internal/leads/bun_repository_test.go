package leads_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/leads"
	"github.com/goliatone/go-sites/pkg/testsupport"
)

func TestBunRepositoryCreateAndList(t *testing.T) {
	db := testsupport.NewBunDB(t, (*leads.QuoteRequest)(nil))
	repo := leads.NewBunRepository(db)
	ctx := context.Background()
	project := uuid.New()
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		id := uuid.New()
		_, err := repo.Create(ctx, &leads.QuoteRequest{
			ID:        id,
			ProjectID: project,
			Reference: "Q-" + id.String()[:8],
			Name:      "Visitor",
			Email:     "visitor@example.com",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		ids = append(ids, id)
	}

	records, total, err := repo.ListByProject(ctx, project, 2, 0)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if total != 3 || len(records) != 2 {
		t.Fatalf("expected 2 of 3, got %d of %d", len(records), total)
	}
	if records[0].ID != ids[2] {
		t.Fatalf("expected newest first, got %s", records[0].ID)
	}

	fetched, err := repo.GetByID(ctx, ids[0])
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Email != "visitor@example.com" {
		t.Fatalf("unexpected record %+v", fetched)
	}
	if _, err := repo.GetByReference(ctx, "Q-MISSING"); !leads.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
