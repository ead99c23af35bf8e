package projectscmd

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/commands"
	"github.com/goliatone/go-sites/internal/projects"
)

func newProjectService(t *testing.T) (projects.Service, *projects.Project, *projects.Project) {
	t.Helper()
	tick := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := projects.NewService(projects.NewMemoryProjectRepository(), projects.WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))
	ctx := context.Background()
	hq, err := svc.Create(ctx, projects.CreateProjectRequest{Slug: "hq", Name: "HQ", IsHeadquarters: true})
	if err != nil {
		t.Fatalf("create hq: %v", err)
	}
	tenant, err := svc.Create(ctx, projects.CreateProjectRequest{Slug: "tenant", Name: "Tenant"})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return svc, hq, tenant
}

func TestTransferOwnershipHandlerAssignsAndReleases(t *testing.T) {
	svc, _, tenant := newProjectService(t)
	handler := NewTransferOwnershipHandler(svc, commands.CommandLogger(nil, "projects"))
	ctx := context.Background()
	owner := uuid.New()

	if err := handler.Execute(ctx, TransferOwnershipCommand{ProjectID: tenant.ID, OwnerID: &owner}); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	got, _ := svc.Get(ctx, tenant.ID)
	if id, ok := got.Owner.Owner(); !ok || id != owner {
		t.Fatalf("expected owner %s, got %v", owner, got.Owner)
	}

	if err := handler.Execute(ctx, TransferOwnershipCommand{ProjectID: tenant.ID}); err != nil {
		t.Fatalf("release: %v", err)
	}
	got, _ = svc.Get(ctx, tenant.ID)
	if got.Owner.IsOwned() {
		t.Fatalf("expected released project, got %v", got.Owner)
	}
}

func TestTransferOwnershipHandlerRejectsNilOwner(t *testing.T) {
	svc, _, tenant := newProjectService(t)
	handler := NewTransferOwnershipHandler(svc, nil)
	nilOwner := uuid.Nil

	err := handler.Execute(context.Background(), TransferOwnershipCommand{ProjectID: tenant.ID, OwnerID: &nilOwner})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetHeadquartersHandlerMovesFlag(t *testing.T) {
	svc, hq, tenant := newProjectService(t)
	handler := NewSetHeadquartersHandler(svc, nil)
	ctx := context.Background()

	if err := handler.Execute(ctx, SetHeadquartersCommand{ProjectID: tenant.ID}); err != nil {
		t.Fatalf("set headquarters: %v", err)
	}
	current, err := svc.Headquarters(ctx)
	if err != nil {
		t.Fatalf("Headquarters: %v", err)
	}
	if current.ID != tenant.ID {
		t.Fatalf("expected tenant to be headquarters, got %s", current.Slug)
	}
	previous, _ := svc.Get(ctx, hq.ID)
	if previous.IsHeadquarters {
		t.Fatal("expected previous headquarters flag cleared")
	}

	err = handler.Execute(ctx, SetHeadquartersCommand{ProjectID: uuid.New()})
	if !projects.IsNotFound(err) {
		t.Fatalf("expected not found through wrapper, got %v", err)
	}
}
