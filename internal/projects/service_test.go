package projects_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/projects"
)

func newTestService(opts ...projects.ServiceOption) projects.Service {
	tick := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	base := []projects.ServiceOption{projects.WithClock(clock)}
	return projects.NewService(projects.NewMemoryProjectRepository(), append(base, opts...)...)
}

func TestServiceCreateNormalizesSlugAndDefaults(t *testing.T) {
	svc := newTestService()

	project, err := svc.Create(context.Background(), projects.CreateProjectRequest{
		Slug: "  Acme Plumbing ",
		Name: "Acme Plumbing",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if project.Slug != "acme-plumbing" {
		t.Fatalf("expected normalized slug, got %q", project.Slug)
	}
	if project.HeaderBackground != projects.HeaderSolid {
		t.Fatalf("expected solid header by default, got %q", project.HeaderBackground)
	}
	if project.Owner.IsOwned() {
		t.Fatal("expected zero ownership to be unowned")
	}
}

func TestServiceCreateRejectsDuplicateSlug(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, projects.CreateProjectRequest{Slug: "acme", Name: "Acme"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, projects.CreateProjectRequest{Slug: "ACME", Name: "Acme 2"})
	if !errors.Is(err, projects.ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got %v", err)
	}
}

func TestServiceCreateValidatesInput(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		req  projects.CreateProjectRequest
		want error
	}{
		{"missing slug", projects.CreateProjectRequest{Name: "x"}, projects.ErrSlugRequired},
		{"missing name", projects.CreateProjectRequest{Slug: "x"}, projects.ErrNameRequired},
		{"bad header", projects.CreateProjectRequest{Slug: "x", Name: "x", HeaderBackground: "video"}, projects.ErrHeaderBackgroundInvalid},
		{"bad color", projects.CreateProjectRequest{Slug: "x", Name: "x", PrimaryColor: "blue"}, projects.ErrColorInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestServiceHeadquartersIsUnique(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	hq, err := svc.Create(ctx, projects.CreateProjectRequest{Slug: "platform", Name: "Platform", IsHeadquarters: true})
	if err != nil {
		t.Fatalf("create hq: %v", err)
	}
	if _, err := svc.Create(ctx, projects.CreateProjectRequest{Slug: "other", Name: "Other", IsHeadquarters: true}); !errors.Is(err, projects.ErrHeadquartersExists) {
		t.Fatalf("expected ErrHeadquartersExists, got %v", err)
	}

	other, err := svc.Create(ctx, projects.CreateProjectRequest{Slug: "other", Name: "Other"})
	if err != nil {
		t.Fatalf("create other: %v", err)
	}
	if _, err := svc.SetHeadquarters(ctx, other.ID); err != nil {
		t.Fatalf("SetHeadquarters: %v", err)
	}

	current, err := svc.Headquarters(ctx)
	if err != nil {
		t.Fatalf("Headquarters: %v", err)
	}
	if current.ID != other.ID {
		t.Fatalf("expected %s to be headquarters, got %s", other.ID, current.ID)
	}
	previous, err := svc.Get(ctx, hq.ID)
	if err != nil {
		t.Fatalf("Get previous hq: %v", err)
	}
	if previous.IsHeadquarters {
		t.Fatal("expected previous headquarters flag to be cleared")
	}
}

func TestServiceTransferOwnership(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	user := uuid.New()

	project, err := svc.Create(ctx, projects.CreateProjectRequest{Slug: "acme", Name: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	owned, err := svc.TransferOwnership(ctx, projects.TransferOwnershipRequest{ProjectID: project.ID, Owner: projects.Owned(user)})
	if err != nil {
		t.Fatalf("TransferOwnership: %v", err)
	}
	if got, ok := owned.Owner.Owner(); !ok || got != user {
		t.Fatalf("expected owner %s, got %v", user, owned.Owner)
	}

	released, err := svc.TransferOwnership(ctx, projects.TransferOwnershipRequest{ProjectID: project.ID, Owner: projects.Unowned()})
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if released.Owner.IsOwned() {
		t.Fatal("expected project to be unowned")
	}

	_, err = svc.TransferOwnership(ctx, projects.TransferOwnershipRequest{ProjectID: uuid.New(), Owner: projects.Owned(user)})
	if !projects.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type recordingCleaner struct {
	calls []uuid.UUID
}

func (r *recordingCleaner) DeleteByProject(_ context.Context, id uuid.UUID) error {
	r.calls = append(r.calls, id)
	return nil
}

func TestServiceDeleteRunsDependents(t *testing.T) {
	cleaner := &recordingCleaner{}
	svc := newTestService(projects.WithDependents(cleaner))
	ctx := context.Background()

	project, err := svc.Create(ctx, projects.CreateProjectRequest{Slug: "acme", Name: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, project.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(cleaner.calls) != 1 || cleaner.calls[0] != project.ID {
		t.Fatalf("expected cleaner to run for %s, got %v", project.ID, cleaner.calls)
	}
	if _, err := svc.Get(ctx, project.ID); !projects.IsNotFound(err) {
		t.Fatalf("expected project to be gone, got %v", err)
	}
}

func TestOwnershipJSON(t *testing.T) {
	user := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	raw, err := json.Marshal(projects.Owned(user))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"kind":"owned","user_id":"11111111-2222-3333-4444-555555555555"}` {
		t.Fatalf("unexpected json %s", raw)
	}

	raw, _ = json.Marshal(projects.Unowned())
	if string(raw) != `{"kind":"unowned"}` {
		t.Fatalf("unexpected json %s", raw)
	}

	var decoded projects.Ownership
	if err := json.Unmarshal([]byte(`{"kind":"owned"}`), &decoded); !errors.Is(err, projects.ErrOwnerRequired) {
		t.Fatalf("expected ErrOwnerRequired, got %v", err)
	}
}
