package resolver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/internal/projects"
	"github.com/goliatone/go-sites/internal/resolver"
	"github.com/goliatone/go-sites/pkg/interfaces"
	"github.com/goliatone/go-sites/pkg/testsupport"
)

var (
	homePageID = uuid.MustParse("3f1c2a66-8d1e-4b47-9a55-0c6f4c1d2e01")
	baseTime   = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

type memoryFixture struct {
	projects projects.ProjectRepository
	content  *pages.MemoryRepositories
	project  *projects.Project
}

func newMemoryFixture(t *testing.T) memoryFixture {
	t.Helper()
	projectRepo := projects.NewMemoryProjectRepository()
	project, err := projectRepo.Create(context.Background(), &projects.Project{
		ID:               uuid.New(),
		Slug:             "acme",
		Name:             "Acme Plumbing",
		TemplateKey:      "service-pro",
		HeaderBackground: projects.HeaderSolid,
		CreatedAt:        baseTime,
		UpdatedAt:        baseTime,
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return memoryFixture{projects: projectRepo, content: pages.NewMemoryRepositories(), project: project}
}

func (f memoryFixture) resolver(opts ...resolver.Option) *resolver.Resolver {
	return resolver.New(f.content.Pages, f.content.Sections, f.content.Fields, f.projects, opts...)
}

type sectionSeed struct {
	identifier string
	name       string
	order      int
	fields     [][2]string
}

func (f memoryFixture) seedPage(t *testing.T, id uuid.UUID, slug, locale string, published bool, sections ...sectionSeed) *pages.Page {
	t.Helper()
	if id == uuid.Nil {
		id = uuid.New()
	}
	page := &pages.Page{
		ID:              id,
		ProjectID:       f.project.ID,
		Slug:            slug,
		Locale:          locale,
		Title:           "Home",
		Path:            "/",
		IsPublished:     published,
		MetaTitle:       "Acme Plumbing",
		MetaDescription: "Emergency plumbing in town",
		MetaSlug:        slug,
		Indexable:       true,
		CreatedAt:       baseTime,
		UpdatedAt:       baseTime,
	}
	var (
		sectionRecords []*pages.Section
		fieldRecords   []*pages.Field
	)
	for i, seed := range sections {
		section := &pages.Section{
			ID:           uuid.New(),
			PageID:       page.ID,
			Identifier:   seed.identifier,
			InternalName: seed.name,
			Order:        seed.order,
			CreatedAt:    baseTime.Add(time.Duration(i) * time.Second),
			UpdatedAt:    baseTime,
		}
		sectionRecords = append(sectionRecords, section)
		for j, kv := range seed.fields {
			fieldRecords = append(fieldRecords, &pages.Field{
				ID:        uuid.New(),
				SectionID: section.ID,
				Key:       kv[0],
				Value:     kv[1],
				Order:     j,
				CreatedAt: baseTime.Add(time.Duration(j) * time.Second),
				UpdatedAt: baseTime,
			})
		}
	}
	if err := f.content.Pages.CreateTree(context.Background(), page, sectionRecords, fieldRecords); err != nil {
		t.Fatalf("seed page %s/%s: %v", slug, locale, err)
	}
	return page
}

func TestResolvePageDirectMatchAndFallback(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()
	page := f.seedPage(t, uuid.Nil, "home", "en", true)
	r := f.resolver(resolver.WithDefaultLocale("en"))

	direct, err := r.ResolvePage(ctx, f.project.ID, "home", "en")
	if err != nil {
		t.Fatalf("ResolvePage en: %v", err)
	}
	if direct.Page.ID != page.ID || direct.FallbackUsed || direct.ServedLocale != "en" {
		t.Fatalf("unexpected direct resolution %+v", direct)
	}

	fallback, err := r.ResolvePage(ctx, f.project.ID, "home", "pt")
	if err != nil {
		t.Fatalf("ResolvePage pt: %v", err)
	}
	if fallback.Page.ID != page.ID || !fallback.FallbackUsed {
		t.Fatalf("expected fallback to en page, got %+v", fallback)
	}
	if fallback.RequestedLocale != "pt" || fallback.ServedLocale != "en" {
		t.Fatalf("unexpected locales requested=%s served=%s", fallback.RequestedLocale, fallback.ServedLocale)
	}
}

func TestResolvePageFallbackIsSingleHop(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()
	en := f.seedPage(t, uuid.Nil, "home", "en", true)
	f.seedPage(t, uuid.Nil, "home", "fr", true)

	resolution, err := f.resolver(resolver.WithDefaultLocale("en")).ResolvePage(ctx, f.project.ID, "home", "nl")
	if err != nil {
		t.Fatalf("ResolvePage: %v", err)
	}
	if resolution.Page.ID != en.ID || resolution.ServedLocale != "en" {
		t.Fatalf("expected en page, got %s", resolution.ServedLocale)
	}

	frOnly := newMemoryFixture(t)
	frOnly.seedPage(t, uuid.Nil, "home", "fr", true)
	_, err = frOnly.resolver(resolver.WithDefaultLocale("en")).ResolvePage(ctx, frOnly.project.ID, "home", "nl")
	if !pages.IsNotFound(err) {
		t.Fatalf("expected not found without en page, got %v", err)
	}
}

func TestResolvePageDefaultLocaleMissIsNotFound(t *testing.T) {
	f := newMemoryFixture(t)
	f.seedPage(t, uuid.Nil, "home", "pt", true)

	_, err := f.resolver().ResolvePage(context.Background(), f.project.ID, "home", "en")
	if !pages.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestResolvePageUsesConfiguredDefaultPerInstance(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()
	pt := f.seedPage(t, uuid.Nil, "home", "pt", true)
	f.seedPage(t, uuid.Nil, "home", "en", true)

	resolution, err := f.resolver(resolver.WithDefaultLocale("PT")).ResolvePage(ctx, f.project.ID, "home", "de")
	if err != nil {
		t.Fatalf("ResolvePage: %v", err)
	}
	if resolution.Page.ID != pt.ID {
		t.Fatalf("expected pt default, got %s", resolution.ServedLocale)
	}

	other, err := f.resolver().ResolvePage(ctx, f.project.ID, "home", "de")
	if err != nil {
		t.Fatalf("ResolvePage: %v", err)
	}
	if other.ServedLocale != "en" {
		t.Fatalf("expected independent default en, got %s", other.ServedLocale)
	}
}

func TestResolvePageRejectsMalformedLocale(t *testing.T) {
	f := newMemoryFixture(t)
	_, err := f.resolver().ResolvePage(context.Background(), f.project.ID, "home", "not a locale")
	if !errors.Is(err, pages.ErrLocaleInvalid) {
		t.Fatalf("expected ErrLocaleInvalid, got %v", err)
	}
}

func TestResolveSnapshotDirectMatchKeepsEmptySection(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()
	f.seedPage(t, homePageID, "home", "en", true,
		sectionSeed{identifier: "hero-01", name: "Hero", order: 0, fields: [][2]string{{"title", "Welcome"}}},
		sectionSeed{identifier: "contact-01", name: "Contact", order: 1},
	)
	r := f.resolver()

	resolved, err := r.ResolveSnapshot(ctx, f.project.ID, "home", "en")
	if err != nil {
		t.Fatalf("ResolveSnapshot: %v", err)
	}
	if resolved.FallbackUsed {
		t.Fatal("expected a direct match")
	}

	var want resolver.PageSnapshot
	testsupport.LoadGolden(t, "testdata/home_en_direct_match.json", &want)
	if !reflect.DeepEqual(resolved.Page, want) {
		t.Fatalf("snapshot mismatch\nwant: %+v\ngot:  %+v", want, resolved.Page)
	}

	encoded, err := json.Marshal(resolved.Page)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Contains(encoded, []byte(`"identifier":"contact-01","internal_name":"Contact","fields":[]`)) {
		t.Fatalf("expected empty section to encode fields as [], got %s", encoded)
	}
}

func TestResolveSnapshotFallsBackOnceThenMisses(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()
	f.seedPage(t, uuid.Nil, "home", "en", true,
		sectionSeed{identifier: "hero-01", fields: [][2]string{{"title", "Welcome"}}},
	)
	r := f.resolver()

	resolved, err := r.ResolveSnapshot(ctx, f.project.ID, "home", "pt")
	if err != nil {
		t.Fatalf("ResolveSnapshot pt: %v", err)
	}
	if !resolved.FallbackUsed || resolved.Page.Locale != "en" || resolved.RequestedLocale != "pt" {
		t.Fatalf("expected en fallback annotated for pt, got %+v", resolved)
	}

	if _, err := r.ResolveSnapshot(ctx, f.project.ID, "contact", "en"); !pages.IsNotFound(err) {
		t.Fatalf("expected NotFound for contact, got %v", err)
	}
}

func TestBuildSnapshotOrdersSectionsRegardlessOfInsertion(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()
	page := f.seedPage(t, uuid.Nil, "home", "en", true,
		sectionSeed{identifier: "two", order: 2},
		sectionSeed{identifier: "zero", order: 0},
		sectionSeed{identifier: "one", order: 1},
	)
	r := f.resolver()

	for i := 0; i < 3; i++ {
		snapshot, err := r.BuildSnapshot(ctx, page)
		if err != nil {
			t.Fatalf("BuildSnapshot: %v", err)
		}
		got := []string{snapshot.Sections[0].Identifier, snapshot.Sections[1].Identifier, snapshot.Sections[2].Identifier}
		if !reflect.DeepEqual(got, []string{"zero", "one", "two"}) {
			t.Fatalf("unexpected order %v", got)
		}
	}
}

func TestBuildSnapshotTiesFallBackToInsertion(t *testing.T) {
	f := newMemoryFixture(t)
	page := f.seedPage(t, uuid.Nil, "home", "en", true,
		sectionSeed{identifier: "first", order: 0},
		sectionSeed{identifier: "second", order: 0},
	)

	snapshot, err := f.resolver().BuildSnapshot(context.Background(), page)
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}
	if snapshot.Sections[0].Identifier != "first" || snapshot.Sections[1].Identifier != "second" {
		t.Fatalf("expected insertion tie-break, got %+v", snapshot.Sections)
	}
}

func TestBuildSnapshotIsIdempotentUnderConcurrency(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()
	page := f.seedPage(t, uuid.Nil, "home", "en", true,
		sectionSeed{identifier: "hero-01", fields: [][2]string{{"title", "Welcome"}, {"subtitle", "Fast & fair"}}},
		sectionSeed{identifier: "services-01", order: 1, fields: [][2]string{{"item_1", "Leaks"}}},
		sectionSeed{identifier: "empty-01", order: 2},
	)
	r := f.resolver()

	first, err := r.BuildSnapshot(ctx, page)
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}
	want, _ := json.Marshal(first)

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snapshot, err := r.BuildSnapshot(ctx, page)
			if err != nil {
				return
			}
			results[i], _ = json.Marshal(snapshot)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if !bytes.Equal(got, want) {
			t.Fatalf("snapshot %d differs\nwant: %s\ngot:  %s", i, want, got)
		}
	}
}

type duplicatePages struct {
	resolver.PageReader
	matches []*pages.Page
}

func (d duplicatePages) FindByKey(context.Context, uuid.UUID, string, string) ([]*pages.Page, error) {
	return d.matches, nil
}

type recordingLogger struct {
	warnings []string
}

func (r *recordingLogger) Trace(string, ...any)                          {}
func (r *recordingLogger) Debug(string, ...any)                          {}
func (r *recordingLogger) Info(string, ...any)                           {}
func (r *recordingLogger) Warn(msg string, _ ...any)                     { r.warnings = append(r.warnings, msg) }
func (r *recordingLogger) Error(string, ...any)                          {}
func (r *recordingLogger) Fatal(string, ...any)                          {}
func (r *recordingLogger) WithContext(context.Context) interfaces.Logger { return r }

func TestResolvePageAmbiguityPicksOldestAndWarns(t *testing.T) {
	projectID := uuid.New()
	older := &pages.Page{ID: uuid.MustParse("ffffffff-0000-4000-8000-000000000000"), ProjectID: projectID, Slug: "home", Locale: "en", CreatedAt: baseTime}
	newer := &pages.Page{ID: uuid.MustParse("00000000-0000-4000-8000-000000000000"), ProjectID: projectID, Slug: "home", Locale: "en", CreatedAt: baseTime.Add(time.Hour)}
	sameTimeLowerID := &pages.Page{ID: uuid.MustParse("0000000a-0000-4000-8000-000000000000"), ProjectID: projectID, Slug: "home", Locale: "en", CreatedAt: baseTime}

	logger := &recordingLogger{}
	content := pages.NewMemoryRepositories()
	r := resolver.New(duplicatePages{PageReader: content.Pages, matches: []*pages.Page{newer, older, sameTimeLowerID}},
		content.Sections, content.Fields, projects.NewMemoryProjectRepository(), resolver.WithLogger(logger))

	resolution, err := r.ResolvePage(context.Background(), projectID, "home", "en")
	if err != nil {
		t.Fatalf("ResolvePage: %v", err)
	}
	if resolution.Page.ID != sameTimeLowerID.ID {
		t.Fatalf("expected oldest row with lowest id, got %s", resolution.Page.ID)
	}
	if len(logger.warnings) != 1 || logger.warnings[0] != "page.ambiguous_match" {
		t.Fatalf("expected ambiguity warning, got %v", logger.warnings)
	}
}

func TestPublicSiteListsPublishedPagesInOrder(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()
	seed := func(slug, locale string, order int, published bool) {
		page := &pages.Page{
			ID: uuid.New(), ProjectID: f.project.ID, Slug: slug, Locale: locale,
			Order: order, IsPublished: published, CreatedAt: baseTime, UpdatedAt: baseTime,
		}
		if err := f.content.Pages.CreateTree(ctx, page, nil, nil); err != nil {
			t.Fatalf("seed %s/%s: %v", slug, locale, err)
		}
	}
	seed("contact", "en", 2, true)
	seed("home", "pt", 0, true)
	seed("home", "en", 0, true)
	seed("draft", "en", 1, false)

	site, err := f.resolver().PublicSite(ctx, "acme")
	if err != nil {
		t.Fatalf("PublicSite: %v", err)
	}
	if site.Name != "Acme Plumbing" || site.TemplateKey != "service-pro" {
		t.Fatalf("unexpected site header %+v", site)
	}
	var got []string
	for _, page := range site.Pages {
		got = append(got, page.Slug+"/"+page.Locale)
	}
	want := []string{"home/en", "home/pt", "contact/en"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if _, err := f.resolver().PublicSite(ctx, "missing"); !projects.IsNotFound(err) {
		t.Fatalf("expected project not found, got %v", err)
	}
}
