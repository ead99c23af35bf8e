package provision_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-sites/internal/identity"
	"github.com/goliatone/go-sites/internal/navigation"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/internal/projects"
	"github.com/goliatone/go-sites/internal/provision"
)

const homeEN = `---
title: Welcome
path: /
order: 0
published: true
meta:
  title: Acme Plumbing
  description: Local plumbing experts
sections:
  - identifier: hero-01
    internal_name: Hero
    fields:
      - key: title
        value: Welcome
      - key: subtitle
        value: Fast repairs
navigation:
  - location: header
    label: Home
    order: 0
---
## Services

We fix **everything**.
`

const aboutEN = `---
slug: about
title: About us
path: /about
order: 1
published: true
body_section: text-01
sections:
  - identifier: text-01
    fields:
      - key: heading
        value: Who we are
---
Family run since 1982.
`

const homePT = `---
slug: home
title: Bem-vindo
path: /pt
published: true
sections:
  - identifier: hero-01
    fields:
      - key: title
        value: Bem-vindo
---
`

type harness struct {
	projects   projects.Service
	pages      pages.Service
	navigation navigation.Service
	navRepo    *navigation.MemoryRepository
	provision  *provision.Provisioner
}

func newHarness() harness {
	projectRepo := projects.NewMemoryProjectRepository()
	projectSvc := projects.NewService(projectRepo)
	repos := pages.NewMemoryRepositories()
	navRepo := navigation.NewMemoryRepository()
	pageSvc := pages.NewService(repos.Pages, repos.Sections, repos.Fields, projectRepo, pages.WithReferenceCleaners(navRepo))
	navSvc := navigation.NewService(navRepo, repos.Pages)
	return harness{
		projects:   projectSvc,
		pages:      pageSvc,
		navigation: navSvc,
		navRepo:    navRepo,
		provision:  provision.New(projectSvc, pageSvc, provision.WithNavigation(navSvc)),
	}
}

func templateFS() fstest.MapFS {
	return fstest.MapFS{
		"templates/plumber/en/home.md":    {Data: []byte(homeEN)},
		"templates/plumber/en/about.md":   {Data: []byte(aboutEN)},
		"templates/plumber/pt-br/home.md": {Data: []byte(homePT)},
		"templates/plumber/README.txt":    {Data: []byte("ignored")},
	}
}

func TestApplyCreatesProjectPagesAndNavigation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	result, err := h.provision.Apply(ctx, provision.Request{
		ProjectSlug: "Acme Plumbing",
		ProjectName: "Acme Plumbing",
		TemplateKey: "plumber",
		Source:      templateFS(),
		Root:        "templates/plumber",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !result.ProjectCreated || result.PagesCreated != 3 || result.NavigationItems != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.ProjectID != identity.ProjectUUID("acme-plumbing") {
		t.Fatalf("expected deterministic project id, got %s", result.ProjectID)
	}

	home, err := h.pages.GetPage(ctx, identity.PageUUID(result.ProjectID, "home", "en"))
	if err != nil {
		t.Fatalf("GetPage home: %v", err)
	}
	if home.Title != "Welcome" || !home.IsPublished || home.MetaDescription != "Local plumbing experts" {
		t.Fatalf("unexpected home page %+v", home)
	}

	sections, err := h.pages.ListSections(ctx, home.ID)
	if err != nil {
		t.Fatalf("ListSections: %v", err)
	}
	if len(sections) != 2 || sections[0].Identifier != "hero-01" || sections[1].Identifier != "plumber-body-01" {
		t.Fatalf("expected hero then body section, got %v", identifiers(sections))
	}
	bodyFields, err := h.pages.ListFields(ctx, sections[1].ID)
	if err != nil {
		t.Fatalf("ListFields: %v", err)
	}
	if len(bodyFields) != 1 || !strings.Contains(bodyFields[0].Value, `<h2 id="services">Services</h2>`) {
		t.Fatalf("expected rendered markdown body, got %+v", bodyFields)
	}

	about, err := h.pages.GetPage(ctx, identity.PageUUID(result.ProjectID, "about", "en"))
	if err != nil {
		t.Fatalf("GetPage about: %v", err)
	}
	aboutSections, _ := h.pages.ListSections(ctx, about.ID)
	if len(aboutSections) != 1 {
		t.Fatalf("expected body merged into text-01, got %v", identifiers(aboutSections))
	}
	aboutFields, _ := h.pages.ListFields(ctx, aboutSections[0].ID)
	if len(aboutFields) != 2 || aboutFields[1].Key != "body" {
		t.Fatalf("expected heading then body, got %+v", aboutFields)
	}

	if _, err := h.pages.GetPage(ctx, identity.PageUUID(result.ProjectID, "home", "pt-br")); err != nil {
		t.Fatalf("expected pt-br home page: %v", err)
	}

	items, err := h.navigation.Resolve(ctx, result.ProjectID, navigation.LocationHeader, "en")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(items) != 1 || items[0].Label != "Home" || items[0].URL != "/" {
		t.Fatalf("unexpected navigation %+v", items)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	req := provision.Request{
		ProjectSlug: "acme",
		TemplateKey: "plumber",
		Source:      templateFS(),
		Root:        "templates/plumber",
	}

	first, err := h.provision.Apply(ctx, req)
	if err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	home := identity.PageUUID(first.ProjectID, "home", "en")
	before, _ := h.pages.ListSections(ctx, home)

	second, err := h.provision.Apply(ctx, req)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if second.ProjectCreated || second.PagesCreated != 0 || second.PagesUpdated != 3 {
		t.Fatalf("expected updates only, got %+v", second)
	}

	all, err := h.pages.ListPages(ctx, first.ProjectID, "")
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 pages after re-run, got %d", len(all))
	}
	after, _ := h.pages.ListSections(ctx, home)
	if len(after) != len(before) {
		t.Fatalf("expected %d sections, got %d", len(before), len(after))
	}
	for i := range after {
		if after[i].ID != before[i].ID {
			t.Fatalf("section %d id changed: %s -> %s", i, before[i].ID, after[i].ID)
		}
	}
	items, _ := h.navRepo.List(ctx, first.ProjectID, navigation.LocationHeader, "en")
	if len(items) != 1 {
		t.Fatalf("expected a single navigation item, got %d", len(items))
	}
}

const homeENBroken = `---
title: Changed
path: /
sections:
  - identifier: hero-01
    fields:
      - key: title
        value: Changed
  - identifier: cta-01
    fields:
      - key: label
        value: Call
      - key: label
        value: Call now
---
`

func TestReapplyWithInvalidSectionLeavesPageUntouched(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	req := provision.Request{
		ProjectSlug: "acme",
		TemplateKey: "plumber",
		Source:      templateFS(),
		Root:        "templates/plumber",
	}
	first, err := h.provision.Apply(ctx, req)
	if err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	home := identity.PageUUID(first.ProjectID, "home", "en")
	before, _ := h.pages.ListSections(ctx, home)

	broken := templateFS()
	broken["templates/plumber/en/home.md"] = &fstest.MapFile{Data: []byte(homeENBroken)}
	req.Source = broken
	if _, err := h.provision.Apply(ctx, req); !errors.Is(err, pages.ErrDuplicateFieldKey) {
		t.Fatalf("expected ErrDuplicateFieldKey, got %v", err)
	}

	page, err := h.pages.GetPage(ctx, home)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if page.Title != "Welcome" {
		t.Fatalf("expected title to stay Welcome, got %q", page.Title)
	}
	after, err := h.pages.ListSections(ctx, home)
	if err != nil {
		t.Fatalf("ListSections: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("expected sections %v to survive, got %v", identifiers(before), identifiers(after))
	}
	for i := range after {
		if after[i].ID != before[i].ID {
			t.Fatalf("section %d replaced: %s -> %s", i, before[i].ID, after[i].ID)
		}
	}
	fields, _ := h.pages.ListFields(ctx, after[0].ID)
	if len(fields) != 2 || fields[0].Value != "Welcome" {
		t.Fatalf("expected original hero fields, got %+v", fields)
	}
}

func TestApplyRequiresSlugAndSource(t *testing.T) {
	h := newHarness()
	if _, err := h.provision.Apply(context.Background(), provision.Request{Source: templateFS()}); err != provision.ErrProjectSlugRequired {
		t.Fatalf("expected ErrProjectSlugRequired, got %v", err)
	}
	if _, err := h.provision.Apply(context.Background(), provision.Request{ProjectSlug: "x"}); err != provision.ErrSourceRequired {
		t.Fatalf("expected ErrSourceRequired, got %v", err)
	}
}

func identifiers(sections []*pages.Section) []string {
	out := make([]string, 0, len(sections))
	for _, section := range sections {
		out = append(out, section.Identifier)
	}
	return out
}
