package provision

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/identity"
	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/internal/navigation"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/internal/projects"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

const (
	bodyFieldKey       = "body"
	defaultTemplateKey = "page"
	defaultLocale      = "en"
)

var (
	ErrProjectSlugRequired = errors.New("provision: project slug is required")
	ErrSourceRequired      = errors.New("provision: source filesystem is required")
)

// Request describes one template instantiation.
type Request struct {
	ProjectSlug   string
	ProjectName   string
	TemplateKey   string
	DefaultLocale string
	Source        fs.FS
	Root          string
}

// Result summarises what Apply touched.
type Result struct {
	ProjectID       uuid.UUID
	ProjectCreated  bool
	PagesCreated    int
	PagesUpdated    int
	NavigationItems int
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithLogger wires the logger used for provisioning events.
func WithLogger(logger interfaces.Logger) Option {
	return func(p *Provisioner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithNavigation enables menu entries declared in page frontmatter.
func WithNavigation(service navigation.Service) Option {
	return func(p *Provisioner) {
		p.navigation = service
	}
}

// Provisioner creates or refreshes a project from a directory of markdown
// page files laid out as <locale>/<page>.md. Identifiers are derived from
// slugs so applying the same template twice updates records in place.
type Provisioner struct {
	projects   projects.Service
	pages      pages.Service
	navigation navigation.Service
	renderer   *Renderer
	logger     interfaces.Logger
}

// New constructs a Provisioner.
func New(projectService projects.Service, pageService pages.Service, opts ...Option) *Provisioner {
	p := &Provisioner{
		projects: projectService,
		pages:    pageService,
		renderer: NewRenderer(),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Apply provisions req.Source into the project named by req.ProjectSlug.
func (p *Provisioner) Apply(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.ProjectSlug) == "" {
		return Result{}, ErrProjectSlugRequired
	}
	if req.Source == nil {
		return Result{}, ErrSourceRequired
	}
	fallbackLocale := req.DefaultLocale
	if strings.TrimSpace(fallbackLocale) == "" {
		fallbackLocale = defaultLocale
	}

	project, created, err := p.ensureProject(ctx, req)
	if err != nil {
		return Result{}, err
	}
	result := Result{ProjectID: project.ID, ProjectCreated: created}
	logger := logging.WithFields(p.logger, map[string]any{"project_id": project.ID, "template": req.TemplateKey})

	docs, err := p.load(req.Source, req.Root, fallbackLocale)
	if err != nil {
		return result, err
	}

	template := strings.TrimSpace(req.TemplateKey)
	if template == "" {
		template = defaultTemplateKey
	}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		page, isNew, err := p.applyPage(ctx, project.ID, template, doc)
		if err != nil {
			return result, fmt.Errorf("provision %s: %w", doc.File, err)
		}
		if isNew {
			result.PagesCreated++
		} else {
			result.PagesUpdated++
		}
		count, err := p.applyNavigation(ctx, project.ID, page, doc)
		if err != nil {
			return result, fmt.Errorf("provision %s navigation: %w", doc.File, err)
		}
		result.NavigationItems += count
		logger.Debug("provision.page_applied", "slug", page.Slug, "locale", page.Locale, "created", isNew)
	}

	logger.Info("provision.applied",
		"pages_created", result.PagesCreated,
		"pages_updated", result.PagesUpdated,
		"navigation_items", result.NavigationItems,
	)
	return result, nil
}

func (p *Provisioner) ensureProject(ctx context.Context, req Request) (*projects.Project, bool, error) {
	existing, err := p.projects.GetBySlug(ctx, req.ProjectSlug)
	if err == nil {
		update := projects.UpdateProjectRequest{ID: existing.ID}
		if name := strings.TrimSpace(req.ProjectName); name != "" {
			update.Name = &name
		}
		if key := strings.TrimSpace(req.TemplateKey); key != "" {
			update.TemplateKey = &key
		}
		if update.Name == nil && update.TemplateKey == nil {
			return existing, false, nil
		}
		updated, err := p.projects.Update(ctx, update)
		return updated, false, err
	}
	if !projects.IsNotFound(err) {
		return nil, false, err
	}

	slug, err := projects.NormalizeSlug(req.ProjectSlug)
	if err != nil {
		return nil, false, err
	}
	name := strings.TrimSpace(req.ProjectName)
	if name == "" {
		name = slug
	}
	id := identity.ProjectUUID(slug)
	created, err := p.projects.Create(ctx, projects.CreateProjectRequest{
		ID:          &id,
		Slug:        slug,
		Name:        name,
		TemplateKey: strings.TrimSpace(req.TemplateKey),
	})
	return created, err == nil, err
}

func (p *Provisioner) load(source fs.FS, root, fallbackLocale string) ([]*Document, error) {
	root = path.Clean(strings.TrimSpace(root))
	if root == "" || root == "/" {
		root = "."
	}

	var docs []*Document
	err := fs.WalkDir(source, root, func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || path.Ext(name) != ".md" {
			return nil
		}
		rel := strings.TrimPrefix(name, root+"/")
		if root == "." {
			rel = name
		}
		parts := strings.Split(rel, "/")
		locale := fallbackLocale
		switch len(parts) {
		case 1:
		case 2:
			locale = parts[0]
		default:
			p.logger.Debug("provision.file_skipped", "file", name)
			return nil
		}

		data, err := fs.ReadFile(source, name)
		if err != nil {
			return err
		}
		doc, err := ParseDocument(name, locale, data)
		if err != nil {
			return err
		}
		if strings.TrimSpace(doc.Front.Slug) == "" {
			doc.Front.Slug = strings.TrimSuffix(path.Base(name), ".md")
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("provision: load %s: %w", root, err)
	}
	return docs, nil
}

func (p *Provisioner) applyPage(ctx context.Context, projectID uuid.UUID, template string, doc *Document) (*pages.Page, bool, error) {
	locale, err := pages.NormalizeLocale(doc.Locale)
	if err != nil {
		return nil, false, err
	}
	slug, err := projects.NormalizeSlug(doc.Front.Slug)
	if err != nil {
		return nil, false, err
	}
	sections, err := p.sectionsFor(template, doc)
	if err != nil {
		return nil, false, err
	}

	pageID := identity.PageUUID(projectID, slug, locale)
	front := doc.Front
	tree := make([]pages.TreeSection, 0, len(sections))
	for position, section := range sections {
		sectionID := identity.SectionUUID(pageID, position, section.Identifier)
		inputs := make([]pages.FieldInput, 0, len(section.Fields))
		for _, field := range section.Fields {
			fieldID := identity.FieldUUID(sectionID, field.Key)
			inputs = append(inputs, pages.FieldInput{ID: &fieldID, Key: field.Key, Value: field.Value})
		}
		tree = append(tree, pages.TreeSection{
			ID:           &sectionID,
			Identifier:   section.Identifier,
			InternalName: section.InternalName,
			Fields:       inputs,
		})
	}

	return p.pages.SaveTree(ctx, pages.SaveTreeRequest{
		Page: pages.CreatePageRequest{
			ID:          &pageID,
			ProjectID:   projectID,
			Slug:        slug,
			Locale:      locale,
			Path:        front.Path,
			Title:       front.Title,
			Order:       front.Order,
			IsPublished: front.Published,
			Meta: pages.Meta{
				Title:       front.Meta.Title,
				Description: front.Meta.Description,
				Slug:        front.Meta.Slug,
				Indexable:   front.Meta.Indexable,
			},
		},
		Sections: tree,
	})
}

// sectionsFor returns the declared sections with the rendered body attached.
func (p *Provisioner) sectionsFor(template string, doc *Document) ([]SectionMatter, error) {
	sections := make([]SectionMatter, 0, len(doc.Front.Sections)+1)
	for _, section := range doc.Front.Sections {
		cloned := section
		cloned.Fields = append([]FieldMatter(nil), section.Fields...)
		sections = append(sections, cloned)
	}
	if len(doc.Body) == 0 {
		return sections, nil
	}

	html, err := p.renderer.Render(doc.Body)
	if err != nil {
		return nil, err
	}
	if target := strings.TrimSpace(doc.Front.BodySection); target != "" {
		for i := range sections {
			if sections[i].Identifier != target {
				continue
			}
			for j := range sections[i].Fields {
				if sections[i].Fields[j].Key == bodyFieldKey {
					sections[i].Fields[j].Value = html
					return sections, nil
				}
			}
			sections[i].Fields = append(sections[i].Fields, FieldMatter{Key: bodyFieldKey, Value: html})
			return sections, nil
		}
	}
	return append(sections, SectionMatter{
		Identifier:   template + "-body-01",
		InternalName: "Body",
		Fields:       []FieldMatter{{Key: bodyFieldKey, Value: html}},
	}), nil
}

func (p *Provisioner) applyNavigation(ctx context.Context, projectID uuid.UUID, page *pages.Page, doc *Document) (int, error) {
	if p.navigation == nil || len(doc.Front.Navigation) == 0 {
		return 0, nil
	}
	count := 0
	for _, entry := range doc.Front.Navigation {
		location := navigation.Location(strings.ToLower(strings.TrimSpace(entry.Location)))
		label := strings.TrimSpace(entry.Label)
		if label == "" {
			label = page.Title
		}
		id := identity.NavigationItemUUID(projectID, string(location), page.Locale, label)
		pageID := page.ID

		_, err := p.navigation.Get(ctx, id)
		switch {
		case err == nil:
			_, err = p.navigation.Update(ctx, navigation.UpdateItemRequest{
				ID:     id,
				Label:  &label,
				Order:  entry.Order,
				PageID: &pageID,
			})
		case navigation.IsNotFound(err):
			_, err = p.navigation.Create(ctx, navigation.CreateItemRequest{
				ID:        &id,
				ProjectID: projectID,
				Label:     label,
				Locale:    page.Locale,
				Location:  location,
				Order:     entry.Order,
				PageID:    &pageID,
			})
		}
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
