package projects

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

// Service manages tenant projects.
type Service interface {
	Create(ctx context.Context, req CreateProjectRequest) (*Project, error)
	Get(ctx context.Context, id uuid.UUID) (*Project, error)
	GetBySlug(ctx context.Context, slug string) (*Project, error)
	Headquarters(ctx context.Context) (*Project, error)
	List(ctx context.Context) ([]*Project, error)
	Update(ctx context.Context, req UpdateProjectRequest) (*Project, error)
	TransferOwnership(ctx context.Context, req TransferOwnershipRequest) (*Project, error)
	SetHeadquarters(ctx context.Context, id uuid.UUID) (*Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateProjectRequest captures the data required to register a project.
type CreateProjectRequest struct {
	ID               *uuid.UUID
	Slug             string
	Name             string
	Owner            Ownership
	TemplateKey      string
	IsHeadquarters   bool
	PrimaryColor     string
	SecondaryColor   string
	AccentColor      string
	HeaderBackground HeaderBackground
}

// UpdateProjectRequest carries the mutable project attributes. Nil leaves a value unchanged.
type UpdateProjectRequest struct {
	ID               uuid.UUID
	Name             *string
	TemplateKey      *string
	PrimaryColor     *string
	SecondaryColor   *string
	AccentColor      *string
	HeaderBackground *HeaderBackground
}

// TransferOwnershipRequest moves a project to a new owner, or releases it.
type TransferOwnershipRequest struct {
	ProjectID uuid.UUID
	Owner     Ownership
}

var (
	ErrSlugRequired            = errors.New("projects: slug is required")
	ErrSlugInvalid             = errors.New("projects: slug is invalid")
	ErrSlugExists              = errors.New("projects: slug already exists")
	ErrNameRequired            = errors.New("projects: name is required")
	ErrColorInvalid            = errors.New("projects: color must be a hex value")
	ErrHeaderBackgroundInvalid = errors.New("projects: header background must be solid, transparent, or image")
	ErrHeadquartersExists      = errors.New("projects: a headquarters project already exists")
	ErrOwnerRequired           = errors.New("projects: owned projects require a user id")
	ErrProjectIDRequired       = errors.New("projects: project id is required")
)

// DependentsCleaner removes records that belong to a project. SQL repositories
// cascade inside ProjectRepository.Delete and do not need one.
type DependentsCleaner interface {
	DeleteByProject(ctx context.Context, projectID uuid.UUID) error
}

// IDGenerator produces project identifiers.
type IDGenerator func() uuid.UUID

// ServiceOption configures the project service.
type ServiceOption func(*service)

// WithClock overrides the internal time source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides the ID generator.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger wires the logger used for lifecycle events.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDependents registers cleaners that run before a project is deleted.
func WithDependents(cleaners ...DependentsCleaner) ServiceOption {
	return func(s *service) {
		for _, cleaner := range cleaners {
			if cleaner != nil {
				s.dependents = append(s.dependents, cleaner)
			}
		}
	}
}

type service struct {
	repo       ProjectRepository
	now        func() time.Time
	id         IDGenerator
	logger     interfaces.Logger
	dependents []DependentsCleaner
}

// NewService constructs the project service.
func NewService(repo ProjectRepository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		now:    time.Now,
		id:     uuid.New,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	normalized, err := NormalizeSlug(req.Slug)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	header := req.HeaderBackground
	if header == "" {
		header = HeaderSolid
	}
	if !header.Valid() {
		return nil, ErrHeaderBackgroundInvalid
	}
	if err := validateColors(req.PrimaryColor, req.SecondaryColor, req.AccentColor); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetBySlug(ctx, normalized); err == nil {
		return nil, ErrSlugExists
	} else if !IsNotFound(err) {
		return nil, err
	}

	if req.IsHeadquarters {
		if _, err := s.repo.GetHeadquarters(ctx); err == nil {
			return nil, ErrHeadquartersExists
		} else if !IsNotFound(err) {
			return nil, err
		}
	}

	id := s.id()
	if req.ID != nil && *req.ID != uuid.Nil {
		id = *req.ID
	}
	now := s.now().UTC()
	record := &Project{
		ID:               id,
		Slug:             normalized,
		Name:             name,
		Owner:            req.Owner,
		TemplateKey:      strings.TrimSpace(req.TemplateKey),
		IsHeadquarters:   req.IsHeadquarters,
		PrimaryColor:     strings.TrimSpace(req.PrimaryColor),
		SecondaryColor:   strings.TrimSpace(req.SecondaryColor),
		AccentColor:      strings.TrimSpace(req.AccentColor),
		HeaderBackground: header,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("project.created", "project_id", created.ID, "slug", created.Slug, "ownership", created.Owner)
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	if id == uuid.Nil {
		return nil, ErrProjectIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, value string) (*Project, error) {
	normalized, err := NormalizeSlug(value)
	if err != nil {
		return nil, err
	}
	return s.repo.GetBySlug(ctx, normalized)
}

func (s *service) Headquarters(ctx context.Context) (*Project, error) {
	return s.repo.GetHeadquarters(ctx)
}

func (s *service) List(ctx context.Context) ([]*Project, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, req UpdateProjectRequest) (*Project, error) {
	record, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		record.Name = name
	}
	if req.TemplateKey != nil {
		record.TemplateKey = strings.TrimSpace(*req.TemplateKey)
	}
	if req.HeaderBackground != nil {
		if !req.HeaderBackground.Valid() {
			return nil, ErrHeaderBackgroundInvalid
		}
		record.HeaderBackground = *req.HeaderBackground
	}
	for _, pair := range []struct {
		in  *string
		out *string
	}{
		{req.PrimaryColor, &record.PrimaryColor},
		{req.SecondaryColor, &record.SecondaryColor},
		{req.AccentColor, &record.AccentColor},
	} {
		if pair.in == nil {
			continue
		}
		value := strings.TrimSpace(*pair.in)
		if err := validateColors(value); err != nil {
			return nil, err
		}
		*pair.out = value
	}
	record.UpdatedAt = s.now().UTC()

	return s.repo.Update(ctx, record)
}

func (s *service) TransferOwnership(ctx context.Context, req TransferOwnershipRequest) (*Project, error) {
	if req.ProjectID == uuid.Nil {
		return nil, ErrProjectIDRequired
	}
	before, err := s.repo.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.TransferOwnership(ctx, req.ProjectID, req.Owner, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info("project.ownership_transferred",
		"project_id", updated.ID,
		"from", before.Owner,
		"to", updated.Owner,
	)
	return updated, nil
}

func (s *service) SetHeadquarters(ctx context.Context, id uuid.UUID) (*Project, error) {
	if id == uuid.Nil {
		return nil, ErrProjectIDRequired
	}
	updated, err := s.repo.SetHeadquarters(ctx, id, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info("project.headquarters_set", "project_id", updated.ID, "slug", updated.Slug)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrProjectIDRequired
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	for _, cleaner := range s.dependents {
		if err := cleaner.DeleteByProject(ctx, id); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("project.deleted", "project_id", id)
	return nil
}

// NormalizeSlug lower-cases and slugifies a project or page slug.
func NormalizeSlug(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", ErrSlugRequired
	}
	normalized, err := slug.Normalize(trimmed)
	if err != nil || normalized == "" {
		return "", ErrSlugInvalid
	}
	return normalized, nil
}

// IsNotFound reports whether err is a project lookup miss.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

func validateColors(values ...string) error {
	for _, value := range values {
		if value == "" {
			continue
		}
		if err := validation.Validate(strings.TrimSpace(value), is.HexColor); err != nil || !strings.HasPrefix(strings.TrimSpace(value), "#") {
			return ErrColorInvalid
		}
	}
	return nil
}
