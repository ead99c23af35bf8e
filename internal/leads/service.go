package leads

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/identity"
	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/internal/projects"
	"github.com/goliatone/go-sites/internal/runtimeconfig"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

const (
	referencePrefix  = "Q"
	maxMessageLength = 4000
	maxNameLength    = 200
)

var (
	ErrProjectRequired = errors.New("leads: project id is required")
	ErrIDRequired      = errors.New("leads: quote request id is required")
)

// Service captures and lists quote requests.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*QuoteRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*QuoteRequest, error)
	GetByReference(ctx context.Context, reference string) (*QuoteRequest, error)
	List(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]*QuoteRequest, int, error)
}

// SubmitRequest is the visitor-supplied form payload.
type SubmitRequest struct {
	ID         uuid.UUID `json:"id,omitempty"`
	ProjectID  uuid.UUID `json:"project_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Company    string    `json:"company"`
	Service    string    `json:"service"`
	Message    string    `json:"message"`
	Locale     string    `json:"locale"`
	SourcePath string    `json:"source_path"`
}

// Validate checks the payload with ozzo-validation. The returned error is a
// validation.Errors keyed by json field name.
func (r SubmitRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Message, validation.Length(0, maxMessageLength)),
		validation.Field(&r.Locale, validation.By(func(value any) error {
			locale, _ := value.(string)
			if strings.TrimSpace(locale) == "" || runtimeconfig.ValidLocale(locale) {
				return nil
			}
			return errors.New("must be a valid locale code")
		})),
	)
}

// ProjectLookup confirms the target project exists.
type ProjectLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*projects.Project, error)
}

// ServiceOption configures the leads service.
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
func WithIDGenerator(generator func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger wires the logger used for submissions.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProjectLookup rejects submissions for unknown projects.
func WithProjectLookup(lookup ProjectLookup) ServiceOption {
	return func(s *service) {
		s.projects = lookup
	}
}

type service struct {
	repo     Repository
	projects ProjectLookup
	now      func() time.Time
	id       func() uuid.UUID
	logger   interfaces.Logger
}

// NewService constructs the quote request service.
func NewService(repo Repository, opts ...ServiceOption) Service {
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

func (s *service) Submit(ctx context.Context, req SubmitRequest) (*QuoteRequest, error) {
	if req.ProjectID == uuid.Nil {
		return nil, ErrProjectRequired
	}
	req = trimRequest(req)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.projects != nil {
		if _, err := s.projects.GetByID(ctx, req.ProjectID); err != nil {
			return nil, err
		}
	}

	id := req.ID
	if id == uuid.Nil {
		id = s.id()
	}
	record := &QuoteRequest{
		ID:         id,
		ProjectID:  req.ProjectID,
		Reference:  identity.Reference(referencePrefix, id),
		Name:       req.Name,
		Email:      strings.ToLower(req.Email),
		Phone:      req.Phone,
		Company:    req.Company,
		Service:    req.Service,
		Message:    req.Message,
		Locale:     runtimeconfig.NormalizeLocale(req.Locale),
		SourcePath: req.SourcePath,
		CreatedAt:  s.now().UTC(),
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("quote_request.submitted",
		"project_id", created.ProjectID,
		"reference", created.Reference,
		"locale", created.Locale,
	)
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*QuoteRequest, error) {
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByReference(ctx context.Context, reference string) (*QuoteRequest, error) {
	return s.repo.GetByReference(ctx, strings.ToUpper(strings.TrimSpace(reference)))
}

func (s *service) List(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]*QuoteRequest, int, error) {
	if projectID == uuid.Nil {
		return nil, 0, ErrProjectRequired
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByProject(ctx, projectID, limit, offset)
}

// IsNotFound reports whether err is a quote request lookup miss.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

func trimRequest(req SubmitRequest) SubmitRequest {
	for _, value := range []*string{
		&req.Name, &req.Email, &req.Phone, &req.Company,
		&req.Service, &req.Message, &req.Locale, &req.SourcePath,
	} {
		*value = strings.TrimSpace(*value)
	}
	return req
}
