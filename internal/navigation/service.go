package navigation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

var (
	ErrProjectRequired      = errors.New("navigation: project is required")
	ErrItemIDRequired       = errors.New("navigation: item id is required")
	ErrLabelRequired        = errors.New("navigation: label is required")
	ErrLocationInvalid      = errors.New("navigation: location must be header or footer")
	ErrLocaleInvalid        = errors.New("navigation: locale is invalid")
	ErrTargetRequired       = errors.New("navigation: an item needs a url or a page")
	ErrTargetConflict       = errors.New("navigation: an item cannot have both a url and a page")
	ErrPageOtherProject     = errors.New("navigation: page belongs to another project")
	ErrCrossLocaleReference = errors.New("navigation: page locale differs from item locale")
	ErrReorderMismatch      = errors.New("navigation: reorder ids must list every item of the menu exactly once")
)

// CrossLocaleReferenceError rejects an item that links to a page authored in
// another locale.
type CrossLocaleReferenceError struct {
	ItemLocale string
	PageLocale string
	PageID     uuid.UUID
}

func (e *CrossLocaleReferenceError) Error() string {
	return fmt.Sprintf("%s: item locale %q, page %s locale %q", ErrCrossLocaleReference.Error(), e.ItemLocale, e.PageID, e.PageLocale)
}

func (e *CrossLocaleReferenceError) Unwrap() error {
	return ErrCrossLocaleReference
}

// Service manages and resolves project menus.
type Service interface {
	Create(ctx context.Context, req CreateItemRequest) (*Item, error)
	Get(ctx context.Context, id uuid.UUID) (*Item, error)
	Update(ctx context.Context, req UpdateItemRequest) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, req ReorderRequest) ([]*Item, error)
	Resolve(ctx context.Context, projectID uuid.UUID, location Location, locale string) ([]ResolvedItem, error)
}

// PageLookup loads the page an item links to.
type PageLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*pages.Page, error)
}

// CreateItemRequest captures the data required to add a menu item. Exactly one
// of URL and PageID is set. A nil Order appends.
type CreateItemRequest struct {
	ID        *uuid.UUID
	ProjectID uuid.UUID
	Label     string
	Locale    string
	Location  Location
	Order     *int
	URL       *string
	PageID    *uuid.UUID
}

// UpdateItemRequest carries mutable item attributes. Nil leaves a value
// unchanged; setting URL clears PageID and the reverse.
type UpdateItemRequest struct {
	ID     uuid.UUID
	Label  *string
	Locale *string
	Order  *int
	URL    *string
	PageID *uuid.UUID
}

// ReorderRequest lists every item of one menu in the desired order.
type ReorderRequest struct {
	ProjectID  uuid.UUID
	Location   Location
	Locale     string
	OrderedIDs []uuid.UUID
}

// ServiceOption configures the navigation service.
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

// WithLogger wires the logger used for navigation events.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithURLResolver overrides how page references become hrefs.
func WithURLResolver(resolver URLResolver) ServiceOption {
	return func(s *service) {
		if resolver != nil {
			s.urls = resolver
		}
	}
}

type service struct {
	repo   Repository
	pages  PageLookup
	urls   URLResolver
	now    func() time.Time
	id     func() uuid.UUID
	logger interfaces.Logger
}

// NewService constructs the navigation service.
func NewService(repo Repository, lookup PageLookup, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		pages:  lookup,
		urls:   PathResolver{},
		now:    time.Now,
		id:     uuid.New,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateItemRequest) (*Item, error) {
	if req.ProjectID == uuid.Nil {
		return nil, ErrProjectRequired
	}
	if !req.Location.Valid() {
		return nil, ErrLocationInvalid
	}
	locale, err := normalizeLocale(req.Locale)
	if err != nil {
		return nil, err
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return nil, ErrLabelRequired
	}

	item := &Item{
		ProjectID: req.ProjectID,
		Label:     label,
		Locale:    locale,
		Location:  req.Location,
		URL:       trimmedURL(req.URL),
		PageID:    nonNilID(req.PageID),
	}
	if err := s.checkTarget(ctx, item); err != nil {
		return nil, err
	}

	if req.Order != nil {
		item.Order = *req.Order
	} else {
		siblings, err := s.repo.List(ctx, item.ProjectID, item.Location, item.Locale)
		if err != nil {
			return nil, err
		}
		item.Order = len(siblings)
	}

	item.ID = s.id()
	if req.ID != nil && *req.ID != uuid.Nil {
		item.ID = *req.ID
	}
	now := s.now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("navigation.item_created", "item_id", created.ID, "location", created.Location, "locale", created.Locale)
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	if id == uuid.Nil {
		return nil, ErrItemIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Update(ctx context.Context, req UpdateItemRequest) (*Item, error) {
	if req.ID == uuid.Nil {
		return nil, ErrItemIDRequired
	}
	item, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Label != nil {
		label := strings.TrimSpace(*req.Label)
		if label == "" {
			return nil, ErrLabelRequired
		}
		item.Label = label
	}
	if req.Locale != nil {
		locale, err := normalizeLocale(*req.Locale)
		if err != nil {
			return nil, err
		}
		item.Locale = locale
	}
	if req.Order != nil {
		item.Order = *req.Order
	}
	if req.URL != nil && req.PageID != nil {
		return nil, ErrTargetConflict
	}
	if req.URL != nil {
		item.URL = trimmedURL(req.URL)
		item.PageID = nil
	}
	if req.PageID != nil {
		item.PageID = nonNilID(req.PageID)
		item.URL = nil
	}
	if err := s.checkTarget(ctx, item); err != nil {
		return nil, err
	}

	item.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, item)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrItemIDRequired
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) Reorder(ctx context.Context, req ReorderRequest) ([]*Item, error) {
	if req.ProjectID == uuid.Nil {
		return nil, ErrProjectRequired
	}
	if !req.Location.Valid() {
		return nil, ErrLocationInvalid
	}
	locale, err := normalizeLocale(req.Locale)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Reorder(ctx, req.ProjectID, req.Location, locale, req.OrderedIDs, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, req.ProjectID, req.Location, locale)
}

// Resolve returns the menu authored for exactly this locale. Items whose page
// is gone or no longer matches are skipped with a warning.
func (s *service) Resolve(ctx context.Context, projectID uuid.UUID, location Location, locale string) ([]ResolvedItem, error) {
	if projectID == uuid.Nil {
		return nil, ErrProjectRequired
	}
	if !location.Valid() {
		return nil, ErrLocationInvalid
	}
	normalized, err := normalizeLocale(locale)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, projectID, location, normalized)
	if err != nil {
		return nil, err
	}

	resolved := make([]ResolvedItem, 0, len(items))
	for _, item := range items {
		entry := ResolvedItem{ID: item.ID, Label: item.Label, Order: item.Order}
		if !item.LinksPage() {
			if item.URL != nil {
				entry.URL = *item.URL
			}
			resolved = append(resolved, entry)
			continue
		}

		page, err := s.pages.GetByID(ctx, *item.PageID)
		if err != nil {
			if pages.IsNotFound(err) {
				s.logger.Warn("navigation.dangling_reference", "item_id", item.ID, "page_id", *item.PageID)
				continue
			}
			return nil, err
		}
		if page.ProjectID != item.ProjectID || page.Locale != item.Locale {
			s.logger.Warn("navigation.cross_locale_reference", "item_id", item.ID, "page_id", page.ID, "page_locale", page.Locale)
			continue
		}
		href, err := s.urls.Resolve(ctx, ResolveRequest{Item: item, Page: page, Locale: item.Locale})
		if err != nil {
			return nil, err
		}
		pageID := page.ID
		entry.URL = href
		entry.PageID = &pageID
		resolved = append(resolved, entry)
	}
	return resolved, nil
}

func (s *service) checkTarget(ctx context.Context, item *Item) error {
	hasURL := item.URL != nil
	hasPage := item.LinksPage()
	switch {
	case hasURL && hasPage:
		return ErrTargetConflict
	case !hasURL && !hasPage:
		return ErrTargetRequired
	case hasURL:
		return nil
	}

	page, err := s.pages.GetByID(ctx, *item.PageID)
	if err != nil {
		return err
	}
	if page.ProjectID != item.ProjectID {
		return ErrPageOtherProject
	}
	if page.Locale != item.Locale {
		return &CrossLocaleReferenceError{ItemLocale: item.Locale, PageLocale: page.Locale, PageID: page.ID}
	}
	return nil
}

// IsNotFound reports whether err is a navigation item lookup miss.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

func normalizeLocale(value string) (string, error) {
	locale, err := pages.NormalizeLocale(value)
	if err != nil {
		return "", ErrLocaleInvalid
	}
	return locale, nil
}

func trimmedURL(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nonNilID(value *uuid.UUID) *uuid.UUID {
	if value == nil || *value == uuid.Nil {
		return nil
	}
	id := *value
	return &id
}
