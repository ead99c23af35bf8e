package leads

import (
	"context"
	"fmt"
	"slices"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository stores quote requests. There is no update or delete.
type Repository interface {
	Create(ctx context.Context, request *QuoteRequest) (*QuoteRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*QuoteRequest, error)
	GetByReference(ctx context.Context, reference string) (*QuoteRequest, error)
	// ListByProject returns requests newest first.
	ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]*QuoteRequest, int, error)
}

// NotFoundError is returned when a quote request lookup misses.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("quote request %q not found", e.Key)
}

// NewQuoteRequestRepository creates a go-repository-bun repository keyed by reference.
func NewQuoteRequestRepository(db *bun.DB) repository.Repository[*QuoteRequest] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*QuoteRequest]{
		NewRecord: func() *QuoteRequest { return &QuoteRequest{} },
		GetID: func(q *QuoteRequest) uuid.UUID {
			return q.ID
		},
		SetID: func(q *QuoteRequest, id uuid.UUID) {
			q.ID = id
		},
		GetIdentifier: func() string {
			return "reference"
		},
		GetIdentifierValue: func(q *QuoteRequest) string {
			return q.Reference
		},
	})
}

// BunRepository implements Repository.
type BunRepository struct {
	repo repository.Repository[*QuoteRequest]
}

// NewBunRepository creates the SQL-backed quote request repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{repo: NewQuoteRequestRepository(db)}
}

func (r *BunRepository) Create(ctx context.Context, request *QuoteRequest) (*QuoteRequest, error) {
	record, err := r.repo.Create(ctx, request)
	if err != nil {
		return nil, mapRepositoryError(err, request.Reference)
	}
	return record, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*QuoteRequest, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunRepository) GetByReference(ctx context.Context, reference string) (*QuoteRequest, error) {
	record, err := r.repo.GetByIdentifier(ctx, reference)
	if err != nil {
		return nil, mapRepositoryError(err, reference)
	}
	return record, nil
}

func (r *BunRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]*QuoteRequest, int, error) {
	criteria := []repository.SelectCriteria{
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.project_id = ?", projectID).
				OrderExpr("?TableAlias.created_at DESC, ?TableAlias.id DESC")
		}),
	}
	if limit > 0 {
		criteria = append(criteria, repository.SelectPaginate(limit, offset))
	}
	records, total, err := r.repo.List(ctx, criteria...)
	if err != nil {
		return nil, 0, mapRepositoryError(err, projectID.String())
	}
	return records, total, nil
}

func mapRepositoryError(err error, key string) error {
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("quote request repository error: %w", err)
}

// MemoryRepository stores quote requests in memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []*QuoteRequest
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Create(_ context.Context, request *QuoteRequest) (*QuoteRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cloned := *request
	m.records = append(m.records, &cloned)
	out := cloned
	return &out, nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*QuoteRequest, error) {
	return m.find(id.String(), func(q *QuoteRequest) bool { return q.ID == id })
}

func (m *MemoryRepository) GetByReference(_ context.Context, reference string) (*QuoteRequest, error) {
	return m.find(reference, func(q *QuoteRequest) bool { return q.Reference == reference })
}

func (m *MemoryRepository) find(key string, match func(*QuoteRequest) bool) (*QuoteRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if match(record) {
			cloned := *record
			return &cloned, nil
		}
	}
	return nil, &NotFoundError{Key: key}
}

func (m *MemoryRepository) ListByProject(_ context.Context, projectID uuid.UUID, limit, offset int) ([]*QuoteRequest, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := []*QuoteRequest{}
	for _, record := range m.records {
		if record.ProjectID == projectID {
			cloned := *record
			matches = append(matches, &cloned)
		}
	}
	slices.SortStableFunc(matches, func(a, b *QuoteRequest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return -1 * compareIDs(a.ID, b.ID)
	})

	total := len(matches)
	if offset > total {
		offset = total
	}
	matches = matches[offset:]
	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, total, nil
}

// DeleteByProject removes the requests of a project. It only runs as part of
// an explicit project hard delete.
func (m *MemoryRepository) DeleteByProject(_ context.Context, projectID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = slices.DeleteFunc(m.records, func(q *QuoteRequest) bool {
		return q.ProjectID == projectID
	})
	return nil
}

func compareIDs(a, b uuid.UUID) int {
	switch as, bs := a.String(), b.String(); {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}
