package entry

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-proposals/canonical"
	"github.com/goliatone/go-proposals/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed catalog entry repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
}

// Repository implements types.EntryRepository using Bun.
type Repository struct {
	store repository.Repository[*Record]
	clock types.Clock
}

// NewRepository constructs the default entry repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("entry: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Record]{
			NewRecord: func() *Record { return &Record{} },
			GetID: func(rec *Record) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *Record, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
		})
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &Repository{store: repo, clock: clock}, nil
}

var _ types.EntryRepository = (*Repository)(nil)

// FindByCanonicalURL returns the entries stored under canonicalURL, oldest
// first.
func (r *Repository) FindByCanonicalURL(ctx context.Context, canonicalURL string) ([]types.Entry, error) {
	canonicalURL = strings.TrimSpace(canonicalURL)
	if canonicalURL == "" {
		return nil, nil
	}
	records, _, err := r.store.List(ctx,
		repository.SelectBy("canonical_url", "=", canonicalURL),
		orderByCreation(),
	)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]types.Entry, 0, len(records))
	for _, rec := range records {
		out = append(out, toDomain(rec))
	}
	return out, nil
}

// CreateEntry stores a catalog entry, deriving its canonical URL.
func (r *Repository) CreateEntry(ctx context.Context, entry types.Entry) (*types.Entry, error) {
	rawURL := strings.TrimSpace(entry.URL)
	if rawURL == "" {
		return nil, types.NewValidationError("url", "is required")
	}
	rec := &Record{
		ID:           entry.ID,
		Title:        strings.TrimSpace(entry.Title),
		URL:          rawURL,
		CanonicalURL: canonical.Canonicalize(rawURL),
		CreatedAt:    entry.CreatedAt,
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.clock.Now()
	}
	created, err := r.store.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	out := toDomain(created)
	return &out, nil
}

// GetEntry returns the entry with id or nil when absent.
func (r *Repository) GetEntry(ctx context.Context, id uuid.UUID) (*types.Entry, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rec, err := r.store.GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	out := toDomain(rec)
	return &out, nil
}

func orderByCreation() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("created_at ASC", "id ASC")
	}
}

func toDomain(rec *Record) types.Entry {
	return types.Entry{
		ID:           rec.ID,
		Title:        rec.Title,
		URL:          rec.URL,
		CanonicalURL: rec.CanonicalURL,
		CreatedAt:    rec.CreatedAt,
	}
}
