package relationship

import (
	"context"
	"errors"

	"github.com/goliatone/go-proposals/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed relationship repository.
type RepositoryConfig struct {
	DB    *bun.DB
	Clock types.Clock
}

// Repository implements types.RelationshipRepository using Bun.
type Repository struct {
	root  *bun.DB
	db    bun.IDB
	clock types.Clock
}

// NewRepository constructs the default relationship repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.DB == nil {
		return nil, errors.New("relationship: db required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &Repository{root: cfg.DB, db: cfg.DB, clock: clock}, nil
}

var _ types.RelationshipRepository = (*Repository)(nil)

// WithTx returns a copy of the repository bound to tx.
func (r *Repository) WithTx(tx bun.IDB) *Repository {
	clone := *r
	clone.db = tx
	return &clone
}

// Exists reports whether the profile is already linked to the entry.
func (r *Repository) Exists(ctx context.Context, profileID, entryID uuid.UUID) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*Record)(nil)).
		Where("profile_id = ?", profileID).
		Where("entry_id = ?", entryID).
		Exists(ctx)
	if err != nil {
		return false, repository.MapDatabaseError(err, repository.DetectDriver(r.root))
	}
	return exists, nil
}

// Create links the profile to the entry. Linking an existing pair is a no-op.
func (r *Repository) Create(ctx context.Context, rel types.Relationship) error {
	if rel.ProfileID == uuid.Nil || rel.EntryID == uuid.Nil {
		return errors.New("relationship: profile and entry ids required")
	}
	rec := &Record{
		ProfileID:  rel.ProfileID,
		EntryID:    rel.EntryID,
		ProposalID: rel.ProposalID,
		CreatedAt:  rel.CreatedAt,
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.clock.Now()
	}
	_, err := r.db.NewInsert().
		Model(rec).
		On("CONFLICT (profile_id, entry_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		mapped := repository.MapDatabaseError(err, repository.DetectDriver(r.root))
		if repository.IsDuplicatedKey(mapped) {
			return nil
		}
		return mapped
	}
	return nil
}

// ListForProfile returns the links recorded for a profile, oldest first.
func (r *Repository) ListForProfile(ctx context.Context, profileID uuid.UUID) ([]types.Relationship, error) {
	var records []Record
	err := r.db.NewSelect().
		Model(&records).
		Where("profile_id = ?", profileID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(r.root))
	}
	out := make([]types.Relationship, 0, len(records))
	for _, rec := range records {
		out = append(out, types.Relationship{
			ProfileID:  rec.ProfileID,
			EntryID:    rec.EntryID,
			ProposalID: rec.ProposalID,
			CreatedAt:  rec.CreatedAt,
		})
	}
	return out, nil
}
