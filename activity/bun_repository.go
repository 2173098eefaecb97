package activity

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-masker"
	"github.com/goliatone/go-proposals/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ObjectTypeProposal tags records emitted for proposals.
const ObjectTypeProposal = "proposal"

// RepositoryConfig wires the Bun-backed activity repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*LogEntry]
	Clock      types.Clock
	IDGen      types.IDGenerator
	Masker     *masker.Masker
}

// Repository persists activity records.
type Repository struct {
	store repository.Repository[*LogEntry]
	clock types.Clock
	idGen types.IDGenerator
	mask  *masker.Masker
}

// NewRepository constructs a repository that implements types.ActivitySink.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("activity: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*LogEntry]{
			NewRecord: func() *LogEntry { return &LogEntry{} },
			GetID: func(entry *LogEntry) uuid.UUID {
				if entry == nil {
					return uuid.Nil
				}
				return entry.ID
			},
			SetID: func(entry *LogEntry, id uuid.UUID) {
				if entry != nil {
					entry.ID = id
				}
			},
		})
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	mask := cfg.Masker
	if mask == nil {
		mask = DefaultMasker()
	}
	return &Repository{store: repo, clock: clock, idGen: idGen, mask: mask}, nil
}

var _ types.ActivitySink = (*Repository)(nil)

// Log sanitizes and persists an activity record.
func (r *Repository) Log(ctx context.Context, record types.ActivityRecord) error {
	if strings.TrimSpace(record.Verb) == "" {
		return errors.New("activity: verb required")
	}
	entry := toLogEntry(SanitizeRecord(r.mask, record))
	if entry.ID == uuid.Nil {
		entry.ID = r.idGen.UUID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.clock.Now()
	}
	_, err := r.store.Create(ctx, entry)
	return err
}

// ListForObject returns the records logged against an object, oldest first.
func (r *Repository) ListForObject(ctx context.Context, objectType, objectID string) ([]types.ActivityRecord, error) {
	rows, _, err := r.store.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("object_type = ?", objectType).
			Where("object_id = ?", objectID).
			OrderExpr("created_at ASC")
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]types.ActivityRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, toActivityRecord(row))
	}
	return out, nil
}

// ListForProposal returns the audit trail of one proposal.
func (r *Repository) ListForProposal(ctx context.Context, proposalID uuid.UUID) ([]types.ActivityRecord, error) {
	return r.ListForObject(ctx, ObjectTypeProposal, proposalID.String())
}

func toLogEntry(record types.ActivityRecord) *LogEntry {
	data := record.Data
	if data == nil {
		data = map[string]any{}
	}
	return &LogEntry{
		ID:         record.ID,
		ActorID:    record.ActorID,
		Verb:       record.Verb,
		ObjectType: record.ObjectType,
		ObjectID:   record.ObjectID,
		Channel:    record.Channel,
		Data:       data,
		CreatedAt:  record.OccurredAt,
	}
}

func toActivityRecord(entry *LogEntry) types.ActivityRecord {
	return types.ActivityRecord{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		Verb:       entry.Verb,
		ObjectType: entry.ObjectType,
		ObjectID:   entry.ObjectID,
		Channel:    entry.Channel,
		Data:       entry.Data,
		OccurredAt: entry.CreatedAt,
	}
}
