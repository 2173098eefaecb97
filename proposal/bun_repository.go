package proposal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-proposals/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed proposal repository.
type RepositoryConfig struct {
	DB    *bun.DB
	Clock types.Clock
}

// Repository implements types.ProposalRepository using Bun. State changes are
// conditional on the stored state so concurrent decisions cannot both win.
type Repository struct {
	root  *bun.DB
	db    bun.IDB
	clock types.Clock
}

// NewRepository constructs the default proposal repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.DB == nil {
		return nil, errors.New("proposal: db required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &Repository{root: cfg.DB, db: cfg.DB, clock: clock}, nil
}

var _ types.ProposalRepository = (*Repository)(nil)

// WithTx returns a copy of the repository bound to tx.
func (r *Repository) WithTx(tx bun.IDB) *Repository {
	clone := *r
	clone.db = tx
	return &clone
}

// CreateProposal inserts a proposal. New rows always start pending.
func (r *Repository) CreateProposal(ctx context.Context, proposal types.Proposal) (*types.Proposal, error) {
	rec := fromDomain(proposal)
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	now := r.clock.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}
	rec.State = string(types.ProposalStatePending)
	rec.DecisionNotes = ""
	rec.DecidedAt = nil
	rec.DecidedBy = uuid.Nil
	if _, err := r.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return nil, r.mapError(err)
	}
	return toDomain(rec), nil
}

// GetProposal loads a proposal or returns ErrProposalNotFound.
func (r *Repository) GetProposal(ctx context.Context, id uuid.UUID) (*types.Proposal, error) {
	if id == uuid.Nil {
		return nil, types.ErrProposalIDRequired
	}
	rec := &Record{}
	err := r.db.NewSelect().Model(rec).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", types.ErrProposalNotFound, id)
		}
		return nil, r.mapError(err)
	}
	return toDomain(rec), nil
}

// CountRecentPending counts pending proposals for the pair created in the
// half-open window (since, until].
func (r *Repository) CountRecentPending(ctx context.Context, targetProfileID uuid.UUID, submitterEmail string, since, until time.Time) (int, error) {
	count, err := r.db.NewSelect().
		Model((*Record)(nil)).
		Where("target_profile_id = ?", targetProfileID).
		Where("submitter_email = ?", normalizeEmail(submitterEmail)).
		Where("state = ?", string(types.ProposalStatePending)).
		Where("created_at > ?", since).
		Where("created_at <= ?", until).
		Count(ctx)
	if err != nil {
		return 0, r.mapError(err)
	}
	return count, nil
}

// Transition moves a proposal from transition.From to transition.To. The
// write matches the stored state, so a proposal decided in the meantime
// yields ErrInvalidStateTransition.
func (r *Repository) Transition(ctx context.Context, transition types.ProposalTransition) (*types.Proposal, error) {
	if transition.ProposalID == uuid.Nil {
		return nil, types.ErrProposalIDRequired
	}
	decidedAt := transition.DecidedAt
	if decidedAt.IsZero() {
		decidedAt = r.clock.Now()
	}
	q := r.db.NewUpdate().
		Model((*Record)(nil)).
		Set("state = ?", string(transition.To)).
		Set("decision_notes = ?", transition.DecisionNotes).
		Set("decided_at = ?", decidedAt).
		Set("decided_by = ?", nullableUUID(transition.DecidedBy)).
		Set("updated_at = ?", decidedAt).
		Where("id = ?", transition.ProposalID).
		Where("state = ?", string(transition.From))
	if err := r.expectOne(ctx, q, transition.ProposalID); err != nil {
		return nil, err
	}
	return r.GetProposal(ctx, transition.ProposalID)
}

// UpdateResolution records the matched entry of a pending proposal. A Nil
// entry id clears the match.
func (r *Repository) UpdateResolution(ctx context.Context, id, entryID uuid.UUID, at time.Time) error {
	q := r.db.NewUpdate().
		Model((*Record)(nil)).
		Set("resolved_entry_id = ?", nullableUUID(entryID)).
		Set("updated_at = ?", r.stamp(at)).
		Where("id = ?", id).
		Where("state = ?", string(types.ProposalStatePending))
	return r.expectOne(ctx, q, id)
}

// AssignTargetProfile writes the profile created for a pending new-profile
// proposal back onto the proposal.
func (r *Repository) AssignTargetProfile(ctx context.Context, id, profileID uuid.UUID, at time.Time) error {
	if profileID == uuid.Nil {
		return types.ErrProfileRequired
	}
	q := r.db.NewUpdate().
		Model((*Record)(nil)).
		Set("target_profile_id = ?", profileID).
		Set("updated_at = ?", r.stamp(at)).
		Where("id = ?", id).
		Where("state = ?", string(types.ProposalStatePending))
	return r.expectOne(ctx, q, id)
}

func (r *Repository) expectOne(ctx context.Context, q *bun.UpdateQuery, id uuid.UUID) error {
	res, err := q.Exec(ctx)
	if err != nil {
		return r.mapError(err)
	}
	if err := repository.SQLExpectedCount(res, 1); err != nil {
		if !repository.IsSQLExpectedCountViolation(err) {
			return err
		}
		exists, existsErr := r.db.NewSelect().Model((*Record)(nil)).Where("id = ?", id).Exists(ctx)
		if existsErr != nil {
			return r.mapError(existsErr)
		}
		if !exists {
			return fmt.Errorf("%w: %s", types.ErrProposalNotFound, id)
		}
		return types.ErrInvalidStateTransition
	}
	return nil
}

func (r *Repository) stamp(at time.Time) time.Time {
	if at.IsZero() {
		return r.clock.Now()
	}
	return at
}

func (r *Repository) mapError(err error) error {
	return repository.MapDatabaseError(err, repository.DetectDriver(r.root))
}

func nullableUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func fromDomain(proposal types.Proposal) *Record {
	links := make(map[string]string, len(proposal.ChangeSet.Links))
	for field, value := range proposal.ChangeSet.Links {
		links[string(field)] = value
	}
	var biography *string
	if proposal.ChangeSet.Biography != nil {
		bio := *proposal.ChangeSet.Biography
		biography = &bio
	}
	var decidedAt *time.Time
	if !proposal.DecidedAt.IsZero() {
		at := proposal.DecidedAt
		decidedAt = &at
	}
	return &Record{
		ID:              proposal.ID,
		TargetProfileID: proposal.TargetProfileID,
		NewProfileName:  proposal.NewProfileName,
		Biography:       biography,
		LinkFields:      links,
		ResolvedEntryID: proposal.ResolvedEntryID,
		RawURL:          proposal.RawURL,
		CanonicalURL:    proposal.CanonicalURL,
		SubmitterEmail:  normalizeEmail(proposal.SubmitterEmail),
		SubmitterName:   proposal.SubmitterName,
		SubmissionNotes: proposal.SubmissionNotes,
		State:           string(proposal.State),
		DecisionNotes:   proposal.DecisionNotes,
		DecidedAt:       decidedAt,
		DecidedBy:       proposal.DecidedBy,
		CreatedAt:       proposal.CreatedAt,
		UpdatedAt:       proposal.UpdatedAt,
	}
}

func toDomain(rec *Record) *types.Proposal {
	if rec == nil {
		return nil
	}
	cs := types.ChangeSet{}
	if rec.Biography != nil {
		bio := *rec.Biography
		cs.Biography = &bio
	}
	if len(rec.LinkFields) > 0 {
		cs.Links = make(map[types.LinkField]string, len(rec.LinkFields))
		for field, value := range rec.LinkFields {
			cs.Links[types.LinkField(field)] = value
		}
	}
	out := &types.Proposal{
		ID:              rec.ID,
		TargetProfileID: rec.TargetProfileID,
		NewProfileName:  rec.NewProfileName,
		ChangeSet:       cs,
		ResolvedEntryID: rec.ResolvedEntryID,
		RawURL:          rec.RawURL,
		CanonicalURL:    rec.CanonicalURL,
		SubmitterEmail:  rec.SubmitterEmail,
		SubmitterName:   rec.SubmitterName,
		SubmissionNotes: rec.SubmissionNotes,
		State:           types.ProposalState(rec.State),
		DecisionNotes:   rec.DecisionNotes,
		DecidedBy:       rec.DecidedBy,
		CreatedAt:       rec.CreatedAt.UTC(),
		UpdatedAt:       rec.UpdatedAt.UTC(),
	}
	if rec.DecidedAt != nil {
		out.DecidedAt = rec.DecidedAt.UTC()
	}
	return out
}
