// Package merge applies an approved proposal onto its target profile.
package merge

import (
	"context"
	"strings"

	"github.com/goliatone/go-proposals/changeset"
	"github.com/goliatone/go-proposals/pkg/types"
	"github.com/google/uuid"
)

// Merge steps reported by *types.MergeError.
const (
	StepResolveTarget = "resolve_target"
	StepApplyLinks    = "apply_links"
	StepSaveProfile   = "save_profile"
	StepLinkEntry     = "link_entry"
)

// Config wires the merge engine.
type Config struct {
	Clock  types.Clock
	Logger types.Logger
}

// Engine performs the merge against transaction-bound stores. It never
// commits; the caller's transaction decides the outcome.
type Engine struct {
	clock  types.Clock
	logger types.Logger
}

// NewEngine constructs an engine with safe defaults.
func NewEngine(cfg Config) *Engine {
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Engine{clock: clock, logger: logger}
}

// Merge resolves or creates the target profile, applies the change set, saves
// the profile with full validation and links the resolved entry. A created
// profile id is written back onto proposal. Every failure is a
// *types.MergeError naming the step.
func (e *Engine) Merge(ctx context.Context, stores types.Stores, proposal *types.Proposal) (*types.Profile, error) {
	if proposal == nil {
		return nil, &types.MergeError{Step: StepResolveTarget, Err: types.ErrProposalIDRequired}
	}
	if stores.Profiles == nil {
		return nil, &types.MergeError{Step: StepResolveTarget, Err: types.ErrMissingProfileRepository}
	}

	target, err := e.resolveTarget(ctx, stores, proposal)
	if err != nil {
		return nil, &types.MergeError{Step: StepResolveTarget, Err: err}
	}

	if bio := proposal.ChangeSet.Biography; bio != nil {
		target.Biography = *bio
	}

	if err := changeset.Apply(target, types.ChangeSet{Links: proposal.ChangeSet.Links}); err != nil {
		return nil, &types.MergeError{Step: StepApplyLinks, Err: err}
	}

	saved, err := stores.Profiles.SaveProfile(ctx, *target)
	if err != nil {
		return nil, &types.MergeError{Step: StepSaveProfile, Err: err}
	}

	if proposal.ResolvedEntryID != uuid.Nil {
		if err := e.linkEntry(ctx, stores, proposal, saved.ID); err != nil {
			return nil, &types.MergeError{Step: StepLinkEntry, Err: err}
		}
	}
	return saved, nil
}

func (e *Engine) resolveTarget(ctx context.Context, stores types.Stores, proposal *types.Proposal) (*types.Profile, error) {
	if proposal.TargetProfileID != uuid.Nil {
		existing, err := stores.Profiles.FindProfile(ctx, proposal.TargetProfileID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, types.ErrProfileNotFound
		}
		return existing, nil
	}

	name := strings.TrimSpace(proposal.NewProfileName)
	if name == "" {
		return nil, types.NewValidationError("new_profile_name", "is required")
	}
	created, err := stores.Profiles.CreateProfile(ctx, types.Profile{DisplayName: name})
	if err != nil {
		return nil, err
	}
	if stores.Proposals != nil && proposal.ID != uuid.Nil {
		if err := stores.Proposals.AssignTargetProfile(ctx, proposal.ID, created.ID, e.clock.Now()); err != nil {
			return nil, err
		}
	}
	proposal.TargetProfileID = created.ID
	e.logger.Debug("profile created from proposal", "proposal_id", proposal.ID.String(), "profile_id", created.ID.String())
	return created, nil
}

func (e *Engine) linkEntry(ctx context.Context, stores types.Stores, proposal *types.Proposal, profileID uuid.UUID) error {
	if stores.Relationships == nil {
		return types.ErrMissingRelationshipRepository
	}
	exists, err := stores.Relationships.Exists(ctx, profileID, proposal.ResolvedEntryID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return stores.Relationships.Create(ctx, types.Relationship{
		ProfileID:  profileID,
		EntryID:    proposal.ResolvedEntryID,
		ProposalID: proposal.ID,
		CreatedAt:  e.clock.Now(),
	})
}
