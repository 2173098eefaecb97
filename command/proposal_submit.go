package command

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-proposals/canonical"
	"github.com/goliatone/go-proposals/changeset"
	"github.com/goliatone/go-proposals/dedupe"
	"github.com/goliatone/go-proposals/notify"
	"github.com/goliatone/go-proposals/pkg/types"
	"github.com/google/uuid"
)

const (
	maxSubmitterNameLength   = 120
	maxSubmissionNotesLength = 2000
)

// SubmitProposalInput captures a community change request. Exactly one of
// TargetProfileID and NewProfileName must be set.
type SubmitProposalInput struct {
	TargetProfileID uuid.UUID
	NewProfileName  string
	Biography       *string
	Links           map[string]string
	RawURL          string
	SubmitterEmail  string
	SubmitterName   string
	SubmissionNotes string
	Result          *types.Proposal
}

// Type implements gocommand.Message.
func (SubmitProposalInput) Type() string {
	return "command.proposal.submit"
}

// Validate implements gocommand.Message. It covers the fields that do not
// depend on configured limits or stored data.
func (input SubmitProposalInput) Validate() error {
	return input.fieldErrors().Err()
}

func (input SubmitProposalInput) fieldErrors() *types.ValidationError {
	verr := &types.ValidationError{}

	email := normalizeEmail(input.SubmitterEmail)
	switch {
	case email == "":
		verr.Add("submitter_email", "is required")
	case !changeset.ValidEmail(email):
		verr.Add("submitter_email", "must be a valid email address")
	}

	name := strings.TrimSpace(input.NewProfileName)
	switch {
	case input.TargetProfileID == uuid.Nil && name == "":
		verr.Add("new_profile_name", "is required when no target profile is given")
	case input.TargetProfileID != uuid.Nil && name != "":
		verr.Add("new_profile_name", "must be empty when a target profile is given")
	}

	if raw := strings.TrimSpace(input.RawURL); raw != "" && !changeset.ValidURL(raw) {
		verr.Add("raw_url", "must be a valid http(s) URL")
	}
	if utf8.RuneCountInString(strings.TrimSpace(input.SubmitterName)) > maxSubmitterNameLength {
		verr.Add("submitter_name", "is too long")
	}
	if utf8.RuneCountInString(strings.TrimSpace(input.SubmissionNotes)) > maxSubmissionNotesLength {
		verr.Add("submission_notes", "is too long")
	}
	return verr
}

// SubmitProposalCommand validates and stores a pending proposal.
type SubmitProposalCommand struct {
	uow       types.UnitOfWork
	profiles  types.ProfileRepository
	matcher   EntryMatcher
	guard     dedupe.Guard
	validator *changeset.Validator
	notifier  *notify.Dispatcher
	activity  types.ActivitySink
	hooks     types.Hooks
	clock     types.Clock
	ids       types.IDGenerator
	logger    types.Logger
	gate      featuregate.FeatureGate
}

// NewSubmitProposalCommand constructs the submission handler.
func NewSubmitProposalCommand(cfg ProposalCommandConfig) *SubmitProposalCommand {
	validator := cfg.Validator
	if validator == nil {
		validator = changeset.NewValidator(changeset.Config{})
	}
	return &SubmitProposalCommand{
		uow:       cfg.UnitOfWork,
		profiles:  cfg.Profiles,
		matcher:   cfg.Matcher,
		guard:     cfg.Guard,
		validator: validator,
		notifier:  cfg.Notifier,
		activity:  cfg.Activity,
		hooks:     cfg.Hooks,
		clock:     safeClock(cfg.Clock),
		ids:       safeIDGenerator(cfg.IDGenerator),
		logger:    safeLogger(cfg.Logger),
		gate:      cfg.FeatureGate,
	}
}

var _ gocommand.Commander[SubmitProposalInput] = (*SubmitProposalCommand)(nil)

// Execute validates the request, resolves the raw URL and stores the
// proposal as pending unless the submitter already has a recent pending
// proposal for the same profile.
func (c *SubmitProposalCommand) Execute(ctx context.Context, input SubmitProposalInput) error {
	if c.uow == nil {
		return ErrMissingUnitOfWork
	}
	if c.profiles == nil {
		return types.ErrMissingProfileRepository
	}
	enabled, err := featureEnabled(ctx, c.gate, featureProposalsSubmit, input.TargetProfileID)
	if err != nil {
		return err
	}
	if !enabled {
		return ErrSubmissionsDisabled
	}

	verr := input.fieldErrors()
	cs := c.validator.Build(changeset.Input{Biography: input.Biography, Links: input.Links}, verr)
	rawURL := strings.TrimSpace(input.RawURL)
	name := strings.TrimSpace(input.NewProfileName)
	if cs.IsEmpty() && rawURL == "" && name == "" {
		verr.Add("change_set", "at least one change is required")
	}
	if input.TargetProfileID != uuid.Nil {
		target, err := c.profiles.FindProfile(ctx, input.TargetProfileID)
		if err != nil {
			return err
		}
		if target == nil {
			verr.Add("target_profile_id", "profile does not exist")
		}
	}
	if err := verr.Err(); err != nil {
		return err
	}

	createdAt := now(c.clock)
	proposal := types.Proposal{
		ID:              c.ids.UUID(),
		TargetProfileID: input.TargetProfileID,
		NewProfileName:  name,
		ChangeSet:       cs,
		RawURL:          rawURL,
		SubmitterEmail:  normalizeEmail(input.SubmitterEmail),
		SubmitterName:   strings.TrimSpace(input.SubmitterName),
		SubmissionNotes: strings.TrimSpace(input.SubmissionNotes),
		State:           types.ProposalStatePending,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	if rawURL != "" {
		proposal.CanonicalURL = canonical.Canonicalize(rawURL)
		if c.matcher != nil {
			if ref, ok := c.matcher.Match(ctx, proposal.CanonicalURL); ok {
				proposal.ResolvedEntryID = ref.ID
			}
		}
	}

	var stored *types.Proposal
	err = c.uow.RunInTx(ctx, func(ctx context.Context, stores types.Stores) error {
		duplicate, err := c.guard.HasRecentPending(ctx, stores.Proposals, proposal.TargetProfileID, proposal.SubmitterEmail, createdAt)
		if err != nil {
			return err
		}
		if duplicate {
			return types.ErrDuplicateSubmission
		}
		stored, err = stores.Proposals.CreateProposal(ctx, proposal)
		return err
	})
	if err != nil {
		if errors.Is(err, types.ErrDuplicateSubmission) {
			c.logger.Debug("duplicate proposal suppressed",
				"target_profile_id", proposal.TargetProfileID.String(),
			)
		}
		return err
	}
	if stored == nil {
		stored = &proposal
	}

	record := proposalActivity(verbSubmitted, *stored, uuid.Nil, createdAt, nil)
	logActivity(ctx, c.activity, c.logger, record)
	emitActivityHook(ctx, c.hooks, record)
	emitProposalHook(ctx, c.hooks.AfterSubmission, types.ProposalEvent{
		ProposalID: stored.ID,
		Action:     verbSubmitted,
		OccurredAt: createdAt,
		Proposal:   stored.Clone(),
	})
	c.notifier.Dispatch(ctx, notify.EventSubmission, *stored)

	if input.Result != nil {
		*input.Result = *stored
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
