package command

import (
	"context"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-proposals/pkg/types"
	"github.com/google/uuid"
)

// RematchEntryInput identifies a pending proposal whose raw URL should be
// resolved against the catalog again.
type RematchEntryInput struct {
	ProposalID uuid.UUID
	Actor      types.ActorRef
	Result     *types.Proposal
}

// Type implements gocommand.Message.
func (RematchEntryInput) Type() string {
	return "command.proposal.entry.rematch"
}

// Validate implements gocommand.Message.
func (input RematchEntryInput) Validate() error {
	if input.ProposalID == uuid.Nil {
		return ErrProposalIDRequired
	}
	return nil
}

// RematchEntryCommand refreshes the resolved entry of a pending proposal,
// picking up catalog entries added after submission.
type RematchEntryCommand struct {
	proposals types.ProposalRepository
	matcher   EntryMatcher
	activity  types.ActivitySink
	hooks     types.Hooks
	clock     types.Clock
	logger    types.Logger
}

// NewRematchEntryCommand constructs the rematch handler.
func NewRematchEntryCommand(cfg ProposalCommandConfig) *RematchEntryCommand {
	return &RematchEntryCommand{
		proposals: cfg.Proposals,
		matcher:   cfg.Matcher,
		activity:  cfg.Activity,
		hooks:     cfg.Hooks,
		clock:     safeClock(cfg.Clock),
		logger:    safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[RematchEntryInput] = (*RematchEntryCommand)(nil)

// Execute re-runs entity matching. Only pending proposals can be rematched;
// the write is conditional on the proposal still being pending.
func (c *RematchEntryCommand) Execute(ctx context.Context, input RematchEntryInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	if c.proposals == nil {
		return types.ErrMissingProposalRepository
	}
	current, err := c.proposals.GetProposal(ctx, input.ProposalID)
	if err != nil {
		return err
	}
	if current.State != types.ProposalStatePending {
		return fmt.Errorf("%w: proposal is %s", types.ErrInvalidStateTransition, current.State)
	}

	var resolved uuid.UUID
	if current.CanonicalURL != "" && c.matcher != nil {
		if ref, ok := c.matcher.Match(ctx, current.CanonicalURL); ok {
			resolved = ref.ID
		}
	}

	result := current
	if resolved != current.ResolvedEntryID {
		at := now(c.clock)
		if err := c.proposals.UpdateResolution(ctx, current.ID, resolved, at); err != nil {
			return err
		}
		previous := current.ResolvedEntryID
		result, err = c.proposals.GetProposal(ctx, current.ID)
		if err != nil {
			return err
		}
		extra := map[string]any{}
		if previous != uuid.Nil {
			extra["previous_entry_id"] = previous.String()
		}
		record := proposalActivity(verbRematched, *result, input.Actor.ID, at, extra)
		logActivity(ctx, c.activity, c.logger, record)
		emitActivityHook(ctx, c.hooks, record)
	}

	if input.Result != nil {
		*input.Result = *result
	}
	return nil
}
