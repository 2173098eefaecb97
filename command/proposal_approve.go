package command

import (
	"context"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-proposals/merge"
	"github.com/goliatone/go-proposals/notify"
	"github.com/goliatone/go-proposals/pkg/types"
	"github.com/google/uuid"
)

// ApproveProposalInput identifies the proposal to approve.
type ApproveProposalInput struct {
	ProposalID uuid.UUID
	Actor      types.ActorRef
	Result     *ApproveProposalResult
}

// ApproveProposalResult carries the approved proposal and the merged profile.
type ApproveProposalResult struct {
	Proposal types.Proposal
	Profile  types.Profile
}

// Type implements gocommand.Message.
func (ApproveProposalInput) Type() string {
	return "command.proposal.approve"
}

// Validate implements gocommand.Message.
func (input ApproveProposalInput) Validate() error {
	if input.ProposalID == uuid.Nil {
		return ErrProposalIDRequired
	}
	return nil
}

// ApproveProposalCommand merges a pending proposal and marks it approved in a
// single transaction.
type ApproveProposalCommand struct {
	uow      types.UnitOfWork
	engine   *merge.Engine
	policy   types.TransitionPolicy
	notifier *notify.Dispatcher
	activity types.ActivitySink
	hooks    types.Hooks
	clock    types.Clock
	logger   types.Logger
}

// NewApproveProposalCommand constructs the approval handler.
func NewApproveProposalCommand(cfg ProposalCommandConfig) *ApproveProposalCommand {
	return &ApproveProposalCommand{
		uow:      cfg.UnitOfWork,
		engine:   cfg.Engine,
		policy:   safePolicy(cfg.Policy),
		notifier: cfg.Notifier,
		activity: cfg.Activity,
		hooks:    cfg.Hooks,
		clock:    safeClock(cfg.Clock),
		logger:   safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[ApproveProposalInput] = (*ApproveProposalCommand)(nil)

// Execute approves the proposal. When the merge fails the transaction rolls
// back and the proposal stays pending.
func (c *ApproveProposalCommand) Execute(ctx context.Context, input ApproveProposalInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	if c.uow == nil {
		return ErrMissingUnitOfWork
	}
	if c.engine == nil {
		return ErrMissingMergeEngine
	}

	var (
		approved *types.Proposal
		profile  *types.Profile
		created  bool
	)
	decidedAt := now(c.clock)
	err := c.uow.RunInTx(ctx, func(ctx context.Context, stores types.Stores) error {
		current, err := stores.Proposals.GetProposal(ctx, input.ProposalID)
		if err != nil {
			return err
		}
		if err := enforcePolicy(c.policy, c.logger, current, types.ProposalStateApproved); err != nil {
			return err
		}

		working := current.Clone()
		created = working.TargetProfileID == uuid.Nil
		profile, err = c.engine.Merge(ctx, stores, &working)
		if err != nil {
			return err
		}

		approved, err = stores.Proposals.Transition(ctx, types.ProposalTransition{
			ProposalID: working.ID,
			From:       types.ProposalStatePending,
			To:         types.ProposalStateApproved,
			DecidedAt:  decidedAt,
			DecidedBy:  input.Actor.ID,
		})
		return err
	})
	if err != nil {
		return err
	}

	record := proposalActivity(verbApproved, *approved, input.Actor.ID, decidedAt, map[string]any{
		"profile_id":      profile.ID.String(),
		"profile_created": created,
	})
	logActivity(ctx, c.activity, c.logger, record)
	emitActivityHook(ctx, c.hooks, record)
	emitProposalHook(ctx, c.hooks.AfterApproval, types.ProposalEvent{
		ProposalID: approved.ID,
		Action:     verbApproved,
		ActorID:    input.Actor.ID,
		OccurredAt: decidedAt,
		Proposal:   approved.Clone(),
	})
	c.notifier.Dispatch(ctx, notify.EventApproval, *approved)

	if input.Result != nil {
		input.Result.Proposal = *approved
		input.Result.Profile = *profile
	}
	return nil
}

func enforcePolicy(policy types.TransitionPolicy, logger types.Logger, current *types.Proposal, target types.ProposalState) error {
	if current == nil {
		return types.ErrProposalNotFound
	}
	if err := policy.Validate(current.State, target); err != nil {
		logger.Debug("proposal policy rejected transition",
			"proposal_id", current.ID.String(),
			"from", string(current.State),
			"to", string(target),
		)
		return fmt.Errorf("%w: proposal is %s", err, current.State)
	}
	return nil
}
