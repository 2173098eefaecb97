package command

import (
	"context"
	"fmt"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-proposals/notify"
	"github.com/goliatone/go-proposals/pkg/types"
	"github.com/google/uuid"
)

// RejectProposalInput identifies the proposal to reject and why.
type RejectProposalInput struct {
	ProposalID    uuid.UUID
	DecisionNotes string
	Actor         types.ActorRef
	Result        *types.Proposal
}

// Type implements gocommand.Message.
func (RejectProposalInput) Type() string {
	return "command.proposal.reject"
}

// Validate implements gocommand.Message.
func (input RejectProposalInput) Validate() error {
	if input.ProposalID == uuid.Nil {
		return ErrProposalIDRequired
	}
	if strings.TrimSpace(input.DecisionNotes) == "" {
		return fmt.Errorf("%w: decision_notes", types.ErrMissingRequiredField)
	}
	return nil
}

// RejectProposalCommand marks a pending proposal rejected. The target
// profile is never touched.
type RejectProposalCommand struct {
	uow      types.UnitOfWork
	policy   types.TransitionPolicy
	notifier *notify.Dispatcher
	activity types.ActivitySink
	hooks    types.Hooks
	clock    types.Clock
	logger   types.Logger
}

// NewRejectProposalCommand constructs the rejection handler.
func NewRejectProposalCommand(cfg ProposalCommandConfig) *RejectProposalCommand {
	return &RejectProposalCommand{
		uow:      cfg.UnitOfWork,
		policy:   safePolicy(cfg.Policy),
		notifier: cfg.Notifier,
		activity: cfg.Activity,
		hooks:    cfg.Hooks,
		clock:    safeClock(cfg.Clock),
		logger:   safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[RejectProposalInput] = (*RejectProposalCommand)(nil)

// Execute rejects the proposal and stores the decision notes.
func (c *RejectProposalCommand) Execute(ctx context.Context, input RejectProposalInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	if c.uow == nil {
		return ErrMissingUnitOfWork
	}

	notes := strings.TrimSpace(input.DecisionNotes)
	decidedAt := now(c.clock)
	var rejected *types.Proposal
	err := c.uow.RunInTx(ctx, func(ctx context.Context, stores types.Stores) error {
		current, err := stores.Proposals.GetProposal(ctx, input.ProposalID)
		if err != nil {
			return err
		}
		if err := enforcePolicy(c.policy, c.logger, current, types.ProposalStateRejected); err != nil {
			return err
		}
		rejected, err = stores.Proposals.Transition(ctx, types.ProposalTransition{
			ProposalID:    current.ID,
			From:          types.ProposalStatePending,
			To:            types.ProposalStateRejected,
			DecisionNotes: notes,
			DecidedAt:     decidedAt,
			DecidedBy:     input.Actor.ID,
		})
		return err
	})
	if err != nil {
		return err
	}

	record := proposalActivity(verbRejected, *rejected, input.Actor.ID, decidedAt, map[string]any{
		"decision_notes": notes,
	})
	logActivity(ctx, c.activity, c.logger, record)
	emitActivityHook(ctx, c.hooks, record)
	emitProposalHook(ctx, c.hooks.AfterRejection, types.ProposalEvent{
		ProposalID: rejected.ID,
		Action:     verbRejected,
		ActorID:    input.Actor.ID,
		OccurredAt: decidedAt,
		Proposal:   rejected.Clone(),
	})
	c.notifier.Dispatch(ctx, notify.EventRejection, *rejected)

	if input.Result != nil {
		*input.Result = *rejected
	}
	return nil
}
