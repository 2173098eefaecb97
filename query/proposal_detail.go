package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-proposals/pkg/types"
	"github.com/google/uuid"
)

// ActivityReader exposes the audit trail of a proposal.
type ActivityReader interface {
	ListForProposal(ctx context.Context, proposalID uuid.UUID) ([]types.ActivityRecord, error)
}

// ProposalDetailInput identifies the proposal to load.
type ProposalDetailInput struct {
	ProposalID uuid.UUID
}

// ProposalDetail is what a reviewer sees for a single proposal.
type ProposalDetail struct {
	Proposal types.Proposal
	History  []types.ActivityRecord
}

// ProposalDetailQuery loads a proposal with its audit trail.
type ProposalDetailQuery struct {
	proposals types.ProposalRepository
	activity  ActivityReader
}

// NewProposalDetailQuery constructs the detail query. activity may be nil, in
// which case History is left empty.
func NewProposalDetailQuery(proposals types.ProposalRepository, activity ActivityReader) *ProposalDetailQuery {
	return &ProposalDetailQuery{
		proposals: proposals,
		activity:  activity,
	}
}

var _ gocommand.Querier[ProposalDetailInput, ProposalDetail] = (*ProposalDetailQuery)(nil)

// Query returns the proposal and, when available, its activity history.
func (q *ProposalDetailQuery) Query(ctx context.Context, input ProposalDetailInput) (ProposalDetail, error) {
	if q.proposals == nil {
		return ProposalDetail{}, types.ErrMissingProposalRepository
	}
	if input.ProposalID == uuid.Nil {
		return ProposalDetail{}, types.ErrProposalIDRequired
	}
	proposal, err := q.proposals.GetProposal(ctx, input.ProposalID)
	if err != nil {
		return ProposalDetail{}, err
	}
	detail := ProposalDetail{Proposal: *proposal}
	if q.activity == nil {
		return detail, nil
	}
	history, err := q.activity.ListForProposal(ctx, proposal.ID)
	if err != nil {
		return ProposalDetail{}, err
	}
	detail.History = history
	return detail, nil
}
