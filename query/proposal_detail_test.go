package query

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-proposals/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestProposalDetailQuery_ReturnsProposalAndHistory(t *testing.T) {
	id := uuid.New()
	proposals := &fakeProposals{proposal: &types.Proposal{ID: id, State: types.ProposalStatePending}}
	activity := &fakeActivity{records: []types.ActivityRecord{{Verb: "proposal.submitted", ObjectID: id.String()}}}

	detail, err := NewProposalDetailQuery(proposals, activity).Query(context.Background(), ProposalDetailInput{ProposalID: id})
	require.NoError(t, err)
	require.Equal(t, id, detail.Proposal.ID)
	require.Len(t, detail.History, 1)
	require.Equal(t, id, activity.requested)
}

func TestProposalDetailQuery_WithoutActivity(t *testing.T) {
	id := uuid.New()
	proposals := &fakeProposals{proposal: &types.Proposal{ID: id}}

	detail, err := NewProposalDetailQuery(proposals, nil).Query(context.Background(), ProposalDetailInput{ProposalID: id})
	require.NoError(t, err)
	require.Empty(t, detail.History)
}

func TestProposalDetailQuery_Errors(t *testing.T) {
	_, err := NewProposalDetailQuery(nil, nil).Query(context.Background(), ProposalDetailInput{ProposalID: uuid.New()})
	require.ErrorIs(t, err, types.ErrMissingProposalRepository)

	query := NewProposalDetailQuery(&fakeProposals{err: types.ErrProposalNotFound}, nil)
	_, err = query.Query(context.Background(), ProposalDetailInput{})
	require.ErrorIs(t, err, types.ErrProposalIDRequired)

	_, err = query.Query(context.Background(), ProposalDetailInput{ProposalID: uuid.New()})
	require.ErrorIs(t, err, types.ErrProposalNotFound)

	boom := errors.New("activity store down")
	query = NewProposalDetailQuery(&fakeProposals{proposal: &types.Proposal{ID: uuid.New()}}, &fakeActivity{err: boom})
	_, err = query.Query(context.Background(), ProposalDetailInput{ProposalID: uuid.New()})
	require.ErrorIs(t, err, boom)
}

type fakeProposals struct {
	types.ProposalRepository
	proposal *types.Proposal
	err      error
}

func (f *fakeProposals) GetProposal(context.Context, uuid.UUID) (*types.Proposal, error) {
	if f.err != nil {
		return nil, f.err
	}
	clone := f.proposal.Clone()
	return &clone, nil
}

type fakeActivity struct {
	records   []types.ActivityRecord
	requested uuid.UUID
	err       error
}

func (f *fakeActivity) ListForProposal(_ context.Context, id uuid.UUID) ([]types.ActivityRecord, error) {
	f.requested = id
	return f.records, f.err
}
