package activity

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-proposals/internal/testsupport"
	"github.com/goliatone/go-proposals/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRepository_LogAndListForProposal(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewDB(t)

	store, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	proposalID := uuid.New()
	actor := uuid.New()
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Log(ctx, types.ActivityRecord{
		Verb:       "proposal.submitted",
		ObjectType: ObjectTypeProposal,
		ObjectID:   proposalID.String(),
		Channel:    "proposals",
		Data:       map[string]any{"state": "pending"},
		OccurredAt: base,
	}))
	require.NoError(t, store.Log(ctx, types.ActivityRecord{
		ActorID:    actor,
		Verb:       "proposal.rejected",
		ObjectType: ObjectTypeProposal,
		ObjectID:   proposalID.String(),
		Channel:    "proposals",
		Data:       map[string]any{"state": "rejected"},
		OccurredAt: base.Add(time.Hour),
	}))
	require.NoError(t, store.Log(ctx, types.ActivityRecord{
		Verb:       "proposal.submitted",
		ObjectType: ObjectTypeProposal,
		ObjectID:   uuid.NewString(),
		OccurredAt: base,
	}))

	records, err := store.ListForProposal(ctx, proposalID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "proposal.submitted", records[0].Verb)
	require.Equal(t, uuid.Nil, records[0].ActorID)
	require.Equal(t, "proposal.rejected", records[1].Verb)
	require.Equal(t, actor, records[1].ActorID)
	require.Equal(t, "rejected", records[1].Data["state"])
}

func TestRepository_LogRequiresVerb(t *testing.T) {
	store, err := NewRepository(RepositoryConfig{DB: testsupport.NewDB(t)})
	require.NoError(t, err)
	require.Error(t, store.Log(context.Background(), types.ActivityRecord{ObjectType: ObjectTypeProposal}))
}

func TestSanitizeRecordMasksSubmitterEmail(t *testing.T) {
	record := SanitizeRecord(nil, types.ActivityRecord{
		Verb: "proposal.submitted",
		Data: map[string]any{
			"submitter_email": "alice@example.com",
			"state":           "pending",
		},
	})
	require.NotEqual(t, "alice@example.com", record.Data["submitter_email"])
	require.Equal(t, "pending", record.Data["state"])
}
