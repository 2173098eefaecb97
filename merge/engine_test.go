package merge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-proposals/internal/testsupport"
	"github.com/goliatone/go-proposals/pkg/types"
	"github.com/goliatone/go-proposals/profile"
	"github.com/goliatone/go-proposals/proposal"
	"github.com/goliatone/go-proposals/relationship"
	"github.com/goliatone/go-proposals/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var now = time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)

type fixture struct {
	db            *bun.DB
	uow           *store.UnitOfWork
	profiles      *profile.Repository
	proposals     *proposal.Repository
	relationships *relationship.Repository
	engine        *Engine
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testsupport.NewDB(t)
	clock := fixedClock{now}
	profiles, err := profile.NewRepository(profile.RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)
	proposals, err := proposal.NewRepository(proposal.RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)
	relationships, err := relationship.NewRepository(relationship.RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)
	uow, err := store.New(store.Config{DB: db, Proposals: proposals, Profiles: profiles, Relationships: relationships})
	require.NoError(t, err)
	return fixture{
		db:            db,
		uow:           uow,
		profiles:      profiles,
		proposals:     proposals,
		relationships: relationships,
		engine:        NewEngine(Config{Clock: clock}),
	}
}

func (f fixture) merge(t *testing.T, p *types.Proposal) (*types.Profile, error) {
	t.Helper()
	var merged *types.Profile
	err := f.uow.RunInTx(context.Background(), func(ctx context.Context, stores types.Stores) error {
		var err error
		merged, err = f.engine.Merge(ctx, stores, p)
		return err
	})
	return merged, err
}

func TestMerge_UpdatesExistingProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing, err := f.profiles.CreateProfile(ctx, types.Profile{DisplayName: "Alice", Biography: "Old"})
	require.NoError(t, err)

	p := &types.Proposal{
		ID:              uuid.New(),
		TargetProfileID: existing.ID,
		ChangeSet: types.ChangeSet{Links: map[types.LinkField]string{
			types.LinkCodeHost: "https://host.example/alice",
		}},
	}
	merged, err := f.merge(t, p)
	require.NoError(t, err)
	require.Equal(t, "https://host.example/alice", merged.CodeHostURL)
	require.Equal(t, "Old", merged.Biography)
}

func TestMerge_CreatesProfileAndPropagatesID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.proposals.CreateProposal(ctx, types.Proposal{NewProfileName: "Carol", SubmitterEmail: "c@example.com"})
	require.NoError(t, err)

	bio := "New contributor."
	created.ChangeSet.Biography = &bio
	merged, err := f.merge(t, created)
	require.NoError(t, err)
	require.Equal(t, "Carol", merged.DisplayName)
	require.Equal(t, bio, merged.Biography)
	require.Equal(t, merged.ID, created.TargetProfileID)

	stored, err := f.proposals.GetProposal(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, merged.ID, stored.TargetProfileID)
}

func TestMerge_ShortNameRollsBackProfileCreation(t *testing.T) {
	f := newFixture(t)
	p := &types.Proposal{ID: uuid.New(), NewProfileName: "Jo"}

	_, err := f.merge(t, p)
	require.ErrorIs(t, err, types.ErrMergeFailure)
	require.ErrorIs(t, err, types.ErrValidation)
	var mergeErr *types.MergeError
	require.True(t, errors.As(err, &mergeErr))
	require.Equal(t, StepResolveTarget, mergeErr.Step)

	var count int
	require.NoError(t, f.db.NewSelect().Table("profiles").ColumnExpr("COUNT(*)").Scan(context.Background(), &count))
	require.Zero(t, count)
}

func TestMerge_ProfileValidationFailureAbortsEverything(t *testing.T) {
	f := newFixture(t)
	p, err := f.proposals.CreateProposal(context.Background(), types.Proposal{
		NewProfileName: "Dana",
		SubmitterEmail: "d@example.com",
		ChangeSet: types.ChangeSet{Links: map[types.LinkField]string{
			types.LinkPersonalSite: "javascript:alert(1)",
		}},
	})
	require.NoError(t, err)
	p.ResolvedEntryID = uuid.New()

	_, err = f.merge(t, p)
	var mergeErr *types.MergeError
	require.True(t, errors.As(err, &mergeErr))
	require.Equal(t, StepSaveProfile, mergeErr.Step)

	var profiles, links int
	require.NoError(t, f.db.NewSelect().Table("profiles").ColumnExpr("COUNT(*)").Scan(context.Background(), &profiles))
	require.NoError(t, f.db.NewSelect().Table("profile_entries").ColumnExpr("COUNT(*)").Scan(context.Background(), &links))
	require.Zero(t, profiles)
	require.Zero(t, links)

	stored, err := f.proposals.GetProposal(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, uuid.Nil, stored.TargetProfileID)
}

func TestMerge_UnknownLinkFieldIsFatal(t *testing.T) {
	f := newFixture(t)
	existing, err := f.profiles.CreateProfile(context.Background(), types.Profile{DisplayName: "Alice"})
	require.NoError(t, err)

	_, err = f.merge(t, &types.Proposal{
		ID:              uuid.New(),
		TargetProfileID: existing.ID,
		ChangeSet:       types.ChangeSet{Links: map[types.LinkField]string{"myspace": "https://myspace.example/a"}},
	})
	require.ErrorIs(t, err, types.ErrUnknownLinkField)
	var mergeErr *types.MergeError
	require.True(t, errors.As(err, &mergeErr))
	require.Equal(t, StepApplyLinks, mergeErr.Step)
}

func TestMerge_MissingTargetProfile(t *testing.T) {
	f := newFixture(t)
	_, err := f.merge(t, &types.Proposal{ID: uuid.New(), TargetProfileID: uuid.New()})
	require.ErrorIs(t, err, types.ErrProfileNotFound)
	require.ErrorIs(t, err, types.ErrMergeFailure)
}

func TestMerge_RelationshipIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing, err := f.profiles.CreateProfile(ctx, types.Profile{DisplayName: "Alice"})
	require.NoError(t, err)

	p := &types.Proposal{ID: uuid.New(), TargetProfileID: existing.ID, ResolvedEntryID: uuid.New()}
	_, err = f.merge(t, p)
	require.NoError(t, err)
	_, err = f.merge(t, p)
	require.NoError(t, err)

	links, err := f.relationships.ListForProfile(ctx, existing.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, p.ID, links[0].ProposalID)
}
