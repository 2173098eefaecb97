package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-proposals/command"
	"github.com/goliatone/go-proposals/internal/testsupport"
	"github.com/goliatone/go-proposals/notify"
	"github.com/goliatone/go-proposals/pkg/types"
	"github.com/goliatone/go-proposals/query"
	"github.com/goliatone/go-proposals/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestService_EndToEndReview(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewDB(t)

	var mu sync.Mutex
	var notices []string
	record := func(event string) func(context.Context, types.Proposal) error {
		return func(context.Context, types.Proposal) error {
			mu.Lock()
			defer mu.Unlock()
			notices = append(notices, event)
			return nil
		}
	}

	svc := service.New(service.Config{
		DB:    db,
		Clock: fixedClock{t: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)},
		Notifier: notify.PortFuncs{
			Submission: record("submission"),
			Approval:   record("approval"),
			Rejection:  record("rejection"),
		},
	})
	require.True(t, svc.Ready())
	require.NoError(t, svc.HealthCheck(ctx))

	entry, err := svc.Entries().CreateEntry(ctx, types.Entry{Title: "Keynote", URL: "https://conf.example.com/keynote"})
	require.NoError(t, err)

	var submitted types.Proposal
	require.NoError(t, svc.Commands().SubmitProposal.Execute(ctx, command.SubmitProposalInput{
		NewProfileName: "Annie Easley",
		Links:          map[string]string{"personal_site": "https://annie.example.com"},
		RawURL:         "http://www.conf.example.com/keynote/",
		SubmitterEmail: "fan@example.com",
		Result:         &submitted,
	}))
	require.Equal(t, entry.ID, submitted.ResolvedEntryID)

	var approved command.ApproveProposalResult
	require.NoError(t, svc.Commands().ApproveProposal.Execute(ctx, command.ApproveProposalInput{
		ProposalID: submitted.ID,
		Actor:      types.ActorRef{ID: uuid.New(), Type: "staff"},
		Result:     &approved,
	}))
	require.Equal(t, "https://annie.example.com", approved.Profile.PersonalSiteURL)

	rels, err := svc.Relationships().ListForProfile(ctx, approved.Profile.ID)
	require.NoError(t, err)
	require.Len(t, rels, 1)

	detail, err := svc.Queries().ProposalDetail.Query(ctx, query.ProposalDetailInput{ProposalID: submitted.ID})
	require.NoError(t, err)
	require.Equal(t, types.ProposalStateApproved, detail.Proposal.State)
	require.Len(t, detail.History, 2)

	svc.Wait()
	mu.Lock()
	defer mu.Unlock()
	require.ElementsMatch(t, []string{"submission", "approval"}, notices)
}

type hostCatalog struct{ entry types.Entry }

func (c hostCatalog) FindByCanonicalURL(context.Context, string) ([]types.Entry, error) {
	return []types.Entry{c.entry}, nil
}

func TestService_HostOwnedCatalogEntriesLinkOnApproval(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewFileDB(t, 2)

	hosted := types.Entry{
		ID:           uuid.New(),
		Title:        "Hosted talk",
		URL:          "https://talks.example.org/hosted",
		CanonicalURL: "talks.example.org/hosted",
	}
	svc := service.New(service.Config{
		DB:              db,
		Clock:           fixedClock{t: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)},
		EntryRepository: hostCatalog{entry: hosted},
	})
	require.True(t, svc.Ready())

	var submitted types.Proposal
	require.NoError(t, svc.Commands().SubmitProposal.Execute(ctx, command.SubmitProposalInput{
		NewProfileName: "Mary Jackson",
		RawURL:         "https://talks.example.org/hosted",
		SubmitterEmail: "fan@example.com",
		Result:         &submitted,
	}))
	require.Equal(t, hosted.ID, submitted.ResolvedEntryID)

	var approved command.ApproveProposalResult
	require.NoError(t, svc.Commands().ApproveProposal.Execute(ctx, command.ApproveProposalInput{
		ProposalID: submitted.ID,
		Result:     &approved,
	}))

	rels, err := svc.Relationships().ListForProfile(ctx, approved.Profile.ID)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	require.Equal(t, hosted.ID, rels[0].EntryID)
	svc.Wait()
}

func TestService_MissingDatabase(t *testing.T) {
	svc := service.New(service.Config{})
	require.False(t, svc.Ready())

	err := svc.HealthCheck(context.Background())
	require.ErrorIs(t, err, types.ErrServiceNotReady)
	require.ErrorIs(t, err, types.ErrMissingDatabase)

	err = svc.Commands().SubmitProposal.Execute(context.Background(), command.SubmitProposalInput{
		NewProfileName: "Nobody",
		SubmitterEmail: "x@example.com",
	})
	require.ErrorIs(t, err, command.ErrMissingUnitOfWork)

	_, err = svc.Queries().ProposalDetail.Query(context.Background(), query.ProposalDetailInput{ProposalID: uuid.New()})
	require.ErrorIs(t, err, types.ErrMissingProposalRepository)
}
