package command

import (
	"context"
	"sync"
	"testing"
	"time"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-proposals/activity"
	"github.com/goliatone/go-proposals/changeset"
	"github.com/goliatone/go-proposals/dedupe"
	"github.com/goliatone/go-proposals/entry"
	"github.com/goliatone/go-proposals/internal/testsupport"
	"github.com/goliatone/go-proposals/merge"
	"github.com/goliatone/go-proposals/notify"
	"github.com/goliatone/go-proposals/pkg/types"
	"github.com/goliatone/go-proposals/profile"
	"github.com/goliatone/go-proposals/proposal"
	"github.com/goliatone/go-proposals/relationship"
	"github.com/goliatone/go-proposals/store"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingPort struct {
	mu     sync.Mutex
	events []string
	fail   bool
}

func (p *recordingPort) record(event string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	if p.fail {
		return context.DeadlineExceeded
	}
	return nil
}

func (p *recordingPort) NotifySubmission(context.Context, types.Proposal) error {
	return p.record("submission")
}

func (p *recordingPort) NotifyApproval(context.Context, types.Proposal) error {
	return p.record("approval")
}

func (p *recordingPort) NotifyRejection(context.Context, types.Proposal) error {
	return p.record("rejection")
}

func (p *recordingPort) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	copy(out, p.events)
	return out
}

type stubFeatureGate struct {
	enabled bool
	err     error
	keys    []string
}

func (s *stubFeatureGate) Enabled(_ context.Context, key string, _ ...featuregate.ResolveOption) (bool, error) {
	s.keys = append(s.keys, key)
	if s.err != nil {
		return false, s.err
	}
	return s.enabled, nil
}

type recordedHooks struct {
	mu         sync.Mutex
	submitted  []types.ProposalEvent
	approved   []types.ProposalEvent
	rejected   []types.ProposalEvent
	activities []types.ActivityRecord
}

func (h *recordedHooks) hooks() types.Hooks {
	return types.Hooks{
		AfterSubmission: func(_ context.Context, e types.ProposalEvent) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.submitted = append(h.submitted, e)
		},
		AfterApproval: func(_ context.Context, e types.ProposalEvent) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.approved = append(h.approved, e)
		},
		AfterRejection: func(_ context.Context, e types.ProposalEvent) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.rejected = append(h.rejected, e)
		},
		AfterActivity: func(_ context.Context, r types.ActivityRecord) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.activities = append(h.activities, r)
		},
	}
}

type harness struct {
	db            *bun.DB
	clock         *stepClock
	profiles      *profile.Repository
	proposals     *proposal.Repository
	entries       *entry.Repository
	relationships *relationship.Repository
	activity      *activity.Repository
	port          *recordingPort
	notifier      *notify.Dispatcher
	hooks         *recordedHooks

	submit  *SubmitProposalCommand
	approve *ApproveProposalCommand
	reject  *RejectProposalCommand
	rematch *RematchEntryCommand
}

type harnessOption func(*ProposalCommandConfig)

func withFeatureGate(gate featuregate.FeatureGate) harnessOption {
	return func(cfg *ProposalCommandConfig) { cfg.FeatureGate = gate }
}

var harnessStart = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	return newHarnessOn(t, testsupport.NewDB(t), opts...)
}

func newHarnessOn(t *testing.T, db *bun.DB, opts ...harnessOption) *harness {
	t.Helper()
	clock := &stepClock{t: harnessStart}

	profiles, err := profile.NewRepository(profile.RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)
	proposals, err := proposal.NewRepository(proposal.RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)
	entries, err := entry.NewRepository(entry.RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)
	relationships, err := relationship.NewRepository(relationship.RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)
	activityRepo, err := activity.NewRepository(activity.RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)
	uow, err := store.New(store.Config{
		DB:            db,
		Proposals:     proposals,
		Profiles:      profiles,
		Relationships: relationships,
	})
	require.NoError(t, err)

	port := &recordingPort{}
	notifier := notify.NewDispatcher(notify.Config{Port: port})
	hooks := &recordedHooks{}

	cfg := ProposalCommandConfig{
		UnitOfWork: uow,
		Proposals:  proposals,
		Profiles:   profiles,
		Matcher:    entry.NewMatcher(entries, nil),
		Guard:      dedupe.NewGuard(0),
		Validator:  changeset.NewValidator(changeset.Config{}),
		Engine:     merge.NewEngine(merge.Config{Clock: clock}),
		Notifier:   notifier,
		Activity:   activityRepo,
		Hooks:      hooks.hooks(),
		Clock:      clock,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &harness{
		db:            db,
		clock:         clock,
		profiles:      profiles,
		proposals:     proposals,
		entries:       entries,
		relationships: relationships,
		activity:      activityRepo,
		port:          port,
		notifier:      notifier,
		hooks:         hooks,
		submit:        NewSubmitProposalCommand(cfg),
		approve:       NewApproveProposalCommand(cfg),
		reject:        NewRejectProposalCommand(cfg),
		rematch:       NewRematchEntryCommand(cfg),
	}
}

func (h *harness) createProfile(t *testing.T, name string) *types.Profile {
	t.Helper()
	created, err := h.profiles.CreateProfile(context.Background(), types.Profile{DisplayName: name})
	require.NoError(t, err)
	return created
}

func (h *harness) submitOK(t *testing.T, input SubmitProposalInput) types.Proposal {
	t.Helper()
	var result types.Proposal
	input.Result = &result
	require.NoError(t, h.submit.Execute(context.Background(), input))
	return result
}

func (h *harness) count(t *testing.T, table string) int {
	t.Helper()
	var count int
	require.NoError(t, h.db.NewSelect().Table(table).ColumnExpr("COUNT(*)").Scan(context.Background(), &count))
	return count
}
