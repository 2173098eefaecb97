package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-proposals/activity"
	"github.com/goliatone/go-proposals/changeset"
	"github.com/goliatone/go-proposals/command"
	"github.com/goliatone/go-proposals/dedupe"
	"github.com/goliatone/go-proposals/entry"
	"github.com/goliatone/go-proposals/merge"
	"github.com/goliatone/go-proposals/notify"
	"github.com/goliatone/go-proposals/pkg/types"
	"github.com/goliatone/go-proposals/profile"
	"github.com/goliatone/go-proposals/proposal"
	"github.com/goliatone/go-proposals/query"
	"github.com/goliatone/go-proposals/relationship"
	"github.com/goliatone/go-proposals/store"
	"github.com/uptrace/bun"
)

// Service is the entry point for go-proposals. It wires the Bun stores, the
// unit of work, and the command/query facades used by public forms and the
// staff review console.
type Service struct {
	cfg           Config
	commands      Commands
	queries       Queries
	proposals     *proposal.Repository
	profiles      *profile.Repository
	entries       *entry.Repository
	relationships *relationship.Repository
	uow           *store.UnitOfWork
	notifier      *notify.Dispatcher
	initErr       error
}

// Commands exposes the service command handlers.
type Commands struct {
	SubmitProposal  *command.SubmitProposalCommand
	ApproveProposal *command.ApproveProposalCommand
	RejectProposal  *command.RejectProposalCommand
	RematchEntry    *command.RematchEntryCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	ProposalDetail *query.ProposalDetailQuery
}

// Config captures the dependencies and tunables of the workflow. DB is
// required; everything else has a default.
type Config struct {
	DB *bun.DB
	// EntryRepository replaces the bundled catalog lookup when the host owns
	// the catalog elsewhere. Entry ids it returns need not exist in
	// catalog_entries.
	EntryRepository      types.EntryRepository
	ActivitySink         types.ActivitySink
	ActivityReader       query.ActivityReader
	Notifier             types.NotificationPort
	NotificationTimeout  time.Duration
	Hooks                types.Hooks
	Clock                types.Clock
	IDGenerator          types.IDGenerator
	Logger               types.Logger
	TransitionPolicy     types.TransitionPolicy
	FeatureGate          featuregate.FeatureGate
	DuplicateWindow      time.Duration
	MaxBiographyLength   int
	MinDisplayNameLength int
	TxOptions            *sql.TxOptions
	TxRetries            int
}

// New constructs a Service from the supplied configuration. Wiring failures
// are logged and reported by HealthCheck.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)
	s := &Service{cfg: norm}
	if err := s.wire(); err != nil {
		s.initErr = err
		norm.Logger.Error("go-proposals: service initialization failed", err)
	}
	s.notifier = notify.NewDispatcher(notify.Config{
		Port:    norm.Notifier,
		Logger:  norm.Logger,
		Timeout: norm.NotificationTimeout,
	})
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	if cfg.TransitionPolicy == nil {
		cfg.TransitionPolicy = types.DefaultProposalPolicy()
	}
	if cfg.DuplicateWindow <= 0 {
		cfg.DuplicateWindow = dedupe.DefaultWindow
	}
	if cfg.MaxBiographyLength <= 0 {
		cfg.MaxBiographyLength = changeset.DefaultMaxBiographyLength
	}
	if cfg.MinDisplayNameLength <= 0 {
		cfg.MinDisplayNameLength = profile.DefaultMinDisplayNameLength
	}
	if cfg.TxRetries == 0 {
		cfg.TxRetries = store.DefaultRetries
	}
	return cfg
}

func (s *Service) wire() error {
	cfg := s.cfg
	if cfg.DB == nil {
		return types.ErrMissingDatabase
	}
	var err error
	if s.profiles, err = profile.NewRepository(profile.RepositoryConfig{
		DB:                   cfg.DB,
		Clock:                cfg.Clock,
		IDGenerator:          cfg.IDGenerator,
		MinDisplayNameLength: cfg.MinDisplayNameLength,
		MaxBiographyLength:   cfg.MaxBiographyLength,
	}); err != nil {
		return fmt.Errorf("profile repository: %w", err)
	}
	if s.proposals, err = proposal.NewRepository(proposal.RepositoryConfig{DB: cfg.DB, Clock: cfg.Clock}); err != nil {
		return fmt.Errorf("proposal repository: %w", err)
	}
	if s.entries, err = entry.NewRepository(entry.RepositoryConfig{DB: cfg.DB, Clock: cfg.Clock}); err != nil {
		return fmt.Errorf("entry repository: %w", err)
	}
	if s.relationships, err = relationship.NewRepository(relationship.RepositoryConfig{DB: cfg.DB, Clock: cfg.Clock}); err != nil {
		return fmt.Errorf("relationship repository: %w", err)
	}
	if s.cfg.ActivitySink == nil {
		repo, err := activity.NewRepository(activity.RepositoryConfig{
			DB:    cfg.DB,
			Clock: cfg.Clock,
			IDGen: cfg.IDGenerator,
		})
		if err != nil {
			return fmt.Errorf("activity repository: %w", err)
		}
		s.cfg.ActivitySink = repo
	}
	if s.cfg.ActivityReader == nil {
		if reader, ok := s.cfg.ActivitySink.(query.ActivityReader); ok {
			s.cfg.ActivityReader = reader
		}
	}
	if s.uow, err = store.New(store.Config{
		DB:            cfg.DB,
		Proposals:     s.proposals,
		Profiles:      s.profiles,
		Relationships: s.relationships,
		TxOptions:     cfg.TxOptions,
		Retries:       cfg.TxRetries,
		Logger:        cfg.Logger,
	}); err != nil {
		return fmt.Errorf("unit of work: %w", err)
	}
	return nil
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Profiles returns the bundled profile store.
func (s *Service) Profiles() *profile.Repository {
	if s == nil {
		return nil
	}
	return s.profiles
}

// Entries returns the bundled catalog store so hosts can seed or import
// entries.
func (s *Service) Entries() *entry.Repository {
	if s == nil {
		return nil
	}
	return s.entries
}

// Relationships returns the bundled profile/entry link store.
func (s *Service) Relationships() *relationship.Repository {
	if s == nil {
		return nil
	}
	return s.relationships
}

// ActivitySink returns the configured sink so transports can emit activity
// records for auxiliary workflows.
func (s *Service) ActivitySink() types.ActivitySink {
	if s == nil {
		return nil
	}
	return s.cfg.ActivitySink
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil &&
		s.initErr == nil &&
		s.uow != nil &&
		s.proposals != nil &&
		s.profiles != nil &&
		s.cfg.ActivitySink != nil
}

// HealthCheck surfaces wiring failures and pings the database.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s == nil {
		return types.ErrServiceNotReady
	}
	if s.initErr != nil {
		return errors.Join(types.ErrServiceNotReady, s.initErr)
	}
	if !s.Ready() {
		return types.ErrServiceNotReady
	}
	if err := s.cfg.DB.PingContext(ctx); err != nil {
		return errors.Join(types.ErrServiceNotReady, err)
	}
	return nil
}

// Wait blocks until queued notifications have been delivered. Hosts call it
// on shutdown.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.notifier.Wait()
}

func (s *Service) buildCommands() Commands {
	cfg := s.commandConfig()
	return Commands{
		SubmitProposal:  command.NewSubmitProposalCommand(cfg),
		ApproveProposal: command.NewApproveProposalCommand(cfg),
		RejectProposal:  command.NewRejectProposalCommand(cfg),
		RematchEntry:    command.NewRematchEntryCommand(cfg),
	}
}

func (s *Service) commandConfig() command.ProposalCommandConfig {
	cfg := command.ProposalCommandConfig{
		Guard: dedupe.NewGuard(s.cfg.DuplicateWindow),
		Validator: changeset.NewValidator(changeset.Config{
			MaxBiographyLength: s.cfg.MaxBiographyLength,
		}),
		Engine:      merge.NewEngine(merge.Config{Clock: s.cfg.Clock, Logger: s.cfg.Logger}),
		Policy:      s.cfg.TransitionPolicy,
		Notifier:    s.notifier,
		Activity:    s.cfg.ActivitySink,
		Hooks:       s.cfg.Hooks,
		Clock:       s.cfg.Clock,
		IDGenerator: s.cfg.IDGenerator,
		Logger:      s.cfg.Logger,
		FeatureGate: s.cfg.FeatureGate,
	}
	// Typed nils must not leak into the interface fields.
	if s.uow != nil {
		cfg.UnitOfWork = s.uow
	}
	if s.proposals != nil {
		cfg.Proposals = s.proposals
	}
	if s.profiles != nil {
		cfg.Profiles = s.profiles
	}
	entries := s.cfg.EntryRepository
	if entries == nil && s.entries != nil {
		entries = s.entries
	}
	if entries != nil {
		cfg.Matcher = entry.NewMatcher(entries, s.cfg.Logger)
	}
	return cfg
}

func (s *Service) buildQueries() Queries {
	var proposals types.ProposalRepository
	if s.proposals != nil {
		proposals = s.proposals
	}
	return Queries{
		ProposalDetail: query.NewProposalDetailQuery(proposals, s.cfg.ActivityReader),
	}
}
