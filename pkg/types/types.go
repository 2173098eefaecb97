package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProposalState represents the workflow states a proposal moves through.
type ProposalState string

const (
	ProposalStatePending  ProposalState = "pending"
	ProposalStateApproved ProposalState = "approved"
	ProposalStateRejected ProposalState = "rejected"
)

// Terminal reports whether no further transitions are allowed from the state.
func (s ProposalState) Terminal() bool {
	return s == ProposalStateApproved || s == ProposalStateRejected
}

// ActorRef identifies the staff member (or system) deciding a proposal.
type ActorRef struct {
	ID   uuid.UUID
	Type string
}

// EntryRef is an opaque reference to a catalog entry. The catalog owns the
// entry subtypes; the workflow only needs the identifier.
type EntryRef struct {
	ID uuid.UUID
}

// Proposal is a community request to create or modify a profile.
type Proposal struct {
	ID              uuid.UUID
	TargetProfileID uuid.UUID
	NewProfileName  string
	ChangeSet       ChangeSet
	ResolvedEntryID uuid.UUID
	RawURL          string
	CanonicalURL    string
	SubmitterEmail  string
	SubmitterName   string
	SubmissionNotes string
	State           ProposalState
	DecisionNotes   string
	DecidedAt       time.Time
	DecidedBy       uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsNewProfileProposal reports whether the proposal asks for a new profile.
func (p Proposal) IsNewProfileProposal() bool {
	return p.NewProfileName != ""
}

// HasEntryProposal reports whether the submitter supplied a URL to link.
func (p Proposal) HasEntryProposal() bool {
	return p.RawURL != ""
}

// HasLinkChanges reports whether any link slot is proposed.
func (p Proposal) HasLinkChanges() bool {
	return p.ChangeSet.HasLinks()
}

// HasBiographyChanges reports whether a biography is proposed.
func (p Proposal) HasBiographyChanges() bool {
	return p.ChangeSet.HasBiography()
}

// IsEntryMatched reports whether the raw URL resolved to a catalog entry.
func (p Proposal) IsEntryMatched() bool {
	return p.ResolvedEntryID != uuid.Nil
}

// Clone returns a copy with the change set detached from the original maps.
func (p Proposal) Clone() Proposal {
	clone := p
	clone.ChangeSet = p.ChangeSet.Clone()
	return clone
}

// Profile is the contributor record edited through proposals. The host
// application owns it; the workflow only creates or updates fields.
type Profile struct {
	ID               uuid.UUID
	DisplayName      string
	Biography        string
	CodeHostURL      string
	PersonalSiteURL  string
	TwitterURL       string
	LinkedInURL      string
	MastodonURL      string
	BlueskyURL       string
	YouTubeURL       string
	InstagramURL     string
	FacebookURL      string
	StackOverflowURL string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Entry is a catalog item a profile can be linked to.
type Entry struct {
	ID           uuid.UUID
	Title        string
	URL          string
	CanonicalURL string
	CreatedAt    time.Time
}

// Ref returns the opaque reference for the entry.
func (e Entry) Ref() EntryRef {
	return EntryRef{ID: e.ID}
}

// Relationship links a profile to a catalog entry.
type Relationship struct {
	ProfileID  uuid.UUID
	EntryID    uuid.UUID
	ProposalID uuid.UUID
	CreatedAt  time.Time
}

// ProposalTransition describes a guarded state change. The write only
// succeeds while the stored state still equals From.
type ProposalTransition struct {
	ProposalID    uuid.UUID
	From          ProposalState
	To            ProposalState
	DecisionNotes string
	DecidedAt     time.Time
	DecidedBy     uuid.UUID
}

// ProposalEvent is emitted after a proposal has been submitted or decided.
type ProposalEvent struct {
	ProposalID uuid.UUID
	Action     string
	ActorID    uuid.UUID
	OccurredAt time.Time
	Proposal   Proposal
}

// Hooks groups optional callbacks invoked after workflow steps commit.
type Hooks struct {
	AfterSubmission func(context.Context, ProposalEvent)
	AfterApproval   func(context.Context, ProposalEvent)
	AfterRejection  func(context.Context, ProposalEvent)
	AfterActivity   func(context.Context, ActivityRecord)
}

// ActivityRecord describes an audit entry for workflow decisions.
type ActivityRecord struct {
	ID         uuid.UUID
	ActorID    uuid.UUID
	Verb       string
	ObjectType string
	ObjectID   string
	Channel    string
	Data       map[string]any
	OccurredAt time.Time
}

// ActivitySink is the minimal contract for emitting audit records.
type ActivitySink interface {
	Log(context.Context, ActivityRecord) error
}

// ProfileRepository is the narrow view of the host profile store.
// FindProfile returns nil, nil when the profile does not exist.
type ProfileRepository interface {
	FindProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	CreateProfile(ctx context.Context, profile Profile) (*Profile, error)
	SaveProfile(ctx context.Context, profile Profile) (*Profile, error)
}

// EntryRepository looks up catalog entries by canonical URL. Results are
// ordered by creation.
type EntryRepository interface {
	FindByCanonicalURL(ctx context.Context, canonicalURL string) ([]Entry, error)
}

// RelationshipRepository persists profile/entry links.
type RelationshipRepository interface {
	Exists(ctx context.Context, profileID, entryID uuid.UUID) (bool, error)
	Create(ctx context.Context, rel Relationship) error
}

// ProposalRepository persists proposals.
type ProposalRepository interface {
	CreateProposal(ctx context.Context, proposal Proposal) (*Proposal, error)
	GetProposal(ctx context.Context, id uuid.UUID) (*Proposal, error)
	CountRecentPending(ctx context.Context, targetProfileID uuid.UUID, submitterEmail string, since, until time.Time) (int, error)
	Transition(ctx context.Context, transition ProposalTransition) (*Proposal, error)
	UpdateResolution(ctx context.Context, id, entryID uuid.UUID, at time.Time) error
	AssignTargetProfile(ctx context.Context, id, profileID uuid.UUID, at time.Time) error
}

// Stores bundles the repositories bound to a single transaction. Catalog
// lookups are read-only and run outside of it.
type Stores struct {
	Proposals     ProposalRepository
	Profiles      ProfileRepository
	Relationships RelationshipRepository
}

// UnitOfWork runs fn inside one atomic transaction. Returning an error from
// fn rolls back every write made through the supplied stores.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

// NotificationPort dispatches best-effort notices about proposal outcomes.
// Errors are reported to the caller for logging only.
type NotificationPort interface {
	NotifySubmission(ctx context.Context, proposal Proposal) error
	NotifyApproval(ctx context.Context, proposal Proposal) error
	NotifyRejection(ctx context.Context, proposal Proposal) error
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the service.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}
