package command

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-proposals/changeset"
	"github.com/goliatone/go-proposals/dedupe"
	"github.com/goliatone/go-proposals/merge"
	"github.com/goliatone/go-proposals/notify"
	"github.com/goliatone/go-proposals/pkg/types"
)

// EntryMatcher resolves a URL to a catalog entry. Resolution is best effort.
type EntryMatcher interface {
	Match(ctx context.Context, canonicalURL string) (types.EntryRef, bool)
}

// ProposalCommandConfig wires dependencies shared by the proposal commands.
// Proposals and Profiles serve reads made outside of a transaction.
type ProposalCommandConfig struct {
	UnitOfWork  types.UnitOfWork
	Proposals   types.ProposalRepository
	Profiles    types.ProfileRepository
	Matcher     EntryMatcher
	Guard       dedupe.Guard
	Validator   *changeset.Validator
	Engine      *merge.Engine
	Policy      types.TransitionPolicy
	Notifier    *notify.Dispatcher
	Activity    types.ActivitySink
	Hooks       types.Hooks
	Clock       types.Clock
	IDGenerator types.IDGenerator
	Logger      types.Logger
	FeatureGate featuregate.FeatureGate
}
