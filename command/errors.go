package command

import (
	"errors"

	"github.com/goliatone/go-proposals/pkg/types"
)

var (
	// ErrProposalIDRequired indicates a decision command lacks the proposal id.
	ErrProposalIDRequired = types.ErrProposalIDRequired
	// ErrMissingUnitOfWork indicates the command has no transaction runner.
	ErrMissingUnitOfWork = types.ErrMissingUnitOfWork
	// ErrMissingMergeEngine indicates the approve command has no merge engine.
	ErrMissingMergeEngine = errors.New("go-proposals: missing merge engine")
	// ErrSubmissionsDisabled indicates submissions are switched off via feature gate.
	ErrSubmissionsDisabled = types.ErrSubmissionsDisabled
)
