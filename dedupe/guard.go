// Package dedupe suppresses repeat submissions from the same submitter
// against the same profile.
package dedupe

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-proposals/pkg/types"
	"github.com/google/uuid"
)

// DefaultWindow is the trailing window a pending proposal blocks repeats for.
const DefaultWindow = 24 * time.Hour

// Guard checks for recent pending proposals. It holds no state; callers pass
// the proposal store bound to the transaction that will perform the insert.
type Guard struct {
	window time.Duration
}

// NewGuard constructs a guard, defaulting a non-positive window to 24h.
func NewGuard(window time.Duration) Guard {
	if window <= 0 {
		window = DefaultWindow
	}
	return Guard{window: window}
}

// Window returns the configured trailing window.
func (g Guard) Window() time.Duration {
	if g.window <= 0 {
		return DefaultWindow
	}
	return g.window
}

// HasRecentPending reports whether a pending proposal for the same target and
// submitter was created in (now-window, now]. New-profile proposals have no
// target and are never considered duplicates.
func (g Guard) HasRecentPending(ctx context.Context, repo types.ProposalRepository, targetProfileID uuid.UUID, submitterEmail string, now time.Time) (bool, error) {
	if targetProfileID == uuid.Nil {
		return false, nil
	}
	if repo == nil {
		return false, types.ErrMissingProposalRepository
	}
	email := strings.ToLower(strings.TrimSpace(submitterEmail))
	if email == "" {
		return false, nil
	}
	count, err := repo.CountRecentPending(ctx, targetProfileID, email, now.Add(-g.Window()), now)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
