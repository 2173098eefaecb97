package entry

import (
	"context"
	"strings"

	"github.com/goliatone/go-proposals/canonical"
	"github.com/goliatone/go-proposals/pkg/types"
)

// Matcher resolves canonical URLs to catalog entries. Resolution is best
// effort: lookup failures and duplicate rows never block a caller.
type Matcher struct {
	entries types.EntryRepository
	logger  types.Logger
}

// NewMatcher constructs a matcher over the supplied entry store.
func NewMatcher(entries types.EntryRepository, logger types.Logger) *Matcher {
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Matcher{entries: entries, logger: logger}
}

// Match returns the oldest entry stored under canonicalURL. The input is
// canonicalized again so raw values are accepted too.
func (m *Matcher) Match(ctx context.Context, canonicalURL string) (types.EntryRef, bool) {
	if m == nil || m.entries == nil {
		return types.EntryRef{}, false
	}
	key := canonical.Canonicalize(canonicalURL)
	if strings.TrimSpace(key) == "" {
		return types.EntryRef{}, false
	}
	entries, err := m.entries.FindByCanonicalURL(ctx, key)
	if err != nil {
		m.logger.Error("entry match lookup failed", err, "canonical_url", key)
		return types.EntryRef{}, false
	}
	if len(entries) == 0 {
		return types.EntryRef{}, false
	}
	if len(entries) > 1 {
		m.logger.Debug("multiple catalog entries share a canonical url",
			"canonical_url", key,
			"count", len(entries),
			"selected", entries[0].ID.String(),
		)
	}
	return entries[0].Ref(), true
}
