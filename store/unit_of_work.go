// Package store runs workflow steps inside a single Bun transaction with
// repositories bound to it.
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-proposals/pkg/types"
	"github.com/goliatone/go-proposals/profile"
	"github.com/goliatone/go-proposals/proposal"
	"github.com/goliatone/go-proposals/relationship"
	"github.com/uptrace/bun"
)

const (
	// DefaultRetries is how many times a transaction is re-run after a
	// serialization or busy failure.
	DefaultRetries = 3
	// DefaultBackoff is the base wait before a re-run. Attempt n waits n times
	// the base.
	DefaultBackoff = 100 * time.Millisecond
)

// Config wires the unit of work.
type Config struct {
	DB            *bun.DB
	Proposals     *proposal.Repository
	Profiles      *profile.Repository
	Relationships *relationship.Repository
	TxOptions     *sql.TxOptions
	// Retries defaults to DefaultRetries when zero; negative disables retries.
	Retries       int
	Backoff       time.Duration
	Logger        types.Logger
}

// UnitOfWork implements types.UnitOfWork over bun.DB.RunInTx.
type UnitOfWork struct {
	db            *bun.DB
	proposals     *proposal.Repository
	profiles      *profile.Repository
	relationships *relationship.Repository
	opts          *sql.TxOptions
	retries       int
	backoff       time.Duration
	logger        types.Logger
}

// New constructs a unit of work. Transactions default to serializable
// isolation.
func New(cfg Config) (*UnitOfWork, error) {
	if cfg.DB == nil {
		return nil, errors.New("store: db required")
	}
	if cfg.Proposals == nil {
		return nil, types.ErrMissingProposalRepository
	}
	if cfg.Profiles == nil {
		return nil, types.ErrMissingProfileRepository
	}
	if cfg.Relationships == nil {
		return nil, types.ErrMissingRelationshipRepository
	}
	opts := cfg.TxOptions
	if opts == nil {
		opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	retries := cfg.Retries
	switch {
	case retries == 0:
		retries = DefaultRetries
	case retries < 0:
		retries = 0
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &UnitOfWork{
		db:            cfg.DB,
		proposals:     cfg.Proposals,
		profiles:      cfg.Profiles,
		relationships: cfg.Relationships,
		opts:          opts,
		retries:       retries,
		backoff:       backoff,
		logger:        logger,
	}, nil
}

var _ types.UnitOfWork = (*UnitOfWork)(nil)

// RunInTx executes fn with tx-bound stores. The transaction commits when fn
// returns nil and rolls back otherwise. Busy and serialization failures are
// re-run with a linear backoff until the retry budget is spent.
func (u *UnitOfWork) RunInTx(ctx context.Context, fn func(context.Context, types.Stores) error) error {
	if fn == nil {
		return nil
	}
	for attempt := 0; ; attempt++ {
		err := u.db.RunInTx(ctx, u.opts, func(ctx context.Context, tx bun.Tx) error {
			return fn(ctx, types.Stores{
				Proposals:     u.proposals.WithTx(tx),
				Profiles:      u.profiles.WithTx(tx),
				Relationships: u.relationships.WithTx(tx),
			})
		})
		if err == nil || attempt >= u.retries || !IsRetryable(err) || ctx.Err() != nil {
			return err
		}
		u.logger.Debug("retrying transaction", "attempt", attempt+1, "error", err.Error())
		if sleepCtx(ctx, u.backoff*time.Duration(attempt+1)) != nil {
			return err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRetryable reports whether err is a transient serialization or lock
// failure that a fresh transaction may not hit again.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range retryMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

var retryMarkers = []string{
	"sqlite_busy",
	"database is locked",
	"database table is locked",
	"could not serialize access",
	"sqlstate 40001",
	"deadlock detected",
	"sqlstate 40p01",
}
