// Package notify delivers proposal notices without blocking, or failing, the
// workflow that produced them.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-proposals/pkg/types"
)

// Event identifies which notice is sent.
type Event string

const (
	EventSubmission Event = "submission"
	EventApproval   Event = "approval"
	EventRejection  Event = "rejection"
)

// DefaultTimeout bounds a single delivery.
const DefaultTimeout = 30 * time.Second

// Config wires the dispatcher.
type Config struct {
	Port    types.NotificationPort
	Logger  types.Logger
	Timeout time.Duration
}

// Dispatcher runs each notice on its own goroutine with a context detached
// from the caller's cancellation. Errors and panics are logged and dropped.
type Dispatcher struct {
	port    types.NotificationPort
	logger  types.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher constructs a dispatcher. A nil port makes every dispatch a
// no-op.
func NewDispatcher(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{port: cfg.Port, logger: logger, timeout: timeout}
}

// Dispatch schedules delivery and returns immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event, proposal types.Proposal) {
	if d == nil || d.port == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	detached := context.WithoutCancel(ctx)
	snapshot := proposal.Clone()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()
		if err := d.deliver(ctx, event, snapshot); err != nil {
			d.logger.Error("proposal notification failed", err,
				"event", string(event),
				"proposal_id", snapshot.ID.String(),
			)
		}
	}()
}

// Wait blocks until every scheduled delivery has finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, event Event, proposal types.Proposal) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notify: panic delivering %s: %v", event, r)
		}
	}()
	switch event {
	case EventSubmission:
		return d.port.NotifySubmission(ctx, proposal)
	case EventApproval:
		return d.port.NotifyApproval(ctx, proposal)
	case EventRejection:
		return d.port.NotifyRejection(ctx, proposal)
	default:
		return fmt.Errorf("notify: unknown event %q", event)
	}
}

// PortFuncs adapts plain functions to types.NotificationPort. Nil functions
// are skipped.
type PortFuncs struct {
	Submission func(context.Context, types.Proposal) error
	Approval   func(context.Context, types.Proposal) error
	Rejection  func(context.Context, types.Proposal) error
}

var _ types.NotificationPort = PortFuncs{}

// NotifySubmission implements types.NotificationPort.
func (p PortFuncs) NotifySubmission(ctx context.Context, proposal types.Proposal) error {
	if p.Submission == nil {
		return nil
	}
	return p.Submission(ctx, proposal)
}

// NotifyApproval implements types.NotificationPort.
func (p PortFuncs) NotifyApproval(ctx context.Context, proposal types.Proposal) error {
	if p.Approval == nil {
		return nil
	}
	return p.Approval(ctx, proposal)
}

// NotifyRejection implements types.NotificationPort.
func (p PortFuncs) NotifyRejection(ctx context.Context, proposal types.Proposal) error {
	if p.Rejection == nil {
		return nil
	}
	return p.Rejection(ctx, proposal)
}
