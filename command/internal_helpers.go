package command

import (
	"context"
	"time"

	"github.com/goliatone/go-proposals/pkg/types"
)

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func safeIDGenerator(gen types.IDGenerator) types.IDGenerator {
	if gen != nil {
		return gen
	}
	return types.UUIDGenerator{}
}

func safePolicy(policy types.TransitionPolicy) types.TransitionPolicy {
	if policy != nil {
		return policy
	}
	return types.DefaultProposalPolicy()
}

func now(clock types.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}

func logActivity(ctx context.Context, sink types.ActivitySink, logger types.Logger, record types.ActivityRecord) {
	if sink == nil {
		return
	}
	if err := sink.Log(ctx, record); err != nil {
		safeLogger(logger).Error("activity log failed", err, "verb", record.Verb, "object_id", record.ObjectID)
	}
}

func emitActivityHook(ctx context.Context, hooks types.Hooks, record types.ActivityRecord) {
	if hooks.AfterActivity == nil {
		return
	}
	hooks.AfterActivity(ctx, record)
}

func emitProposalHook(ctx context.Context, hook func(context.Context, types.ProposalEvent), event types.ProposalEvent) {
	if hook == nil {
		return
	}
	hook(ctx, event)
}
