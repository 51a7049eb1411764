package command

import (
	"context"
	"math"

	"github.com/goliatone/go-timeclock/pkg/types"
)

const sessionColor = 0x00AE86

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

// roundHours keeps stored durations at two decimals, matching the wire
// precision of the persisted records.
func roundHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}

func emitClockInHook(ctx context.Context, hooks types.Hooks, event types.ClockEvent) {
	if hooks.AfterClockIn == nil {
		return
	}
	hooks.AfterClockIn(ctx, event)
}

func emitClockOutHook(ctx context.Context, hooks types.Hooks, event types.SessionEvent) {
	if hooks.AfterClockOut == nil {
		return
	}
	hooks.AfterClockOut(ctx, event)
}

// notifyBestEffort sends advisory notifications. Delivery failures are
// logged and swallowed; they never fail the enclosing command.
func notifyBestEffort(ctx context.Context, notifier types.Notifier, logger types.Logger, msg types.Notification) {
	if notifier == nil {
		return
	}
	if err := notifier.Send(ctx, msg); err != nil {
		safeLogger(logger).Error("timeclock: notification failed", err,
			"channel", msg.ChannelID, "recipient", msg.Recipient)
	}
}
