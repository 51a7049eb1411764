package command

import (
	"context"
	"time"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-timeclock/pkg/timefmt"
	"github.com/goliatone/go-timeclock/pkg/types"
)

// ClockOutInput closes the actor's open work session.
type ClockOutInput struct {
	ActorID  string
	TenantID string
	Result   *ClockOutResult
}

// ClockOutResult reports the persisted session and the actor's accumulated
// total within the tenant.
type ClockOutResult struct {
	Session    types.WorkSession
	TotalHours float64
}

// Type implements gocommand.Message.
func (ClockOutInput) Type() string {
	return "command.session.clock_out"
}

// Validate implements gocommand.Message.
func (input ClockOutInput) Validate() error {
	if types.NormalizeID(input.ActorID) == "" {
		return ErrActorRequired
	}
	if types.NormalizeID(input.TenantID) == "" {
		return ErrTenantRequired
	}
	return nil
}

// ClockOutConfig wires dependencies for the clock-out command.
type ClockOutConfig struct {
	Registry types.ActiveRegistry
	Sessions types.SessionRepository
	Configs  types.GuildConfigRepository
	Notifier types.Notifier
	IDGen    types.IDGenerator
	Hooks    types.Hooks
	Logger   types.Logger
}

// ClockOutCommand closes the open entry, persists the completed session, and
// emits the per-actor summary plus the optional admin-log notification.
type ClockOutCommand struct {
	registry types.ActiveRegistry
	sessions types.SessionRepository
	configs  types.GuildConfigRepository
	notifier types.Notifier
	idGen    types.IDGenerator
	hooks    types.Hooks
	logger   types.Logger
}

// NewClockOutCommand constructs the clock-out handler.
func NewClockOutCommand(cfg ClockOutConfig) *ClockOutCommand {
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	return &ClockOutCommand{
		registry: cfg.Registry,
		sessions: cfg.Sessions,
		configs:  cfg.Configs,
		notifier: cfg.Notifier,
		idGen:    idGen,
		hooks:    cfg.Hooks,
		logger:   safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[ClockOutInput] = (*ClockOutCommand)(nil)

// Execute closes and persists the session. The registry entry is removed
// before the write, so a persistence failure here surfaces to the caller
// with the session already gone from memory (accepted inconsistency window).
func (c *ClockOutCommand) Execute(ctx context.Context, input ClockOutInput) error {
	if c.registry == nil {
		return types.ErrMissingRegistry
	}
	if c.sessions == nil {
		return types.ErrMissingSessionRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}
	actorID := types.NormalizeID(input.ActorID)
	tenantID := types.NormalizeID(input.TenantID)

	start, end, err := c.registry.ClockOut(actorID)
	if err != nil {
		return err
	}

	session := types.WorkSession{
		ID:            c.idGen.UUID(),
		ActorID:       actorID,
		TenantID:      tenantID,
		StartTime:     start,
		EndTime:       end,
		DurationHours: roundHours(end.Sub(start).Hours()),
	}
	if err := c.sessions.Append(ctx, session); err != nil {
		c.logger.Error("timeclock: session persist failed", err,
			"actor", actorID, "tenant", tenantID)
		return err
	}

	total, err := c.sessions.SumDurationHours(ctx, actorID, tenantID)
	if err != nil {
		return err
	}

	c.notifyActor(ctx, session, total)
	c.notifyAdminLog(ctx, session, total)
	emitClockOutHook(ctx, c.hooks, types.SessionEvent{
		Session:    session,
		TotalHours: total,
	})
	if input.Result != nil {
		input.Result.Session = session
		input.Result.TotalHours = total
	}
	return nil
}

func (c *ClockOutCommand) notifyActor(ctx context.Context, session types.WorkSession, total float64) {
	notifyBestEffort(ctx, c.notifier, c.logger, types.Notification{
		TenantID:  session.TenantID,
		Recipient: session.ActorID,
		Title:     "Work Session Summary",
		Color:     sessionColor,
		Fields: []types.NotificationField{
			{Label: "Session", Value: timefmt.FormatHours(session.DurationHours), Inline: true},
			{Label: "Total", Value: timefmt.FormatHours(total), Inline: true},
			{Label: "End", Value: session.EndTime.Format(time.RFC1123), Inline: true},
		},
	})
}

func (c *ClockOutCommand) notifyAdminLog(ctx context.Context, session types.WorkSession, total float64) {
	if c.configs == nil {
		return
	}
	cfg, err := c.configs.GetOrCreate(ctx, session.TenantID)
	if err != nil {
		c.logger.Error("timeclock: guild config lookup failed", err, "tenant", session.TenantID)
		return
	}
	if cfg.AdminLogChannelID == "" {
		return
	}
	notifyBestEffort(ctx, c.notifier, c.logger, types.Notification{
		TenantID:  session.TenantID,
		ChannelID: cfg.AdminLogChannelID,
		Title:     "Work Session Ended",
		Color:     sessionColor,
		Footer:    "ID: " + session.ActorID,
		Fields: []types.NotificationField{
			{Label: "Actor", Value: session.ActorID, Inline: true},
			{Label: "Duration", Value: timefmt.FormatHours(session.DurationHours), Inline: true},
			{Label: "Total", Value: timefmt.FormatHours(total), Inline: true},
			{Label: "End", Value: session.EndTime.Format(time.RFC1123), Inline: true},
		},
	})
}
