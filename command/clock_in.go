package command

import (
	"context"
	"time"

	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-timeclock/pkg/types"
)

// ClockInInput opens a work session for an actor within a tenant.
type ClockInInput struct {
	ActorID  string
	TenantID string
	Result   *ClockInResult
}

// ClockInResult reports the opened session back to the dispatcher.
type ClockInResult struct {
	StartTime time.Time
}

// Type implements gocommand.Message.
func (ClockInInput) Type() string {
	return "command.session.clock_in"
}

// Validate implements gocommand.Message.
func (input ClockInInput) Validate() error {
	if types.NormalizeID(input.ActorID) == "" {
		return ErrActorRequired
	}
	if types.NormalizeID(input.TenantID) == "" {
		return ErrTenantRequired
	}
	return nil
}

// ClockInConfig wires dependencies for the clock-in command.
type ClockInConfig struct {
	Registry    types.ActiveRegistry
	Configs     types.GuildConfigRepository
	Notifier    types.Notifier
	FeatureGate featuregate.FeatureGate
	Hooks       types.Hooks
	Logger      types.Logger
}

// ClockInCommand opens sessions through the active registry and emits the
// advisory admin-log notification when the tenant has one configured.
type ClockInCommand struct {
	registry    types.ActiveRegistry
	configs     types.GuildConfigRepository
	notifier    types.Notifier
	featureGate featuregate.FeatureGate
	hooks       types.Hooks
	logger      types.Logger
}

// NewClockInCommand constructs the clock-in handler.
func NewClockInCommand(cfg ClockInConfig) *ClockInCommand {
	return &ClockInCommand{
		registry:    cfg.Registry,
		configs:     cfg.Configs,
		notifier:    cfg.Notifier,
		featureGate: cfg.FeatureGate,
		hooks:       cfg.Hooks,
		logger:      safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[ClockInInput] = (*ClockInCommand)(nil)

// Execute opens the session. Fails with registry.ErrAlreadyActive when the
// actor already has one open; that error is advisory and should be relayed
// to the actor, not logged as a system failure.
func (c *ClockInCommand) Execute(ctx context.Context, input ClockInInput) error {
	if c.registry == nil {
		return types.ErrMissingRegistry
	}
	if err := input.Validate(); err != nil {
		return err
	}
	actorID := types.NormalizeID(input.ActorID)
	tenantID := types.NormalizeID(input.TenantID)

	if enabled, err := featureEnabled(ctx, c.featureGate, featureClockIn, tenantID, actorID); err != nil {
		return err
	} else if !enabled {
		return ErrClockInDisabled
	}

	start, err := c.registry.ClockIn(actorID)
	if err != nil {
		return err
	}

	c.notifyAdminLog(ctx, actorID, tenantID, start)
	emitClockInHook(ctx, c.hooks, types.ClockEvent{
		ActorID:   actorID,
		TenantID:  tenantID,
		StartTime: start,
	})
	if input.Result != nil {
		input.Result.StartTime = start
	}
	return nil
}

func (c *ClockInCommand) notifyAdminLog(ctx context.Context, actorID, tenantID string, start time.Time) {
	if c.configs == nil {
		return
	}
	cfg, err := c.configs.GetOrCreate(ctx, tenantID)
	if err != nil {
		// Missing config only costs the advisory notification.
		c.logger.Error("timeclock: guild config lookup failed", err, "tenant", tenantID)
		return
	}
	if cfg.AdminLogChannelID == "" {
		return
	}
	notifyBestEffort(ctx, c.notifier, c.logger, types.Notification{
		TenantID:  tenantID,
		ChannelID: cfg.AdminLogChannelID,
		Title:     "Work Session Started",
		Color:     sessionColor,
		Footer:    "ID: " + actorID,
		Fields: []types.NotificationField{
			{Label: "Actor", Value: actorID, Inline: true},
			{Label: "Start", Value: start.Format(time.RFC1123), Inline: true},
		},
	})
}
