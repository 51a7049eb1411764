// Package rollup implements the weekly summary pass: per tenant, aggregate
// the stored sessions per actor, publish the summary to the configured
// channel, then reset the tenant's history after a short grace delay.
package rollup

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-timeclock/pkg/timefmt"
	"github.com/goliatone/go-timeclock/pkg/types"
)

const (
	// DefaultSchedule fires every Monday at 10:00.
	DefaultSchedule = "0 10 * * 1"
	// DefaultResetDelay is the grace window between publishing a summary
	// and wiping the tenant's session history.
	DefaultResetDelay = 2 * time.Minute
)

const (
	weeklyRollupMessageType = "command.rollup.weekly"
	featureWeeklyRollup     = "timeclock.weekly_rollup"
	summaryColor            = 0x0099FF
)

// ErrMissingCommand indicates the command instance was not provided.
var ErrMissingCommand = errors.New("timeclock: weekly rollup command required")

// Config wires the weekly rollup dependencies and defaults.
type Config struct {
	Schedule   string
	ResetDelay time.Duration
	Sessions   types.SessionRepository
	Configs    types.GuildConfigRepository
	Notifier   types.Notifier
	// Actors resolves display names for the summary lines. Optional;
	// unresolved actors fall back to their raw id.
	Actors types.ActorDirectory
	// Channels validates the configured summary channel before posting.
	// Optional; when nil the configured id is trusted as-is.
	Channels    types.ChannelDirectory
	FeatureGate featuregate.FeatureGate
	Hooks       types.Hooks
	Clock       types.Clock
	Logger      types.Logger
}

// Input describes a single rollup run.
type Input struct {
	// TenantID restricts the run to one tenant. Empty runs every tenant
	// with a configured summary channel.
	TenantID string
}

// Type implements gocommand.Message.
func (Input) Type() string {
	return weeklyRollupMessageType
}

// Validate implements gocommand.Message.
func (Input) Validate() error {
	return nil
}

// Command aggregates, publishes, and resets weekly session history.
type Command struct {
	schedule   string
	resetDelay time.Duration
	sessions   types.SessionRepository
	configs    types.GuildConfigRepository
	notifier   types.Notifier
	actors     types.ActorDirectory
	channels   types.ChannelDirectory
	gate       featuregate.FeatureGate
	hooks      types.Hooks
	clock      types.Clock
	logger     types.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New constructs a weekly rollup command with the supplied configuration.
func New(cfg Config) *Command {
	schedule := strings.TrimSpace(cfg.Schedule)
	if schedule == "" {
		schedule = DefaultSchedule
	}
	delay := cfg.ResetDelay
	if delay <= 0 {
		delay = DefaultResetDelay
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Command{
		schedule:   schedule,
		resetDelay: delay,
		sessions:   cfg.Sessions,
		configs:    cfg.Configs,
		notifier:   cfg.Notifier,
		actors:     cfg.Actors,
		channels:   cfg.Channels,
		gate:       cfg.FeatureGate,
		hooks:      cfg.Hooks,
		clock:      clock,
		logger:     logger,
		pending:    map[string]*time.Timer{},
	}
}

var _ gocommand.Commander[Input] = (*Command)(nil)
var _ gocommand.CronCommand = (*Command)(nil)

// Execute runs one rollup pass. Tenant failures are isolated: a tenant
// whose summary cannot be built or posted is logged and skipped, and the
// pass continues with the remaining tenants.
func (c *Command) Execute(ctx context.Context, input Input) error {
	if c == nil {
		return ErrMissingCommand
	}
	if c.sessions == nil {
		return types.ErrMissingSessionRepository
	}
	if c.configs == nil {
		return types.ErrMissingConfigRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	enabled, err := c.featureEnabled(ctx, input.TenantID)
	if err != nil {
		c.logger.Error("timeclock: rollup feature gate check failed", err)
	}
	if !enabled {
		c.logger.Info("timeclock: weekly rollup disabled, skipping run")
		return nil
	}

	tenants, err := c.candidateTenants(ctx, input.TenantID)
	if err != nil {
		return err
	}

	stats := types.RollupStats{StartedAt: c.clock.Now()}
	for _, cfg := range tenants {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Tenants++
		actors, total, err := c.rollupTenant(ctx, cfg)
		if err != nil {
			stats.Failed++
			c.logger.Error("timeclock: tenant rollup failed", err, "tenant", cfg.TenantID)
			continue
		}
		if actors == 0 {
			stats.Skipped++
			continue
		}
		stats.Actors += actors
		stats.TotalHrs += total
	}

	c.logger.Info("timeclock: weekly rollup complete",
		"tenants", stats.Tenants, "skipped", stats.Skipped,
		"failed", stats.Failed, "actors", stats.Actors)
	if c.hooks.AfterRollup != nil {
		c.hooks.AfterRollup(ctx, stats)
	}
	return nil
}

// CronHandler implements gocommand.CronCommand.
func (c *Command) CronHandler() func() error {
	return func() error {
		if c == nil {
			return ErrMissingCommand
		}
		return c.Execute(context.Background(), Input{})
	}
}

// CronOptions implements gocommand.CronCommand.
func (c *Command) CronOptions() gocommand.HandlerConfig {
	schedule := DefaultSchedule
	if c != nil && c.schedule != "" {
		schedule = c.schedule
	}
	return gocommand.HandlerConfig{Expression: schedule}
}

// PendingResets reports tenants with a reset scheduled but not yet fired.
func (c *Command) PendingResets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Stop cancels every scheduled reset without firing it.
func (c *Command) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for tenantID, timer := range c.pending {
		timer.Stop()
		delete(c.pending, tenantID)
	}
}

func (c *Command) featureEnabled(ctx context.Context, tenantID string) (bool, error) {
	if c.gate == nil {
		return true, nil
	}
	if tenantID == "" {
		return c.gate.Enabled(ctx, featureWeeklyRollup, featuregate.WithScopeSet(featuregate.ScopeSet{
			System: true,
		}))
	}
	return c.gate.Enabled(ctx, featureWeeklyRollup, featuregate.WithScopeSet(featuregate.ScopeSet{
		System:   true,
		TenantID: tenantID,
	}))
}

// candidateTenants returns the configs eligible for a rollup. Only tenants
// with a configured weekly summary channel participate.
func (c *Command) candidateTenants(ctx context.Context, tenantID string) ([]types.GuildConfig, error) {
	if tenantID != "" {
		cfg, err := c.configs.GetOrCreate(ctx, types.NormalizeID(tenantID))
		if err != nil {
			return nil, err
		}
		if cfg.WeeklySummaryChannelID == "" {
			return nil, nil
		}
		return []types.GuildConfig{*cfg}, nil
	}
	return c.configs.ListWithSummaryChannel(ctx)
}

// rollupTenant aggregates one tenant's history, posts the summary, and
// schedules the deferred reset. Returns the actor count and total hours.
func (c *Command) rollupTenant(ctx context.Context, cfg types.GuildConfig) (int, float64, error) {
	channelID := cfg.WeeklySummaryChannelID
	if c.channels != nil {
		ref, err := c.channels.Channel(ctx, cfg.TenantID, channelID)
		if err != nil {
			return 0, 0, fmt.Errorf("resolve summary channel %q: %w", channelID, err)
		}
		channelID = ref.ID
	}

	sessions, err := c.sessions.AllForTenant(ctx, cfg.TenantID)
	if err != nil {
		return 0, 0, err
	}

	totals := map[string]float64{}
	for _, s := range sessions {
		totals[s.ActorID] += s.DurationHours
	}
	if len(totals) == 0 {
		return 0, 0, nil
	}

	actorIDs := make([]string, 0, len(totals))
	for actorID := range totals {
		actorIDs = append(actorIDs, actorID)
	}
	sort.Strings(actorIDs)

	grand := 0.0
	fields := make([]types.NotificationField, 0, len(actorIDs))
	for _, actorID := range actorIDs {
		name, ok := c.resolveActor(ctx, actorID)
		if !ok {
			continue
		}
		hours := totals[actorID]
		grand += hours
		fields = append(fields, types.NotificationField{
			Label:  name,
			Value:  timefmt.FormatHours(hours),
			Inline: false,
		})
	}

	start, end := timefmt.WeekWindow(c.clock.Now())
	msg := types.Notification{
		TenantID:  cfg.TenantID,
		ChannelID: channelID,
		Title:     fmt.Sprintf("WEEK OF %s TO %s", timefmt.DayLabel(start), timefmt.DayLabel(end)),
		Color:     summaryColor,
		Footer:    "Weekly totals reset shortly after this summary",
		Fields:    fields,
	}
	if c.notifier != nil {
		if err := c.notifier.Send(ctx, msg); err != nil {
			return 0, 0, fmt.Errorf("post weekly summary: %w", err)
		}
	}

	c.scheduleReset(cfg.TenantID, channelID)
	return len(fields), grand, nil
}

// resolveActor labels an actor for the summary. A failed directory lookup
// omits the actor from the summary entirely; the rollup itself continues.
// Without a directory the raw id labels the row.
func (c *Command) resolveActor(ctx context.Context, actorID string) (string, bool) {
	if c.actors == nil {
		return actorID, true
	}
	name, err := c.actors.DisplayName(ctx, actorID)
	if err != nil {
		c.logger.Error("timeclock: actor lookup failed, omitted from summary", err, "actor", actorID)
		return "", false
	}
	if strings.TrimSpace(name) == "" {
		return actorID, true
	}
	return name, true
}

// scheduleReset arms the deferred history wipe for a tenant. A rollup that
// reaches the same tenant while a reset is still pending replaces the stale
// timer so the wipe cannot fire twice for one summary.
func (c *Command) scheduleReset(tenantID, channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if stale, ok := c.pending[tenantID]; ok {
		stale.Stop()
	}
	c.pending[tenantID] = time.AfterFunc(c.resetDelay, func() {
		c.runReset(tenantID, channelID)
	})
}

func (c *Command) runReset(tenantID, channelID string) {
	c.mu.Lock()
	delete(c.pending, tenantID)
	c.mu.Unlock()

	ctx := context.Background()
	if err := c.sessions.DeleteAllForTenant(ctx, tenantID); err != nil {
		c.logger.Error("timeclock: weekly reset failed", err, "tenant", tenantID)
		return
	}
	c.logger.Info("timeclock: weekly history reset", "tenant", tenantID)
	if c.notifier == nil {
		return
	}
	err := c.notifier.Send(ctx, types.Notification{
		TenantID:    tenantID,
		ChannelID:   channelID,
		Title:       "Weekly Reset",
		Description: "Work session totals have been reset for the new week.",
		Color:       summaryColor,
	})
	if err != nil {
		c.logger.Error("timeclock: reset notification failed", err, "tenant", tenantID)
	}
}
