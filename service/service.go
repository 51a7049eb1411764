package service

import (
	"context"
	"time"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-timeclock/command"
	"github.com/goliatone/go-timeclock/pkg/types"
	"github.com/goliatone/go-timeclock/query"
	"github.com/goliatone/go-timeclock/registry"
	"github.com/goliatone/go-timeclock/rollup"
)

// Service is the entry point for go-timeclock. It wires the registry,
// repositories, notifier, and command/query facades supplied by the host
// application.
type Service struct {
	cfg      Config
	registry types.ActiveRegistry
	commands Commands
	queries  Queries
}

// Commands exposes the service command handlers.
type Commands struct {
	ClockIn      *command.ClockInCommand
	ClockOut     *command.ClockOutCommand
	SetChannel   *command.SetChannelCommand
	WeeklyRollup *rollup.Command
}

// Queries exposes read-model helpers.
type Queries struct {
	ActiveStatus *query.ActiveStatusQuery
	ActorTotal   *query.ActorTotalQuery
}

// Config captures all required dependencies so callers can provide their own
// instances (bun.DB backed repositories, cached repositories, hooks, etc.).
type Config struct {
	Sessions types.SessionRepository
	Configs  types.GuildConfigRepository
	// Registry defaults to a fresh in-memory registry when nil.
	Registry types.ActiveRegistry
	Notifier types.Notifier
	Actors   types.ActorDirectory
	Channels types.ChannelDirectory

	FeatureGate featuregate.FeatureGate
	Hooks       types.Hooks
	Clock       types.Clock
	IDGenerator types.IDGenerator
	Logger      types.Logger

	// RollupSchedule overrides the weekly cron expression.
	RollupSchedule string
	// RollupResetDelay overrides the grace window before the weekly wipe.
	RollupResetDelay time.Duration
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)
	s := &Service{
		cfg:      norm,
		registry: norm.Registry,
	}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	if cfg.Registry == nil {
		cfg.Registry = registry.New(registry.Config{Clock: cfg.Clock})
	}
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Registry exposes the live session registry so transports can surface
// presence without going through the query facade.
func (s *Service) Registry() types.ActiveRegistry {
	if s == nil {
		return nil
	}
	return s.registry
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil &&
		s.cfg.Sessions != nil &&
		s.cfg.Configs != nil &&
		s.registry != nil
}

// HealthCheck surfaces missing configuration to upstream transports
// (gateways, jobs) before they start dispatching.
func (s *Service) HealthCheck(ctx context.Context) error {
	if !s.Ready() {
		return types.ErrServiceNotReady
	}
	if s.cfg.Sessions == nil {
		return types.ErrMissingSessionRepository
	}
	if s.cfg.Configs == nil {
		return types.ErrMissingConfigRepository
	}
	if s.registry == nil {
		return types.ErrMissingRegistry
	}
	return nil
}

// Stop cancels any pending weekly resets. Call on shutdown.
func (s *Service) Stop() {
	if s == nil || s.commands.WeeklyRollup == nil {
		return
	}
	s.commands.WeeklyRollup.Stop()
}

func (s *Service) buildCommands() Commands {
	return Commands{
		ClockIn: command.NewClockInCommand(command.ClockInConfig{
			Registry:    s.registry,
			Configs:     s.cfg.Configs,
			Notifier:    s.cfg.Notifier,
			FeatureGate: s.cfg.FeatureGate,
			Hooks:       s.cfg.Hooks,
			Logger:      s.cfg.Logger,
		}),
		ClockOut: command.NewClockOutCommand(command.ClockOutConfig{
			Registry: s.registry,
			Sessions: s.cfg.Sessions,
			Configs:  s.cfg.Configs,
			Notifier: s.cfg.Notifier,
			IDGen:    s.cfg.IDGenerator,
			Hooks:    s.cfg.Hooks,
			Logger:   s.cfg.Logger,
		}),
		SetChannel: command.NewSetChannelCommand(command.SetChannelConfig{
			Configs: s.cfg.Configs,
			Logger:  s.cfg.Logger,
		}),
		WeeklyRollup: rollup.New(rollup.Config{
			Schedule:    s.cfg.RollupSchedule,
			ResetDelay:  s.cfg.RollupResetDelay,
			Sessions:    s.cfg.Sessions,
			Configs:     s.cfg.Configs,
			Notifier:    s.cfg.Notifier,
			Actors:      s.cfg.Actors,
			Channels:    s.cfg.Channels,
			FeatureGate: s.cfg.FeatureGate,
			Hooks:       s.cfg.Hooks,
			Clock:       s.cfg.Clock,
			Logger:      s.cfg.Logger,
		}),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		ActiveStatus: query.NewActiveStatusQuery(s.registry, s.cfg.Actors, s.cfg.Clock),
		ActorTotal:   query.NewActorTotalQuery(s.cfg.Sessions),
	}
}
