package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-timeclock/pkg/types"
)

// SetChannelInput upserts one of the tenant's notification channel slots.
// Authorization of the issuing member is the dispatcher's responsibility.
type SetChannelInput struct {
	TenantID  string
	Kind      types.ChannelKind
	ChannelID string
	Result    *types.GuildConfig
}

// Type implements gocommand.Message.
func (SetChannelInput) Type() string {
	return "command.guildconfig.set_channel"
}

// Validate implements gocommand.Message.
func (input SetChannelInput) Validate() error {
	if types.NormalizeID(input.TenantID) == "" {
		return ErrTenantRequired
	}
	if !input.Kind.Valid() {
		return types.ErrUnknownChannelKind
	}
	if types.NormalizeID(input.ChannelID) == "" {
		return ErrChannelRequired
	}
	return nil
}

// SetChannelConfig wires dependencies for the channel config command.
type SetChannelConfig struct {
	Configs types.GuildConfigRepository
	Logger  types.Logger
}

// SetChannelCommand persists per-tenant channel routing.
type SetChannelCommand struct {
	configs types.GuildConfigRepository
	logger  types.Logger
}

// NewSetChannelCommand constructs the channel config handler.
func NewSetChannelCommand(cfg SetChannelConfig) *SetChannelCommand {
	return &SetChannelCommand{
		configs: cfg.Configs,
		logger:  safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[SetChannelInput] = (*SetChannelCommand)(nil)

// Execute upserts the channel slot, creating the tenant row when absent.
func (c *SetChannelCommand) Execute(ctx context.Context, input SetChannelInput) error {
	if c.configs == nil {
		return types.ErrMissingConfigRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}
	cfg, err := c.configs.SetChannel(ctx,
		types.NormalizeID(input.TenantID),
		input.Kind,
		types.NormalizeID(input.ChannelID))
	if err != nil {
		c.logger.Error("timeclock: channel config upsert failed", err,
			"tenant", input.TenantID, "kind", string(input.Kind))
		return err
	}
	if input.Result != nil {
		*input.Result = *cfg
	}
	return nil
}
