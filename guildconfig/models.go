package guildconfig

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the persisted row in guild_configs. tenant_id is unique;
// the three channel columns default to empty string meaning "not configured".
type Record struct {
	bun.BaseModel `bun:"table:guild_configs"`

	ID                     uuid.UUID `bun:",pk,type:uuid"`
	TenantID               string    `bun:"tenant_id"`
	LogChannelID           string    `bun:"log_channel_id"`
	AdminLogChannelID      string    `bun:"admin_log_channel_id"`
	WeeklySummaryChannelID string    `bun:"weekly_summary_channel_id"`
	CreatedAt              time.Time `bun:"created_at"`
	UpdatedAt              time.Time `bun:"updated_at"`
}
