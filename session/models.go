package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the persisted row in work_sessions.
type Record struct {
	bun.BaseModel `bun:"table:work_sessions"`

	ID            uuid.UUID `bun:",pk,type:uuid"`
	ActorID       string    `bun:"actor_id"`
	TenantID      string    `bun:"tenant_id"`
	StartTime     time.Time `bun:"start_time"`
	EndTime       time.Time `bun:"end_time"`
	DurationHours float64   `bun:"duration_hours"`
	CreatedAt     time.Time `bun:"created_at"`
}
