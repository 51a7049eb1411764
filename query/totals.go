package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-timeclock/pkg/timefmt"
	"github.com/goliatone/go-timeclock/pkg/types"
)

// ActorTotalFilter requests an actor's accumulated hours within a tenant.
type ActorTotalFilter struct {
	ActorID  string
	TenantID string
}

// Type implements gocommand.Message for query inputs.
func (ActorTotalFilter) Type() string {
	return "query.session.total"
}

// Validate implements gocommand.Message.
func (filter ActorTotalFilter) Validate() error {
	if types.NormalizeID(filter.ActorID) == "" {
		return types.ErrActorRequired
	}
	if types.NormalizeID(filter.TenantID) == "" {
		return types.ErrTenantRequired
	}
	return nil
}

// ActorTotal reports the accumulated hours since the last weekly reset.
type ActorTotal struct {
	ActorID   string
	TenantID  string
	Hours     float64
	Formatted string
}

// ActorTotalQuery sums an actor's persisted sessions.
type ActorTotalQuery struct {
	sessions types.SessionRepository
}

// NewActorTotalQuery constructs the totals helper.
func NewActorTotalQuery(sessions types.SessionRepository) *ActorTotalQuery {
	return &ActorTotalQuery{sessions: sessions}
}

var _ gocommand.Querier[ActorTotalFilter, ActorTotal] = (*ActorTotalQuery)(nil)

// Query returns the actor's running total for the current week.
func (q *ActorTotalQuery) Query(ctx context.Context, filter ActorTotalFilter) (ActorTotal, error) {
	if q.sessions == nil {
		return ActorTotal{}, types.ErrMissingSessionRepository
	}
	if err := filter.Validate(); err != nil {
		return ActorTotal{}, err
	}
	actorID := types.NormalizeID(filter.ActorID)
	tenantID := types.NormalizeID(filter.TenantID)

	hours, err := q.sessions.SumDurationHours(ctx, actorID, tenantID)
	if err != nil {
		return ActorTotal{}, err
	}
	return ActorTotal{
		ActorID:   actorID,
		TenantID:  tenantID,
		Hours:     hours,
		Formatted: timefmt.FormatHours(hours),
	}, nil
}
