// Package query exposes read-side helpers over the registry and the
// session store.
package query

import (
	"context"
	"strings"
	"time"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-timeclock/pkg/timefmt"
	"github.com/goliatone/go-timeclock/pkg/types"
)

// ActiveStatusFilter requests the current open sessions.
type ActiveStatusFilter struct{}

// Type implements gocommand.Message for query inputs.
func (ActiveStatusFilter) Type() string {
	return "query.session.active"
}

// Validate implements gocommand.Message.
func (ActiveStatusFilter) Validate() error {
	return nil
}

// ActiveRow describes one open session.
type ActiveRow struct {
	ActorID     string
	DisplayName string
	Since       time.Time
	Elapsed     string
}

// ActiveStatusReport lists every open session, oldest first.
type ActiveStatusReport struct {
	Rows []ActiveRow
}

// ActiveStatusQuery renders the live registry for status displays.
type ActiveStatusQuery struct {
	registry types.ActiveRegistry
	actors   types.ActorDirectory
	clock    types.Clock
}

// NewActiveStatusQuery constructs the status query helper.
func NewActiveStatusQuery(registry types.ActiveRegistry, actors types.ActorDirectory, clock types.Clock) *ActiveStatusQuery {
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &ActiveStatusQuery{
		registry: registry,
		actors:   actors,
		clock:    clock,
	}
}

var _ gocommand.Querier[ActiveStatusFilter, ActiveStatusReport] = (*ActiveStatusQuery)(nil)

// Query snapshots the open sessions. Display name lookups fall back to the
// raw actor id on failure.
func (q *ActiveStatusQuery) Query(ctx context.Context, filter ActiveStatusFilter) (ActiveStatusReport, error) {
	if q.registry == nil {
		return ActiveStatusReport{}, types.ErrMissingRegistry
	}
	if err := filter.Validate(); err != nil {
		return ActiveStatusReport{}, err
	}

	now := q.clock.Now()
	entries := q.registry.ListActive()
	rows := make([]ActiveRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, ActiveRow{
			ActorID:     entry.ActorID,
			DisplayName: q.displayName(ctx, entry.ActorID),
			Since:       entry.StartTime,
			Elapsed:     timefmt.FormatHours(now.Sub(entry.StartTime).Hours()),
		})
	}
	return ActiveStatusReport{Rows: rows}, nil
}

func (q *ActiveStatusQuery) displayName(ctx context.Context, actorID string) string {
	if q.actors == nil {
		return actorID
	}
	name, err := q.actors.DisplayName(ctx, actorID)
	if err != nil || strings.TrimSpace(name) == "" {
		return actorID
	}
	return name
}
