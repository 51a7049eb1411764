package registry

import (
	"sort"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-timeclock/pkg/types"
)

var (
	// ErrAlreadyActive indicates the actor already has an open session.
	ErrAlreadyActive = goerrors.New("timeclock: session already active", goerrors.CategoryValidation).
				WithCode(goerrors.CodeBadRequest)
	// ErrNotActive indicates the actor has no open session to close.
	ErrNotActive = goerrors.New("timeclock: no active session", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
)

// Config wires the registry dependencies.
type Config struct {
	Clock types.Clock
}

// Registry tracks open sessions in memory. Safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries map[string]time.Time
	clock   types.Clock
}

// New constructs an empty registry.
func New(cfg Config) *Registry {
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &Registry{
		entries: make(map[string]time.Time),
		clock:   clock,
	}
}

// ClockIn opens a session for the actor and returns its start time. Fails
// with ErrAlreadyActive when an open entry already exists; exactly one of
// any set of concurrent calls for the same actor succeeds.
func (r *Registry) ClockIn(actorID string) (time.Time, error) {
	actorID = types.NormalizeID(actorID)
	if actorID == "" {
		return time.Time{}, types.ErrActorRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[actorID]; ok {
		return time.Time{}, ErrAlreadyActive
	}
	start := r.clock.Now()
	r.entries[actorID] = start
	return start, nil
}

// ClockOut closes the actor's open session and returns the (start, end)
// pair. Fails with ErrNotActive when no entry exists.
func (r *Registry) ClockOut(actorID string) (start, end time.Time, err error) {
	actorID = types.NormalizeID(actorID)
	if actorID == "" {
		return time.Time{}, time.Time{}, types.ErrActorRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	start, ok := r.entries[actorID]
	if !ok {
		return time.Time{}, time.Time{}, ErrNotActive
	}
	delete(r.entries, actorID)
	return start, r.clock.Now(), nil
}

// Peek returns the start time of the actor's open session without mutating
// the registry.
func (r *Registry) Peek(actorID string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start, ok := r.entries[types.NormalizeID(actorID)]
	return start, ok
}

// ListActive returns a snapshot of all open entries ordered by start time,
// then actor id for ties.
func (r *Registry) ListActive() []types.ActiveEntry {
	r.mu.Lock()
	snapshot := make([]types.ActiveEntry, 0, len(r.entries))
	for actorID, start := range r.entries {
		snapshot = append(snapshot, types.ActiveEntry{ActorID: actorID, StartTime: start})
	}
	r.mu.Unlock()

	sort.Slice(snapshot, func(i, j int) bool {
		if snapshot[i].StartTime.Equal(snapshot[j].StartTime) {
			return snapshot[i].ActorID < snapshot[j].ActorID
		}
		return snapshot[i].StartTime.Before(snapshot[j].StartTime)
	})
	return snapshot
}

// Size returns the number of open entries.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

var _ types.ActiveRegistry = (*Registry)(nil)
