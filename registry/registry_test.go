package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-timeclock/pkg/types"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

func newStepClock(start time.Time, step time.Duration) *stepClock {
	return &stepClock{now: start, step: step}
}

func TestRegistry_ClockInRejectsSecondEntry(t *testing.T) {
	reg := New(Config{})

	start, err := reg.ClockIn("actor-1")
	require.NoError(t, err)
	require.False(t, start.IsZero())

	_, err = reg.ClockIn("actor-1")
	require.ErrorIs(t, err, ErrAlreadyActive)
	require.Equal(t, 1, reg.Size())
}

func TestRegistry_ClockOutWithoutEntry(t *testing.T) {
	reg := New(Config{})

	_, _, err := reg.ClockOut("actor-1")
	require.ErrorIs(t, err, ErrNotActive)
	require.Equal(t, 0, reg.Size())
}

func TestRegistry_ClockOutReturnsPairAndRemovesEntry(t *testing.T) {
	t0 := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	reg := New(Config{Clock: newStepClock(t0, 90 * time.Minute)})

	start, err := reg.ClockIn("actor-1")
	require.NoError(t, err)
	require.Equal(t, t0, start)

	gotStart, gotEnd, err := reg.ClockOut("actor-1")
	require.NoError(t, err)
	require.Equal(t, t0, gotStart)
	require.Equal(t, t0.Add(90*time.Minute), gotEnd)

	_, ok := reg.Peek("actor-1")
	require.False(t, ok)
}

func TestRegistry_KeyIsActorWide(t *testing.T) {
	// The key space is not tenant-scoped: an actor clocked in anywhere is
	// clocked in everywhere.
	reg := New(Config{})

	_, err := reg.ClockIn("actor-1")
	require.NoError(t, err)
	_, err = reg.ClockIn(" actor-1 ")
	require.ErrorIs(t, err, ErrAlreadyActive)
}

func TestRegistry_EmptyActor(t *testing.T) {
	reg := New(Config{})

	_, err := reg.ClockIn("  ")
	require.ErrorIs(t, err, types.ErrActorRequired)
	_, _, err = reg.ClockOut("")
	require.ErrorIs(t, err, types.ErrActorRequired)
}

func TestRegistry_ListActiveSnapshotOrdered(t *testing.T) {
	t0 := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	reg := New(Config{Clock: newStepClock(t0, time.Minute)})

	for _, actor := range []string{"c", "a", "b"} {
		_, err := reg.ClockIn(actor)
		require.NoError(t, err)
	}

	entries := reg.ListActive()
	require.Len(t, entries, 3)
	require.Equal(t, "c", entries[0].ActorID)
	require.Equal(t, "a", entries[1].ActorID)
	require.Equal(t, "b", entries[2].ActorID)
	require.True(t, entries[0].StartTime.Before(entries[1].StartTime))
}

func TestRegistry_ConcurrentClockInSingleWinner(t *testing.T) {
	reg := New(Config{})

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.ClockIn("actor-1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, ErrAlreadyActive)
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, 1, reg.Size())
}

func TestRegistry_DifferentActorsDoNotInterfere(t *testing.T) {
	reg := New(Config{})

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		actor := string(rune('a' + i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.ClockIn(actor)
			require.NoError(t, err)
		}()
	}
	wg.Wait()
	require.Equal(t, workers, reg.Size())
}
