package notify

import (
	"context"
	"sync"

	"github.com/goliatone/go-timeclock/pkg/types"
)

// Fanout relays every notification to the registered listeners before (and
// regardless of) the wrapped sender. Hosts use it to mirror traffic into
// tests or audit sinks without touching the chat-platform adapter.
type Fanout struct {
	mu        sync.RWMutex
	sender    types.Notifier
	listeners []func(context.Context, types.Notification)
}

// NewFanout constructs a fanout notifier around an optional sender. A nil
// sender makes the fanout a pure observer.
func NewFanout(sender types.Notifier) *Fanout {
	return &Fanout{sender: sender}
}

var _ types.Notifier = (*Fanout)(nil)

// Register adds a listener that receives every notification. Nil listeners
// are ignored.
func (f *Fanout) Register(listener func(context.Context, types.Notification)) {
	if listener == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, listener)
}

// Send relays the notification to all listeners, then to the wrapped sender.
func (f *Fanout) Send(ctx context.Context, msg types.Notification) error {
	f.mu.RLock()
	listeners := make([]func(context.Context, types.Notification), len(f.listeners))
	copy(listeners, f.listeners)
	sender := f.sender
	f.mu.RUnlock()

	for _, listener := range listeners {
		listener(ctx, msg)
	}
	if sender == nil {
		return nil
	}
	return sender.Send(ctx, msg)
}
