package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-timeclock/pkg/types"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	sent []types.Notification
	err  error
}

func (s *stubSender) Send(_ context.Context, msg types.Notification) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func TestFanout_RelaysToListenersAndSender(t *testing.T) {
	sender := &stubSender{}
	fanout := NewFanout(sender)

	var seen []string
	fanout.Register(func(_ context.Context, msg types.Notification) {
		seen = append(seen, msg.Title)
	})
	fanout.Register(nil)

	err := fanout.Send(context.Background(), types.Notification{Title: "hello"})
	require.NoError(t, err)
	require.Equal(t, []string{"hello"}, seen)
	require.Len(t, sender.sent, 1)
}

func TestFanout_NilSenderIsObserverOnly(t *testing.T) {
	fanout := NewFanout(nil)
	count := 0
	fanout.Register(func(context.Context, types.Notification) { count++ })

	require.NoError(t, fanout.Send(context.Background(), types.Notification{}))
	require.Equal(t, 1, count)
}

func TestFanout_SenderErrorPropagatesAfterListeners(t *testing.T) {
	sendErr := errors.New("channel gone")
	fanout := NewFanout(&stubSender{err: sendErr})
	called := false
	fanout.Register(func(context.Context, types.Notification) { called = true })

	err := fanout.Send(context.Background(), types.Notification{})
	require.ErrorIs(t, err, sendErr)
	require.True(t, called)
}
