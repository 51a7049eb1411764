package command

import (
	"errors"

	"github.com/goliatone/go-timeclock/pkg/types"
)

var (
	// ErrActorRequired indicates an actor identifier was not supplied.
	ErrActorRequired = types.ErrActorRequired
	// ErrTenantRequired indicates a tenant identifier was not supplied.
	ErrTenantRequired = types.ErrTenantRequired
	// ErrChannelRequired indicates a channel identifier was not supplied.
	ErrChannelRequired = types.ErrChannelRequired
	// ErrClockInDisabled indicates clock-in is disabled via feature gate.
	ErrClockInDisabled = errors.New("timeclock: clock-in disabled")
)
