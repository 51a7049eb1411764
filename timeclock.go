package timeclock

import "github.com/goliatone/go-timeclock/service"

// Re-export the service package entry point so consumers can do
// `timeclock.New(...)` without importing internal wiring helpers.
type (
	Service  = service.Service
	Config   = service.Config
	Commands = service.Commands
	Queries  = service.Queries
)

// New constructs the go-timeclock runtime using the provided configuration.
func New(cfg Config) *Service {
	return service.New(cfg)
}
