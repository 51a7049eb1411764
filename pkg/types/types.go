package types

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WorkSession is a completed, durable work session. Records are created once
// at clock-out, never mutated, and removed only by a tenant-wide bulk delete
// during the weekly reset.
type WorkSession struct {
	ID            uuid.UUID
	ActorID       string
	TenantID      string
	StartTime     time.Time
	EndTime       time.Time
	DurationHours float64
}

// ActiveEntry is an open, not-yet-closed work session. Active entries live
// only in process memory and are lost on restart; there is no reconciliation
// for sessions that were open at crash time.
type ActiveEntry struct {
	ActorID   string
	StartTime time.Time
}

// ChannelKind identifies one of the per-tenant notification channel slots.
type ChannelKind string

const (
	ChannelLog           ChannelKind = "log"
	ChannelAdminLog      ChannelKind = "admin_log"
	ChannelWeeklySummary ChannelKind = "weekly_summary"
)

// Valid reports whether the kind names a known channel slot.
func (k ChannelKind) Valid() bool {
	switch k {
	case ChannelLog, ChannelAdminLog, ChannelWeeklySummary:
		return true
	}
	return false
}

// GuildConfig holds the per-tenant notification routing. One row per tenant;
// empty string means the channel slot has not been configured.
type GuildConfig struct {
	ID                     uuid.UUID
	TenantID               string
	LogChannelID           string
	AdminLogChannelID      string
	WeeklySummaryChannelID string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Channel returns the configured channel id for the requested slot.
func (c GuildConfig) Channel(kind ChannelKind) string {
	switch kind {
	case ChannelLog:
		return c.LogChannelID
	case ChannelAdminLog:
		return c.AdminLogChannelID
	case ChannelWeeklySummary:
		return c.WeeklySummaryChannelID
	}
	return ""
}

// NotificationField is a single (label, value) pair in a structured message.
type NotificationField struct {
	Label  string
	Value  string
	Inline bool
}

// Notification is the structured message handed to the external notification
// collaborator. ChannelID targets a tenant channel; Recipient targets a
// single actor directly. Exactly one of the two is normally set.
type Notification struct {
	TenantID    string
	ChannelID   string
	Recipient   string
	Title       string
	Description string
	Footer      string
	Color       int
	Fields      []NotificationField
}

// ChannelRef describes a resolved notification channel.
type ChannelRef struct {
	ID   string
	Name string
}

// SessionRepository persists completed work sessions.
type SessionRepository interface {
	Append(ctx context.Context, session WorkSession) error
	SumDurationHours(ctx context.Context, actorID, tenantID string) (float64, error)
	AllForTenant(ctx context.Context, tenantID string) ([]WorkSession, error)
	DeleteAllForTenant(ctx context.Context, tenantID string) error
}

// GuildConfigRepository persists per-tenant notification configuration.
type GuildConfigRepository interface {
	GetOrCreate(ctx context.Context, tenantID string) (*GuildConfig, error)
	SetChannel(ctx context.Context, tenantID string, kind ChannelKind, channelID string) (*GuildConfig, error)
	ListWithSummaryChannel(ctx context.Context) ([]GuildConfig, error)
}

// ActiveRegistry is the lifecycle gate over open sessions. Implementations
// must make ClockIn/ClockOut atomic per actor key.
type ActiveRegistry interface {
	ClockIn(actorID string) (time.Time, error)
	ClockOut(actorID string) (start, end time.Time, err error)
	Peek(actorID string) (time.Time, bool)
	ListActive() []ActiveEntry
	Size() int
}

// Notifier is the minimal DI contract for emitting structured messages. Keep
// it limited to Send so hosts can swap chat-platform adapters without
// breaking changes.
type Notifier interface {
	Send(ctx context.Context, msg Notification) error
}

// ActorDirectory resolves platform actor ids to display names. Lookups are
// per item and always non-fatal for callers.
type ActorDirectory interface {
	DisplayName(ctx context.Context, actorID string) (string, error)
}

// ChannelDirectory resolves a configured channel id within a tenant. An
// error means the channel is unresolvable (deleted, inaccessible).
type ChannelDirectory interface {
	Channel(ctx context.Context, tenantID, channelID string) (ChannelRef, error)
}

// ClockEvent is emitted after a successful clock-in.
type ClockEvent struct {
	ActorID   string
	TenantID  string
	StartTime time.Time
}

// SessionEvent is emitted after a clock-out persists its session.
type SessionEvent struct {
	Session    WorkSession
	TotalHours float64
}

// RollupStats summarizes one weekly rollup pass.
type RollupStats struct {
	Tenants   int
	Skipped   int
	Failed    int
	Actors    int
	TotalHrs  float64
	StartedAt time.Time
}

// Hooks groups optional callbacks invoked after key workflows complete.
type Hooks struct {
	AfterClockIn  func(context.Context, ClockEvent)
	AfterClockOut func(context.Context, SessionEvent)
	AfterRollup   func(context.Context, RollupStats)
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the engine.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

// NormalizeID trims platform identifiers so map keys and query filters stay
// consistent across transports.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}

var (
	// ErrActorRequired indicates an actor identifier was not supplied.
	ErrActorRequired = errors.New("timeclock: actor id required")
	// ErrTenantRequired indicates a tenant identifier was not supplied.
	ErrTenantRequired = errors.New("timeclock: tenant id required")
	// ErrChannelRequired indicates a channel identifier was not supplied.
	ErrChannelRequired = errors.New("timeclock: channel id required")
	// ErrUnknownChannelKind indicates an unrecognized channel slot.
	ErrUnknownChannelKind = errors.New("timeclock: unknown channel kind")
	// ErrServiceNotReady indicates the service has not been properly configured.
	ErrServiceNotReady = errors.New("timeclock: service not ready")
	// ErrMissingSessionRepository occurs when no session repository was supplied.
	ErrMissingSessionRepository = errors.New("timeclock: missing session repository")
	// ErrMissingConfigRepository occurs when no guild config repository was supplied.
	ErrMissingConfigRepository = errors.New("timeclock: missing guild config repository")
	// ErrMissingRegistry occurs when no active session registry was supplied.
	ErrMissingRegistry = errors.New("timeclock: missing active session registry")
	// ErrMissingNotifier occurs when no notifier was supplied.
	ErrMissingNotifier = errors.New("timeclock: missing notifier")
)
