package session

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-timeclock/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed session repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

type sessionStore interface {
	repository.Repository[*Record]
}

// Repository persists completed work sessions. Rows are append-only: nothing
// updates a session in place, and rows leave the table only through the
// tenant-wide bulk delete used by the weekly reset.
type Repository struct {
	sessionStore
	db    *bun.DB
	clock types.Clock
	idGen types.IDGenerator
}

// NewRepository constructs a repository that implements types.SessionRepository.
func NewRepository(cfg RepositoryConfig, options ...RepositoryOption) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("session: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Record]{
			NewRecord: func() *Record { return &Record{} },
			GetID: func(rec *Record) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *Record, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
		})
	}
	repo, err := wrapCache(repo, applyRepositoryOptions(options))
	if err != nil {
		return nil, err
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}

	return &Repository{
		sessionStore: repo,
		db:           cfg.DB,
		clock:        clock,
		idGen:        idGen,
	}, nil
}

var (
	_ repository.Repository[*Record] = (*Repository)(nil)
	_ types.SessionRepository        = (*Repository)(nil)
)

// Append persists a completed session. Write failures propagate to the
// caller; by the time Append runs the in-memory entry is already gone, so a
// failure here loses the session (accepted inconsistency window).
func (r *Repository) Append(ctx context.Context, session types.WorkSession) error {
	actorID := types.NormalizeID(session.ActorID)
	tenantID := types.NormalizeID(session.TenantID)
	if actorID == "" {
		return types.ErrActorRequired
	}
	if tenantID == "" {
		return types.ErrTenantRequired
	}
	rec := fromDomain(session)
	rec.ActorID = actorID
	rec.TenantID = tenantID
	if rec.ID == uuid.Nil {
		rec.ID = r.idGen.UUID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.clock.Now()
	}
	if _, err := r.Create(ctx, rec); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "timeclock: session append failed").
			WithCode(goerrors.CodeInternal)
	}
	return nil
}

// SumDurationHours aggregates total hours over all sessions for the actor
// within the tenant; zero when none exist.
func (r *Repository) SumDurationHours(ctx context.Context, actorID, tenantID string) (float64, error) {
	if r.db == nil {
		return 0, errors.New("session: aggregate requires bun DB")
	}
	var total float64
	err := r.db.NewSelect().
		Table("work_sessions").
		ColumnExpr("COALESCE(SUM(duration_hours), 0)").
		Where("actor_id = ?", types.NormalizeID(actorID)).
		Where("tenant_id = ?", types.NormalizeID(tenantID)).
		Scan(ctx, &total)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "timeclock: session sum failed").
			WithCode(goerrors.CodeInternal)
	}
	return total, nil
}

// AllForTenant returns the tenant's entire current session history. There is
// deliberately no time filter: the weekly semantics depend on the previous
// rollup's reset having cleared the table. Reads straight from the database,
// bypassing the cache decorator, so a snapshot taken after the weekly reset
// never sees deleted rows.
func (r *Repository) AllForTenant(ctx context.Context, tenantID string) ([]types.WorkSession, error) {
	if r.db == nil {
		return nil, errors.New("session: tenant snapshot requires bun DB")
	}
	var rows []*Record
	err := r.db.NewSelect().
		Model(&rows).
		Where("tenant_id = ?", types.NormalizeID(tenantID)).
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "timeclock: session list failed").
			WithCode(goerrors.CodeInternal)
	}
	sessions := make([]types.WorkSession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, toDomain(row))
	}
	return sessions, nil
}

// DeleteAllForTenant bulk-deletes the tenant's session history. Safe to call
// on an empty set.
func (r *Repository) DeleteAllForTenant(ctx context.Context, tenantID string) error {
	if r.db == nil {
		return errors.New("session: bulk delete requires bun DB")
	}
	_, err := r.db.NewDelete().
		Model((*Record)(nil)).
		Where("tenant_id = ?", types.NormalizeID(tenantID)).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "timeclock: session reset failed").
			WithCode(goerrors.CodeInternal)
	}
	return nil
}

func fromDomain(session types.WorkSession) *Record {
	return &Record{
		ID:            session.ID,
		ActorID:       session.ActorID,
		TenantID:      session.TenantID,
		StartTime:     session.StartTime,
		EndTime:       session.EndTime,
		DurationHours: session.DurationHours,
	}
}

func toDomain(rec *Record) types.WorkSession {
	if rec == nil {
		return types.WorkSession{}
	}
	return types.WorkSession{
		ID:            rec.ID,
		ActorID:       rec.ActorID,
		TenantID:      rec.TenantID,
		StartTime:     rec.StartTime,
		EndTime:       rec.EndTime,
		DurationHours: rec.DurationHours,
	}
}
