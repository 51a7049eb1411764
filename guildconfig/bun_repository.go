package guildconfig

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-timeclock/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed guild config repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

type configStore interface {
	repository.Repository[*Record]
}

// Repository implements types.GuildConfigRepository with get-or-create and
// field-level upsert semantics, identical regardless of backing dialect.
type Repository struct {
	configStore
	clock types.Clock
	idGen types.IDGenerator
}

// NewRepository constructs the default guild config repository.
func NewRepository(cfg RepositoryConfig, options ...RepositoryOption) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("guildconfig: db or repository required")
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
		configStore: repo,
		clock:       clock,
		idGen:       idGen,
	}, nil
}

var _ types.GuildConfigRepository = (*Repository)(nil)

// GetOrCreate returns the tenant's config row, creating one with empty
// channel slots on first access. Idempotent.
func (r *Repository) GetOrCreate(ctx context.Context, tenantID string) (*types.GuildConfig, error) {
	tenantID = types.NormalizeID(tenantID)
	if tenantID == "" {
		return nil, types.ErrTenantRequired
	}
	existing, err := r.findExisting(ctx, tenantID)
	switch {
	case err == nil:
		return toDomainPtr(existing), nil
	case repository.IsRecordNotFound(err):
		now := r.clock.Now()
		created, err := r.Create(ctx, &Record{
			ID:        r.idGen.UUID(),
			TenantID:  tenantID,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "timeclock: guild config create failed").
				WithCode(goerrors.CodeInternal)
		}
		return toDomainPtr(created), nil
	default:
		return nil, err
	}
}

// SetChannel upserts a single channel slot, creating the tenant row when
// absent. Setting an empty channel id clears the slot.
func (r *Repository) SetChannel(ctx context.Context, tenantID string, kind types.ChannelKind, channelID string) (*types.GuildConfig, error) {
	tenantID = types.NormalizeID(tenantID)
	if tenantID == "" {
		return nil, types.ErrTenantRequired
	}
	if !kind.Valid() {
		return nil, types.ErrUnknownChannelKind
	}
	channelID = types.NormalizeID(channelID)

	now := r.clock.Now()
	existing, err := r.findExisting(ctx, tenantID)
	switch {
	case err == nil:
		setChannelField(existing, kind, channelID)
		existing.UpdatedAt = now
		updated, err := r.Update(ctx, existing)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "timeclock: guild config update failed").
				WithCode(goerrors.CodeInternal)
		}
		return toDomainPtr(updated), nil
	case repository.IsRecordNotFound(err):
		rec := &Record{
			ID:        r.idGen.UUID(),
			TenantID:  tenantID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		setChannelField(rec, kind, channelID)
		created, err := r.Create(ctx, rec)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "timeclock: guild config create failed").
				WithCode(goerrors.CodeInternal)
		}
		return toDomainPtr(created), nil
	default:
		return nil, err
	}
}

// ListWithSummaryChannel returns every tenant whose weekly summary channel
// is configured. This is the rollup's candidate set.
func (r *Repository) ListWithSummaryChannel(ctx context.Context) ([]types.GuildConfig, error) {
	criteria := []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("weekly_summary_channel_id <> ''").
				OrderExpr("tenant_id ASC")
		},
	}
	rows, _, err := r.List(ctx, criteria...)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "timeclock: guild config list failed").
			WithCode(goerrors.CodeInternal)
	}
	configs := make([]types.GuildConfig, 0, len(rows))
	for _, row := range rows {
		configs = append(configs, toDomain(row))
	}
	return configs, nil
}

func (r *Repository) findExisting(ctx context.Context, tenantID string) (*Record, error) {
	criteria := []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("tenant_id = ?", tenantID).Limit(1)
		},
	}
	rows, _, err := r.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repository.NewRecordNotFound()
	}
	return rows[0], nil
}

func setChannelField(rec *Record, kind types.ChannelKind, channelID string) {
	switch kind {
	case types.ChannelLog:
		rec.LogChannelID = channelID
	case types.ChannelAdminLog:
		rec.AdminLogChannelID = channelID
	case types.ChannelWeeklySummary:
		rec.WeeklySummaryChannelID = channelID
	}
}

func toDomain(rec *Record) types.GuildConfig {
	if rec == nil {
		return types.GuildConfig{}
	}
	return types.GuildConfig{
		ID:                     rec.ID,
		TenantID:               rec.TenantID,
		LogChannelID:           rec.LogChannelID,
		AdminLogChannelID:      rec.AdminLogChannelID,
		WeeklySummaryChannelID: rec.WeeklySummaryChannelID,
		CreatedAt:              rec.CreatedAt,
		UpdatedAt:              rec.UpdatedAt,
	}
}

func toDomainPtr(rec *Record) *types.GuildConfig {
	cfg := toDomain(rec)
	return &cfg
}
