package session

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/goliatone/go-timeclock/pkg/types"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestRepository_AppendAndSum(t *testing.T) {
	ctx := context.Background()
	db := newTestSessionDB(t)
	applySessionDDL(t, db)

	store, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	for _, hours := range []float64{1.5, 2.0} {
		require.NoError(t, store.Append(ctx, types.WorkSession{
			ActorID:       "actor-1",
			TenantID:      "tenant-a",
			StartTime:     start,
			EndTime:       start.Add(time.Duration(hours * float64(time.Hour))),
			DurationHours: hours,
		}))
	}
	require.NoError(t, store.Append(ctx, types.WorkSession{
		ActorID:       "actor-2",
		TenantID:      "tenant-a",
		StartTime:     start,
		EndTime:       start.Add(30 * time.Minute),
		DurationHours: 0.5,
	}))

	total, err := store.SumDurationHours(ctx, "actor-1", "tenant-a")
	require.NoError(t, err)
	require.InDelta(t, 3.5, total, 1e-9)

	total, err = store.SumDurationHours(ctx, "actor-2", "tenant-a")
	require.NoError(t, err)
	require.InDelta(t, 0.5, total, 1e-9)
}

func TestRepository_SumIsZeroWithoutRecords(t *testing.T) {
	ctx := context.Background()
	db := newTestSessionDB(t)
	applySessionDDL(t, db)
	store, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	total, err := store.SumDurationHours(ctx, "actor-1", "tenant-a")
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestRepository_SumScopedToTenant(t *testing.T) {
	ctx := context.Background()
	db := newTestSessionDB(t)
	applySessionDDL(t, db)
	store, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, types.WorkSession{
		ActorID: "actor-1", TenantID: "tenant-a",
		StartTime: start, EndTime: start.Add(time.Hour), DurationHours: 1,
	}))
	require.NoError(t, store.Append(ctx, types.WorkSession{
		ActorID: "actor-1", TenantID: "tenant-b",
		StartTime: start, EndTime: start.Add(2 * time.Hour), DurationHours: 2,
	}))

	total, err := store.SumDurationHours(ctx, "actor-1", "tenant-a")
	require.NoError(t, err)
	require.InDelta(t, 1.0, total, 1e-9)
}

func TestRepository_AllForTenantSnapshot(t *testing.T) {
	ctx := context.Background()
	db := newTestSessionDB(t)
	applySessionDDL(t, db)
	store, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, types.WorkSession{
		ActorID: "actor-1", TenantID: "tenant-a",
		StartTime: start, EndTime: start.Add(time.Hour), DurationHours: 1,
	}))
	require.NoError(t, store.Append(ctx, types.WorkSession{
		ActorID: "actor-2", TenantID: "tenant-b",
		StartTime: start, EndTime: start.Add(time.Hour), DurationHours: 1,
	}))

	sessions, err := store.AllForTenant(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "actor-1", sessions[0].ActorID)
	require.NotEqual(t, sessions[0].ID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestRepository_DeleteAllForTenantIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestSessionDB(t)
	applySessionDDL(t, db)
	store, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, types.WorkSession{
		ActorID: "actor-1", TenantID: "tenant-a",
		StartTime: start, EndTime: start.Add(time.Hour), DurationHours: 1,
	}))

	require.NoError(t, store.DeleteAllForTenant(ctx, "tenant-a"))
	sessions, err := store.AllForTenant(ctx, "tenant-a")
	require.NoError(t, err)
	require.Empty(t, sessions)

	// Second delete on the now-empty set is a no-op.
	require.NoError(t, store.DeleteAllForTenant(ctx, "tenant-a"))
}

func TestRepository_AppendValidatesIdentifiers(t *testing.T) {
	ctx := context.Background()
	db := newTestSessionDB(t)
	applySessionDDL(t, db)
	store, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	err = store.Append(ctx, types.WorkSession{TenantID: "tenant-a"})
	require.ErrorIs(t, err, types.ErrActorRequired)
	err = store.Append(ctx, types.WorkSession{ActorID: "actor-1"})
	require.ErrorIs(t, err, types.ErrTenantRequired)
}

func TestRepository_CachedSnapshotSeesWeeklyReset(t *testing.T) {
	ctx := context.Background()
	db := newTestSessionDB(t)
	applySessionDDL(t, db)

	store, err := NewRepository(RepositoryConfig{DB: db}, WithCache(true))
	require.NoError(t, err)

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, types.WorkSession{
		ActorID:       "actor-1",
		TenantID:      "tenant-a",
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
		DurationHours: 1.0,
	}))

	// Warm any read path before the bulk delete.
	rows, err := store.AllForTenant(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, store.DeleteAllForTenant(ctx, "tenant-a"))

	rows, err = store.AllForTenant(ctx, "tenant-a")
	require.NoError(t, err)
	require.Empty(t, rows)

	total, err := store.SumDurationHours(ctx, "actor-1", "tenant-a")
	require.NoError(t, err)
	require.InDelta(t, 0, total, 1e-9)
}

func TestRepository_CacheWrapsRepository(t *testing.T) {
	db := newTestSessionDB(t)
	applySessionDDL(t, db)

	store, err := NewRepository(RepositoryConfig{DB: db}, WithCache(true))
	require.NoError(t, err)

	_, ok := store.sessionStore.(*repositorycache.CachedRepository[*Record])
	require.True(t, ok)
}

func newTestSessionDB(t *testing.T) *bun.DB {
	sqldb, err := sql.Open("sqlite3", ":memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})
	return db
}

func applySessionDDL(t *testing.T, db *bun.DB) {
	content, err := os.ReadFile("../data/sql/migrations/sqlite/00001_work_sessions.up.sql")
	require.NoError(t, err)
	for _, stmt := range splitStatements(string(content)) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

func splitStatements(sql string) []string {
	lines := strings.Split(sql, "\n")
	var builder strings.Builder
	var statements []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		if strings.HasSuffix(line, ";") {
			statements = append(statements, strings.TrimSuffix(builder.String(), ";"))
			builder.Reset()
		} else {
			builder.WriteString(" ")
		}
	}
	if builder.Len() > 0 {
		statements = append(statements, builder.String())
	}
	return statements
}
