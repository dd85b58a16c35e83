package infrastructure

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kv-shepherd.io/multiauth/database/migrations"
	"kv-shepherd.io/multiauth/internal/testutil"
)

func openLazyDB(t *testing.T) *sql.DB {
	t.Helper()
	// sql.Open does not connect; goose only needs a handle to build sources.
	db, err := sql.Open("pgx", "postgres://multiauth@127.0.0.1:1/multiauth")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewMigrator_EmbeddedSources(t *testing.T) {
	m, err := newMigrator(openLazyDB(t), migrations.FS())
	require.NoError(t, err)

	sources := m.ListSources()
	require.Len(t, sources, 1)
	assert.Equal(t, int64(20240101000000), sources[0].Version)
}

func TestNewMigrator_OrdersByVersionAndSkipsOtherFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"002_b.sql": {Data: []byte("-- +goose Up\nSELECT 2;\n")},
		"001_a.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")},
		"README.md": {Data: []byte("docs")},
	}

	m, err := newMigrator(openLazyDB(t), fsys)
	require.NoError(t, err)

	sources := m.ListSources()
	require.Len(t, sources, 2)
	assert.Equal(t, int64(1), sources[0].Version)
	assert.Equal(t, int64(2), sources[1].Version)
}

func TestNewMigrator_Empty(t *testing.T) {
	_, err := newMigrator(openLazyDB(t), fstest.MapFS{})
	assert.Error(t, err)
}

func TestApplyMigrations_Postgres(t *testing.T) {
	pool := testutil.OpenPGXPool(t, "multiauth_migrate")
	ctx := context.Background()

	applied, err := ApplyMigrations(ctx, pool, migrations.FS())
	require.NoError(t, err)
	assert.Equal(t, []int64{20240101000000}, applied)

	var exists bool
	err = pool.QueryRow(ctx,
		"SELECT to_regclass('oauth_access_token_providers') IS NOT NULL").Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists)

	again, err := ApplyMigrations(ctx, pool, migrations.FS())
	require.NoError(t, err)
	assert.Empty(t, again, "second run must be a no-op")
}
