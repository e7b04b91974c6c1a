package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestDetectDialect(t *testing.T) {
	assert.Equal(t, DialectPostgres, DetectDialect("postgres://u:p@localhost/db"))
	assert.Equal(t, DialectPostgres, DetectDialect("PostgreSQL://localhost/db"))
	assert.Equal(t, DialectSQLite, DetectDialect("motionboard.db"))
	assert.Equal(t, DialectSQLite, DetectDialect(":memory:"))
}

func TestInitDatabase_CreatesSchema(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "app.db")

	store, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, DialectSQLite, store.Dialect)
	assert.True(t, tableExists(t, store.DB, "goose_db_version"))
	assert.True(t, tableExists(t, store.DB, "boards"))
	assert.True(t, tableExists(t, store.DB, "media"))
}

func TestInitDatabase_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "app.db")

	first, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	defer second.Close()

	assert.True(t, tableExists(t, second.DB, "boards"))
}
