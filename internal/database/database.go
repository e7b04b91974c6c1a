// Package database opens the durable store selected by a DSN and prepares
// its schema.
//
// A DSN starting with postgres:// or postgresql:// selects PostgreSQL via the
// pgx stdlib driver; anything else is treated as a SQLite file path or URI
// opened with the pure-Go modernc driver.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/motionboard/internal/common"
	"github.com/dmitrijs2005/motionboard/internal/repositories/repomanager"
)

// Dialect identifies the backing database engine.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Store bundles an open connection pool with the repository manager that
// matches its dialect.
type Store struct {
	DB      *sql.DB
	Repos   repomanager.RepositoryManager
	Dialect Dialect
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.DB.Close()
}

// DetectDialect picks the dialect for dsn.
func DetectDialect(dsn string) Dialect {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// InitDatabase opens dsn, verifies the connection and runs migrations.
func InitDatabase(ctx context.Context, dsn string) (*Store, error) {
	var (
		driver string
		repos  repomanager.RepositoryManager
	)

	dialect := DetectDialect(dsn)
	switch dialect {
	case DialectPostgres:
		driver, repos = "pgx", repomanager.NewPostgresRepositoryManager()
	default:
		driver, repos = "sqlite", repomanager.NewSQLiteRepositoryManager()
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", dialect, common.ErrStorageUnavailable, err)
	}
	if dialect == DialectSQLite {
		// a single connection serializes writers and keeps :memory: databases shared
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w: %w", dialect, common.ErrStorageUnavailable, err)
	}

	if err := repos.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w: %w", dialect, common.ErrStorageUnavailable, err)
	}

	return &Store{DB: db, Repos: repos, Dialect: dialect}, nil
}
