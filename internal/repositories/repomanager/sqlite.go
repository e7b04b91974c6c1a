package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/motionboard/internal/dbx"
	"github.com/dmitrijs2005/motionboard/internal/migrations"
	"github.com/dmitrijs2005/motionboard/internal/repositories/boards"
	"github.com/dmitrijs2005/motionboard/internal/repositories/media"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repositories.
type SQLiteRepositoryManager struct{}

// Boards returns a boards.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Boards(db dbx.DBTX) boards.Repository {
	return boards.NewSQLiteRepository(db)
}

// Media returns a media.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Media(db dbx.DBTX) media.Repository {
	return media.NewSQLiteRepository(db)
}

// RunMigrations applies the embedded sqlite migrations.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, migrations.SQLiteDir)
}

// NewSQLiteRepositoryManager constructs a SQLite-backed RepositoryManager.
func NewSQLiteRepositoryManager() RepositoryManager {
	return &SQLiteRepositoryManager{}
}
