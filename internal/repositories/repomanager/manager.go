// Package repomanager vends dialect-specific repository implementations bound
// to a dbx.DBTX and runs the matching goose migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/motionboard/internal/dbx"
	"github.com/dmitrijs2005/motionboard/internal/repositories/boards"
	"github.com/dmitrijs2005/motionboard/internal/repositories/media"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Boards(db dbx.DBTX) boards.Repository
	Media(db dbx.DBTX) media.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}
