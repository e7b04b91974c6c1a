// Package boards provides the persistence layer for board records: board
// metadata, the viewport, and the serialized item and group arrays.
//
// # Overview
//
// The package defines a Repository interface used by the board service and
// two implementations over a dbx.DBTX (*sql.DB or *sql.Tx): SQLiteRepository
// for the default local store and PostgresRepository for a server-backed
// store. Timestamps are stored as unix nanoseconds.
//
// Key Types
//
//   - type Repository          — contract used by higher-level services
//   - type SQLiteRepository    — SQLite implementation over dbx.DBTX
//   - type PostgresRepository  — PostgreSQL implementation over dbx.DBTX
//
// Typical Usage
//
//	repo := boards.NewSQLiteRepository(db)
//	_ = repo.Create(ctx, rec)
//	rec, _ := repo.GetByID(ctx, id)
//	_ = repo.Update(ctx, id, models.BoardUpdate{UpdatedAt: time.Now(), Name: &name})
//	list, _ := repo.List(ctx)
//
// Missing rows are reported as common.ErrorNotFound; other driver failures
// wrap common.ErrStorageUnavailable.
package boards
