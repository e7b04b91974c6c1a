// Package media provides the persistence layer for binary attachments
// scoped to a board.
//
// The Repository interface is implemented by SQLiteRepository and
// PostgresRepository, both bound to a dbx.DBTX so that callers can run
// multi-collection work (for example deleting a board and its media) inside
// one transaction via dbx.WithTx.
package media
