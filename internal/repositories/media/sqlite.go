package media

import (
	"context"

	"github.com/dmitrijs2005/motionboard/internal/dbx"
	"github.com/dmitrijs2005/motionboard/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a medium.
func (r *SQLiteRepository) Create(ctx context.Context, m *models.Media) error {
	query := `INSERT INTO media (` + mediaColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	blob := m.Blob
	if blob == nil {
		blob = []byte{}
	}
	_, err := r.db.ExecContext(ctx, query, m.ID, m.BoardID, blob, m.FileName, m.MimeType, m.Size)
	return dbx.StorageError("insert media", err)
}

// GetByID returns the medium with the given id.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE id = ?`
	m, err := scanMedia(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, dbx.StorageError("select media", err)
	}
	return m, nil
}

// ListByBoard returns all media of a board.
func (r *SQLiteRepository) ListByBoard(ctx context.Context, boardID string) ([]models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE board_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, dbx.StorageError("select board media", err)
	}
	result, err := collect(rows)
	if err != nil {
		return nil, dbx.StorageError("scan board media", err)
	}
	return result, nil
}

// DeleteByID removes one medium. It expects exactly one row to be affected.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return dbx.StorageError("delete media", err)
	}
	return dbx.ExpectOne("delete media", res)
}

// DeleteByBoard removes all media owned by boardID.
func (r *SQLiteRepository) DeleteByBoard(ctx context.Context, boardID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM media WHERE board_id = ?`, boardID)
	if err != nil {
		return 0, dbx.StorageError("delete board media", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, dbx.StorageError("delete board media: rows affected", err)
	}
	return n, nil
}

// TotalSize sums the size column over all media.
func (r *SQLiteRepository) TotalSize(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size), 0) FROM media`).Scan(&n); err != nil {
		return 0, dbx.StorageError("sum media sizes", err)
	}
	return n, nil
}
