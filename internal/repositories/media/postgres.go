package media

import (
	"context"

	"github.com/dmitrijs2005/motionboard/internal/dbx"
	"github.com/dmitrijs2005/motionboard/internal/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a medium.
func (r *PostgresRepository) Create(ctx context.Context, m *models.Media) error {
	query := `INSERT INTO media (` + mediaColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	blob := m.Blob
	if blob == nil {
		blob = []byte{}
	}
	_, err := r.db.ExecContext(ctx, query, m.ID, m.BoardID, blob, m.FileName, m.MimeType, m.Size)
	return dbx.StorageError("insert media", err)
}

// GetByID returns the medium with the given id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE id = $1`
	m, err := scanMedia(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, dbx.StorageError("select media", err)
	}
	return m, nil
}

// ListByBoard returns all media of a board.
func (r *PostgresRepository) ListByBoard(ctx context.Context, boardID string) ([]models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE board_id = $1 ORDER BY id`
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
func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return dbx.StorageError("delete media", err)
	}
	return dbx.ExpectOne("delete media", res)
}

// DeleteByBoard removes all media owned by boardID.
func (r *PostgresRepository) DeleteByBoard(ctx context.Context, boardID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM media WHERE board_id = $1`, boardID)
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
func (r *PostgresRepository) TotalSize(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size), 0)::BIGINT FROM media`).Scan(&n); err != nil {
		return 0, dbx.StorageError("sum media sizes", err)
	}
	return n, nil
}
