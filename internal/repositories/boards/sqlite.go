package boards

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

// Create inserts a new board record.
func (r *SQLiteRepository) Create(ctx context.Context, rec *models.BoardRecord) error {
	query := `INSERT INTO boards (` + boardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Name, rec.CreatedAt.UnixNano(), rec.UpdatedAt.UnixNano(),
		rec.Viewport.X, rec.Viewport.Y, rec.Viewport.Zoom,
		rec.ItemsJSON, rec.GroupsJSON, rec.StorageSize)
	return dbx.StorageError("insert board", err)
}

// GetByID returns a single board record.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.BoardRecord, error) {
	query := `SELECT ` + boardColumns + ` FROM boards WHERE id = ?`
	rec, err := scanBoard(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, dbx.StorageError("select board", err)
	}
	return rec, nil
}

// List returns every board, most recently updated first.
func (r *SQLiteRepository) List(ctx context.Context) ([]models.BoardRecord, error) {
	query := `SELECT ` + boardColumns + ` FROM boards ORDER BY updated_at DESC, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, dbx.StorageError("select boards", err)
	}
	defer rows.Close()

	var result []models.BoardRecord
	for rows.Next() {
		rec, err := scanBoard(rows)
		if err != nil {
			return nil, dbx.StorageError("scan board", err)
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.StorageError("iterate boards", err)
	}
	return result, nil
}

// Update applies upd to the board. It expects exactly one row to be affected.
func (r *SQLiteRepository) Update(ctx context.Context, id string, upd models.BoardUpdate) error {
	query, args := buildUpdate(id, upd, func(int) string { return "?" })
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return dbx.StorageError("update board", err)
	}
	return dbx.ExpectOne("update board", res)
}

// DeleteByID removes the board record. It expects exactly one row to be affected.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return dbx.StorageError("delete board", err)
	}
	return dbx.ExpectOne("delete board", res)
}

// SerializedSize sums the byte length of items_json and groups_json.
func (r *SQLiteRepository) SerializedSize(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(SUM(LENGTH(CAST(items_json AS BLOB)) + LENGTH(CAST(groups_json AS BLOB))), 0) FROM boards`
	var n int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, dbx.StorageError("sum board sizes", err)
	}
	return n, nil
}
