package boards

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/motionboard/internal/models"
)

const boardColumns = `id, name, created_at, updated_at, viewport_x, viewport_y, viewport_zoom, items_json, groups_json, storage_size`

type scanner interface {
	Scan(dest ...any) error
}

func scanBoard(s scanner) (*models.BoardRecord, error) {
	var (
		rec                  models.BoardRecord
		createdAt, updatedAt int64
	)
	err := s.Scan(&rec.ID, &rec.Name, &createdAt, &updatedAt,
		&rec.Viewport.X, &rec.Viewport.Y, &rec.Viewport.Zoom,
		&rec.ItemsJSON, &rec.GroupsJSON, &rec.StorageSize)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	rec.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &rec, nil
}

// buildUpdate renders the SET clause for upd. placeholder(n) yields the
// dialect's n-th bind parameter; the id parameter comes last.
func buildUpdate(id string, upd models.BoardUpdate, placeholder func(n int) string) (string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = %s", col, placeholder(len(args))))
	}

	add("updated_at", upd.UpdatedAt.UnixNano())
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Viewport != nil {
		add("viewport_x", upd.Viewport.X)
		add("viewport_y", upd.Viewport.Y)
		add("viewport_zoom", upd.Viewport.Zoom)
	}
	if upd.ItemsJSON != nil {
		add("items_json", *upd.ItemsJSON)
	}
	if upd.GroupsJSON != nil {
		add("groups_json", *upd.GroupsJSON)
	}
	if upd.StorageSize != nil {
		add("storage_size", *upd.StorageSize)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE boards SET %s WHERE id = %s", strings.Join(sets, ", "), placeholder(len(args)))
	return query, args
}
