package media

import (
	"database/sql"

	"github.com/dmitrijs2005/motionboard/internal/models"
)

const mediaColumns = `id, board_id, data, file_name, mime_type, size`

type scanner interface {
	Scan(dest ...any) error
}

func scanMedia(s scanner) (*models.Media, error) {
	var m models.Media
	if err := s.Scan(&m.ID, &m.BoardID, &m.Blob, &m.FileName, &m.MimeType, &m.Size); err != nil {
		return nil, err
	}
	if m.Blob == nil {
		m.Blob = []byte{}
	}
	return &m, nil
}

func collect(rows *sql.Rows) ([]models.Media, error) {
	defer rows.Close()

	var result []models.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
