// Package services implements the board repository: CRUD over boards and
// their media on top of the durable store repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/motionboard/internal/common"
	"github.com/dmitrijs2005/motionboard/internal/dbx"
	"github.com/dmitrijs2005/motionboard/internal/logging"
	"github.com/dmitrijs2005/motionboard/internal/models"
	"github.com/dmitrijs2005/motionboard/internal/repositories/repomanager"
	"github.com/google/uuid"
)

// BoardService is the board repository used by the engine, the archive codec
// and the backup job. Reads report absence with common.ErrorNotFound.
type BoardService interface {
	ListBoards(ctx context.Context) ([]models.BoardMeta, error)
	CreateBoard(ctx context.Context, name string) (string, error)
	GetBoard(ctx context.Context, id string) (*models.Board, error)
	SaveBoard(ctx context.Context, id string, changes models.BoardChanges) error
	RenameBoard(ctx context.Context, id, name string) error
	DeleteBoard(ctx context.Context, id string) error
	DuplicateBoard(ctx context.Context, id string) (string, error)

	SaveMedia(ctx context.Context, boardID string, blob []byte, fileName, mimeType string) (string, error)
	GetMedia(ctx context.Context, id string) (*models.Media, error)
	ListMedia(ctx context.Context, boardID string) ([]models.Media, error)
	DeleteMedia(ctx context.Context, id string) error

	// GetStorageUsage is an approximation: serialized item and group
	// payloads of every board plus the recorded size of every medium.
	GetStorageUsage(ctx context.Context) (int64, error)
}

type boardService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	log   logging.Logger
	now   func() time.Time
	newID func() string
}

func NewBoardService(db *sql.DB, repos repomanager.RepositoryManager, log logging.Logger) BoardService {
	return &boardService{
		db:    db,
		repos: repos,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (s *boardService) ListBoards(ctx context.Context) ([]models.BoardMeta, error) {
	recs, err := s.repos.Boards(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}

	result := make([]models.BoardMeta, 0, len(recs))
	for _, rec := range recs {
		n, err := models.CountItems(rec.ItemsJSON)
		if err != nil {
			s.log.Warn(ctx, "unreadable item payload", "board_id", rec.ID, "error", err)
		}
		result = append(result, models.BoardMeta{
			ID:          rec.ID,
			Name:        rec.Name,
			CreatedAt:   rec.CreatedAt,
			UpdatedAt:   rec.UpdatedAt,
			ItemCount:   n,
			StorageSize: rec.StorageSize,
		})
	}
	return result, nil
}

func (s *boardService) CreateBoard(ctx context.Context, name string) (string, error) {
	if name == "" {
		name = common.DefaultBoardName
	}
	now := s.now()
	rec := &models.BoardRecord{
		ID:         s.newID(),
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
		Viewport:   models.DefaultViewport(),
		ItemsJSON:  "[]",
		GroupsJSON: "[]",
	}
	if err := s.repos.Boards(s.db).Create(ctx, rec); err != nil {
		return "", fmt.Errorf("create board: %w", err)
	}
	s.log.Debug(ctx, "board created", "board_id", rec.ID, "name", name)
	return rec.ID, nil
}

func (s *boardService) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	rec, err := s.repos.Boards(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get board %s: %w", id, err)
	}
	return decodeBoard(rec)
}

func decodeBoard(rec *models.BoardRecord) (*models.Board, error) {
	items, err := models.DecodeItems(rec.ItemsJSON)
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", rec.ID, err)
	}
	groups, err := models.DecodeGroups(rec.GroupsJSON)
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", rec.ID, err)
	}
	return &models.Board{
		ID:          rec.ID,
		Name:        rec.Name,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
		Viewport:    rec.Viewport,
		Items:       items,
		Groups:      groups,
		StorageSize: rec.StorageSize,
	}, nil
}

func (s *boardService) SaveBoard(ctx context.Context, id string, changes models.BoardChanges) error {
	itemsJSON, err := models.EncodeItems(changes.Items)
	if err != nil {
		return fmt.Errorf("save board %s: %w", id, err)
	}
	size := int64(len(itemsJSON))

	upd := models.BoardUpdate{
		UpdatedAt:   s.now(),
		Name:        changes.Name,
		Viewport:    changes.Viewport,
		ItemsJSON:   &itemsJSON,
		StorageSize: &size,
	}
	if changes.Groups != nil {
		groupsJSON, err := models.EncodeGroups(changes.Groups)
		if err != nil {
			return fmt.Errorf("save board %s: %w", id, err)
		}
		upd.GroupsJSON = &groupsJSON
	}

	if err := s.repos.Boards(s.db).Update(ctx, id, upd); err != nil {
		return fmt.Errorf("save board %s: %w", id, err)
	}
	return nil
}

func (s *boardService) RenameBoard(ctx context.Context, id, name string) error {
	err := s.repos.Boards(s.db).Update(ctx, id, models.BoardUpdate{UpdatedAt: s.now(), Name: &name})
	if err != nil {
		return fmt.Errorf("rename board %s: %w", id, err)
	}
	return nil
}

// DeleteBoard removes the board and all of its media in one transaction.
func (s *boardService) DeleteBoard(ctx context.Context, id string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repos.Media(tx).DeleteByBoard(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repos.Boards(tx).DeleteByID(ctx, id); err != nil {
			return err
		}
		s.log.Debug(ctx, "board deleted", "board_id", id, "media", n)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete board %s: %w", id, err)
	}
	return nil
}

// DuplicateBoard copies the board record and every medium under fresh ids.
// Blob references in the copied items are rewritten to the copied media.
func (s *boardService) DuplicateBoard(ctx context.Context, id string) (string, error) {
	newID := s.newID()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		boardRepo := s.repos.Boards(tx)
		mediaRepo := s.repos.Media(tx)

		src, err := boardRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		media, err := mediaRepo.ListByBoard(ctx, id)
		if err != nil {
			return err
		}

		mapping := make(map[string]string, len(media))
		for _, m := range media {
			mapping[m.ID] = s.newID()
		}

		items, err := models.DecodeItems(src.ItemsJSON)
		if err != nil {
			return err
		}
		for i := range items {
			if data, ok := models.RemapBlob(items[i].Data, mapping); ok {
				items[i].Data = data
			}
		}
		itemsJSON, err := models.EncodeItems(items)
		if err != nil {
			return err
		}

		now := s.now()
		dup := &models.BoardRecord{
			ID:          newID,
			Name:        src.Name + " (copy)",
			CreatedAt:   now,
			UpdatedAt:   now,
			Viewport:    src.Viewport,
			ItemsJSON:   itemsJSON,
			GroupsJSON:  src.GroupsJSON,
			StorageSize: int64(len(itemsJSON)),
		}
		if err := boardRepo.Create(ctx, dup); err != nil {
			return err
		}

		for _, m := range media {
			m.ID = mapping[m.ID]
			m.BoardID = newID
			if err := mediaRepo.Create(ctx, &m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("duplicate board %s: %w", id, err)
	}
	return newID, nil
}

// SaveMedia stores blob under a new id scoped to boardID. The board must exist.
func (s *boardService) SaveMedia(ctx context.Context, boardID string, blob []byte, fileName, mimeType string) (string, error) {
	m := &models.Media{
		ID:       s.newID(),
		BoardID:  boardID,
		Blob:     blob,
		FileName: fileName,
		MimeType: mimeType,
		Size:     int64(len(blob)),
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repos.Boards(tx).GetByID(ctx, boardID); err != nil {
			return err
		}
		return s.repos.Media(tx).Create(ctx, m)
	})
	if err != nil {
		return "", fmt.Errorf("save media for board %s: %w", boardID, err)
	}
	return m.ID, nil
}

func (s *boardService) GetMedia(ctx context.Context, id string) (*models.Media, error) {
	m, err := s.repos.Media(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get media %s: %w", id, err)
	}
	return m, nil
}

func (s *boardService) ListMedia(ctx context.Context, boardID string) ([]models.Media, error) {
	list, err := s.repos.Media(s.db).ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list media for board %s: %w", boardID, err)
	}
	return list, nil
}

// DeleteMedia removes a medium. Deleting an absent medium is not an error.
func (s *boardService) DeleteMedia(ctx context.Context, id string) error {
	err := s.repos.Media(s.db).DeleteByID(ctx, id)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("delete media %s: %w", id, err)
	}
	return nil
}

func (s *boardService) GetStorageUsage(ctx context.Context) (int64, error) {
	boardBytes, err := s.repos.Boards(s.db).SerializedSize(ctx)
	if err != nil {
		return 0, fmt.Errorf("storage usage: %w", err)
	}
	mediaBytes, err := s.repos.Media(s.db).TotalSize(ctx)
	if err != nil {
		return 0, fmt.Errorf("storage usage: %w", err)
	}
	return boardBytes + mediaBytes, nil
}
