package engine

import (
	"context"
	"time"

	"github.com/dmitrijs2005/motionboard/internal/common"
	"github.com/dmitrijs2005/motionboard/internal/models"
)

// scheduleSaveLocked replaces the pending save with one for the open board.
func (e *Engine) scheduleSaveLocked() {
	boardID := e.boardID
	e.saver.Schedule(func() {
		ctx := context.Background()
		if err := e.saveNow(ctx, boardID); err != nil {
			e.log.Error(ctx, "debounced save failed", "board_id", boardID, "error", err)
		}
	})
}

// Flush cancels the pending save and writes the open board's snapshot now.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	id := e.boardID
	e.mu.Unlock()
	if id == "" {
		return common.ErrNoActiveBoard
	}

	e.saver.Cancel()
	return e.saveNow(ctx, id)
}

// saveNow persists the current snapshot when boardID is still open. A save
// for a board that has been closed, replaced or deleted is dropped.
func (e *Engine) saveNow(ctx context.Context, boardID string) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	if boardID == "" || e.boardID != boardID {
		e.mu.Unlock()
		e.log.Debug(ctx, "dropping save for inactive board", "board_id", boardID)
		return nil
	}
	vp := e.viewport
	changes := models.BoardChanges{
		Items:    models.CloneItems(e.items),
		Groups:   models.CloneGroups(e.groups),
		Viewport: &vp,
	}
	e.mu.Unlock()

	start := time.Now()
	err := e.svc.SaveBoard(ctx, boardID, changes)
	e.metrics.ObserveSave(time.Since(start), err)

	e.mu.Lock()
	e.lastSaveErr = err
	e.mu.Unlock()
	if err != nil {
		return err
	}

	e.log.Debug(ctx, "board saved", "board_id", boardID, "items", len(changes.Items))
	e.refreshUsage(ctx)
	return nil
}

func (e *Engine) refreshUsage(ctx context.Context) {
	usage, err := e.svc.GetStorageUsage(ctx)
	if err != nil {
		e.log.Warn(ctx, "storage usage refresh failed", "error", err)
		return
	}
	e.mu.Lock()
	e.storageUsage = usage
	e.mu.Unlock()
	e.metrics.SetStorageUsage(usage)
}
