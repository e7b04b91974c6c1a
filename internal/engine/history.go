package engine

import "github.com/dmitrijs2005/motionboard/internal/models"

// DefaultUndoLimit bounds the undo stack when no limit is configured.
const DefaultUndoLimit = 50

// History holds the undo and redo stacks of item snapshots for one open
// board. Only items are captured; groups and the viewport are not.
type History struct {
	undo  [][]models.Item
	redo  [][]models.Item
	limit int
}

// NewHistory returns an empty history holding at most limit undo steps.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultUndoLimit
	}
	return &History{limit: limit}
}

// Push records the pre-mutation items and clears the redo stack. The
// oldest snapshot is evicted once the limit is exceeded.
func (h *History) Push(items []models.Item) {
	h.undo = append(h.undo, models.CloneItems(items))
	if over := len(h.undo) - h.limit; over > 0 {
		clear(h.undo[:over])
		h.undo = h.undo[over:]
	}
	h.redo = nil
}

// Undo pops the latest snapshot and stores current on the redo stack.
func (h *History) Undo(current []models.Item) ([]models.Item, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, models.CloneItems(current))
	return prev, true
}

// Redo pops the latest undone snapshot and stores current on the undo stack.
func (h *History) Redo(current []models.Item) ([]models.Item, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, models.CloneItems(current))
	return next, true
}

// Reset drops both stacks.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}

// Depth reports the number of undo and redo steps available.
func (h *History) Depth() (undo, redo int) {
	return len(h.undo), len(h.redo)
}
