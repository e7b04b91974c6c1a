package engine

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/motionboard/internal/common"
	"github.com/dmitrijs2005/motionboard/internal/models"
)

// AddItem appends a new item stacked above the current count. A nil size
// selects the type's default size. The addition is undoable.
func (e *Engine) AddItem(t models.ItemType, data models.ItemData, pos models.Position, size *models.Size) (models.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireBoardLocked(); err != nil {
		return models.Item{}, err
	}

	it := models.Item{
		ID:        e.newID(),
		Type:      t,
		Position:  pos,
		Size:      models.DefaultSize(t),
		ZIndex:    len(e.items),
		Tags:      []string{},
		CreatedAt: e.now(),
		Data:      data,
	}
	if size != nil {
		it.Size = *size
	}
	if err := it.Validate(); err != nil {
		return models.Item{}, err
	}
	it = it.Clone()

	e.pushUndoLocked()
	e.items = append(e.items, it)
	e.scheduleSaveLocked()
	return it.Clone(), nil
}

// RemoveItem removes one item. See RemoveItems.
func (e *Engine) RemoveItem(id string) (bool, error) {
	n, err := e.RemoveItems([]string{id})
	return n > 0, err
}

// RemoveItems removes every item whose id is listed and reports how many
// were removed. Group membership lists are not touched, so a removed
// grouped item stays listed in its group. Nothing is recorded when no id
// matches.
func (e *Engine) RemoveItems(ids []string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireBoardLocked(); err != nil {
		return 0, err
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := make([]models.Item, 0, len(e.items))
	for _, it := range e.items {
		if _, ok := drop[it.ID]; !ok {
			kept = append(kept, it)
		}
	}
	removed := len(e.items) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	e.pushUndoLocked()
	e.items = kept
	e.scheduleSaveLocked()
	return removed, nil
}

// DuplicateItems copies every listed item under a new id, offset by
// DuplicateOffset on both axes and stacked above all existing items. The
// copies are ungrouped. It returns the new ids in the order given.
func (e *Engine) DuplicateItems(ids []string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireBoardLocked(); err != nil {
		return nil, err
	}

	top := e.maxZLocked()
	var copies []models.Item
	for _, id := range ids {
		i := e.indexLocked(id)
		if i < 0 {
			continue
		}
		top++
		c := e.items[i].Clone()
		c.ID = e.newID()
		c.Position.X += DuplicateOffset
		c.Position.Y += DuplicateOffset
		c.CreatedAt = e.now()
		c.ZIndex = top
		c.GroupID = ""
		copies = append(copies, c)
	}
	if len(copies) == 0 {
		return nil, nil
	}

	e.pushUndoLocked()
	e.items = append(e.items, copies...)
	e.scheduleSaveLocked()

	out := make([]string, len(copies))
	for i, c := range copies {
		out[i] = c.ID
	}
	return out, nil
}

// update applies fn to the item with the given id and schedules a save.
// It does not record undo history.
func (e *Engine) update(id string, fn func(*models.Item) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireBoardLocked(); err != nil {
		return err
	}
	i := e.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("item %s: %w", id, common.ErrorNotFound)
	}

	it := e.items[i].Clone()
	if err := fn(&it); err != nil {
		return err
	}
	e.items[i] = it
	e.scheduleSaveLocked()
	return nil
}

// UpdateItemPosition moves an item.
func (e *Engine) UpdateItemPosition(id string, pos models.Position) error {
	return e.update(id, func(it *models.Item) error {
		it.Position = pos
		return nil
	})
}

// UpdateItemSize resizes an item.
func (e *Engine) UpdateItemSize(id string, size models.Size) error {
	return e.update(id, func(it *models.Item) error {
		it.Size = size
		return nil
	})
}

// UpdateItemData shallow-merges patch into the item's payload.
func (e *Engine) UpdateItemData(id string, patch models.DataPatch) error {
	return e.update(id, func(it *models.Item) error {
		data, err := models.MergeData(it.Data, patch)
		if err != nil {
			return fmt.Errorf("item %s: %w", id, err)
		}
		it.Data = data
		return nil
	})
}

// UpdateItemTags replaces the item's tags. Tags are lowercased, trimmed and
// deduplicated.
func (e *Engine) UpdateItemTags(id string, tags []string) error {
	return e.update(id, func(it *models.Item) error {
		it.Tags = models.NormalizeTags(tags)
		return nil
	})
}

// BringToFront stacks the item above every other item.
func (e *Engine) BringToFront(id string) error {
	return e.update(id, func(it *models.Item) error {
		it.ZIndex = e.maxZLocked() + 1
		return nil
	})
}

// SendToBack stacks the item below every other item.
func (e *Engine) SendToBack(id string) error {
	return e.update(id, func(it *models.Item) error {
		it.ZIndex = e.minZLocked() - 1
		return nil
	})
}

func byZ(a, b models.Item) int { return cmp.Compare(a.ZIndex, b.ZIndex) }

func (e *Engine) maxZLocked() int {
	if len(e.items) == 0 {
		return -1
	}
	return slices.MaxFunc(e.items, byZ).ZIndex
}

func (e *Engine) minZLocked() int {
	if len(e.items) == 0 {
		return 0
	}
	return slices.MinFunc(e.items, byZ).ZIndex
}

// Undo restores the items captured before the last structural mutation.
func (e *Engine) Undo() (bool, error) {
	return e.travel((*History).Undo)
}

// Redo reapplies the last undone mutation.
func (e *Engine) Redo() (bool, error) {
	return e.travel((*History).Redo)
}

func (e *Engine) travel(step func(*History, []models.Item) ([]models.Item, bool)) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireBoardLocked(); err != nil {
		return false, err
	}
	items, ok := step(e.history, e.items)
	if !ok {
		return false, nil
	}
	e.items = items
	e.publishHistoryLocked()
	e.scheduleSaveLocked()
	return true, nil
}
