package engine

import (
	"fmt"
	"slices"

	"github.com/dmitrijs2005/motionboard/internal/common"
	"github.com/dmitrijs2005/motionboard/internal/models"
)

// GroupItems creates a group holding exactly the given items and returns
// its id. Every id must name an existing item. Items already in another
// group are moved; a group left without members is dropped. Grouping is
// not recorded in undo history.
func (e *Engine) GroupItems(ids []string, label string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireBoardLocked(); err != nil {
		return "", err
	}

	members := make([]string, 0, len(ids))
	for _, id := range ids {
		if e.indexLocked(id) < 0 {
			return "", fmt.Errorf("item %s: %w", id, common.ErrorNotFound)
		}
		if !slices.Contains(members, id) {
			members = append(members, id)
		}
	}

	g := models.Group{ID: e.newID(), Label: label, ItemIDs: []string{}}
	e.groups = append(e.groups, g)
	e.setMembershipLocked(members, g.ID)
	e.scheduleSaveLocked()
	return g.ID, nil
}

// UngroupItems removes a group. Members are found by scanning items for the
// group id and are left in place with no group.
func (e *Engine) UngroupItems(groupID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireBoardLocked(); err != nil {
		return err
	}
	if e.groupIndexLocked(groupID) < 0 {
		return fmt.Errorf("group %s: %w", groupID, common.ErrorNotFound)
	}

	var members []string
	for _, it := range e.items {
		if it.GroupID == groupID {
			members = append(members, it.ID)
		}
	}
	e.setMembershipLocked(members, "")
	if i := e.groupIndexLocked(groupID); i >= 0 {
		e.groups = slices.Delete(e.groups, i, i+1)
	}
	e.scheduleSaveLocked()
	return nil
}

// SetGroupCollapsed records the UI collapse state of a group.
func (e *Engine) SetGroupCollapsed(groupID string, collapsed bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireBoardLocked(); err != nil {
		return err
	}
	i := e.groupIndexLocked(groupID)
	if i < 0 {
		return fmt.Errorf("group %s: %w", groupID, common.ErrorNotFound)
	}
	e.groups[i].Collapsed = collapsed
	e.scheduleSaveLocked()
	return nil
}

func (e *Engine) groupIndexLocked(id string) int {
	return slices.IndexFunc(e.groups, func(g models.Group) bool { return g.ID == id })
}

// setMembershipLocked is the only place that edits group membership. It
// moves itemIDs into groupID ("" for none), updating both Item.GroupID and
// the affected groups' ItemIDs. Groups emptied by the move are dropped,
// except the target group itself.
func (e *Engine) setMembershipLocked(itemIDs []string, groupID string) {
	moving := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		moving[id] = struct{}{}
	}

	touched := map[string]struct{}{}
	for i := range e.items {
		it := &e.items[i]
		if _, ok := moving[it.ID]; !ok {
			continue
		}
		if it.GroupID != "" && it.GroupID != groupID {
			touched[it.GroupID] = struct{}{}
		}
		it.GroupID = groupID
	}

	kept := e.groups[:0]
	for _, g := range e.groups {
		if g.ID == groupID {
			for _, id := range itemIDs {
				if !slices.Contains(g.ItemIDs, id) {
					g.ItemIDs = append(g.ItemIDs, id)
				}
			}
			kept = append(kept, g)
			continue
		}
		g.ItemIDs = slices.DeleteFunc(g.ItemIDs, func(id string) bool {
			_, ok := moving[id]
			return ok
		})
		if _, ok := touched[g.ID]; ok && len(g.ItemIDs) == 0 {
			continue
		}
		kept = append(kept, g)
	}
	e.groups = kept
}
