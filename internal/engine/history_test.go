package engine

import (
	"testing"

	"github.com/dmitrijs2005/motionboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(ids ...string) []models.Item {
	out := make([]models.Item, len(ids))
	for i, id := range ids {
		out[i] = models.Item{ID: id, Type: models.ItemTypeText, Tags: []string{}, Data: models.TextData{Content: id}}
	}
	return out
}

func TestHistory_PushUndoRedo(t *testing.T) {
	h := NewHistory(3)

	h.Push(snap())
	h.Push(snap("a"))
	undo, redo := h.Depth()
	assert.Equal(t, 2, undo)
	assert.Zero(t, redo)

	prev, ok := h.Undo(snap("a", "b"))
	require.True(t, ok)
	assert.Equal(t, snap("a"), prev)

	next, ok := h.Redo(prev)
	require.True(t, ok)
	assert.Equal(t, snap("a", "b"), next)
}

func TestHistory_EvictsOldest(t *testing.T) {
	h := NewHistory(2)
	h.Push(snap("1"))
	h.Push(snap("2"))
	h.Push(snap("3"))

	undo, _ := h.Depth()
	assert.Equal(t, 2, undo)

	prev, _ := h.Undo(snap("4"))
	assert.Equal(t, snap("3"), prev)
	prev, _ = h.Undo(prev)
	assert.Equal(t, snap("2"), prev)
	_, ok := h.Undo(prev)
	assert.False(t, ok)
}

func TestHistory_SnapshotsAreIsolated(t *testing.T) {
	h := NewHistory(5)
	items := snap("a")
	h.Push(items)
	items[0].Tags = append(items[0].Tags, "changed")

	prev, _ := h.Undo(nil)
	assert.Empty(t, prev[0].Tags)
}

func TestHistory_ResetAndDefaultLimit(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, DefaultUndoLimit, h.limit)

	h.Push(snap("a"))
	_, _ = h.Undo(snap("b"))
	h.Reset()
	undo, redo := h.Depth()
	assert.Zero(t, undo)
	assert.Zero(t, redo)
}
