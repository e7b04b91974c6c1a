package models

import (
	"slices"
	"time"
)

// Viewport is the canvas pan/zoom state. It is owned by the canvas UI and
// persisted with the board.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport is the viewport of a freshly created board.
func DefaultViewport() Viewport {
	return Viewport{X: 0, Y: 0, Zoom: 1}
}

// Group is a label over a set of item ids. Membership is mirrored on each
// member's Item.GroupID.
type Group struct {
	ID        string   `json:"id"`
	Label     string   `json:"label,omitempty"`
	ItemIDs   []string `json:"itemIds"`
	Collapsed bool     `json:"collapsed"`
}

// Clone returns a deep copy of the group.
func (g Group) Clone() Group {
	out := g
	out.ItemIDs = slices.Clone(g.ItemIDs)
	if out.ItemIDs == nil {
		out.ItemIDs = []string{}
	}
	return out
}

// CloneGroups deep-copies a slice of groups.
func CloneGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i := range groups {
		out[i] = groups[i].Clone()
	}
	return out
}

// Board is the full, decoded snapshot of one board.
type Board struct {
	ID          string
	Name        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Viewport    Viewport
	Items       []Item
	Groups      []Group
	StorageSize int64
}

// BoardMeta is the listing view of a board.
type BoardMeta struct {
	ID          string
	Name        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ItemCount   int
	StorageSize int64
}

// BoardRecord is a board as held by the durable store: items and groups are
// kept in their serialized string form.
type BoardRecord struct {
	ID          string
	Name        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Viewport    Viewport
	ItemsJSON   string
	GroupsJSON  string
	StorageSize int64
}

// BoardUpdate is a partial update of a board record. Nil fields are left
// unchanged; UpdatedAt is always written.
type BoardUpdate struct {
	UpdatedAt   time.Time
	Name        *string
	Viewport    *Viewport
	ItemsJSON   *string
	GroupsJSON  *string
	StorageSize *int64
}

// Media is one binary attachment scoped to a board.
type Media struct {
	ID       string
	BoardID  string
	Blob     []byte
	FileName string
	MimeType string
	Size     int64
}

// BoardChanges is a partial board save. Items are always written; a nil
// Groups, Viewport or Name leaves the stored value unchanged. An empty
// non-nil Groups clears the groups.
type BoardChanges struct {
	Items    []Item
	Groups   []Group
	Viewport *Viewport
	Name     *string
}
