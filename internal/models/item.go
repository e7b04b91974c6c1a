// Package models defines the MotionBoard data model: boards, placed items,
// groups, media attachments and the storage encodings that go with them.
package models

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/motionboard/internal/common"
)

// ItemType classifies a board item. The set is closed.
type ItemType string

const (
	ItemTypeVideoEmbed  ItemType = "video-embed"
	ItemTypeVideoUpload ItemType = "video-upload"
	ItemTypeImage       ItemType = "image"
	ItemTypeLottie      ItemType = "lottie"
	ItemTypeRive        ItemType = "rive"
	ItemTypeCode        ItemType = "code"
	ItemTypeText        ItemType = "text"
	ItemTypeColor       ItemType = "color"
)

// ItemTypes lists every known item type.
var ItemTypes = []ItemType{
	ItemTypeVideoEmbed,
	ItemTypeVideoUpload,
	ItemTypeImage,
	ItemTypeLottie,
	ItemTypeRive,
	ItemTypeCode,
	ItemTypeText,
	ItemTypeColor,
}

var defaultSizes = map[ItemType]Size{
	ItemTypeVideoEmbed:  {Width: 400, Height: 280},
	ItemTypeVideoUpload: {Width: 400, Height: 280},
	ItemTypeImage:       {Width: 300, Height: 250},
	ItemTypeLottie:      {Width: 300, Height: 300},
	ItemTypeRive:        {Width: 300, Height: 300},
	ItemTypeCode:        {Width: 500, Height: 400},
	ItemTypeText:        {Width: 250, Height: 150},
	ItemTypeColor:       {Width: 150, Height: 150},
}

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	_, ok := defaultSizes[t]
	return ok
}

// DefaultSize returns the size an item of type t gets when none is supplied.
func DefaultSize(t ItemType) Size {
	return defaultSizes[t]
}

// Position is a point in canvas coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is an item's extent in canvas units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Item is one element placed on a board.
type Item struct {
	ID        string    `json:"id"`
	Type      ItemType  `json:"type"`
	Position  Position  `json:"position"`
	Size      Size      `json:"size"`
	ZIndex    int       `json:"zIndex"`
	Tags      []string  `json:"tags"`
	GroupID   string    `json:"groupId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Data      ItemData  `json:"data"`
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	out := it
	out.Tags = slices.Clone(it.Tags)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if it.Data != nil {
		out.Data = it.Data.clone()
	}
	return out
}

// CloneItems deep-copies a slice of items.
func CloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	return out
}

// itemWire mirrors Item with a raw payload so the data variant can be
// chosen from the type tag.
type itemWire struct {
	ID        string          `json:"id"`
	Type      ItemType        `json:"type"`
	Position  Position        `json:"position"`
	Size      Size            `json:"size"`
	ZIndex    int             `json:"zIndex"`
	Tags      []string        `json:"tags"`
	GroupID   string          `json:"groupId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	Data      json.RawMessage `json:"data"`
}

// UnmarshalJSON decodes an item and its type-specific payload.
func (it *Item) UnmarshalJSON(b []byte) error {
	var w itemWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	data, err := DecodeItemData(w.Type, w.Data)
	if err != nil {
		return fmt.Errorf("item %s: %w", w.ID, err)
	}
	*it = Item{
		ID:        w.ID,
		Type:      w.Type,
		Position:  w.Position,
		Size:      w.Size,
		ZIndex:    w.ZIndex,
		Tags:      w.Tags,
		GroupID:   w.GroupID,
		CreatedAt: w.CreatedAt,
		Data:      data,
	}
	if it.Tags == nil {
		it.Tags = []string{}
	}
	return nil
}

// Validate checks that the item type is known and matches its payload.
func (it Item) Validate() error {
	if !it.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", common.ErrInvalidItem, it.Type)
	}
	if it.Data == nil {
		return fmt.Errorf("%w: missing data", common.ErrInvalidItem)
	}
	if it.Data.ItemType() != it.Type {
		return fmt.Errorf("%w: %s payload on %s item", common.ErrInvalidItem, it.Data.ItemType(), it.Type)
	}
	return nil
}

// NormalizeTags lowercases and trims tags, dropping empties and duplicates
// while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SortByZ orders items for painting: ascending zIndex, ties broken by id.
func SortByZ(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		if c := cmp.Compare(a.ZIndex, b.ZIndex); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
