package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// dateBox is the stored form of an embedded timestamp: {"__date": "..."}.
type dateBox struct {
	Date string `json:"__date"`
}

// storedItem is the storage shape of an Item: identical to the JSON form
// except that CreatedAt is boxed.
type storedItem struct {
	ID        string          `json:"id"`
	Type      ItemType        `json:"type"`
	Position  Position        `json:"position"`
	Size      Size            `json:"size"`
	ZIndex    int             `json:"zIndex"`
	Tags      []string        `json:"tags"`
	GroupID   string          `json:"groupId,omitempty"`
	CreatedAt json.RawMessage `json:"createdAt"`
	Data      json.RawMessage `json:"data"`
}

// EncodeItems serializes items for storage, boxing every timestamp so it
// can be revived as a time rather than a string.
func EncodeItems(items []Item) (string, error) {
	out := make([]storedItem, 0, len(items))
	for _, it := range items {
		data, err := json.Marshal(it.Data)
		if err != nil {
			return "", fmt.Errorf("encode item %s: %w", it.ID, err)
		}
		created, err := json.Marshal(dateBox{Date: it.CreatedAt.UTC().Format(time.RFC3339Nano)})
		if err != nil {
			return "", err
		}
		tags := it.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, storedItem{
			ID:        it.ID,
			Type:      it.Type,
			Position:  it.Position,
			Size:      it.Size,
			ZIndex:    it.ZIndex,
			Tags:      tags,
			GroupID:   it.GroupID,
			CreatedAt: created,
			Data:      data,
		})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeItems revives items serialized by EncodeItems. Timestamps written
// as plain strings are accepted too.
func DecodeItems(s string) ([]Item, error) {
	var stored []storedItem
	if err := json.Unmarshal([]byte(s), &stored); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	items := make([]Item, 0, len(stored))
	for _, st := range stored {
		created, err := reviveDate(st.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", st.ID, err)
		}
		data, err := DecodeItemData(st.Type, st.Data)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", st.ID, err)
		}
		tags := st.Tags
		if tags == nil {
			tags = []string{}
		}
		items = append(items, Item{
			ID:        st.ID,
			Type:      st.Type,
			Position:  st.Position,
			Size:      st.Size,
			ZIndex:    st.ZIndex,
			Tags:      tags,
			GroupID:   st.GroupID,
			CreatedAt: created,
			Data:      data,
		})
	}
	return items, nil
}

func reviveDate(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}
	var s string
	if raw[0] == '{' {
		var box dateBox
		if err := json.Unmarshal(raw, &box); err != nil {
			return time.Time{}, fmt.Errorf("revive date: %w", err)
		}
		s = box.Date
	} else if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, fmt.Errorf("revive date: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("revive date: %w", err)
	}
	return t, nil
}

// EncodeGroups serializes groups for storage.
func EncodeGroups(groups []Group) (string, error) {
	if groups == nil {
		groups = []Group{}
	}
	b, err := json.Marshal(groups)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeGroups parses groups serialized by EncodeGroups.
func DecodeGroups(s string) ([]Group, error) {
	var groups []Group
	if err := json.Unmarshal([]byte(s), &groups); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	for i := range groups {
		if groups[i].ItemIDs == nil {
			groups[i].ItemIDs = []string{}
		}
	}
	if groups == nil {
		groups = []Group{}
	}
	return groups, nil
}

// CountItems returns the length of a serialized item array without
// decoding the payloads.
func CountItems(s string) (int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return len(raw), nil
}
