package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeItems_RevivesTimestamps(t *testing.T) {
	created := time.Date(2024, 11, 5, 8, 15, 42, 123456789, time.UTC)
	items := []Item{
		{ID: "t1", Type: ItemTypeText, Tags: []string{"note"}, CreatedAt: created, Data: TextData{Content: "hello"}},
		{ID: "c1", Type: ItemTypeColor, CreatedAt: created.Add(time.Hour), Data: ColorData{Hex: "#ff0000"}},
	}

	s, err := EncodeItems(items)
	require.NoError(t, err)
	require.Contains(t, s, `"__date"`)

	got, err := DecodeItems(s)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.True(t, created.Equal(got[0].CreatedAt))
	require.Equal(t, TextData{Content: "hello"}, got[0].Data)
	require.Equal(t, []string{}, got[1].Tags)
}

func TestDecodeItems_AcceptsPlainDateStrings(t *testing.T) {
	s := `[{"id":"a","type":"text","position":{"x":1,"y":2},"size":{"width":3,"height":4},"zIndex":0,"tags":[],"createdAt":"2024-01-02T03:04:05Z","data":{"content":"x"}}]`
	got, err := DecodeItems(s)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), got[0].CreatedAt.UTC())
}

func TestDecodeItems_Malformed(t *testing.T) {
	_, err := DecodeItems(`{not json`)
	require.Error(t, err)

	_, err = DecodeItems(`[{"id":"a","type":"text","createdAt":{"__date":"yesterday"},"data":{}}]`)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "item a"))
}

func TestEncodeDecodeGroups(t *testing.T) {
	s, err := EncodeGroups(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", s)

	s, err = EncodeGroups([]Group{{ID: "g", Label: "Pair", ItemIDs: []string{"a", "b"}}})
	require.NoError(t, err)

	got, err := DecodeGroups(s)
	require.NoError(t, err)
	require.Equal(t, []Group{{ID: "g", Label: "Pair", ItemIDs: []string{"a", "b"}}}, got)
}

func TestCountItems(t *testing.T) {
	n, err := CountItems(`[{"id":"a"},{"id":"b"},{"id":"c"}]`)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	n, err = CountItems(`[]`)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
