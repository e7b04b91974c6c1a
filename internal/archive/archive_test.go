package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/motionboard/internal/common"
	"github.com/dmitrijs2005/motionboard/internal/database"
	"github.com/dmitrijs2005/motionboard/internal/logging"
	"github.com/dmitrijs2005/motionboard/internal/metrics"
	"github.com/dmitrijs2005/motionboard/internal/models"
	"github.com/dmitrijs2005/motionboard/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCodec(t *testing.T) (*Codec, services.BoardService, *metrics.Metrics) {
	t.Helper()
	store, err := database.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := services.NewBoardService(store.DB, store.Repos, logging.Nop())
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	return NewCodec(svc, logging.Nop(), m), svc, m
}

var created = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func seedBoard(t *testing.T, svc services.BoardService) (boardID, mediaID string) {
	t.Helper()
	ctx := context.Background()

	boardID, err := svc.CreateBoard(ctx, "Inspiration")
	require.NoError(t, err)
	mediaID, err = svc.SaveMedia(ctx, boardID, []byte("\x89PNG fake image"), "cat.png", "image/png")
	require.NoError(t, err)

	items := []models.Item{
		{
			ID: "text-1", Type: models.ItemTypeText, Position: models.Position{X: 10, Y: 20},
			Size: models.DefaultSize(models.ItemTypeText), ZIndex: 0, Tags: []string{"intro"},
			GroupID: "g-1", CreatedAt: created, Data: models.TextData{Content: "hello"},
		},
		{
			ID: "img-1", Type: models.ItemTypeImage, Position: models.Position{X: 300, Y: 40},
			Size: models.DefaultSize(models.ItemTypeImage), ZIndex: 1, Tags: []string{},
			GroupID: "g-1", CreatedAt: created, Data: models.ImageData{BlobID: mediaID, FileName: "cat.png"},
		},
	}
	groups := []models.Group{{ID: "g-1", Label: "Intro", ItemIDs: []string{"text-1", "img-1"}}}
	vp := models.Viewport{X: -120, Y: 45, Zoom: 1.5}
	require.NoError(t, svc.SaveBoard(ctx, boardID, models.BoardChanges{Items: items, Groups: groups, Viewport: &vp}))
	return boardID, mediaID
}

func TestExportImport_RoundTrip(t *testing.T) {
	codec, svc, _ := setupCodec(t)
	ctx := context.Background()
	srcID, srcMediaID := seedBoard(t, svc)

	data, err := codec.ExportBytes(ctx, srcID)
	require.NoError(t, err)

	newID, err := codec.ImportBytes(ctx, data)
	require.NoError(t, err)
	assert.NotEqual(t, srcID, newID)

	src, err := svc.GetBoard(ctx, srcID)
	require.NoError(t, err)
	dst, err := svc.GetBoard(ctx, newID)
	require.NoError(t, err)

	assert.Equal(t, src.Name, dst.Name)
	assert.Equal(t, src.Viewport, dst.Viewport)
	require.Len(t, dst.Groups, 1)
	g := dst.Groups[0]
	assert.NotEqual(t, src.Groups[0].ID, g.ID)
	assert.Equal(t, src.Groups[0].Label, g.Label)
	require.Len(t, dst.Items, len(src.Items))

	media, err := svc.ListMedia(ctx, newID)
	require.NoError(t, err)
	require.Len(t, media, 1)
	assert.NotEqual(t, srcMediaID, media[0].ID)
	assert.Equal(t, []byte("\x89PNG fake image"), media[0].Blob)
	assert.Equal(t, "cat.png", media[0].FileName)
	assert.Equal(t, "image/png", media[0].MimeType)

	for i := range src.Items {
		s, d := src.Items[i], dst.Items[i]
		assert.NotEqual(t, s.ID, d.ID)
		assert.NotEmpty(t, d.ID)
		assert.Equal(t, s.Type, d.Type)
		assert.Equal(t, s.Position, d.Position)
		assert.Equal(t, s.Size, d.Size)
		assert.Equal(t, s.ZIndex, d.ZIndex)
		assert.Equal(t, s.Tags, d.Tags)
		assert.Equal(t, g.ID, d.GroupID)
		assert.Equal(t, d.ID, g.ItemIDs[i])
		assert.True(t, s.CreatedAt.Equal(d.CreatedAt))
		if s.Data.BlobRef() != "" {
			assert.Equal(t, media[0].ID, d.Data.BlobRef())
			assert.Equal(t, s.Data.(models.ImageData).FileName, d.Data.(models.ImageData).FileName)
		} else {
			assert.Equal(t, s.Data, d.Data)
		}
	}

	// the source board is untouched
	srcMedia, err := svc.ListMedia(ctx, srcID)
	require.NoError(t, err)
	require.Len(t, srcMedia, 1)
	assert.Equal(t, srcMediaID, srcMedia[0].ID)
}

func TestExport_ManifestLayout(t *testing.T) {
	codec, svc, _ := setupCodec(t)
	ctx := context.Background()
	srcID, mediaID := seedBoard(t, svc)
	// unreferenced media is archived as well
	orphan, err := svc.SaveMedia(ctx, srcID, []byte("orphan"), "o.bin", "application/octet-stream")
	require.NoError(t, err)

	data, err := codec.ExportBytes(ctx, srcID)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	names := map[string]*zip.File{}
	for _, f := range zr.File {
		names[f.Name] = f
	}
	require.Contains(t, names, "manifest.json")
	require.Contains(t, names, "media/"+mediaID)
	require.Contains(t, names, "media/"+orphan)

	raw, err := readEntry(names["manifest.json"])
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, FormatVersion, m.Version)
	assert.Equal(t, "Inspiration", m.Name)
	_, err = time.Parse(time.RFC3339Nano, m.CreatedAt)
	assert.NoError(t, err)
	_, err = time.Parse(time.RFC3339Nano, m.UpdatedAt)
	assert.NoError(t, err)
	assert.Len(t, m.Items, 2)
	assert.Len(t, m.MediaFiles, 2)
	for _, ref := range m.MediaFiles {
		assert.NotEmpty(t, ref.Checksum)
		assert.NotZero(t, ref.Size)
	}
	assert.Contains(t, string(raw), "\n  \"version\": 1")
}

func TestExport_MissingBoard(t *testing.T) {
	codec, _, m := setupCodec(t)
	_, err := codec.ExportBytes(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ArchiveOpsTotal.WithLabelValues("export", metrics.ResultError)))
}

type entry struct {
	name string
	body []byte
}

func buildZip(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write(e.body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func manifestJSON(t *testing.T, m any) []byte {
	t.Helper()
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return b
}

func assertNoBoards(t *testing.T, svc services.BoardService) {
	t.Helper()
	boards, err := svc.ListBoards(context.Background())
	require.NoError(t, err)
	assert.Empty(t, boards)
}

func TestImport_Rejects(t *testing.T) {
	okItem := map[string]any{
		"id": "t1", "type": "text", "position": map[string]any{"x": 0, "y": 0},
		"size": map[string]any{"width": 10, "height": 10}, "zIndex": 0, "tags": []string{},
		"createdAt": created.Format(time.RFC3339), "data": map[string]any{"content": "x"},
	}
	base := func(version any) map[string]any {
		return map[string]any{
			"version": version, "name": "B", "createdAt": created.Format(time.RFC3339),
			"updatedAt": created.Format(time.RFC3339), "viewport": map[string]any{"x": 0, "y": 0, "zoom": 1},
			"items": []any{okItem}, "groups": []any{},
			"mediaFiles": []any{map[string]any{"id": "m1", "fileName": "a.png", "mimeType": "image/png", "checksum": "00"}},
		}
	}

	tests := []struct {
		name    string
		archive func(t *testing.T) []byte
		wantErr error
	}{
		{
			name:    "not a zip",
			archive: func(*testing.T) []byte { return []byte("definitely not a zip") },
			wantErr: common.ErrMalformedArchive,
		},
		{
			name: "missing manifest",
			archive: func(t *testing.T) []byte {
				return buildZip(t, entry{"media/m1", []byte("x")})
			},
			wantErr: common.ErrMalformedArchive,
		},
		{
			name: "manifest is not json",
			archive: func(t *testing.T) []byte {
				return buildZip(t, entry{"manifest.json", []byte("{oops")})
			},
			wantErr: common.ErrMalformedArchive,
		},
		{
			name: "manifest without version",
			archive: func(t *testing.T) []byte {
				m := base(1)
				delete(m, "version")
				return buildZip(t, entry{"manifest.json", manifestJSON(t, m)})
			},
			wantErr: common.ErrMalformedArchive,
		},
		{
			name: "future version",
			archive: func(t *testing.T) []byte {
				return buildZip(t, entry{"manifest.json", manifestJSON(t, base(2))})
			},
			wantErr: common.ErrUnsupportedVersion,
		},
		{
			name: "unknown item type",
			archive: func(t *testing.T) []byte {
				m := base(1)
				bad := map[string]any{}
				for k, v := range okItem {
					bad[k] = v
				}
				bad["type"] = "hologram"
				m["items"] = []any{bad}
				return buildZip(t, entry{"manifest.json", manifestJSON(t, m)})
			},
			wantErr: common.ErrMalformedArchive,
		},
		{
			name: "checksum mismatch",
			archive: func(t *testing.T) []byte {
				return buildZip(t,
					entry{"manifest.json", manifestJSON(t, base(1))},
					entry{"media/m1", []byte("png bytes")},
				)
			},
			wantErr: common.ErrMalformedArchive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, svc, m := setupCodec(t)
			_, err := codec.ImportBytes(context.Background(), tt.archive(t))
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsArchiveError(err))
			assertNoBoards(t, svc)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.ArchiveOpsTotal.WithLabelValues("import", metrics.ResultError)))
		})
	}
}

func TestImport_DanglingBlobReferenceKept(t *testing.T) {
	codec, svc, m := setupCodec(t)
	ctx := context.Background()

	man := Manifest{
		Version: FormatVersion,
		Name:    "Dangling",
		Items: []models.Item{{
			ID: "img", Type: models.ItemTypeImage, Size: models.DefaultSize(models.ItemTypeImage),
			Tags: []string{}, CreatedAt: created, Data: models.ImageData{BlobID: "gone", FileName: "x.png"},
		}},
		MediaFiles: []MediaRef{{ID: "gone", FileName: "x.png", MimeType: "image/png"}},
	}
	data := buildZip(t, entry{"manifest.json", manifestJSON(t, man)})

	id, err := codec.ImportBytes(ctx, data)
	require.NoError(t, err)

	b, err := svc.GetBoard(ctx, id)
	require.NoError(t, err)
	require.Len(t, b.Items, 1)
	assert.Equal(t, "gone", b.Items[0].Data.BlobRef())
	assert.Equal(t, "Dangling", b.Name)
	// zero zoom falls back to the default viewport
	assert.Equal(t, models.DefaultViewport(), b.Viewport)

	media, err := svc.ListMedia(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, media)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ArchiveOpsTotal.WithLabelValues("import", metrics.ResultOK)))
}

func TestImport_TwiceGivesDistinctItemIDs(t *testing.T) {
	codec, svc, _ := setupCodec(t)
	ctx := context.Background()
	srcID, _ := seedBoard(t, svc)
	data, err := codec.ExportBytes(ctx, srcID)
	require.NoError(t, err)

	seen := map[string]bool{"text-1": true, "img-1": true}
	for range 2 {
		id, err := codec.ImportBytes(ctx, data)
		require.NoError(t, err)
		b, err := svc.GetBoard(ctx, id)
		require.NoError(t, err)
		for _, it := range b.Items {
			assert.False(t, seen[it.ID], "item id %s reused", it.ID)
			seen[it.ID] = true
		}
	}
}

func TestRenumber_RewritesMembership(t *testing.T) {
	n := 0
	next := func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
	items := []models.Item{
		{ID: "a", GroupID: "g"},
		{ID: "b", GroupID: "g"},
		{ID: "c", GroupID: "elsewhere"},
	}
	groups := []models.Group{{ID: "g", Label: "Pair", ItemIDs: []string{"a", "b", "removed"}}}

	gotItems, gotGroups := renumber(items, groups, next)

	assert.Equal(t, []string{"new-1", "new-2", "new-3"}, []string{gotItems[0].ID, gotItems[1].ID, gotItems[2].ID})
	require.Len(t, gotGroups, 1)
	assert.Equal(t, models.Group{ID: "new-4", Label: "Pair", ItemIDs: []string{"new-1", "new-2", "removed"}}, gotGroups[0])
	assert.Equal(t, "new-4", gotItems[0].GroupID)
	assert.Equal(t, "new-4", gotItems[1].GroupID)
	assert.Equal(t, "elsewhere", gotItems[2].GroupID)
	assert.Equal(t, []string{"a", "b", "removed"}, groups[0].ItemIDs)
}

func TestImport_EmptyNameGetsDefault(t *testing.T) {
	codec, svc, _ := setupCodec(t)
	ctx := context.Background()

	data := buildZip(t, entry{"manifest.json", manifestJSON(t, Manifest{Version: FormatVersion})})
	id, err := codec.ImportBytes(ctx, data)
	require.NoError(t, err)

	b, err := svc.GetBoard(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, common.DefaultBoardName, b.Name)
	assert.Empty(t, b.Items)
}

type failingSave struct {
	services.BoardService
}

func (failingSave) SaveBoard(context.Context, string, models.BoardChanges) error {
	return errors.New("disk full")
}

func TestImport_RollsBackOnFailure(t *testing.T) {
	codec, svc, _ := setupCodec(t)
	ctx := context.Background()
	srcID, _ := seedBoard(t, svc)

	data, err := codec.ExportBytes(ctx, srcID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteBoard(ctx, srcID))

	broken := NewCodec(failingSave{svc}, logging.Nop(), nil)
	_, err = broken.ImportBytes(ctx, data)
	require.Error(t, err)
	assert.False(t, IsArchiveError(err))

	assertNoBoards(t, svc)
	usage, err := svc.GetStorageUsage(ctx)
	require.NoError(t, err)
	assert.Zero(t, usage)
}
