// Package archive exports a board with all of its media into a portable zip
// container and imports such a container as a brand-new board.
//
// Layout of an archive:
//
//	manifest.json   version, name, timestamps, viewport, items, groups, media descriptors
//	media/<id>      raw bytes of each medium owned by the board
//
// Import validates the whole archive before creating anything and removes
// the new board again if a later step fails.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/motionboard/internal/common"
	"github.com/dmitrijs2005/motionboard/internal/cryptox"
	"github.com/dmitrijs2005/motionboard/internal/logging"
	"github.com/dmitrijs2005/motionboard/internal/metrics"
	"github.com/dmitrijs2005/motionboard/internal/models"
	"github.com/dmitrijs2005/motionboard/internal/services"
	"github.com/google/uuid"
)

// MaxEntrySize bounds the decompressed size of a single archive entry.
const MaxEntrySize int64 = 1 << 30

// Codec reads and writes board archives through the board service.
type Codec struct {
	svc     services.BoardService
	log     logging.Logger
	metrics *metrics.Metrics
	newID   func() string
}

// NewCodec returns a Codec. m may be nil.
func NewCodec(svc services.BoardService, log logging.Logger, m *metrics.Metrics) *Codec {
	return &Codec{svc: svc, log: log, metrics: m, newID: uuid.NewString}
}

// Export writes the board and every medium it owns, referenced or not, to w.
func (c *Codec) Export(ctx context.Context, boardID string, w io.Writer) (err error) {
	defer func() { c.metrics.ObserveArchive("export", err) }()

	b, err := c.svc.GetBoard(ctx, boardID)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	media, err := c.svc.ListMedia(ctx, boardID)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	m := Manifest{
		Version:    FormatVersion,
		Name:       b.Name,
		CreatedAt:  b.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  b.UpdatedAt.UTC().Format(time.RFC3339Nano),
		Viewport:   b.Viewport,
		Items:      b.Items,
		Groups:     b.Groups,
		MediaFiles: make([]MediaRef, 0, len(media)),
	}
	if m.Items == nil {
		m.Items = []models.Item{}
	}
	if m.Groups == nil {
		m.Groups = []models.Group{}
	}
	for _, md := range media {
		m.MediaFiles = append(m.MediaFiles, MediaRef{
			ID:       md.ID,
			FileName: md.FileName,
			MimeType: md.MimeType,
			Size:     int64(len(md.Blob)),
			Checksum: cryptox.Checksum(md.Blob),
		})
	}

	manifest, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("export: encode manifest: %w", err)
	}

	zw := zip.NewWriter(w)
	if err := writeEntry(zw, manifestName, manifest, zip.Deflate); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for _, md := range media {
		if err := writeEntry(zw, mediaPath(md.ID), md.Blob, zip.Store); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("export: finish archive: %w", err)
	}

	c.log.Info(ctx, "board exported", "board_id", boardID, "items", len(m.Items), "media", len(media))
	return nil
}

// ExportBytes is Export into memory.
func (c *Codec) ExportBytes(ctx context.Context, boardID string) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Export(ctx, boardID, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeEntry(zw *zip.Writer, name string, data []byte, method uint16) error {
	f, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method, Modified: time.Now()})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// parsed is a fully validated archive held in memory.
type parsed struct {
	manifest Manifest
	blobs    map[string][]byte
}

// Import creates a new board from the archive in r and returns its id.
// Media entries are stored under fresh ids and every item blob reference
// is rewritten through the old-to-new mapping. References to media absent
// from the archive are left unchanged.
func (c *Codec) Import(ctx context.Context, r io.ReaderAt, size int64) (id string, err error) {
	defer func() { c.metrics.ObserveArchive("import", err) }()

	p, err := parse(r, size)
	if err != nil {
		return "", fmt.Errorf("import: %w", err)
	}
	m := p.manifest

	boardID, err := c.svc.CreateBoard(ctx, m.Name)
	if err != nil {
		return "", fmt.Errorf("import: %w", err)
	}

	if err := c.populate(ctx, boardID, p); err != nil {
		if derr := c.svc.DeleteBoard(ctx, boardID); derr != nil {
			c.log.Error(ctx, "import rollback failed", "board_id", boardID, "error", derr)
		}
		return "", fmt.Errorf("import: %w", err)
	}

	c.log.Info(ctx, "board imported", "board_id", boardID, "items", len(m.Items), "media", len(p.blobs))
	return boardID, nil
}

// ImportBytes is Import from memory.
func (c *Codec) ImportBytes(ctx context.Context, data []byte) (string, error) {
	return c.Import(ctx, bytes.NewReader(data), int64(len(data)))
}

func (c *Codec) populate(ctx context.Context, boardID string, p *parsed) error {
	m := p.manifest

	mapping := make(map[string]string, len(p.blobs))
	for _, ref := range m.MediaFiles {
		blob, ok := p.blobs[ref.ID]
		if !ok {
			continue
		}
		if _, dup := mapping[ref.ID]; dup {
			continue
		}
		newID, err := c.svc.SaveMedia(ctx, boardID, blob, ref.FileName, ref.MimeType)
		if err != nil {
			return err
		}
		mapping[ref.ID] = newID
	}

	items := make([]models.Item, len(m.Items))
	for i, it := range m.Items {
		data, ok := models.RemapBlob(it.Data, mapping)
		if !ok {
			c.log.Warn(ctx, "item references a medium missing from the archive",
				"board_id", boardID, "item_id", it.ID, "blob_id", it.Data.BlobRef())
		}
		it.Data = data
		items[i] = it
	}
	items, groups := renumber(items, m.Groups, c.newID)

	vp := m.Viewport
	name := m.Name
	changes := models.BoardChanges{Items: items, Groups: groups, Viewport: &vp}
	if name != "" {
		changes.Name = &name
	}
	return c.svc.SaveBoard(ctx, boardID, changes)
}

// renumber gives every item and group a fresh id and rewrites group
// membership on both sides through the same mapping. Ids that point outside
// the archive are left as they are.
func renumber(items []models.Item, groups []models.Group, newID func() string) ([]models.Item, []models.Group) {
	itemIDs := make(map[string]string, len(items))
	for i := range items {
		fresh := newID()
		itemIDs[items[i].ID] = fresh
		items[i].ID = fresh
	}

	groupIDs := make(map[string]string, len(groups))
	out := make([]models.Group, len(groups))
	for i, g := range groups {
		g = g.Clone()
		fresh := newID()
		groupIDs[g.ID] = fresh
		g.ID = fresh
		for j, id := range g.ItemIDs {
			if mapped, ok := itemIDs[id]; ok {
				g.ItemIDs[j] = mapped
			}
		}
		out[i] = g
	}

	for i := range items {
		if mapped, ok := groupIDs[items[i].GroupID]; ok {
			items[i].GroupID = mapped
		}
	}
	return items, out
}

// parse reads and validates the archive without touching storage.
func parse(r io.ReaderAt, size int64) (*parsed, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedArchive, err)
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	mf, ok := entries[manifestName]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", common.ErrMalformedArchive, manifestName)
	}
	raw, err := readEntry(mf)
	if err != nil {
		return nil, err
	}
	m, err := decodeManifest(raw)
	if err != nil {
		return nil, err
	}

	blobs := make(map[string][]byte, len(m.MediaFiles))
	for _, ref := range m.MediaFiles {
		f, ok := entries[mediaPath(ref.ID)]
		if !ok {
			continue
		}
		b, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		if ref.Checksum != "" && !cryptox.VerifyChecksum(b, ref.Checksum) {
			return nil, fmt.Errorf("%w: checksum mismatch for medium %s", common.ErrMalformedArchive, ref.ID)
		}
		blobs[ref.ID] = b
	}

	return &parsed{manifest: *m, blobs: blobs}, nil
}

func decodeManifest(raw []byte) (*Manifest, error) {
	var head struct {
		Version *json.Number `json:"version"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", common.ErrMalformedArchive, err)
	}
	if head.Version == nil {
		return nil, fmt.Errorf("%w: manifest has no version", common.ErrMalformedArchive)
	}
	if v, err := head.Version.Int64(); err != nil || v != FormatVersion {
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedVersion, head.Version.String())
	}

	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", common.ErrMalformedArchive, err)
	}
	for _, it := range m.Items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("%w: item %s: %v", common.ErrMalformedArchive, it.ID, err)
		}
	}
	if m.Viewport.Zoom == 0 {
		m.Viewport = models.DefaultViewport()
	}
	return &m, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", common.ErrMalformedArchive, f.Name, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(io.LimitReader(rc, MaxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", common.ErrMalformedArchive, f.Name, err)
	}
	if int64(len(b)) > MaxEntrySize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", common.ErrMalformedArchive, f.Name, MaxEntrySize)
	}
	return b, nil
}

// IsArchiveError reports whether err stems from unreadable archive content
// rather than from storage.
func IsArchiveError(err error) bool {
	return errors.Is(err, common.ErrMalformedArchive) || errors.Is(err, common.ErrUnsupportedVersion)
}
