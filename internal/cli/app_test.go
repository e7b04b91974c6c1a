package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/motionboard/internal/archive"
	"github.com/dmitrijs2005/motionboard/internal/common"
	"github.com/dmitrijs2005/motionboard/internal/database"
	"github.com/dmitrijs2005/motionboard/internal/engine"
	"github.com/dmitrijs2005/motionboard/internal/logging"
	"github.com/dmitrijs2005/motionboard/internal/models"
	"github.com/dmitrijs2005/motionboard/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appFixture struct {
	app    *App
	boards services.BoardService
	out    *bytes.Buffer
}

func newApp(t *testing.T) *appFixture {
	t.Helper()
	store, err := database.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	boards := services.NewBoardService(store.DB, store.Repos, logging.Nop())
	e := engine.New(boards, logging.Nop(), engine.WithDebounce(time.Hour))
	t.Cleanup(func() { _ = e.Close(context.Background()) })

	out := &bytes.Buffer{}
	codec := archive.NewCodec(boards, logging.Nop(), nil)
	return &appFixture{app: NewApp(e, boards, codec, nil, logging.Nop(), out), boards: boards, out: out}
}

func (f *appFixture) run(t *testing.T, args ...string) error {
	t.Helper()
	ctx := context.Background()
	switch args[0] {
	case "new":
		return f.app.NewBoard(ctx, args[1:])
	case "add":
		return f.app.Add(ctx, args[1:])
	case "save":
		return f.app.Save(ctx, nil)
	}
	t.Fatalf("unsupported command %q", args[0])
	return nil
}

func TestApp_BuildBoard(t *testing.T) {
	f := newApp(t)
	ctx := context.Background()

	require.NoError(t, f.run(t, "new", "Launch", "ideas"))
	id, name := f.app.engine.ActiveBoard()
	assert.Equal(t, "Launch ideas", name)

	require.NoError(t, f.run(t, "add", "text", "hello", "there"))
	require.NoError(t, f.run(t, "add", "color", "#ff0066", "Hot", "pink"))
	require.NoError(t, f.run(t, "add", "code", "javascript", "console.log(1)"))
	require.NoError(t, f.run(t, "add", "url", "https://youtu.be/dQw4w9WgXcQ"))

	require.Error(t, f.run(t, "add", "url", "https://example.com"))
	require.Error(t, f.run(t, "add", "code", "cobol", "DISPLAY"))
	require.ErrorIs(t, f.run(t, "add", "sticker", "x"), errUsage)
	require.ErrorIs(t, f.run(t, "add", "text"), errUsage)

	items := f.app.engine.Items()
	require.Len(t, items, 4)
	assert.Equal(t, models.TextData{Content: "hello there"}, items[0].Data)
	assert.Equal(t, models.ColorData{Hex: "#ff0066", Label: "Hot pink"}, items[1].Data)
	assert.Equal(t, models.ItemTypeVideoEmbed, items[3].Type)
	assert.NotEqual(t, items[0].Position, items[1].Position)

	require.NoError(t, f.run(t, "save"))
	b, err := f.boards.GetBoard(ctx, id)
	require.NoError(t, err)
	assert.Len(t, b.Items, 4)
}

func TestApp_ArrangeItems(t *testing.T) {
	f := newApp(t)
	ctx := context.Background()
	require.NoError(t, f.run(t, "new", "B"))
	require.NoError(t, f.run(t, "add", "text", "one"))
	require.NoError(t, f.run(t, "add", "text", "two"))
	items := f.app.engine.Items()
	a, b := items[0].ID, items[1].ID

	require.NoError(t, f.app.Move(ctx, []string{a, "10", "-20.5"}))
	require.NoError(t, f.app.Resize(ctx, []string{a, "320", "200"}))
	require.NoError(t, f.app.Tag(ctx, []string{a, "Mood", " mood", "Blue"}))
	require.NoError(t, f.app.Front(ctx, []string{a}))
	require.ErrorIs(t, f.app.Move(ctx, []string{a, "x", "1"}), errUsage)
	require.ErrorIs(t, f.app.Move(ctx, []string{"missing", "1", "1"}), common.ErrorNotFound)

	it, ok := f.app.engine.Item(a)
	require.True(t, ok)
	assert.Equal(t, models.Position{X: 10, Y: -20.5}, it.Position)
	assert.Equal(t, models.Size{Width: 320, Height: 200}, it.Size)
	assert.Equal(t, []string{"mood", "blue"}, it.Tags)
	assert.Equal(t, 2, it.ZIndex)

	require.NoError(t, f.app.Group(ctx, []string{a, b, "as", "Pair", "of", "notes"}))
	groups := f.app.engine.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "Pair of notes", groups[0].Label)
	require.NoError(t, f.app.Collapse(ctx, []string{groups[0].ID}, true))
	assert.True(t, f.app.engine.Groups()[0].Collapsed)

	f.out.Reset()
	require.NoError(t, f.app.ListItems(ctx, nil))
	listing := f.out.String()
	assert.Contains(t, listing, "#mood #blue")
	assert.Contains(t, listing, `"Pair of notes"`)
	assert.Contains(t, listing, "(collapsed)")

	require.NoError(t, f.app.Ungroup(ctx, []string{groups[0].ID}))
	assert.Empty(t, f.app.engine.Groups())

	require.NoError(t, f.app.DuplicateItems(ctx, []string{a}))
	assert.Len(t, f.app.engine.Items(), 3)
	require.NoError(t, f.app.Undo(ctx, nil))
	assert.Len(t, f.app.engine.Items(), 2)
	require.NoError(t, f.app.Redo(ctx, nil))
	assert.Len(t, f.app.engine.Items(), 3)

	require.NoError(t, f.app.Remove(ctx, []string{a, b}))
	assert.Len(t, f.app.engine.Items(), 1)
	require.NoError(t, f.app.Back(ctx, []string{f.app.engine.Items()[0].ID}))

	f.out.Reset()
	require.NoError(t, f.app.Redo(ctx, nil))
	assert.Equal(t, "nothing to redo\n", f.out.String())
}

func TestApp_SetDataAndViewport(t *testing.T) {
	f := newApp(t)
	ctx := context.Background()
	require.NoError(t, f.run(t, "new", "B"))
	require.NoError(t, f.run(t, "add", "text", "draft"))
	require.NoError(t, f.run(t, "add", "color", "#112233", "Ink"))
	items := f.app.engine.Items()
	text, color := items[0].ID, items[1].ID

	require.NoError(t, f.app.Set(ctx, []string{text, "content", "final", "copy"}))
	require.NoError(t, f.app.Set(ctx, []string{color, "hex", `"#445566"`}))
	require.Error(t, f.app.Set(ctx, []string{text, "content", "42"}))
	require.ErrorIs(t, f.app.Set(ctx, []string{text, "content"}), errUsage)

	it, _ := f.app.engine.Item(text)
	assert.Equal(t, models.TextData{Content: "final copy"}, it.Data)
	it, _ = f.app.engine.Item(color)
	assert.Equal(t, models.ColorData{Hex: "#445566", Label: "Ink"}, it.Data)

	require.NoError(t, f.app.View(ctx, []string{"-40", "12.5", "2"}))
	assert.Equal(t, models.Viewport{X: -40, Y: 12.5, Zoom: 2}, f.app.engine.Viewport())
	require.ErrorIs(t, f.app.View(ctx, []string{"0", "0", "0"}), errUsage)

	f.out.Reset()
	require.NoError(t, f.app.View(ctx, nil))
	assert.Equal(t, "viewport at (-40,12.5) zoom 2\n", f.out.String())

	require.NoError(t, f.app.Save(ctx, nil))
	id, _ := f.app.engine.ActiveBoard()
	b, err := f.app.boards.GetBoard(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2.0, b.Viewport.Zoom)
}

func TestApp_WithoutBoard(t *testing.T) {
	f := newApp(t)
	ctx := context.Background()

	require.ErrorIs(t, f.app.ListItems(ctx, nil), common.ErrNoActiveBoard)
	require.ErrorIs(t, f.app.Add(ctx, []string{"text", "x"}), common.ErrNoActiveBoard)
	require.ErrorIs(t, f.app.Add(ctx, []string{"file", "x.png"}), common.ErrNoActiveBoard)
	require.ErrorIs(t, f.app.Export(ctx, []string{"out"}), common.ErrNoActiveBoard)
	require.ErrorIs(t, f.app.DeleteBoard(ctx, nil), errUsage)
	require.ErrorIs(t, f.app.OpenBoard(ctx, nil), errUsage)
	require.ErrorIs(t, f.app.OpenBoard(ctx, []string{"nope"}), common.ErrorNotFound)
	require.ErrorIs(t, f.app.Backup(ctx, nil), errNoBackups)
	require.ErrorIs(t, f.app.ListBackups(ctx, nil), errNoBackups)
	require.ErrorIs(t, f.app.Restore(ctx, []string{"k"}), errNoBackups)

	require.NoError(t, f.app.ListBoards(ctx, nil))
	assert.Equal(t, "no boards\n", f.out.String())
}

func TestApp_AddFiles(t *testing.T) {
	f := newApp(t)
	ctx := context.Background()
	require.NoError(t, f.run(t, "new", "Files"))
	boardID, _ := f.app.engine.ActiveBoard()

	dir := t.TempDir()
	png := filepath.Join(dir, "pic.png")
	require.NoError(t, os.WriteFile(png, []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d}, 0o600))
	riv := filepath.Join(dir, "bot.riv")
	require.NoError(t, os.WriteFile(riv, []byte("RIVE-bytes"), 0o600))
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("plain"), 0o600))

	require.NoError(t, f.run(t, "add", "file", png))
	require.NoError(t, f.run(t, "add", "file", riv))
	require.Error(t, f.run(t, "add", "file", txt))
	require.Error(t, f.run(t, "add", "file", filepath.Join(dir, "absent.png")))

	items := f.app.engine.Items()
	require.Len(t, items, 2)
	assert.Equal(t, models.ItemTypeImage, items[0].Type)
	assert.Equal(t, models.ItemTypeRive, items[1].Type)

	media, err := f.boards.ListMedia(ctx, boardID)
	require.NoError(t, err)
	require.Len(t, media, 1)
	assert.Equal(t, media[0].ID, items[1].Data.BlobRef())

	f.out.Reset()
	require.NoError(t, f.app.Usage(ctx, nil))
	assert.Contains(t, f.out.String(), "storage used:")
}

func TestApp_ExportImportAndBoards(t *testing.T) {
	f := newApp(t)
	ctx := context.Background()
	require.NoError(t, f.run(t, "new", "Original"))
	require.NoError(t, f.run(t, "add", "text", "kept"))
	origID, _ := f.app.engine.ActiveBoard()

	path := filepath.Join(t.TempDir(), "exports", "board")
	require.NoError(t, f.app.Export(ctx, []string{path}))
	_, err := os.Stat(path + common.ArchiveExtension)
	require.NoError(t, err)

	require.NoError(t, f.app.Import(ctx, []string{path + common.ArchiveExtension}))
	importedID, name := f.app.engine.ActiveBoard()
	assert.NotEqual(t, origID, importedID)
	assert.Equal(t, "Original", name)
	require.Len(t, f.app.engine.Items(), 1)

	require.NoError(t, f.app.RenameBoard(ctx, []string{"Imported", "copy"}))
	require.NoError(t, f.app.DuplicateBoard(ctx, []string{origID}))

	boards, err := f.boards.ListBoards(ctx)
	require.NoError(t, err)
	assert.Len(t, boards, 3)

	f.out.Reset()
	require.NoError(t, f.app.ListBoards(ctx, nil))
	assert.Contains(t, f.out.String(), "* "+importedID)
	assert.Contains(t, f.out.String(), "Original (copy)")

	require.NoError(t, f.app.DeleteBoard(ctx, nil))
	id, _ := f.app.engine.ActiveBoard()
	assert.Empty(t, id)

	bad := filepath.Join(t.TempDir(), "bad"+common.ArchiveExtension)
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o600))
	err = f.app.Import(ctx, []string{bad})
	require.ErrorIs(t, err, common.ErrMalformedArchive)

	// a failed export leaves no partial file behind
	missing := filepath.Join(t.TempDir(), "ghost")
	require.Error(t, f.app.Export(ctx, []string{missing, "no-such-board"}))
	_, err = os.Stat(missing + common.ArchiveExtension)
	assert.True(t, os.IsNotExist(err))
}

func TestApp_RunScript(t *testing.T) {
	f := newApp(t)
	capturePrints(t)

	script := filepath.Join(t.TempDir(), "script.txt")
	require.NoError(t, os.WriteFile(script, []byte("new Scripted\nadd text from a pipe\n"), 0o600))
	in, err := os.Open(script)
	require.NoError(t, err)
	defer in.Close()

	require.NoError(t, f.app.Run(context.Background(), in))

	// Run closes the board, so the pending autosave has been written
	boards, err := f.boards.ListBoards(context.Background())
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, "Scripted", boards[0].Name)
	assert.Equal(t, 1, boards[0].ItemCount)
}
