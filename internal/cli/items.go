package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/motionboard/internal/classify"
	"github.com/dmitrijs2005/motionboard/internal/common"
	"github.com/dmitrijs2005/motionboard/internal/models"
)

const addSyntax = "add text <content> | color <hex> [label] | code <language> <code> | url <video-url> | file <path>"

// cascade offsets successive new items so they do not stack exactly.
const cascade = 20.0

func (a *App) nextPosition() models.Position {
	n := float64(len(a.engine.Items()) % 10)
	return models.Position{X: 100 + n*cascade, Y: 100 + n*cascade}
}

func (a *App) Add(ctx context.Context, args []string) error {
	if err := needArgs(args, 2, addSyntax); err != nil {
		return err
	}
	kind, rest := args[0], args[1:]

	var (
		t    models.ItemType
		data models.ItemData
	)
	switch kind {
	case "text":
		t, data = models.ItemTypeText, models.TextData{Content: strings.Join(rest, " ")}

	case "color":
		t, data = models.ItemTypeColor, models.ColorData{Hex: rest[0], Label: strings.Join(rest[1:], " ")}

	case "code":
		if len(rest) < 2 {
			return usage("add code <html|css|javascript|p5js> <code>")
		}
		lang := models.CodeLanguage(rest[0])
		switch lang {
		case models.LanguageHTML, models.LanguageCSS, models.LanguageJavaScript, models.LanguageP5JS:
		default:
			return fmt.Errorf("unknown language %q", rest[0])
		}
		t, data = models.ItemTypeCode, models.CodeData{Language: lang, Code: strings.Join(rest[1:], " "), ShowPreview: true}

	case "url":
		embed, ok := classify.VideoEmbed(rest[0])
		if !ok {
			return fmt.Errorf("%q is not a YouTube or Vimeo link", rest[0])
		}
		t, data = models.ItemTypeVideoEmbed, embed

	case "file":
		boardID, _ := a.engine.ActiveBoard()
		if boardID == "" {
			return common.ErrNoActiveBoard
		}
		path := strings.Join(rest, " ")
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		t, data, err = classify.FromFile(ctx, a.boards, boardID, filepath.Base(path), "", content)
		if err != nil {
			return err
		}

	default:
		return usage(addSyntax)
	}

	it, err := a.engine.AddItem(t, data, a.nextPosition(), nil)
	if err != nil {
		return err
	}
	a.printf("added %s %s\n", it.Type, it.ID)
	return nil
}

func (a *App) Remove(_ context.Context, args []string) error {
	if err := needArgs(args, 1, "rm <item-id>..."); err != nil {
		return err
	}
	n, err := a.engine.RemoveItems(args)
	if err != nil {
		return err
	}
	a.printf("removed %d\n", n)
	return nil
}

func (a *App) Move(_ context.Context, args []string) error {
	const syntax = "move <item-id> <x> <y>"
	if err := needArgs(args, 3, syntax); err != nil {
		return err
	}
	xy, err := parseFloats(syntax, args[1], args[2])
	if err != nil {
		return err
	}
	return a.engine.UpdateItemPosition(args[0], models.Position{X: xy[0], Y: xy[1]})
}

func (a *App) Resize(_ context.Context, args []string) error {
	const syntax = "resize <item-id> <width> <height>"
	if err := needArgs(args, 3, syntax); err != nil {
		return err
	}
	wh, err := parseFloats(syntax, args[1], args[2])
	if err != nil {
		return err
	}
	return a.engine.UpdateItemSize(args[0], models.Size{Width: wh[0], Height: wh[1]})
}

// Set edits one field of an item's payload in place. The value is read as
// JSON when it parses (numbers, booleans, quoted strings) and as plain text
// otherwise, so "set <id> content hello world" works unquoted.
func (a *App) Set(_ context.Context, args []string) error {
	const syntax = "set <item-id> <field> <value>"
	if err := needArgs(args, 3, syntax); err != nil {
		return err
	}
	raw := strings.Join(args[2:], " ")
	var v any = raw
	if json.Valid([]byte(raw)) {
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return err
		}
	}
	return a.engine.UpdateItemData(args[0], models.DataPatch{args[1]: v})
}

// Tag replaces an item's tags; with no tags given it clears them.
func (a *App) Tag(_ context.Context, args []string) error {
	if err := needArgs(args, 1, "tag <item-id> [tag]..."); err != nil {
		return err
	}
	return a.engine.UpdateItemTags(args[0], args[1:])
}

func (a *App) Front(_ context.Context, args []string) error {
	if err := needArgs(args, 1, "front <item-id>"); err != nil {
		return err
	}
	return a.engine.BringToFront(args[0])
}

func (a *App) Back(_ context.Context, args []string) error {
	if err := needArgs(args, 1, "back <item-id>"); err != nil {
		return err
	}
	return a.engine.SendToBack(args[0])
}

// Group groups items; a trailing "as <label>" names the group.
func (a *App) Group(_ context.Context, args []string) error {
	ids, label := args, ""
	for i, s := range args {
		if s == "as" {
			ids, label = args[:i], strings.Join(args[i+1:], " ")
			break
		}
	}
	if len(ids) == 0 {
		return usage("group <item-id>... [as <label>]")
	}
	id, err := a.engine.GroupItems(ids, label)
	if err != nil {
		return err
	}
	a.printf("group %s\n", id)
	return nil
}

func (a *App) Ungroup(_ context.Context, args []string) error {
	if err := needArgs(args, 1, "ungroup <group-id>"); err != nil {
		return err
	}
	return a.engine.UngroupItems(args[0])
}

func (a *App) Collapse(_ context.Context, args []string, collapsed bool) error {
	if err := needArgs(args, 1, "collapse|expand <group-id>"); err != nil {
		return err
	}
	return a.engine.SetGroupCollapsed(args[0], collapsed)
}

func (a *App) DuplicateItems(_ context.Context, args []string) error {
	if err := needArgs(args, 1, "dupitems <item-id>..."); err != nil {
		return err
	}
	ids, err := a.engine.DuplicateItems(args)
	if err != nil {
		return err
	}
	a.printf("duplicated %s\n", strings.Join(ids, " "))
	return nil
}

func (a *App) Undo(context.Context, []string) error {
	ok, err := a.engine.Undo()
	if err != nil {
		return err
	}
	if !ok {
		a.printf("nothing to undo\n")
	}
	return nil
}

func (a *App) Redo(context.Context, []string) error {
	ok, err := a.engine.Redo()
	if err != nil {
		return err
	}
	if !ok {
		a.printf("nothing to redo\n")
	}
	return nil
}

// ListItems prints the open board's items back to front.
func (a *App) ListItems(context.Context, []string) error {
	if !a.hasBoard() {
		return common.ErrNoActiveBoard
	}
	items := a.engine.Items()
	models.SortByZ(items)
	for _, it := range items {
		a.printf("%s  %-12s z=%-3d at (%g,%g) %gx%g", it.ID, it.Type, it.ZIndex, it.Position.X, it.Position.Y, it.Size.Width, it.Size.Height)
		if len(it.Tags) > 0 {
			a.printf("  #%s", strings.Join(it.Tags, " #"))
		}
		if it.GroupID != "" {
			a.printf("  group=%s", it.GroupID)
		}
		a.printf("\n")
	}
	for _, g := range a.engine.Groups() {
		state := ""
		if g.Collapsed {
			state = " (collapsed)"
		}
		a.printf("group %s %q: %s%s\n", g.ID, g.Label, strings.Join(g.ItemIDs, " "), state)
	}
	return nil
}

// View prints the viewport, or replaces it when x, y and zoom are given.
func (a *App) View(_ context.Context, args []string) error {
	const syntax = "view [<x> <y> <zoom>]"
	if !a.hasBoard() {
		return common.ErrNoActiveBoard
	}
	if len(args) == 0 {
		vp := a.engine.Viewport()
		a.printf("viewport at (%g,%g) zoom %g\n", vp.X, vp.Y, vp.Zoom)
		return nil
	}
	if err := needArgs(args, 3, syntax); err != nil {
		return err
	}
	v, err := parseFloats(syntax, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	if v[2] <= 0 {
		return fmt.Errorf("%w (zoom must be positive)", usage(syntax))
	}
	return a.engine.SetViewport(models.Viewport{X: v[0], Y: v[1], Zoom: v[2]})
}

// Save writes the open board now instead of waiting for the autosave.
func (a *App) Save(ctx context.Context, _ []string) error {
	return a.engine.Flush(ctx)
}
