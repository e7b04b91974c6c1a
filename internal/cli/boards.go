package cli

import (
	"context"
	"strings"

	"github.com/dustin/go-humanize"
)

func (a *App) ListBoards(ctx context.Context, _ []string) error {
	boards, err := a.boards.ListBoards(ctx)
	if err != nil {
		return err
	}
	if len(boards) == 0 {
		a.printf("no boards\n")
		return nil
	}
	active, _ := a.engine.ActiveBoard()
	for _, b := range boards {
		mark := " "
		if b.ID == active {
			mark = "*"
		}
		a.printf("%s %s  %-24s %3d items  updated %s\n", mark, b.ID, b.Name, b.ItemCount, humanize.Time(b.UpdatedAt))
	}
	return nil
}

func (a *App) NewBoard(ctx context.Context, args []string) error {
	id, err := a.boards.CreateBoard(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if err := a.engine.OpenBoard(ctx, id); err != nil {
		return err
	}
	a.printf("created %s\n", id)
	return nil
}

func (a *App) OpenBoard(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, "open <board-id>"); err != nil {
		return err
	}
	if err := a.engine.OpenBoard(ctx, args[0]); err != nil {
		return err
	}
	_, name := a.engine.ActiveBoard()
	a.printf("opened %s (%d items)\n", name, len(a.engine.Items()))
	return nil
}

func (a *App) RenameBoard(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, "rename <name>"); err != nil {
		return err
	}
	return a.engine.RenameActiveBoard(ctx, strings.Join(args, " "))
}

// DeleteBoard deletes the board given, or the open one.
func (a *App) DeleteBoard(ctx context.Context, args []string) error {
	id, _ := a.engine.ActiveBoard()
	if len(args) > 0 {
		id = args[0]
	}
	if id == "" {
		return usage("delete <board-id>")
	}
	if err := a.engine.DeleteBoard(ctx, id); err != nil {
		return err
	}
	a.printf("deleted %s\n", id)
	return nil
}

// DuplicateBoard copies the board given, or the open one after saving it.
func (a *App) DuplicateBoard(ctx context.Context, args []string) error {
	id, _ := a.engine.ActiveBoard()
	if len(args) > 0 {
		id = args[0]
	} else if id != "" {
		if err := a.engine.Flush(ctx); err != nil {
			return err
		}
	}
	if id == "" {
		return usage("dup <board-id>")
	}
	newID, err := a.boards.DuplicateBoard(ctx, id)
	if err != nil {
		return err
	}
	a.printf("duplicated as %s\n", newID)
	return nil
}
