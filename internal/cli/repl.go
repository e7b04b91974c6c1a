package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests provide a recording stub.
type execIface interface {
	hasBoard() bool

	ListBoards(ctx context.Context, args []string) error
	NewBoard(ctx context.Context, args []string) error
	OpenBoard(ctx context.Context, args []string) error
	RenameBoard(ctx context.Context, args []string) error
	DeleteBoard(ctx context.Context, args []string) error
	DuplicateBoard(ctx context.Context, args []string) error

	Add(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Move(ctx context.Context, args []string) error
	Resize(ctx context.Context, args []string) error
	Set(ctx context.Context, args []string) error
	Tag(ctx context.Context, args []string) error
	Front(ctx context.Context, args []string) error
	Back(ctx context.Context, args []string) error
	Group(ctx context.Context, args []string) error
	Ungroup(ctx context.Context, args []string) error
	Collapse(ctx context.Context, args []string, collapsed bool) error
	DuplicateItems(ctx context.Context, args []string) error
	Undo(ctx context.Context, args []string) error
	Redo(ctx context.Context, args []string) error
	ListItems(ctx context.Context, args []string) error
	Save(ctx context.Context, args []string) error
	View(ctx context.Context, args []string) error

	Export(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
	Usage(ctx context.Context, args []string) error
	Backup(ctx context.Context, args []string) error
	ListBackups(ctx context.Context, args []string) error
	Restore(ctx context.Context, args []string) error
}

const (
	helpNoBoard = "Available commands: boards, new <name>, open <id>, delete <id>, dup <id>, import <path>, usage, backup all, backups, restore <key>, quit"
	helpBoard   = "Available commands: boards, new, open, rename <name>, delete, dup, " +
		"add text|color|code|url|file ..., rm <id>..., move <id> <x> <y>, resize <id> <w> <h>, set <id> <field> <value>, tag <id> <tag>..., " +
		"front <id>, back <id>, group <id>..., ungroup <group>, collapse <group>, expand <group>, dupitems <id>..., " +
		"undo, redo, items, view <x> <y> <zoom>, save, export <path>, import <path>, usage, backup [all|<id>], backups [<id>], restore <key>, quit"
)

// runREPL reads one command per line and dispatches it to a. The prompt,
// decorated with statusFn, is printed only when interactive is set. Command
// errors are reported and the loop carries on; it ends on EOF, "exit" or
// "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, interactive bool) {
	for {
		if interactive {
			printlnFn(fmt.Sprintf("mb%s> ", statusFn()))
		}
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 || strings.HasPrefix(parts[0], "#") {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.hasBoard() {
				printlnFn(helpBoard)
			} else {
				printlnFn(helpNoBoard)
			}

		case "boards", "ls":
			err = a.ListBoards(ctx, args)
		case "new":
			err = a.NewBoard(ctx, args)
		case "open":
			err = a.OpenBoard(ctx, args)
		case "rename":
			err = a.RenameBoard(ctx, args)
		case "delete":
			err = a.DeleteBoard(ctx, args)
		case "dup":
			err = a.DuplicateBoard(ctx, args)

		case "add":
			err = a.Add(ctx, args)
		case "rm":
			err = a.Remove(ctx, args)
		case "move":
			err = a.Move(ctx, args)
		case "resize":
			err = a.Resize(ctx, args)
		case "set":
			err = a.Set(ctx, args)
		case "tag":
			err = a.Tag(ctx, args)
		case "front":
			err = a.Front(ctx, args)
		case "back":
			err = a.Back(ctx, args)
		case "group":
			err = a.Group(ctx, args)
		case "ungroup":
			err = a.Ungroup(ctx, args)
		case "collapse":
			err = a.Collapse(ctx, args, true)
		case "expand":
			err = a.Collapse(ctx, args, false)
		case "dupitems":
			err = a.DuplicateItems(ctx, args)
		case "undo":
			err = a.Undo(ctx, args)
		case "redo":
			err = a.Redo(ctx, args)
		case "items":
			err = a.ListItems(ctx, args)
		case "view":
			err = a.View(ctx, args)
		case "save":
			err = a.Save(ctx, args)

		case "export":
			err = a.Export(ctx, args)
		case "import":
			err = a.Import(ctx, args)
		case "usage":
			err = a.Usage(ctx, args)
		case "backup":
			err = a.Backup(ctx, args)
		case "backups":
			err = a.ListBackups(ctx, args)
		case "restore":
			err = a.Restore(ctx, args)

		case "exit", "quit":
			if interactive {
				printlnFn("Bye!")
			}
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("error:", err)
		}
	}
}
