package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/motionboard/internal/common"
	"github.com/dmitrijs2005/motionboard/internal/filex"
	"github.com/dustin/go-humanize"
)

var errNoBackups = errors.New("backups are not configured (set s3_bucket and credentials)")

// Export writes the open board, or the board given second, to path. The
// open board is saved first so the archive matches what is on screen.
func (a *App) Export(ctx context.Context, args []string) (err error) {
	if err := needArgs(args, 1, "export <path> [board-id]"); err != nil {
		return err
	}
	path := args[0]
	if !strings.HasSuffix(path, common.ArchiveExtension) {
		path += common.ArchiveExtension
	}

	active, _ := a.engine.ActiveBoard()
	id := active
	if len(args) > 1 {
		id = args[1]
	}
	if id == "" {
		return common.ErrNoActiveBoard
	}
	if id == active {
		if err := a.engine.Flush(ctx); err != nil {
			return err
		}
	}

	if _, err := filex.EnsureParentDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := a.codec.Export(ctx, id, f); err != nil {
		return err
	}
	a.printf("exported to %s\n", path)
	return nil
}

// Import creates a new board from an archive file and opens it.
func (a *App) Import(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, "import <path>"); err != nil {
		return err
	}
	f, err := os.Open(strings.Join(args, " "))
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}
	id, err := a.codec.Import(ctx, f, st.Size())
	if err != nil {
		return err
	}
	if err := a.engine.OpenBoard(ctx, id); err != nil {
		return err
	}
	a.printf("imported as %s\n", id)
	return nil
}

func (a *App) Usage(ctx context.Context, _ []string) error {
	n, err := a.boards.GetStorageUsage(ctx)
	if err != nil {
		return err
	}
	a.printf("storage used: %s\n", humanize.IBytes(uint64(n)))
	return nil
}

// Backup uploads the open board, the board given, or every board with "all".
func (a *App) Backup(ctx context.Context, args []string) error {
	if a.backups == nil {
		return errNoBackups
	}

	if len(args) > 0 && args[0] == "all" {
		if a.hasBoard() {
			if err := a.engine.Flush(ctx); err != nil {
				return err
			}
		}
		done, err := a.backups.BackupAll(ctx)
		for _, b := range done {
			a.printf("%s\n", b.Key)
		}
		return err
	}

	active, _ := a.engine.ActiveBoard()
	id := active
	if len(args) > 0 {
		id = args[0]
	}
	if id == "" {
		return usage("backup [all|<board-id>]")
	}
	if id == active {
		if err := a.engine.Flush(ctx); err != nil {
			return err
		}
	}
	b, err := a.backups.BackupBoard(ctx, id)
	if err != nil {
		return err
	}
	a.printf("%s (%s)\n", b.Key, humanize.IBytes(uint64(b.Size)))
	return nil
}

func (a *App) ListBackups(ctx context.Context, args []string) error {
	if a.backups == nil {
		return errNoBackups
	}
	boardID := ""
	if len(args) > 0 {
		boardID = args[0]
	}
	list, err := a.backups.ListBackups(ctx, boardID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("no backups\n")
	}
	for _, b := range list {
		a.printf("%s  %8s  %s\n", b.Key, humanize.IBytes(uint64(b.Size)), humanize.Time(b.CreatedAt))
	}
	return nil
}

// Restore imports a backup as a new board and opens it.
func (a *App) Restore(ctx context.Context, args []string) error {
	if a.backups == nil {
		return errNoBackups
	}
	if err := needArgs(args, 1, "restore <backup-key>"); err != nil {
		return err
	}
	id, err := a.backups.Restore(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.engine.OpenBoard(ctx, id); err != nil {
		return fmt.Errorf("restored as %s but could not open it: %w", id, err)
	}
	a.printf("restored as %s\n", id)
	return nil
}
