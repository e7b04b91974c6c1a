package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/motionboard/internal/archive"
	"github.com/dmitrijs2005/motionboard/internal/backup"
	"github.com/dmitrijs2005/motionboard/internal/engine"
	"github.com/dmitrijs2005/motionboard/internal/logging"
	"github.com/dmitrijs2005/motionboard/internal/services"
	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// App executes REPL commands against the engine and the board service.
type App struct {
	engine  *engine.Engine
	boards  services.BoardService
	codec   *archive.Codec
	backups *backup.Service
	log     logging.Logger
	out     io.Writer
}

// NewApp wires an App. backups may be nil when no bucket is configured.
func NewApp(e *engine.Engine, boards services.BoardService, codec *archive.Codec, backups *backup.Service, log logging.Logger, out io.Writer) *App {
	return &App{engine: e, boards: boards, codec: codec, backups: backups, log: log, out: out}
}

// Run reads commands from in until quit or EOF, then closes the open board
// so a pending save reaches the store.
func (a *App) Run(ctx context.Context, in *os.File) error {
	interactive := isTerminal(int(in.Fd()))
	if interactive {
		printlnFn("MotionBoard (type 'help' for commands)")
	}

	runREPL(ctx, a, a.status, bufio.NewScanner(in), interactive)
	a.log.Debug(ctx, "input finished, closing board")

	if err := a.engine.Close(ctx); err != nil {
		return fmt.Errorf("close board: %w", err)
	}
	return nil
}

func (a *App) hasBoard() bool {
	id, _ := a.engine.ActiveBoard()
	return id != ""
}

func (a *App) status() string {
	id, name := a.engine.ActiveBoard()
	if id == "" {
		return ""
	}
	s := name
	if a.engine.LastSaveError() != nil {
		s += " !unsaved"
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
