// Package engine holds the authoritative in-memory model of the open board:
// its items, groups and viewport, undo/redo history, and the debounced
// persistence of snapshots through the board service.
//
// An Engine has at most one open board. Mutations run synchronously under a
// mutex; persistence runs later on the debouncer's goroutine and re-checks
// that the board it was scheduled for is still the open one.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/motionboard/internal/common"
	"github.com/dmitrijs2005/motionboard/internal/logging"
	"github.com/dmitrijs2005/motionboard/internal/metrics"
	"github.com/dmitrijs2005/motionboard/internal/models"
	"github.com/dmitrijs2005/motionboard/internal/services"
	"github.com/google/uuid"
)

// DuplicateOffset is added to both axes of a duplicated item's position.
const DuplicateOffset = 30.0

// Engine is the board state engine.
type Engine struct {
	svc     services.BoardService
	log     logging.Logger
	metrics *metrics.Metrics
	saver   Debouncer
	now     func() time.Time
	newID   func() string

	mu           sync.Mutex
	boardID      string
	boardName    string
	items        []models.Item
	groups       []models.Group
	viewport     models.Viewport
	history      *History
	storageUsage int64
	lastSaveErr  error

	// saveMu serializes snapshot writes against each other and against
	// board deletion.
	saveMu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithDebouncer replaces the save scheduler.
func WithDebouncer(d Debouncer) Option {
	return func(e *Engine) { e.saver = d }
}

// WithDebounce sets the quiet interval of the default scheduler.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) { e.saver = NewTimerDebouncer(d) }
}

// WithUndoLimit bounds the undo stack.
func WithUndoLimit(n int) Option {
	return func(e *Engine) { e.history = NewHistory(n) }
}

// WithMetrics publishes save and history metrics to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides how item and group ids are generated.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// New returns an Engine with no open board.
func New(svc services.BoardService, log logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		svc:      svc,
		log:      log,
		saver:    NewTimerDebouncer(DefaultDebounce),
		now:      time.Now,
		newID:    uuid.NewString,
		history:  NewHistory(DefaultUndoLimit),
		viewport: models.DefaultViewport(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// OpenBoard loads a board and makes it the open one. A pending save of the
// previously open board is flushed first; history starts empty.
func (e *Engine) OpenBoard(ctx context.Context, id string) error {
	e.saver.Flush()

	b, err := e.svc.GetBoard(ctx, id)
	if err != nil {
		return fmt.Errorf("open board: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.boardID = b.ID
	e.boardName = b.Name
	e.items = b.Items
	e.groups = b.Groups
	e.viewport = b.Viewport
	e.lastSaveErr = nil
	e.history.Reset()
	e.publishHistoryLocked()

	e.log.Info(ctx, "board opened", "board_id", b.ID, "items", len(b.Items), "groups", len(b.Groups))
	return nil
}

// Close flushes any pending save and releases the open board. The save
// error, if any, is returned after the board has been released.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	open := e.boardID != ""
	e.mu.Unlock()
	if !open {
		return nil
	}

	err := e.Flush(ctx)

	e.mu.Lock()
	e.resetLocked()
	e.mu.Unlock()
	return err
}

// DeleteBoard deletes a board through the service. When it is the open
// board, the pending save is dropped and the engine is left without a board.
func (e *Engine) DeleteBoard(ctx context.Context, id string) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	if err := e.svc.DeleteBoard(ctx, id); err != nil {
		return err
	}

	e.mu.Lock()
	if id == e.boardID {
		e.saver.Cancel()
		e.resetLocked()
	}
	e.mu.Unlock()

	e.refreshUsage(ctx)
	return nil
}

// RenameActiveBoard renames the open board immediately.
func (e *Engine) RenameActiveBoard(ctx context.Context, name string) error {
	e.mu.Lock()
	id := e.boardID
	e.mu.Unlock()
	if id == "" {
		return common.ErrNoActiveBoard
	}

	if err := e.svc.RenameBoard(ctx, id, name); err != nil {
		return err
	}

	e.mu.Lock()
	if e.boardID == id {
		e.boardName = name
	}
	e.mu.Unlock()
	return nil
}

func (e *Engine) resetLocked() {
	e.boardID = ""
	e.boardName = ""
	e.items = nil
	e.groups = nil
	e.viewport = models.DefaultViewport()
	e.history.Reset()
	e.publishHistoryLocked()
}

// ActiveBoard returns the id and name of the open board; id is empty when
// no board is open.
func (e *Engine) ActiveBoard() (id, name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.boardID, e.boardName
}

// Items returns a copy of the open board's items.
func (e *Engine) Items() []models.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return models.CloneItems(e.items)
}

// Item returns a copy of one item.
func (e *Engine) Item(id string) (models.Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.indexLocked(id); i >= 0 {
		return e.items[i].Clone(), true
	}
	return models.Item{}, false
}

// Groups returns a copy of the open board's groups.
func (e *Engine) Groups() []models.Group {
	e.mu.Lock()
	defer e.mu.Unlock()
	return models.CloneGroups(e.groups)
}

// Viewport returns the open board's viewport.
func (e *Engine) Viewport() models.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport
}

// CanUndo reports whether Undo would change anything.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, _ := e.history.Depth()
	return n > 0
}

// CanRedo reports whether Redo would change anything.
func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, n := e.history.Depth()
	return n > 0
}

// HistoryDepth reports the undo and redo stack sizes.
func (e *Engine) HistoryDepth() (undo, redo int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Depth()
}

// StorageUsage is the approximate usage refreshed after each successful save.
func (e *Engine) StorageUsage() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.storageUsage
}

// LastSaveError returns the error of the most recent save, or nil once a
// later save succeeded.
func (e *Engine) LastSaveError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSaveErr
}

func (e *Engine) indexLocked(id string) int {
	for i := range e.items {
		if e.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) requireBoardLocked() error {
	if e.boardID == "" {
		return common.ErrNoActiveBoard
	}
	return nil
}

func (e *Engine) publishHistoryLocked() {
	undo, redo := e.history.Depth()
	e.metrics.SetHistoryDepth(undo, redo)
}

// pushUndoLocked records the current items before a structural mutation.
func (e *Engine) pushUndoLocked() {
	e.history.Push(e.items)
	e.publishHistoryLocked()
}

// SetViewport records the canvas pan/zoom state of the open board.
func (e *Engine) SetViewport(vp models.Viewport) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireBoardLocked(); err != nil {
		return err
	}
	e.viewport = vp
	e.scheduleSaveLocked()
	return nil
}
