package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/motionboard/internal/common"
	"github.com/dmitrijs2005/motionboard/internal/logging"
	"github.com/dmitrijs2005/motionboard/internal/models"
	"github.com/dmitrijs2005/motionboard/internal/services"
	"github.com/stretchr/testify/require"
)

// fakeService keeps boards in memory. Only the methods the engine calls are
// implemented; the embedded interface panics on anything else.
type fakeService struct {
	services.BoardService

	mu        sync.Mutex
	boards    map[string]*models.Board
	saves     []models.BoardChanges
	saveErr   error
	deleteErr error
	usage     int64
}

func newFakeService() *fakeService {
	return &fakeService{boards: map[string]*models.Board{}}
}

func (f *fakeService) add(id, name string, items []models.Item, groups []models.Group) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.boards[id] = &models.Board{ID: id, Name: name, Items: items, Groups: groups, Viewport: models.DefaultViewport()}
}

func (f *fakeService) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.boards[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *b
	cp.Items = models.CloneItems(b.Items)
	cp.Groups = models.CloneGroups(b.Groups)
	return &cp, nil
}

func (f *fakeService) SaveBoard(ctx context.Context, id string, ch models.BoardChanges) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	b, ok := f.boards[id]
	if !ok {
		return common.ErrorNotFound
	}
	f.saves = append(f.saves, ch)
	b.Items = models.CloneItems(ch.Items)
	if ch.Groups != nil {
		b.Groups = models.CloneGroups(ch.Groups)
	}
	if ch.Viewport != nil {
		b.Viewport = *ch.Viewport
	}
	f.usage = int64(len(b.Items))
	return nil
}

func (f *fakeService) RenameBoard(ctx context.Context, id, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.boards[id]
	if !ok {
		return common.ErrorNotFound
	}
	b.Name = name
	return nil
}

func (f *fakeService) DeleteBoard(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.boards[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.boards, id)
	return nil
}

func (f *fakeService) GetStorageUsage(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usage, nil
}

func (f *fakeService) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeService) stored(id string) *models.Board {
	b, _ := f.GetBoard(context.Background(), id)
	return b
}

// manualDebouncer runs the pending job only when the test flushes it.
type manualDebouncer struct {
	mu        sync.Mutex
	job       func()
	scheduled int
}

func (d *manualDebouncer) Schedule(job func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.job = job
	d.scheduled++
}

func (d *manualDebouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.job = nil
}

func (d *manualDebouncer) Flush() {
	d.mu.Lock()
	job := d.job
	d.job = nil
	d.mu.Unlock()
	if job != nil {
		job()
	}
}

func (d *manualDebouncer) pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.job != nil
}

func sequentialIDs() func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

type fixture struct {
	eng   *Engine
	svc   *fakeService
	saver *manualDebouncer
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	svc := newFakeService()
	svc.add("board-1", "Test", nil, nil)

	saver := &manualDebouncer{}
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	base := []Option{
		WithDebouncer(saver),
		WithIDGenerator(sequentialIDs()),
		WithClock(func() time.Time { clock = clock.Add(time.Second); return clock }),
	}
	eng := New(svc, logging.Nop(), append(base, opts...)...)
	require.NoError(t, eng.OpenBoard(context.Background(), "board-1"))
	return &fixture{eng: eng, svc: svc, saver: saver}
}

func (f *fixture) addText(t *testing.T, content string) models.Item {
	t.Helper()
	it, err := f.eng.AddItem(models.ItemTypeText, models.TextData{Content: content}, models.Position{X: 100, Y: 100}, nil)
	require.NoError(t, err)
	return it
}
