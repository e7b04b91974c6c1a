package engine

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet interval before a scheduled save runs.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer runs at most one pending job after a quiet interval. Each
// Schedule replaces the pending job and restarts the interval.
type Debouncer interface {
	// Schedule replaces any pending job with job.
	Schedule(job func())
	// Cancel drops the pending job without running it.
	Cancel()
	// Flush runs the pending job now, if any, and waits for a job that is
	// already executing to finish.
	Flush()
}

// TimerDebouncer is a Debouncer backed by time.AfterFunc. Jobs never run
// concurrently with each other.
type TimerDebouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	job   func()
	gen   uint64

	running sync.Mutex
}

// NewTimerDebouncer returns a debouncer with the given quiet interval.
func NewTimerDebouncer(delay time.Duration) *TimerDebouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &TimerDebouncer{delay: delay}
}

func (d *TimerDebouncer) Schedule(job func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.job = job
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *TimerDebouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.job = nil
}

func (d *TimerDebouncer) Flush() {
	d.mu.Lock()
	job := d.job
	d.job = nil
	d.stopLocked()
	d.mu.Unlock()

	d.running.Lock()
	defer d.running.Unlock()
	if job != nil {
		job()
	}
}

// Pending reports whether a job is waiting for its interval to elapse.
func (d *TimerDebouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.job != nil
}

// stopLocked stops the timer and invalidates any callback already racing
// to fire.
func (d *TimerDebouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *TimerDebouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.job == nil {
		d.mu.Unlock()
		return
	}
	job := d.job
	d.job = nil
	d.timer = nil
	d.mu.Unlock()

	d.running.Lock()
	defer d.running.Unlock()
	job()
}
