package client

import (
	"sync"
	"time"
)

// DefaultDebounceWindow is the inactivity period before editor state is saved.
const DefaultDebounceWindow = 2 * time.Second

// Debouncer runs the most recently scheduled function once no new call has
// arrived for the window. Each Trigger cancels the pending run.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	running sync.WaitGroup
}

// NewDebouncer creates a Debouncer with the given window.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{window: window}
}

// Trigger schedules fn, replacing any pending function.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = fn

	var t *time.Timer
	t = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		if d.timer != t {
			d.mu.Unlock()
			return
		}
		run := d.pending
		d.timer = nil
		d.pending = nil
		d.running.Add(1)
		d.mu.Unlock()

		defer d.running.Done()
		run()
	})
	d.timer = t
}

// Flush runs a pending function immediately and waits for any in-progress run.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	run := d.pending
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = nil
	d.pending = nil
	d.mu.Unlock()

	if run != nil {
		run()
	}
	d.running.Wait()
}

// Stop drops a pending function without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = nil
	d.pending = nil
}

// Pending reports whether a function is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
