// Package debounce delays an action until its input has been quiet for a
// fixed interval. Each key holds at most one pending action; triggering a key
// again cancels the pending action and restarts the interval.
package debounce

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the debouncer uses.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d, like time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithAfterFunc replaces the timer source, mostly for tests.
func WithAfterFunc(after AfterFunc) Option {
	return func(d *Debouncer) { d.after = after }
}

type pending struct {
	timer Timer
	fn    func()
	gen   uint64
}

// Debouncer runs the latest action per key after the quiet interval.
// It is safe for concurrent use. Actions run on the timer goroutine, or on
// the caller's goroutine for Flush and zero delays, never while the
// debouncer lock is held.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	after   AfterFunc
	pending map[string]*pending
	gen     uint64
	stopped bool
}

// New creates a debouncer with the given quiet interval. A zero interval
// runs actions immediately.
func New(delay time.Duration, opts ...Option) *Debouncer {
	d := &Debouncer{
		delay:   delay,
		after:   stdAfterFunc,
		pending: make(map[string]*pending),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Delay returns the quiet interval.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger schedules fn for key, replacing any pending action of that key.
// It does nothing once the debouncer is stopped.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	d.cancelLocked(key)

	if d.delay <= 0 {
		d.mu.Unlock()
		fn()
		return
	}

	d.gen++
	p := &pending{fn: fn, gen: d.gen}
	d.pending[key] = p
	p.timer = d.after(d.delay, func() { d.fire(key, p.gen) })
	d.mu.Unlock()
}

// fire runs the pending action of key unless it was superseded.
func (d *Debouncer) fire(key string, gen uint64) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok || p.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	p.fn()
}

// Flush runs the pending action of key now. It reports whether there was one.
func (d *Debouncer) Flush(key string) bool {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok {
		d.mu.Unlock()
		return false
	}
	p.timer.Stop()
	delete(d.pending, key)
	d.mu.Unlock()

	p.fn()
	return true
}

// Cancel drops the pending action of key. It reports whether there was one.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked(key)
}

func (d *Debouncer) cancelLocked(key string) bool {
	p, ok := d.pending[key]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(d.pending, key)
	return true
}

// Pending reports whether key has an action waiting.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Stop cancels every pending action and ignores later triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key := range d.pending {
		d.cancelLocked(key)
	}
	d.stopped = true
}
