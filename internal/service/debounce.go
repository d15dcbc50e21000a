package service

import (
	"sort"
	"sync"
	"time"
)

type pendingCall struct {
	timer *time.Timer
	fn    func()
}

// Debouncer delays work per key. Triggering a key again before its delay
// elapses replaces the pending call, so only the latest one runs.
type Debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[string]*pendingCall
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*pendingCall),
	}
}

// Trigger schedules fn under key, dropping any call already pending there.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}

	pc := &pendingCall{fn: fn}
	pc.timer = time.AfterFunc(d.delay, func() { d.fire(key, pc) })
	d.pending[key] = pc
}

func (d *Debouncer) fire(key string, pc *pendingCall) {
	d.mu.Lock()
	if d.pending[key] != pc {
		// replaced, cancelled or flushed
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	pc.fn()
}

// Cancel drops the pending call for key and reports whether there was one.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pc, ok := d.pending[key]
	if !ok {
		return false
	}
	pc.timer.Stop()
	delete(d.pending, key)
	return true
}

// Pending reports how many keys are waiting.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush runs every pending call now, in key order, on the caller's goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	keys := make([]string, 0, len(d.pending))
	for key := range d.pending {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	calls := make([]func(), 0, len(keys))
	for _, key := range keys {
		pc := d.pending[key]
		pc.timer.Stop()
		delete(d.pending, key)
		calls = append(calls, pc.fn)
	}
	d.mu.Unlock()

	for _, fn := range calls {
		fn()
	}
}
