package daemon

import (
	"sync"
	"time"
)

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler schedules with time.AfterFunc.
var RealScheduler Scheduler = realScheduler{}

// DefaultDebounce is the settle delay applied to window events.
const DefaultDebounce = 100 * time.Millisecond

// Debouncer coalesces bursts of triggers into one call. It keeps a single
// pending slot: every Trigger replaces the pending timer. A generation counter
// discards timers that fire after being replaced or stopped.
type Debouncer struct {
	scheduler Scheduler
	fn        func()

	mu      sync.Mutex
	delay   time.Duration
	timer   Timer
	gen     uint64
	stopped bool
	fired   int
}

// NewDebouncer returns a debouncer calling fn delay after the last Trigger.
func NewDebouncer(scheduler Scheduler, delay time.Duration, fn func()) *Debouncer {
	if scheduler == nil {
		scheduler = RealScheduler
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{scheduler: scheduler, delay: delay, fn: fn}
}

// Trigger (re)starts the pending timer. It is a no-op after Stop.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.scheduler.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.fired++
	d.mu.Unlock()

	d.fn()
}

// Stop cancels the pending call and rejects further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Resume accepts triggers again after Stop.
func (d *Debouncer) Resume() {
	d.mu.Lock()
	d.stopped = false
	d.mu.Unlock()
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// SetDelay changes the delay used by subsequent triggers.
func (d *Debouncer) SetDelay(delay time.Duration) {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	d.mu.Lock()
	d.delay = delay
	d.mu.Unlock()
}

// Delay returns the current delay.
func (d *Debouncer) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delay
}

// Fired returns how many debounced calls have run.
func (d *Debouncer) Fired() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fired
}
