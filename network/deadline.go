package network

import (
	"sync"
	"time"
)

// Deadline aborts one pending read after a timeout. It holds at most one
// deadline; an unarmed Deadline never acts.
type Deadline struct {
	mu         sync.Mutex
	cancel     func()
	timer      *time.Timer
	at         time.Time // zero while infinite
	generation uint64
	expired    bool
	stopped    bool
}

// NewDeadline returns an unarmed actor that calls cancel when an armed
// deadline passes.
func NewDeadline(cancel func()) *Deadline {
	return &Deadline{cancel: cancel}
}

// Arm sets the deadline to now+timeout, replacing any pending one.
func (d *Deadline) Arm(timeout time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.generation++
	d.expired = false
	d.at = time.Now().Add(timeout)

	generation := d.generation
	d.timer = time.AfterFunc(timeout, func() { d.expire(generation) })
}

func (d *Deadline) expire(generation uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Disarmed or re-armed since this check was scheduled.
	if generation != d.generation || d.at.IsZero() {
		return
	}

	d.cancel()
	d.at = time.Time{}
	d.expired = true
}

// Disarm cancels the pending check and reports whether the deadline had
// already fired. Once Disarm returns the cancel func will not run for the
// disarmed deadline.
func (d *Deadline) Disarm() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation++
	d.at = time.Time{}

	return d.expired
}

func (d *Deadline) fired() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.expired
}

// pending returns the armed deadline, or false when it is infinite.
func (d *Deadline) pending() (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.at, !d.at.IsZero()
}

// Stop releases the timer. The actor cannot be armed again.
func (d *Deadline) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation++
	d.at = time.Time{}
	d.stopped = true
}
