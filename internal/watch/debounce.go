package watch

import (
	"sync"
	"time"
)

// Debouncer collects events and emits them as one batch after a quiet period.
// Every Add resets the timer, so a burst of saves produces a single emission.
type Debouncer struct {
	delay  time.Duration
	timer  *time.Timer
	mu     sync.Mutex
	events []Event
	emit   func([]Event)
}

// NewDebouncer creates a debouncer with the specified quiet period
func NewDebouncer(delay time.Duration, emit func([]Event)) *Debouncer {
	return &Debouncer{
		delay:  delay,
		events: make([]Event, 0),
		emit:   emit,
	}
}

// Add adds an event to the pending batch and resets the timer
func (d *Debouncer) Add(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.events = append(d.events, event)

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.flush()
	})
}

// flush emits collected events
func (d *Debouncer) flush() {
	d.mu.Lock()
	events := d.events
	d.events = make([]Event, 0)
	d.timer = nil
	d.mu.Unlock()

	if len(events) > 0 && d.emit != nil {
		d.emit(events)
	}
}

// Cancel drops any pending events without emitting them
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.events = make([]Event, 0)
}

// Flush immediately emits any pending events
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.flush()
}

// EventCount returns the number of pending events
func (d *Debouncer) EventCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}
