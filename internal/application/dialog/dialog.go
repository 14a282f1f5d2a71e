// Package dialog models the lifecycle of a modal form.
package dialog

import (
	"context"
	"sync"
)

// State is the lifecycle state of a dialog
type State int

const (
	Closed State = iota
	Open
	Submitting
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	default:
		return "closed"
	}
}

// Dialog holds the open state and form data of one modal. Form data is reset
// to its initial value whenever the dialog closes.
type Dialog[T any] struct {
	mu      sync.Mutex
	initial T
	data    T
	state   State
	lastErr error
}

// New creates a closed dialog whose form resets to initial
func New[T any](initial T) *Dialog[T] {
	return &Dialog[T]{initial: initial, data: initial}
}

// Open shows the dialog with fresh form data
func (d *Dialog[T]) Open() {
	d.OpenWith(d.initial)
}

// OpenWith shows the dialog prefilled with data
func (d *Dialog[T]) OpenWith(data T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data = data
	d.state = Open
	d.lastErr = nil
}

// Close hides the dialog and resets the form. Ignored while submitting.
func (d *Dialog[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Submitting {
		return
	}
	d.state = Closed
	d.data = d.initial
	d.lastErr = nil
}

// Set replaces the form data of an open dialog
func (d *Dialog[T]) Set(data T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Open {
		d.data = data
	}
}

// Data returns the current form data
func (d *Dialog[T]) Data() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data
}

// State returns the lifecycle state
func (d *Dialog[T]) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// IsOpen reports whether the dialog is visible (open or submitting)
func (d *Dialog[T]) IsOpen() bool {
	return d.State() != Closed
}

// Err returns the error of the last failed submit, if the dialog is still open
func (d *Dialog[T]) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// HandleSubmit runs submit with the current form data. On success the dialog
// closes and its form resets; on failure it stays open with the data intact.
// Errors are not returned: whoever produced them has already reported them.
// It returns true when the submit succeeded.
func (d *Dialog[T]) HandleSubmit(ctx context.Context, submit func(ctx context.Context, data T) error) bool {
	d.mu.Lock()
	if d.state != Open {
		d.mu.Unlock()
		return false
	}
	d.state = Submitting
	data := d.data
	d.mu.Unlock()

	err := submit(ctx, data)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.state = Open
		d.lastErr = err
		return false
	}
	d.state = Closed
	d.data = d.initial
	d.lastErr = nil
	return true
}
