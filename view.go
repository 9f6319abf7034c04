package skillsprint

import (
	"context"
	"sync"
)

// View holds UI bound state for a screen. Results that arrive after the
// screen was unmounted, or from a failed call, never touch the state.
type View[T any] struct {
	mu       sync.Mutex
	state    T
	mounted  bool
	inFlight int
}

func NewView[T any](initial T) *View[T] {
	return &View[T]{state: initial, mounted: true}
}

func (v *View[T]) Mount() {
	v.mu.Lock()
	v.mounted = true
	v.mu.Unlock()
}

func (v *View[T]) Unmount() {
	v.mu.Lock()
	v.mounted = false
	v.mu.Unlock()
}

func (v *View[T]) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}

// State returns the current value
func (v *View[T]) State() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Loading reports whether a Load is in flight
func (v *View[T]) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.inFlight > 0
}

// Set replaces the state if the view is still mounted
func (v *View[T]) Set(value T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return false
	}
	v.state = value
	return true
}

// Load runs fetch and applies its result on success. The error is returned
// unchanged so the caller can add its own message.
func (v *View[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) error {
	v.mu.Lock()
	v.inFlight++
	v.mu.Unlock()

	value, err := fetch(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.inFlight--

	if err != nil {
		return err
	}
	if !v.mounted || ctx.Err() != nil {
		return nil
	}
	v.state = value
	return nil
}
