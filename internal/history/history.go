package history

import (
	"sort"
	"sync"
)

// Snapshot is a point-in-time copy of a History.
// Past is ordered oldest first; Future is ordered with the next redo
// target first.
type Snapshot[T any] struct {
	Past    []T
	Present T
	Future  []T
}

// CanUndo reports whether the snapshot has a past value to return to.
func (s Snapshot[T]) CanUndo() bool {
	return len(s.Past) > 0
}

// CanRedo reports whether the snapshot has an undone value to reapply.
func (s Snapshot[T]) CanRedo() bool {
	return len(s.Future) > 0
}

// Observer is called after the history state changes.
type Observer[T any] func(Snapshot[T])

// History manages undo/redo state for a single value.
type History[T any] struct {
	mu sync.Mutex

	past    []T
	present T
	// redo holds undone values as a stack: the last element is the next
	// redo target. Snapshot reverses it.
	redo []T

	equal      func(a, b T) bool
	maxEntries int

	observers map[uint64]Observer[T]
	nextID    uint64
}

// New creates a history seeded with initial, comparing values with ==.
func New[T comparable](initial T, opts ...Option[T]) *History[T] {
	return NewFunc(initial, func(a, b T) bool { return a == b }, opts...)
}

// NewFunc creates a history seeded with initial that uses equal to decide
// whether a Set is a no-op. A nil equal treats every value as different.
func NewFunc[T any](initial T, equal func(a, b T) bool, opts ...Option[T]) *History[T] {
	if equal == nil {
		equal = func(T, T) bool { return false }
	}
	h := &History[T]{
		present:   initial,
		equal:     equal,
		observers: make(map[uint64]Observer[T]),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Set makes v the present value.
// If v equals the present value nothing happens. Otherwise the old present
// value moves to the end of the past and the future is cleared.
func (h *History[T]) Set(v T) {
	h.mu.Lock()
	if h.equal(h.present, v) {
		h.mu.Unlock()
		return
	}

	h.past = append(h.past, h.present)
	h.present = v
	h.redo = nil
	h.trimLocked()

	h.commitLocked()
}

// Undo steps back one value. It does nothing when there is no past.
func (h *History[T]) Undo() {
	h.mu.Lock()
	if len(h.past) == 0 {
		h.mu.Unlock()
		return
	}

	last := len(h.past) - 1
	prev := h.past[last]
	var zero T
	h.past[last] = zero
	h.past = h.past[:last]

	h.redo = append(h.redo, h.present)
	h.present = prev

	h.commitLocked()
}

// Redo reapplies the most recently undone value. It does nothing when
// there is no future.
func (h *History[T]) Redo() {
	h.mu.Lock()
	if len(h.redo) == 0 {
		h.mu.Unlock()
		return
	}

	last := len(h.redo) - 1
	next := h.redo[last]
	var zero T
	h.redo[last] = zero
	h.redo = h.redo[:last]

	h.past = append(h.past, h.present)
	h.present = next
	h.trimLocked()

	h.commitLocked()
}

// Reset discards all history and makes v the present value.
// Unlike Set it always applies, even when v equals the present value.
func (h *History[T]) Reset(v T) {
	h.mu.Lock()
	h.past = nil
	h.redo = nil
	h.present = v

	h.commitLocked()
}

// Present returns the current value.
func (h *History[T]) Present() T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.present
}

// CanUndo returns true if undo is available.
func (h *History[T]) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.past) > 0
}

// CanRedo returns true if redo is available.
func (h *History[T]) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// UndoCount returns the number of values in the past.
func (h *History[T]) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.past)
}

// RedoCount returns the number of values in the future.
func (h *History[T]) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo)
}

// Snapshot returns a copy of the current state.
func (h *History[T]) Snapshot() Snapshot[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

// MaxEntries returns the cap on past values, or 0 when unlimited.
func (h *History[T]) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}

// Subscribe registers fn to be called after every state change.
// The returned function removes the subscription and is safe to call more
// than once.
func (h *History[T]) Subscribe(fn Observer[T]) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.observers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.observers, id)
			h.mu.Unlock()
		})
	}
}

// snapshotLocked copies the state. Slices are never nil.
func (h *History[T]) snapshotLocked() Snapshot[T] {
	past := make([]T, len(h.past))
	copy(past, h.past)

	future := make([]T, len(h.redo))
	for i, v := range h.redo {
		future[len(h.redo)-1-i] = v
	}

	return Snapshot[T]{
		Past:    past,
		Present: h.present,
		Future:  future,
	}
}

// trimLocked drops the oldest past values beyond maxEntries.
func (h *History[T]) trimLocked() {
	if h.maxEntries <= 0 || len(h.past) <= h.maxEntries {
		return
	}
	excess := len(h.past) - h.maxEntries
	h.past = append(h.past[:0:0], h.past[excess:]...)
}

// commitLocked releases the lock and notifies observers of the new state
// in subscription order. Must be called with h.mu held.
func (h *History[T]) commitLocked() {
	if len(h.observers) == 0 {
		h.mu.Unlock()
		return
	}

	snap := h.snapshotLocked()
	ids := make([]uint64, 0, len(h.observers))
	for id := range h.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	observers := make([]Observer[T], len(ids))
	for i, id := range ids {
		observers[i] = h.observers[id]
	}
	h.mu.Unlock()

	for _, obs := range observers {
		obs(snap)
	}
}
