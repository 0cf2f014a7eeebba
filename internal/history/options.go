package history

// Option configures a History.
type Option[T any] func(*History[T])

// WithMaxEntries caps the number of past values kept for undo.
// When the cap is exceeded the oldest values are dropped.
// Zero or a negative value means unlimited, which is the default.
func WithMaxEntries[T any](n int) Option[T] {
	return func(h *History[T]) {
		if n < 0 {
			n = 0
		}
		h.maxEntries = n
	}
}

// WithObserver registers an observer at construction time.
func WithObserver[T any](fn Observer[T]) Option[T] {
	return func(h *History[T]) {
		if fn == nil {
			return
		}
		id := h.nextID
		h.nextID++
		h.observers[id] = fn
	}
}
