package history

// Checkpoint represents a point in history that can be returned to.
type Checkpoint struct {
	depth int
}

// Depth returns the number of past values recorded at the checkpoint.
func (c Checkpoint) Depth() int {
	return c.depth
}

// Checkpoint records the current history position.
func (h *History[T]) Checkpoint() Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Checkpoint{depth: len(h.past)}
}

// UndoTo undoes every value set since the checkpoint.
// It stops early if the past has been trimmed or reset below the
// checkpoint depth.
func (h *History[T]) UndoTo(cp Checkpoint) {
	for {
		h.mu.Lock()
		n := len(h.past)
		h.mu.Unlock()
		if n <= cp.depth {
			return
		}
		h.Undo()
	}
}

// RedoTo redoes values until the past reaches the checkpoint depth or the
// future runs out.
func (h *History[T]) RedoTo(cp Checkpoint) {
	for {
		h.mu.Lock()
		n, r := len(h.past), len(h.redo)
		h.mu.Unlock()
		if n >= cp.depth || r == 0 {
			return
		}
		h.Redo()
	}
}
