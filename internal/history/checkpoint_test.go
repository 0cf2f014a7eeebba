package history

import "testing"

func TestCheckpoint(t *testing.T) {
	h := New("a")
	h.Set("b")
	cp := h.Checkpoint()
	if cp.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", cp.Depth())
	}

	h.Set("c")
	h.Set("d")
	h.Set("e")

	h.UndoTo(cp)
	assertSnapshot(t, h, snap([]string{"a"}, "b", []string{"c", "d", "e"}))

	h.RedoTo(Checkpoint{depth: 3})
	assertSnapshot(t, h, snap([]string{"a", "b", "c"}, "d", []string{"e"}))
}

func TestUndoToAfterReset(t *testing.T) {
	h := New("a")
	h.Set("b")
	h.Set("c")
	cp := h.Checkpoint()

	h.Reset("z")
	h.UndoTo(cp)

	assertSnapshot(t, h, snap(nil, "z", nil))
}

func TestRedoToStopsWhenFutureEmpty(t *testing.T) {
	h := New("a")
	h.Set("b")
	h.Undo()

	h.RedoTo(Checkpoint{depth: 10})

	assertSnapshot(t, h, snap([]string{"a"}, "b", nil))
}
