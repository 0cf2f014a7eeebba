// Package history provides a generic linear undo/redo container for a
// single piece of state.
//
// A History holds the present value together with the values that preceded
// it (past) and the values that were undone and can be reapplied (future):
//
//	h := history.New("a")
//	h.Set("b")  // past [a], present b
//	h.Set("c")  // past [a b], present c
//	h.Undo()    // past [a], present b, future [c]
//	h.Set("d")  // past [a b], present d, future cleared
//
// # Writes
//
// Set is equality-gated: writing a value equal to the present value is a
// no-op and observers are not notified. Any write that does change the
// present value clears the future, so history never branches. Reset
// discards all history unconditionally.
//
// # Equality
//
// New uses Go's == on comparable types. NewFunc takes an explicit equality
// function for structured values, where the caller decides between
// identity, shallow and deep comparison.
//
// # Observation
//
// Subscribe registers a callback that runs once after every change that
// actually moves the state. Callbacks receive an independent Snapshot and
// run outside the history lock, so they may call back into the History.
//
// None of the operations fail. Undo with an empty past and Redo with an
// empty future are defined no-ops.
package history
