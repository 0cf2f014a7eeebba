// Package session binds tools to their own undo/redo history.
//
// A Session is one open tool widget. It owns exactly one
// history.History[string] holding the widget's text; nothing else reads or
// writes that history, and it is dropped when the session closes.
package session

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pralaynaskar/ToolView-sub001/internal/history"
	"github.com/pralaynaskar/ToolView-sub001/internal/tool"
)

// View is what a widget renders for its session.
type View struct {
	ID      uuid.UUID
	Tool    tool.Info
	Text    string
	CanUndo bool
	CanRedo bool
}

// Session is a single open tool.
type Session struct {
	id      uuid.UUID
	tool    *tool.Tool
	history *history.History[string]
	logger  zerolog.Logger
}

func newSession(t *tool.Tool, maxHistory int, logger zerolog.Logger) *Session {
	id := uuid.New()
	return &Session{
		id:      id,
		tool:    t,
		history: history.New("", history.WithMaxEntries[string](maxHistory)),
		logger: logger.With().
			Str("session", id.String()).
			Str("tool", t.Slug).
			Logger(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Tool returns the metadata of the tool this session runs.
func (s *Session) Tool() tool.Info {
	return s.tool.Info
}

// Text returns the current text.
func (s *Session) Text() string {
	return s.history.Present()
}

// Input records text typed by the user.
func (s *Session) Input(text string) {
	s.history.Set(text)
}

// Apply runs the tool on the current text and records the result.
// On error the history is left untouched.
func (s *Session) Apply() error {
	in := s.history.Present()
	out, err := s.tool.Apply(in)
	if err != nil {
		s.logger.Debug().Err(err).Msg("apply failed")
		return fmt.Errorf("%s: %w", s.tool.Slug, err)
	}
	s.history.Set(out)
	return nil
}

// Undo steps back one value. Does nothing when there is no past.
func (s *Session) Undo() {
	s.history.Undo()
}

// Redo reapplies the last undone value. Does nothing when there is no
// future.
func (s *Session) Redo() {
	s.history.Redo()
}

// Clear empties the text and forgets all history.
func (s *Session) Clear() {
	s.history.Reset("")
}

// Checkpoint marks the current position so Revert can return to it.
func (s *Session) Checkpoint() history.Checkpoint {
	return s.history.Checkpoint()
}

// Revert undoes back to cp.
func (s *Session) Revert(cp history.Checkpoint) {
	s.history.UndoTo(cp)
}

// View returns the render state of the session.
func (s *Session) View() View {
	snap := s.history.Snapshot()
	return View{
		ID:      s.id,
		Tool:    s.tool.Info,
		Text:    snap.Present,
		CanUndo: snap.CanUndo(),
		CanRedo: snap.CanRedo(),
	}
}

// Subscribe calls fn with the new view after every change.
func (s *Session) Subscribe(fn func(View)) (unsubscribe func()) {
	return s.history.Subscribe(func(snap history.Snapshot[string]) {
		fn(View{
			ID:      s.id,
			Tool:    s.tool.Info,
			Text:    snap.Present,
			CanUndo: snap.CanUndo(),
			CanRedo: snap.CanRedo(),
		})
	})
}
