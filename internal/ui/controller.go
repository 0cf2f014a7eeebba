// Package ui is the terminal host for ToolView. It shows one tool at a
// time: the tool's text, a message line and a status line with undo/redo
// availability, theme, currency and the clock.
//
// Key bindings:
//
//	Ctrl+Z      undo
//	Ctrl+Y      redo
//	Ctrl+L      clear (forget history)
//	Ctrl+R      revert to the text before the last apply
//	Ctrl+U      clear the text (undoable)
//	Enter       apply the tool
//	Tab         next tool
//	Shift+Tab   previous tool
//	Ctrl+T      cycle colour theme
//	Esc, Ctrl+C quit
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
	"github.com/rs/zerolog"

	"github.com/pralaynaskar/ToolView-sub001/internal/history"
	"github.com/pralaynaskar/ToolView-sub001/internal/notify"
	"github.com/pralaynaskar/ToolView-sub001/internal/prefs"
	"github.com/pralaynaskar/ToolView-sub001/internal/session"
	"github.com/pralaynaskar/ToolView-sub001/internal/tool"
)

// DefaultTick is how often the status line clock is refreshed.
const DefaultTick = time.Second

const helpLine = "^Z undo  ^Y redo  ^R revert  ^L clear  Enter apply  Tab next tool  ^T theme  Esc quit"

// Controller runs the event loop and draws the current tool.
type Controller struct {
	screen   Screen
	sessions *session.Manager
	prefs    *prefs.Store
	logger   zerolog.Logger
	now      func() time.Time
	tick     time.Duration

	tools   []*tool.Tool
	index   int
	current *session.Session

	// applied marks the history position before the last successful apply.
	applied    history.Checkpoint
	hasApplied bool

	message string
	isError bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithClock replaces time.Now for the status line.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithTick sets the clock refresh interval. Zero disables refreshes.
func WithTick(d time.Duration) Option {
	return func(c *Controller) {
		c.tick = d
	}
}

// NewController creates a controller drawing to screen. Tools are taken
// from the session manager's registry.
func NewController(screen Screen, sessions *session.Manager, store *prefs.Store, opts ...Option) *Controller {
	c := &Controller{
		screen:   screen,
		sessions: sessions,
		prefs:    store,
		logger:   zerolog.Nop(),
		now:      time.Now,
		tick:     DefaultTick,
		tools:    sessions.Registry().All(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "ui").Logger()
	return c
}

// Select opens the tool with the given slug.
func (c *Controller) Select(slug string) error {
	for i, t := range c.tools {
		if t.Slug == slug {
			return c.open(i)
		}
	}
	return fmt.Errorf("%q: %w", slug, tool.ErrNotFound)
}

// Current returns the session of the tool on screen.
func (c *Controller) Current() *session.Session {
	return c.current
}

// Run draws the screen and handles events until the user quits or ctx is
// cancelled.
func (c *Controller) Run(ctx context.Context) error {
	if len(c.tools) == 0 {
		return fmt.Errorf("no tools: %w", tool.ErrNotFound)
	}
	if err := c.screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer c.screen.Fini()

	if c.current == nil {
		if err := c.open(c.index); err != nil {
			return err
		}
	}
	defer func() {
		if c.current != nil {
			_ = c.sessions.Close(c.current.ID())
			c.current = nil
		}
	}()

	sub := c.prefs.Subscribe(func(change notify.Change) {
		c.screen.PostEvent(Event{Type: EventInterrupt})
	})
	defer sub.Unsubscribe()

	done := make(chan struct{})
	defer close(done)
	go c.pump(ctx, done)

	c.logger.Debug().Str("tool", c.current.Tool().Slug).Msg("ui started")
	c.draw()
	for {
		if quit := c.handle(c.screen.PollEvent()); quit {
			c.logger.Debug().Msg("ui stopped")
			return nil
		}
		c.draw()
	}
}

// pump posts clock refreshes until done closes, and a quit event if ctx
// ends first.
func (c *Controller) pump(ctx context.Context, done <-chan struct{}) {
	var tickC <-chan time.Time
	if c.tick > 0 {
		t := time.NewTicker(c.tick)
		defer t.Stop()
		tickC = t.C
	}
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			c.screen.PostEvent(Event{Type: EventQuit})
			return
		case <-tickC:
			c.screen.PostEvent(Event{Type: EventInterrupt})
		}
	}
}

// open closes the current session and opens tool i with a fresh history.
func (c *Controller) open(i int) error {
	n := len(c.tools)
	i = ((i % n) + n) % n

	s, err := c.sessions.Open(c.tools[i].Slug)
	if err != nil {
		return err
	}
	if c.current != nil {
		_ = c.sessions.Close(c.current.ID())
	}
	c.index = i
	c.current = s
	c.hasApplied = false
	c.setMessage("", false)
	return nil
}

func (c *Controller) setMessage(msg string, isError bool) {
	c.message = msg
	c.isError = isError
}

// handle applies one event and reports whether the loop should stop.
func (c *Controller) handle(ev Event) bool {
	switch ev.Type {
	case EventQuit:
		return true
	case EventKey:
		return c.handleKey(ev)
	}
	return false
}

func (c *Controller) handleKey(ev Event) bool {
	s := c.current

	switch ev.Key {
	case KeyEscape, KeyCtrlC:
		return true

	case KeyCtrlZ:
		s.Undo()
		c.setMessage("", false)

	case KeyCtrlY:
		s.Redo()
		c.setMessage("", false)

	case KeyCtrlL:
		s.Clear()
		c.hasApplied = false
		c.setMessage("Cleared", false)

	case KeyCtrlR:
		if !c.hasApplied {
			c.setMessage("Nothing to revert", false)
			break
		}
		s.Revert(c.applied)
		c.hasApplied = false
		c.setMessage("Reverted "+s.Tool().Name, false)

	case KeyCtrlU:
		s.Input("")

	case KeyEnter:
		cp := s.Checkpoint()
		if err := s.Apply(); err != nil {
			c.setMessage(err.Error(), true)
		} else {
			c.applied, c.hasApplied = cp, true
			c.setMessage("Applied "+s.Tool().Name, false)
		}

	case KeyTab:
		step := 1
		if ev.Mod.Has(ModShift) {
			step = -1
		}
		c.switchTool(step)

	case KeyBacktab:
		c.switchTool(-1)

	case KeyCtrlT:
		next := c.prefs.Get().Theme.Next()
		if err := c.prefs.SetTheme(next); err != nil {
			c.logger.Warn().Err(err).Msg("saving theme")
			c.setMessage(err.Error(), true)
		} else {
			c.setMessage("Theme: "+string(next), false)
		}

	case KeyBackspace:
		s.Input(dropLastGrapheme(s.Text()))

	case KeyRune:
		s.Input(s.Text() + string(ev.Rune))
	}
	return false
}

func (c *Controller) switchTool(step int) {
	if err := c.open(c.index + step); err != nil {
		c.logger.Warn().Err(err).Msg("switching tool")
		c.setMessage(err.Error(), true)
	}
}

// dropLastGrapheme removes the last user-perceived character of s.
func dropLastGrapheme(s string) string {
	last := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		from, _ := g.Positions()
		last = from
	}
	return s[:last]
}

// draw renders the whole screen.
func (c *Controller) draw() {
	w, h := c.screen.Size()
	p := c.prefs.Get()
	pal := PaletteFor(p.Theme)
	view := c.current.View()

	c.screen.Clear()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c.screen.SetContent(x, y, ' ', nil, pal.Base)
		}
	}
	if h < 4 {
		if h > 0 {
			c.drawStatus(h-1, w, view, p, pal)
		}
		c.screen.HideCursor()
		c.screen.Show()
		return
	}

	title := fmt.Sprintf(" %s  (%d/%d)", view.Tool.Name, c.index+1, len(c.tools))
	drawString(c.screen, 0, 0, w, title, pal.Header)
	category := view.Tool.Category.String() + " "
	drawString(c.screen, w-uniseg.StringWidth(category), 0, w, category, pal.Dim)
	drawString(c.screen, 1, 1, w, view.Tool.Description, pal.Dim)

	// Text area between the header and the message line. Screens shorter
	// than six rows have none.
	top, bottom := 3, h-3
	rows := bottom - top + 1
	cx, cy := -1, -1
	if rows > 0 {
		lines := strings.Split(view.Text, "\n")
		if len(lines) > rows {
			lines = lines[len(lines)-rows:]
		}
		for i, line := range lines {
			cx = drawString(c.screen, 1, top+i, w, line, pal.Base)
			cy = top + i
		}
	}

	msgStyle := pal.Dim
	msg := helpLine
	if c.message != "" {
		msg = c.message
		if c.isError {
			msgStyle = pal.Error
		} else {
			msgStyle = pal.Base
		}
	}
	drawString(c.screen, 1, h-2, w, msg, msgStyle)
	c.drawStatus(h-1, w, view, p, pal)

	if cy < 0 {
		c.screen.HideCursor()
	} else {
		c.screen.ShowCursor(cx, cy)
	}
	c.screen.Show()
}

func (c *Controller) drawStatus(y, w int, view session.View, p prefs.Preferences, pal Palette) {
	for x := 0; x < w; x++ {
		c.screen.SetContent(x, y, ' ', nil, pal.Status)
	}
	left := fmt.Sprintf(" undo:%s redo:%s │ theme:%s │ %s %s",
		yesNo(view.CanUndo), yesNo(view.CanRedo), p.Theme, p.Currency, p.Currency.Symbol())
	right := p.FormatClock(c.now()) + " "
	drawString(c.screen, 0, y, w, left, pal.Status)
	drawString(c.screen, w-uniseg.StringWidth(right), y, w, right, pal.Status)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// drawString draws s from x up to maxX by grapheme cluster and returns the
// column after the last cell drawn.
func drawString(scr Screen, x, y, maxX int, s string, style tcell.Style) int {
	if x < 0 {
		x = 0
	}
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		runes := g.Runes()
		width := g.Width()
		if width == 0 {
			continue
		}
		if x+width > maxX {
			break
		}
		scr.SetContent(x, y, runes[0], runes[1:], style)
		x += width
	}
	return x
}
