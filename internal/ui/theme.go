package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/pralaynaskar/ToolView-sub001/internal/prefs"
)

// Palette holds the styles for each screen region.
type Palette struct {
	Base   tcell.Style
	Header tcell.Style
	Dim    tcell.Style
	Status tcell.Style
	Error  tcell.Style
}

// PaletteFor returns the palette for a theme. The system theme uses the
// terminal's own colours.
func PaletteFor(t prefs.Theme) Palette {
	switch t {
	case prefs.ThemeLight:
		base := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
		return Palette{
			Base:   base,
			Header: base.Foreground(tcell.ColorNavy).Bold(true),
			Dim:    base.Foreground(tcell.ColorGray),
			Status: tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy),
			Error:  base.Foreground(tcell.ColorMaroon),
		}
	case prefs.ThemeDark:
		base := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
		return Palette{
			Base:   base,
			Header: base.Foreground(tcell.ColorAqua).Bold(true),
			Dim:    base.Foreground(tcell.ColorGray),
			Status: tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorTeal),
			Error:  base.Foreground(tcell.ColorRed),
		}
	default:
		base := tcell.StyleDefault
		return Palette{
			Base:   base,
			Header: base.Bold(true),
			Dim:    base.Dim(true),
			Status: base.Reverse(true),
			Error:  base.Foreground(tcell.ColorRed),
		}
	}
}
