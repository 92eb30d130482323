package object

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/omw/internal/draw"
)

// Text is a line of text centred on a terminal column.
// Coordinates are 1-based terminal positions.
type Text struct {
	CenterX int
	Row     int
	Width   int    // Pads the line so a shorter value overwrites a longer one
	Style   string // ANSI prefix, may be empty
	Value   string // May already carry lipgloss styling
}

// Draw writes the text at its position.
func (t Text) Draw(ctx DrawContext) error {
	if t.Row < 1 {
		return nil
	}
	value := t.Value
	if t.Style != "" && value != "" {
		value = t.Style + value + draw.ColorReset
	}
	width := lipgloss.Width(value)
	if t.Width > width {
		value = lipgloss.PlaceHorizontal(t.Width, lipgloss.Center, value)
		width = t.Width
	}
	if value == "" {
		return nil
	}
	ctx.Writer.WriteAt(max(t.CenterX-width/2, 1), t.Row, value)
	return nil
}

// Update is a no-op for static text.
func (t Text) Update(ctx UpdateContext) (bool, error) {
	return false, nil
}
