package share

import (
	"fmt"
	"io"

	"github.com/aymanbagabas/go-osc52/v2"
)

// Clipboard copies text to the clipboard of the terminal attached to w
// using the OSC 52 escape sequence.
type Clipboard struct {
	w    io.Writer
	tmux bool
}

// NewClipboard creates a clipboard for the terminal behind w. When tmux is
// true the sequence is wrapped so tmux passes it through.
func NewClipboard(w io.Writer, tmux bool) *Clipboard {
	return &Clipboard{w: w, tmux: tmux}
}

// Copy writes the copy sequence for text.
func (c *Clipboard) Copy(text string) error {
	seq := osc52.New(text)
	if c.tmux {
		seq = seq.Tmux()
	}
	if _, err := seq.WriteTo(c.w); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
