// Package input turns the raw byte stream of a terminal into discrete key
// and mouse events.
package input

import (
	"io"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
)

// Key is a logical input of the game.
type Key int

const (
	KeyOther  Key = iota // Any byte without a binding (still counts as activity)
	KeyPress             // Space: press the button
	KeyStart             // Enter or S: start / play again
	KeyReset             // R
	KeyHelp              // H or ?
	KeyShare             // X: copy the share link
	KeyCard              // C: copy the card link
	KeyQuit              // Q or Ctrl-C
	KeyEscape            // Lone ESC
	KeyClick             // Left mouse button pressed; Col/Row set
)

// Event is one input event.
type Event struct {
	Key Key
	Col int // 1-based terminal column, KeyClick only
	Row int // 1-based terminal row, KeyClick only
	At  time.Time
}

// maxPending caps an unterminated escape sequence kept across reads.
const maxPending = 32

// Parser converts bytes to events. Escape sequences split across reads are
// carried over to the next Feed.
type Parser struct {
	pending []byte
}

// Feed parses p and returns the events it completes. at is stamped on each.
func (p *Parser) Feed(b []byte, at time.Time) []Event {
	buf := append(p.pending, b...)
	p.pending = nil

	var events []Event
	for i := 0; i < len(buf); i++ {
		c := buf[i]
		if c != '\x1b' {
			events = append(events, Event{Key: keyFor(c), At: at})
			continue
		}

		// Lone ESC at the end of a read is the Escape key.
		if i+1 >= len(buf) {
			events = append(events, Event{Key: KeyEscape, At: at})
			continue
		}
		if buf[i+1] != '[' {
			events = append(events, Event{Key: KeyEscape, At: at})
			continue
		}

		end := csiEnd(buf, i+2)
		if end < 0 {
			if len(buf)-i <= maxPending {
				p.pending = append([]byte(nil), buf[i:]...)
			}
			break
		}
		if ev, ok := parseCSI(buf[i+2:end+1], at); ok {
			events = append(events, ev)
		}
		i = end
	}
	return events
}

// csiEnd returns the index of the final byte of a CSI sequence whose
// parameters start at from, or -1 if the sequence is incomplete.
func csiEnd(buf []byte, from int) int {
	for j := from; j < len(buf); j++ {
		if buf[j] >= 0x40 && buf[j] <= 0x7e {
			return j
		}
	}
	return -1
}

// parseCSI interprets the body of a CSI sequence (after "ESC ["). Only SGR
// mouse presses of the left button produce an event; arrows and releases are
// dropped.
func parseCSI(body []byte, at time.Time) (Event, bool) {
	if len(body) < 2 || body[0] != '<' {
		return Event{}, false
	}
	final := body[len(body)-1]
	if final != 'M' {
		return Event{}, false
	}
	fields := splitParams(body[1 : len(body)-1])
	if len(fields) != 3 {
		return Event{}, false
	}
	button, err1 := strconv.Atoi(fields[0])
	col, err2 := strconv.Atoi(fields[1])
	row, err3 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return Event{}, false
	}
	// Low two bits select the button; 0 is left. Motion and wheel set higher bits.
	if button&0b11 != 0 || button >= 32 {
		return Event{}, false
	}
	return Event{Key: KeyClick, Col: col, Row: row, At: at}, true
}

func splitParams(b []byte) []string {
	var fields []string
	start := 0
	for i, c := range b {
		if c == ';' {
			fields = append(fields, string(b[start:i]))
			start = i + 1
		}
	}
	return append(fields, string(b[start:]))
}

// keyFor maps a single byte to its binding.
func keyFor(b byte) Key {
	switch b {
	case ' ':
		return KeyPress
	case '\r', '\n', 's', 'S':
		return KeyStart
	case 'r', 'R':
		return KeyReset
	case 'h', 'H', '?':
		return KeyHelp
	case 'x', 'X':
		return KeyShare
	case 'c', 'C':
		return KeyCard
	case 'q', 'Q', 0x03:
		return KeyQuit
	default:
		return KeyOther
	}
}

// Stream delivers input events via a channel.
type Stream struct {
	ch chan Event
}

// StartStream spawns a goroutine that reads from r and sends events to the
// stream. Events are stamped with clock when their bytes arrive. The channel
// is closed when r returns an error (e.g. disconnect).
func StartStream(r io.Reader, clock clockwork.Clock) *Stream {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Stream{ch: make(chan Event, 128)}
	go func() {
		var p Parser
		buf := make([]byte, 256)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				for _, ev := range p.Feed(buf[:n], clock.Now()) {
					s.ch <- ev
				}
			}
			if err != nil {
				close(s.ch)
				return
			}
		}
	}()
	return s
}

// Events returns the receive side of the stream.
func (s *Stream) Events() <-chan Event {
	return s.ch
}
