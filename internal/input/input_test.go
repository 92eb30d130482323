package input

import (
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(events []Event) []Key {
	out := make([]Key, len(events))
	for i, ev := range events {
		out[i] = ev.Key
	}
	return out
}

func TestFeed_SingleKeys(t *testing.T) {
	var p Parser
	at := time.Unix(100, 0)
	events := p.Feed([]byte(" \rsrh?xcqZ\x03"), at)
	assert.Equal(t, []Key{
		KeyPress, KeyStart, KeyStart, KeyReset, KeyHelp, KeyHelp,
		KeyShare, KeyCard, KeyQuit, KeyOther, KeyQuit,
	}, keys(events))
	assert.Equal(t, at, events[0].At)
}

func TestFeed_MouseClick(t *testing.T) {
	var p Parser
	events := p.Feed([]byte("\x1b[<0;61;25M\x1b[<0;61;25m"), time.Now())
	require.Len(t, events, 1)
	assert.Equal(t, Event{Key: KeyClick, Col: 61, Row: 25, At: events[0].At}, events[0])
}

func TestFeed_IgnoresOtherButtonsAndArrows(t *testing.T) {
	var p Parser
	events := p.Feed([]byte("\x1b[<2;1;1M\x1b[<64;1;1M\x1b[A\x1b[B"), time.Now())
	assert.Empty(t, events)
}

func TestFeed_SplitSequence(t *testing.T) {
	var p Parser
	assert.Empty(t, p.Feed([]byte("\x1b[<0;1"), time.Now()))
	events := p.Feed([]byte("2;7M "), time.Now())
	require.Len(t, events, 2)
	assert.Equal(t, KeyClick, events[0].Key)
	assert.Equal(t, 12, events[0].Col)
	assert.Equal(t, 7, events[0].Row)
	assert.Equal(t, KeyPress, events[1].Key)
}

func TestFeed_LoneEscape(t *testing.T) {
	var p Parser
	assert.Equal(t, []Key{KeyEscape}, keys(p.Feed([]byte("\x1b"), time.Now())))
	assert.Equal(t, []Key{KeyEscape, KeyQuit}, keys(p.Feed([]byte("\x1bq"), time.Now())))
}

func TestStartStream_ClosesOnEOF(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := StartStream(strings.NewReader(" q"), clock)
	var got []Key
	for ev := range s.Events() {
		got = append(got, ev.Key)
		assert.Equal(t, clock.Now(), ev.At, "events are stamped with the stream clock")
	}
	assert.Equal(t, []Key{KeyPress, KeyQuit}, got)
}
