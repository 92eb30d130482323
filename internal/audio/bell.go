package audio

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultBellInterval is how often the alarm rings while it is active.
const DefaultBellInterval = 600 * time.Millisecond

// BellPlayer plays the alarm as a repeating terminal bell. The ambient track
// has no terminal rendition and is silent.
type BellPlayer struct {
	ring     func()
	clock    clockwork.Clock
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

// NewBellPlayer creates a player that calls ring for every bell.
func NewBellPlayer(ring func(), clock clockwork.Clock, interval time.Duration) *BellPlayer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultBellInterval
	}
	return &BellPlayer{ring: ring, clock: clock, interval: interval}
}

// Start implements Player.
func (b *BellPlayer) Start(t Track) error {
	if t != TrackAlarm {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stop != nil {
		return nil
	}
	b.stop = make(chan struct{})
	b.ring()
	go b.loop(b.clock.NewTicker(b.interval), b.stop)
	return nil
}

func (b *BellPlayer) loop(t clockwork.Ticker, stop <-chan struct{}) {
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.Chan():
			select {
			case <-stop:
				return
			default:
			}
			b.ring()
		}
	}
}

// Stop implements Player.
func (b *BellPlayer) Stop(t Track) error {
	if t != TrackAlarm {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stop != nil {
		close(b.stop)
		b.stop = nil
	}
	return nil
}

// Click rings once, used as the button sound.
func (b *BellPlayer) Click() {
	b.ring()
}
