package game

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestStopwatch_ReadIndependentOfTicks(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sw := NewStopwatch(clock, time.Hour)
	sw.Start(clock.Now(), func(uint64) {})

	clock.Advance(123 * time.Millisecond)
	assert.Equal(t, 123*time.Millisecond, sw.Read())
}

func TestStopwatch_ReadAtMeasuresFromZero(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sw := NewStopwatch(clock, time.Hour)
	zero := clock.Now()
	sw.Start(zero, func(uint64) {})
	defer sw.Stop()

	assert.Equal(t, 75*time.Millisecond, sw.ReadAt(zero.Add(75*time.Millisecond)))
	assert.Negative(t, sw.ReadAt(zero.Add(-time.Millisecond)))
}

func TestStopwatch_StopFreezesAndIsIdempotent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sw := NewStopwatch(clock, 0)
	gen := sw.Start(clock.Now(), nil)
	assert.True(t, sw.Live(gen))

	clock.Advance(50 * time.Millisecond)
	sw.Stop()
	sw.Stop()
	assert.False(t, sw.Running())
	assert.False(t, sw.Live(gen))

	clock.Advance(time.Second)
	assert.Equal(t, 50*time.Millisecond, sw.Read())

	sw.Reset()
	assert.Equal(t, time.Duration(0), sw.Read())
}

func TestStopwatch_RestartInvalidatesOldGeneration(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sw := NewStopwatch(clock, 0)
	first := sw.Start(clock.Now(), nil)
	second := sw.Start(clock.Now(), nil)
	assert.False(t, sw.Live(first))
	assert.True(t, sw.Live(second))
}
