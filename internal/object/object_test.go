package object

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/omw/internal/draw"
)

func TestButton_Hit(t *testing.T) {
	b := NewButton(60, 48, 22)
	assert.True(t, b.Hit(60, 48))
	assert.True(t, b.Hit(60+23, 48), "cell quantisation margin")
	assert.False(t, b.Hit(60+30, 48))
}

func TestButton_PressAnimationExpires(t *testing.T) {
	b := NewButton(0, 0, 10)
	b.Press()
	assert.True(t, b.Pressed())

	remove, err := b.Update(UpdateContext{Delta: 200 * time.Millisecond})
	require.NoError(t, err)
	assert.False(t, remove)
	assert.False(t, b.Pressed())
}

func TestButton_AlertLookIsRed(t *testing.T) {
	canvas := draw.NewCanvas(40, 20)
	b := NewButton(20, 20, 8)
	b.Look = ButtonAlert
	require.NoError(t, b.Draw(DrawContext{Canvas: canvas}))

	var out bytes.Buffer
	canvas.Render(&out)
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte(draw.ColorRed)))
	assert.Contains(t, out.String(), "\033[11;21H█", "filled centre")
}

func TestScene_BurstParticlesExpire(t *testing.T) {
	var s Scene
	s.Add(NewButton(50, 50, 10))
	SpawnBurst(50, 50, 10, 12, 30, 0.5, &s)
	assert.Len(t, s.Objects, 1, "spawned objects wait for the update pass")

	require.NoError(t, s.Update(10*time.Millisecond))
	assert.Len(t, s.Objects, 13)

	require.NoError(t, s.Update(time.Second))
	require.NoError(t, s.Update(10*time.Millisecond))
	assert.Len(t, s.Objects, 1, "only the button survives")
	_, ok := s.Objects[0].(*Button)
	assert.True(t, ok)
}

func TestScene_Clear(t *testing.T) {
	var s Scene
	s.Add(NewButton(0, 0, 1))
	s.Spawn(NewParticle(0, 0, 0, 0, 1))
	s.Clear()
	require.NoError(t, s.Update(time.Millisecond))
	assert.Empty(t, s.Objects)
}

func TestText_DrawCentered(t *testing.T) {
	var out bytes.Buffer
	cw := draw.NewChunkWriter(&out, 0, 0)
	txt := Text{CenterX: 10, Row: 2, Value: "READY"}
	require.NoError(t, txt.Draw(DrawContext{Writer: cw}))
	require.NoError(t, cw.Flush())
	assert.Equal(t, "\033[2;8HREADY", out.String())
}

func TestText_PadsToWidth(t *testing.T) {
	var out bytes.Buffer
	cw := draw.NewChunkWriter(&out, 0, 0)
	txt := Text{CenterX: 10, Row: 3, Width: 8, Value: "GO"}
	require.NoError(t, txt.Draw(DrawContext{Writer: cw}))

	// An empty value still clears the padded area.
	txt.Value = ""
	require.NoError(t, txt.Draw(DrawContext{Writer: cw}))
	require.NoError(t, cw.Flush())
	assert.Equal(t, "\033[3;6H   GO   \033[3;6H        ", out.String())
}
