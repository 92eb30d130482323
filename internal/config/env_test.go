package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "2222", cfg.SSH.Port)
	assert.Equal(t, 3*time.Second, cfg.Game.DelayMin)
	assert.Equal(t, 5*time.Second, cfg.Game.DelayWindow)
	assert.Equal(t, 250*time.Millisecond, cfg.Game.LightningBelow)
	assert.Equal(t, 400*time.Millisecond, cfg.Game.QuickBelow)
	assert.Equal(t, 10*time.Millisecond, cfg.Game.TickInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.Game.ResultDelay)
	assert.Equal(t, []string{"OnMyWay", "OMW", "Solana", "ReactionTest"}, cfg.Brand.Hashtags)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SSH_PORT", "2300")
	t.Setenv("GAME_DELAY_MIN", "1s")
	t.Setenv("GAME_QUICK_BELOW", "500ms")
	t.Setenv("BRAND_HANDLE", "@someone")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "2300", cfg.SSH.Port)
	assert.Equal(t, time.Second, cfg.Game.DelayRange().Min)
	assert.Equal(t, 500*time.Millisecond, cfg.Game.Tiers().QuickBelow)
	assert.Equal(t, "@someone", cfg.Brand.Share().Handle)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	t.Setenv("GAME_LIGHTNING_BELOW", "500ms")
	t.Setenv("GAME_QUICK_BELOW", "400ms")

	_, err := Load()
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.LogLevel = "loud"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}

func TestValidate_DelayMin(t *testing.T) {
	cfg := Default()
	cfg.Game.DelayMin = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}
