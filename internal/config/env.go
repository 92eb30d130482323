// Package config provides shared configuration for the game commands.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/tomz197/omw/internal/game"
	"github.com/tomz197/omw/internal/share"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is read from the environment. Every field has a default so the
// commands run without any setup.
type Config struct {
	SSH   SSHConfig   `envPrefix:"SSH_"`
	Web   WebConfig   `envPrefix:"WEB_"`
	Game  GameConfig  `envPrefix:"GAME_"`
	Brand BrandConfig `envPrefix:"BRAND_"`

	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
}

// SSHConfig configures cmd/ssh.
type SSHConfig struct {
	Host        string `env:"HOST" envDefault:"::"`
	Port        string `env:"PORT" envDefault:"2222"`
	HostKeyPath string `env:"HOST_KEY" envDefault:"/app/keys/host_key"`
	DisplayHost string `env:"DISPLAY_HOST" envDefault:"your-server.com"`
}

// WebConfig configures cmd/web.
type WebConfig struct {
	Host           string   `env:"HOST" envDefault:"0.0.0.0"`
	Port           string   `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// GameConfig holds the product constants of a trial.
type GameConfig struct {
	DelayMin       time.Duration `env:"DELAY_MIN" envDefault:"3s"`
	DelayWindow    time.Duration `env:"DELAY_WINDOW" envDefault:"5s"`
	LightningBelow time.Duration `env:"LIGHTNING_BELOW" envDefault:"250ms"`
	QuickBelow     time.Duration `env:"QUICK_BELOW" envDefault:"400ms"`
	TickInterval   time.Duration `env:"TICK_INTERVAL" envDefault:"10ms"`
	ResultDelay    time.Duration `env:"RESULT_DELAY" envDefault:"1500ms"`
}

// BrandConfig holds the promotional copy.
type BrandConfig struct {
	Title           string   `env:"TITLE" envDefault:"I'm On My Way ($OMW)"`
	Subtitle        string   `env:"SUBTITLE" envDefault:"in Solana"`
	Ticker          string   `env:"TICKER" envDefault:"$OMW"`
	Handle          string   `env:"HANDLE" envDefault:"@omwsolana"`
	ContractAddress string   `env:"CONTRACT_ADDRESS" envDefault:"CCk7zxbYt3zMLybZ2Civw6r4H9ZSiLts3HNmLcdvbonk"`
	Hashtags        []string `env:"HASHTAGS" envSeparator:"," envDefault:"OnMyWay,OMW,Solana,ReactionTest"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the game cannot run with.
func (c Config) Validate() error {
	if err := c.Game.DelayRange().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Game.Tiers().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Game.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive", ErrInvalid)
	}
	if c.Game.ResultDelay < 0 {
		return fmt.Errorf("%w: result delay must not be negative", ErrInvalid)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("%w: log level: %v", ErrInvalid, err)
	}
	return nil
}

// DelayRange returns the alert delay range.
func (g GameConfig) DelayRange() game.DelayRange {
	return game.DelayRange{Min: g.DelayMin, Window: g.DelayWindow}
}

// Tiers returns the category boundaries.
func (g GameConfig) Tiers() game.Tiers {
	return game.Tiers{LightningBelow: g.LightningBelow, QuickBelow: g.QuickBelow}
}

// Share converts the brand settings for the share package.
func (b BrandConfig) Share() share.Brand {
	return share.Brand{
		Title:           b.Title,
		Subtitle:        b.Subtitle,
		Ticker:          b.Ticker,
		Handle:          b.Handle,
		ContractAddress: b.ContractAddress,
		Hashtags:        b.Hashtags,
	}
}

// Default returns the configuration used when the environment is empty.
func Default() Config {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: map[string]string{}})
	if err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}
