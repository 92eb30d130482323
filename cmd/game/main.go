package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tomz197/omw/internal/config"
	"github.com/tomz197/omw/internal/hub"
	"github.com/tomz197/omw/internal/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		minDelay    time.Duration
		delayWindow time.Duration
		logLevel    string
		logFile     string
	)

	cmd := &cobra.Command{
		Use:          "omw",
		Short:        "Test your reaction time in the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env file is fine for local play.
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("min-delay") {
				cfg.Game.DelayMin = minDelay
			}
			if cmd.Flags().Changed("delay-window") {
				cfg.Game.DelayWindow = delayWindow
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// The game owns the terminal, so logs only go to a file when asked.
			var logOut io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				logOut = f
			}
			config.SetupLogging(cfg.LogLevel, logOut)

			return play(cfg)
		},
	}

	cmd.Flags().DurationVar(&minDelay, "min-delay", 3*time.Second, "shortest wait before the alert")
	cmd.Flags().DurationVar(&delayWindow, "delay-window", 5*time.Second, "random extra wait added to --min-delay")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
	return cmd
}

// play runs a single local session on the controlling terminal.
func play(cfg config.Config) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := hub.NewServer(hub.WithLogger(log.Logger))
	go h.Run(ctx)

	c := session.NewClient(h, os.Stdin, os.Stdout, session.Options{
		Username:     os.Getenv("USER"),
		Config:       cfg,
		Logger:       log.Logger,
		Tmux:         os.Getenv("TMUX") != "",
		ColorProfile: termenv.EnvColorProfile(),
	})
	if err := c.Run(); err != nil {
		log.Error().Err(err).Msg("game error")
		return err
	}
	return nil
}
