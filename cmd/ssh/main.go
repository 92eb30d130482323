package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"

	"github.com/tomz197/omw/internal/config"
	"github.com/tomz197/omw/internal/draw"
	"github.com/tomz197/omw/internal/hub"
	"github.com/tomz197/omw/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	config.SetupLogging(cfg.LogLevel, os.Stderr)

	workingDir, workErr := os.Getwd()
	if workErr != nil {
		log.Warn().Err(workErr).Msg("failed to get working directory")
	}
	log.Info().
		Str("host", cfg.SSH.Host).
		Str("port", cfg.SSH.Port).
		Str("host_key", cfg.SSH.HostKeyPath).
		Str("working_dir", workingDir).
		Msg("ssh config")

	// Shared hub for every SSH session
	ctx, cancelHub := context.WithCancel(context.Background())
	h := hub.NewServer(hub.WithLogger(log.Logger))
	go h.Run(ctx)

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(cfg.SSH.Host, cfg.SSH.Port)),
		wish.WithMiddleware(
			gameMiddleware(h, cfg),
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// Set TCP_NODELAY so key presses are not delayed by Nagle's algorithm
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if cfg.SSH.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(cfg.SSH.HostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Str("addr", net.JoinHostPort(cfg.SSH.Host, cfg.SSH.Port)).Msg("starting SSH server")
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-done
	log.Info().Msg("shutting down server")

	// Notify players and wait for them to disconnect
	h.Shutdown(15 * time.Second)
	cancelHub()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("shutdown error")
	}
}

// gameMiddleware handles SSH sessions and runs one game session each.
func gameMiddleware(h hub.Hub, cfg config.Config) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}

			logger := log.With().Str("user", sess.User()).Logger()
			logger.Info().
				Str("terminal", pty.Term).
				Int("width", pty.Window.Width).
				Int("height", pty.Window.Height).
				Msg("new game session")

			sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
			go func() {
				for win := range winCh {
					sizeTracker.update(win.Width, win.Height)
				}
			}()

			c := session.NewClient(h, sess, sess, session.Options{
				TermSizeFunc: sizeTracker.getSize,
				Username:     sess.User(),
				Config:       cfg,
				Logger:       logger,
				ColorProfile: termenv.ANSI256,
			})
			if err := c.Run(); err != nil {
				logger.Error().Err(err).Msg("game error")
			}

			logger.Info().Msg("session ended")
			next(sess)
		}
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
