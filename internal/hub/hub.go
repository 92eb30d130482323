// Package hub is the registry shared by every session of a server process.
// It tracks who is connected, aggregates trial counters and broadcasts
// server events such as shutdown.
package hub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/tomz197/omw/internal/game"
)

// Hub is the interface sessions use to talk to the registry.
type Hub interface {
	Register(name string) *Handle
	Unregister(id string)
	Report(id string, out game.Outcome)
	Stats() *Stats
}

// EventType identifies the type of session event.
type EventType int

const (
	EventShutdown EventType = iota
)

// Event is sent from the hub to a session.
type Event struct {
	Type EventType
}

// Handle represents a session's registration.
type Handle struct {
	ID     string
	Name   string
	Events chan Event // Closed when the session is unregistered
}

// Stats are counters since the process started. They are kept in memory only.
type Stats struct {
	Online  int
	Trials  uint64        // Resolved trials
	Valid   uint64        // Resolved with a valid press
	TooSoon uint64        // Resolved with an early press
	Best    time.Duration // Fastest valid latency, zero when none
}

type report struct {
	id  string
	out game.Outcome
}

// Server is the in-process Hub. Run must be running for registrations and
// reports to be processed.
type Server struct {
	clock clockwork.Clock
	log   zerolog.Logger

	stats        atomic.Pointer[Stats]
	sessions     map[string]*Handle
	registerCh   chan *Handle
	unregisterCh chan string
	reportCh     chan report
	done         chan struct{} // Closed when Run returns
	mu           sync.RWMutex

	counters Stats // Owned by Run
}

// Compile-time check that Server implements Hub.
var _ Hub = (*Server)(nil)

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock used by Shutdown.
func WithClock(c clockwork.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer creates a hub.
func NewServer(opts ...Option) *Server {
	s := &Server{
		clock:        clockwork.NewRealClock(),
		log:          zerolog.Nop(),
		sessions:     make(map[string]*Handle),
		registerCh:   make(chan *Handle, 16),
		unregisterCh: make(chan string, 16),
		reportCh:     make(chan report, 256),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stats.Store(&Stats{})
	return s
}

// Run processes registrations and reports. Blocks until the context is
// cancelled. Run must be called once.
func (s *Server) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case h := <-s.registerCh:
			s.mu.Lock()
			s.sessions[h.ID] = h
			s.counters.Online = len(s.sessions)
			s.mu.Unlock()
			s.log.Info().Str("session", h.ID).Str("name", h.Name).Msg("session registered")
		case id := <-s.unregisterCh:
			s.mu.Lock()
			if h, ok := s.sessions[id]; ok {
				close(h.Events)
				delete(s.sessions, id)
			}
			s.counters.Online = len(s.sessions)
			s.mu.Unlock()
			s.log.Info().Str("session", id).Msg("session unregistered")
		case r := <-s.reportCh:
			s.record(r)
		}
		s.publish()
	}
}

func (s *Server) record(r report) {
	switch r.out.Kind {
	case game.OutcomeTooSoon:
		s.counters.Trials++
		s.counters.TooSoon++
	case game.OutcomeValid:
		s.counters.Trials++
		s.counters.Valid++
		if s.counters.Best == 0 || r.out.Latency < s.counters.Best {
			s.counters.Best = r.out.Latency
			s.log.Info().Str("session", r.id).Int64("latency_ms", r.out.LatencyMs()).Msg("new best reaction")
		}
	}
}

// publish stores a copy of the counters for lock-free readers.
func (s *Server) publish() {
	snap := s.counters
	s.stats.Store(&snap)
}

// Shutdown notifies every connected session and waits for them to
// disconnect, up to the given timeout. The caller should cancel the Run
// context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	for _, h := range s.sessions {
		select {
		case h.Events <- Event{Type: EventShutdown}:
		default:
		}
	}
	s.mu.RUnlock()

	deadline := s.clock.After(timeout)
	ticker := s.clock.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			s.log.Warn().Int("remaining", s.online()).Msg("shutdown timeout, sessions still connected")
			return
		case <-ticker.Chan():
			if s.online() == 0 {
				return
			}
		}
	}
}

func (s *Server) online() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Register registers a new session and returns its handle. Once Run has
// returned the handle comes back with its Events channel already closed.
func (s *Server) Register(name string) *Handle {
	h := &Handle{
		ID:     uuid.NewString(),
		Name:   name,
		Events: make(chan Event, 16),
	}
	select {
	case <-s.done:
		close(h.Events)
		return h
	default:
	}
	select {
	case s.registerCh <- h:
	case <-s.done:
		close(h.Events)
	}
	return h
}

// Unregister removes a session. Its Events channel is closed.
func (s *Server) Unregister(id string) {
	select {
	case s.unregisterCh <- id:
	case <-s.done:
	}
}

// Report records the outcome of a resolved trial. Dropped when the hub is
// saturated.
func (s *Server) Report(id string, out game.Outcome) {
	select {
	case s.reportCh <- report{id: id, out: out}:
	default:
		s.log.Warn().Str("session", id).Msg("report dropped, hub busy")
	}
}

// Stats returns the latest counters.
func (s *Server) Stats() *Stats {
	return s.stats.Load()
}
