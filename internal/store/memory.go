// internal/store/memory.go
//
// In-memory registry of per-player engines.
// One engine per player id (the signed anonymous cookie); engines are built
// lazily by a Factory and dropped after a period of inactivity.
//
// Characteristics:
//   - Concurrency-safe via Mutex; a player's engine is built at most once.
//   - State is lost when the process restarts (stats are not: the ledger
//     behind each engine is durable).

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wordbuddy/puzzle-server/internal/engine"
	"github.com/wordbuddy/puzzle-server/internal/kv"
	"github.com/wordbuddy/puzzle-server/internal/stats"
)

// ErrNoPlayer is returned for an empty player id.
var ErrNoPlayer = errors.New("missing player id")

// Factory builds the engine for a player seen for the first time.
type Factory func(ctx context.Context, playerID string) (*engine.Engine, error)

// EngineFactory builds engines that share loader and validator. Each player
// gets a ledger in its own namespace of base, keyed by the player id.
func EngineFactory(loader engine.Loader, validator engine.Validator, base kv.Store, opts ...engine.Option) Factory {
	return func(_ context.Context, playerID string) (*engine.Engine, error) {
		ledger := stats.NewLedger(kv.Prefixed(base, playerID), stats.WithAnonID(playerID))
		return engine.New(loader, validator, ledger, opts...), nil
	}
}

// Store hands out player engines.
type Store interface {
	// Get returns the player's engine, creating it on first use.
	Get(ctx context.Context, playerID string) (*engine.Engine, error)

	// Len is the number of live sessions.
	Len() int
}

type session struct {
	eng      *engine.Engine
	lastSeen time.Time
}

// Memory is a map-based Store.
type Memory struct {
	mu       sync.Mutex          // guards sessions
	sessions map[string]*session // keyed by player id
	factory  Factory
	now      func() time.Time
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore(factory Factory) *Memory {
	return &Memory{sessions: make(map[string]*session), factory: factory, now: time.Now}
}

// Get looks up a player's engine, building it with the factory if missing.
func (m *Memory) Get(ctx context.Context, playerID string) (*engine.Engine, error) {
	if playerID == "" {
		return nil, ErrNoPlayer
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[playerID]; ok {
		s.lastSeen = m.now()
		return s.eng, nil
	}
	eng, err := m.factory(ctx, playerID)
	if err != nil {
		return nil, err
	}
	m.sessions[playerID] = &session{eng: eng, lastSeen: m.now()}
	return eng, nil
}

// Len reports the number of sessions.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than idle. A dropped player's current
// round is left as if they had walked away from it, before the session goes:
// a returning player never gets a new engine ahead of that outcome.
func (m *Memory) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	dropped := 0

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			s.eng.Leave(ctx)
			delete(m.sessions, id)
			dropped++
		}
	}
	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Msg("swept idle sessions")
	}
	return dropped
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Memory) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep(ctx, idle)
		}
	}
}
