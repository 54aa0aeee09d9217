package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/example/plantshop/internal/domain/order"
	"github.com/example/plantshop/internal/event"
	"github.com/example/plantshop/internal/infrastructure/kvstore"
)

// Manager lazily creates and caches one Session per user. Engines rehydrate
// from the key-value store on first access.
type Manager struct {
	kv     kvstore.Store
	sinks  []event.Sink
	logger zerolog.Logger
	opts   order.Options

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(kv kvstore.Store, sinks []event.Sink, logger zerolog.Logger, opts order.Options) *Manager {
	return &Manager{
		kv:       kv,
		sinks:    sinks,
		logger:   logger,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for a user, creating it on first use.
func (m *Manager) Get(ctx context.Context, userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s := newSession(ctx, userID, m.kv, m.sinks, m.logger, m.opts)
	m.sessions[userID] = s
	return s
}
