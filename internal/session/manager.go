package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/repositories/local"
	"github.com/dmitrijs2005/famledger/internal/sharing"
	"github.com/dmitrijs2005/famledger/internal/storage/docstore"
	"github.com/dmitrijs2005/famledger/internal/storage/kv"
	"golang.org/x/sync/singleflight"
)

// Factory opens an uninitialized session for dataOwnerUID.
type Factory func(ctx context.Context, principalUID, dataOwnerUID string) (*Session, error)

// LocalFactory keeps each owner's books under "<prefix>:<owner>" in store.
func LocalFactory(store kv.Store, opts Options) Factory {
	return func(_ context.Context, _ string, dataOwnerUID string) (*Session, error) {
		o := opts
		o.Prefix = ownerPrefix(opts.Prefix, dataOwnerUID)
		return NewLocal(store, dataOwnerUID, o)
	}
}

func ownerPrefix(prefix, ownerUID string) string {
	if prefix == "" {
		prefix = local.DefaultPrefix
	}
	return prefix + ":" + ownerUID
}

// RemoteFactory gives each session its own write queue from newQueue.
func RemoteFactory(store docstore.Store, newQueue func(ownerUID string) Queue, opts Options) Factory {
	return func(_ context.Context, principalUID, dataOwnerUID string) (*Session, error) {
		return NewRemote(store, newQueue(dataOwnerUID), principalUID, dataOwnerUID, opts)
	}
}

// Manager caches one initialized session per data owner. Principals that
// were granted access to somebody else's books share that owner's session.
type Manager struct {
	open   Factory
	shares sharing.Repository
	logger logging.Logger

	group    singleflight.Group
	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

func NewManager(open Factory, shares sharing.Repository, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{
		open:     open,
		shares:   shares,
		logger:   logger.With("component", "sessions"),
		sessions: make(map[string]*Session),
	}
}

// Shares exposes the sharing repository, nil when sharing is disabled.
func (m *Manager) Shares() sharing.Repository {
	return m.shares
}

// Get returns the ready session of the books principalUID works on.
// Concurrent first requests for the same owner initialize it once; a
// failed initialization is not cached.
func (m *Manager) Get(ctx context.Context, principalUID, email string) (*Session, error) {
	if principalUID == "" {
		return nil, fmt.Errorf("open session: %w", common.ErrorUnauthorized)
	}
	owner, _ := sharing.EffectiveOwner(ctx, m.shares, m.logger, principalUID, email)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, fmt.Errorf("open session: %w", common.ErrorClosed)
	}
	if s, ok := m.sessions[owner]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	v, err, _ := m.group.Do(owner, func() (any, error) {
		m.mu.Lock()
		if s, ok := m.sessions[owner]; ok {
			m.mu.Unlock()
			return s, nil
		}
		m.mu.Unlock()

		s, err := m.open(ctx, principalUID, owner)
		if err != nil {
			return nil, err
		}
		if err := s.Initialize(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("open session: %w", common.ErrorClosed)
		}
		m.sessions[owner] = s
		m.logger.Info(ctx, "session opened", "owner_uid", owner, "principal", principalUID)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Evict closes and forgets ownerUID's session, so the next Get reloads it.
func (m *Manager) Evict(ctx context.Context, ownerUID string) error {
	m.mu.Lock()
	s, ok := m.sessions[ownerUID]
	delete(m.sessions, ownerUID)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Close(ctx)
}

// EvictQueue evicts ownerUID's session only while it still writes through
// q, so a session opened after the one that lost a write is kept. It
// reports whether a session was evicted.
func (m *Manager) EvictQueue(ctx context.Context, ownerUID string, q Queue) (bool, error) {
	m.mu.Lock()
	s, ok := m.sessions[ownerUID]
	if !ok || q == nil || s.queue != q {
		m.mu.Unlock()
		return false, nil
	}
	delete(m.sessions, ownerUID)
	m.mu.Unlock()
	return true, s.Close(ctx)
}

// Close closes every cached session and refuses new ones.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var errs []error
	for owner, s := range sessions {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("owner %s: %w", owner, err))
		}
	}
	return errors.Join(errs...)
}
