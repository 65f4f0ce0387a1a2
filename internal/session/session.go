// Package session bundles everything one household's books need at run
// time: the repositories of the selected backend, the use-case services
// built over them and the lifecycle state of the remote cache.
package session

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/cryptox"
	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/repositories"
	"github.com/dmitrijs2005/famledger/internal/repositories/local"
	"github.com/dmitrijs2005/famledger/internal/repositories/remote"
	"github.com/dmitrijs2005/famledger/internal/services"
	"github.com/dmitrijs2005/famledger/internal/storage/docstore"
	"github.com/dmitrijs2005/famledger/internal/storage/kv"
)

type State int32

const (
	StateNotReady State = iota
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNotReady:
		return "not_ready"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Queue is the background writer of a remote session. Close drains it.
type Queue interface {
	remote.Queue
	Close(ctx context.Context) error
}

type Options struct {
	// Prefix namespaces local snapshot keys.
	Prefix string
	// Passphrase enables sealing of template website passwords.
	Passphrase []byte
	Logger     logging.Logger
}

func (o Options) logger() logging.Logger {
	if o.Logger == nil {
		return logging.Discard()
	}
	return o.Logger
}

// codecs derives the data owner's sealer when a passphrase is configured.
func (o Options) codecs(ownerUID string) (repositories.Codecs, error) {
	if len(o.Passphrase) == 0 {
		return repositories.DefaultCodecs(nil), nil
	}
	sealer, err := cryptox.NewOwnerSealer(o.Passphrase, ownerUID)
	if err != nil {
		return repositories.Codecs{}, fmt.Errorf("failed to derive credentials key: %w", err)
	}
	return repositories.DefaultCodecs(sealer), nil
}

type Session struct {
	principalUID string
	dataOwnerUID string
	set          *repositories.Set
	services     *services.Services
	backend      *remote.Backend
	queue        Queue
	state        atomic.Int32
	logger       logging.Logger
}

// NewLocal opens the local books of ownerUID. Local sessions are ready at once.
func NewLocal(store kv.Store, ownerUID string, opts Options) (*Session, error) {
	codecs, err := opts.codecs(ownerUID)
	if err != nil {
		return nil, err
	}
	logger := opts.logger().With("backend", "local", "owner_uid", ownerUID)
	set := local.NewSet(store, opts.Prefix, codecs, logger)

	s := &Session{
		principalUID: ownerUID,
		dataOwnerUID: ownerUID,
		set:          set,
		services:     services.New(set, logger),
		logger:       logger,
	}
	s.state.Store(int32(StateReady))
	return s, nil
}

// NewRemote prepares dataOwnerUID's books in store on behalf of
// principalUID. The session serves nothing until Initialize succeeds.
func NewRemote(store docstore.Store, queue Queue, principalUID, dataOwnerUID string, opts Options) (*Session, error) {
	if queue == nil {
		return nil, fmt.Errorf("remote session needs a write queue")
	}
	codecs, err := opts.codecs(dataOwnerUID)
	if err != nil {
		return nil, err
	}
	logger := opts.logger().With("backend", "remote", "owner_uid", dataOwnerUID, "principal", principalUID)
	backend := remote.NewBackend(store, queue, dataOwnerUID, codecs, logger)

	s := &Session{
		principalUID: principalUID,
		dataOwnerUID: dataOwnerUID,
		set:          backend.Set(),
		services:     services.New(backend.Set(), logger),
		backend:      backend,
		queue:        queue,
		logger:       logger,
	}
	s.state.Store(int32(StateNotReady))
	return s, nil
}

func (s *Session) State() State {
	return State(s.state.Load())
}

// PrincipalUID is the user that opened the session.
func (s *Session) PrincipalUID() string { return s.principalUID }

// DataOwnerUID is the user whose books the session works on.
func (s *Session) DataOwnerUID() string { return s.dataOwnerUID }

// Delegated reports whether the session works on somebody else's books.
func (s *Session) Delegated() bool { return s.principalUID != s.dataOwnerUID }

// Initialize bulk-loads a remote session. It is a no-op for local and
// already initialized sessions.
func (s *Session) Initialize(ctx context.Context) error {
	switch s.State() {
	case StateClosed:
		return fmt.Errorf("initialize session: %w", common.ErrorClosed)
	case StateReady:
		return nil
	}

	start := time.Now()
	if err := s.backend.Initialize(ctx); err != nil {
		s.logger.Error(ctx, "session initialization failed", "error", err)
		return err
	}
	if !s.state.CompareAndSwap(int32(StateNotReady), int32(StateReady)) {
		return fmt.Errorf("initialize session: %w", common.ErrorClosed)
	}
	s.logger.Info(ctx, "session ready", "elapsed", time.Since(start).String())
	return nil
}

func (s *Session) check() error {
	switch s.State() {
	case StateNotReady:
		return common.ErrorNotReady
	case StateClosed:
		return common.ErrorClosed
	}
	return nil
}

// Services returns the use cases, or common.ErrorNotReady before
// Initialize and common.ErrorClosed after Close.
func (s *Session) Services() (*services.Services, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.services, nil
}

// Repositories returns the raw collections with the same state checks as Services.
func (s *Session) Repositories() (*repositories.Set, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.set, nil
}

// Close stops the session and drains pending remote writes. It is safe to
// call more than once.
func (s *Session) Close(ctx context.Context) error {
	if State(s.state.Swap(int32(StateClosed))) == StateClosed {
		return nil
	}
	if s.queue == nil {
		return nil
	}
	if err := s.queue.Close(ctx); err != nil {
		s.logger.Error(ctx, "pending writes lost on close", "error", err)
		return fmt.Errorf("failed to drain write queue: %w", err)
	}
	return nil
}
