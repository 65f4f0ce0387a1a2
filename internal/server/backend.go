package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/server/config"
	"github.com/dmitrijs2005/famledger/internal/session"
	"github.com/dmitrijs2005/famledger/internal/sharing"
	"github.com/dmitrijs2005/famledger/internal/storage/docstore"
	"github.com/dmitrijs2005/famledger/internal/storage/kv"
	"github.com/dmitrijs2005/famledger/internal/writequeue"
)

// Backend is the opened storage of the configured backend.
type Backend struct {
	// Open builds uninitialized sessions over the storage.
	Open session.Factory
	// Shares is nil for the local backend, which has no sharing.
	Shares sharing.Repository
	// Writes counts the background writes of every remote session; nil for
	// the local backend.
	Writes *writequeue.Counters
	// OnWriteFailure, when set, hears about every write a session's queue
	// gave up on. It runs on the queue's worker and must not block on it.
	OnWriteFailure func(ownerUID string, q session.Queue, f writequeue.Failure)

	kvStore  kv.Store
	docStore docstore.Store
}

// seams for tests
var (
	openKV       = kv.Open
	openDocStore = docstore.Open
)

// OpenBackend connects the store selected by c.Backend.
func OpenBackend(ctx context.Context, c *config.Config, logger logging.Logger) (*Backend, error) {
	opts := session.Options{Prefix: c.KeyPrefix, Passphrase: []byte(c.CredentialsPassphrase), Logger: logger}

	switch c.Backend {
	case config.BackendLocal:
		store, err := openKV(ctx, c.LocalDriver, c.LocalDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open local store: %w", err)
		}
		return &Backend{Open: session.LocalFactory(store, opts), kvStore: store}, nil

	case config.BackendRemote:
		store, err := openDocStore(ctx, c.RemoteDriver, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open remote store: %w", err)
		}
		b := &Backend{
			Shares:   sharesFor(store),
			Writes:   &writequeue.Counters{},
			docStore: store,
		}
		b.Open = session.RemoteFactory(store, b.newQueue(c, logger), opts)
		return b, nil
	}
	return nil, fmt.Errorf("unknown backend %q", c.Backend)
}

// sharesFor keeps grants next to the documents on postgres and MySQL, and
// in memory with the memory store.
func sharesFor(store docstore.Store) sharing.Repository {
	switch s := store.(type) {
	case *docstore.PostgresStore:
		if s.Conn() != nil {
			return sharing.NewPostgresRepository(s.Conn())
		}
	case *docstore.GormStore:
		if s.DB() != nil {
			return sharing.NewGormRepository(s.DB())
		}
	}
	return sharing.NewMemoryRepository()
}

// NewWriteQueue builds a write queue from the queue settings of c. Final
// failures are logged by the queue itself and returned again by its Close.
func NewWriteQueue(c *config.Config, logger logging.Logger) *writequeue.Queue {
	return writequeue.New(queueOptions(c), logger)
}

func queueOptions(c *config.Config) writequeue.Options {
	return writequeue.Options{
		Size:       c.QueueSize,
		Workers:    c.QueueWorkers,
		MaxRetries: c.QueueMaxRetries,
		RetryDelay: c.QueueRetryDelay,
	}
}

// newQueue gives each session a queue counted in b.Writes whose final
// failures go to b.OnWriteFailure.
func (b *Backend) newQueue(c *config.Config, logger logging.Logger) func(ownerUID string) session.Queue {
	return func(ownerUID string) session.Queue {
		opts := queueOptions(c)
		opts.Counters = b.Writes

		var q *writequeue.Queue
		opts.OnFailure = func(f writequeue.Failure) {
			if b.OnWriteFailure != nil {
				b.OnWriteFailure(ownerUID, q, f)
			}
		}
		q = writequeue.New(opts, logger.With("owner_uid", ownerUID))
		return q
	}
}

func (b *Backend) Close() error {
	var errs []error
	if b.kvStore != nil {
		errs = append(errs, b.kvStore.Close())
	}
	if b.docStore != nil {
		errs = append(errs, b.docStore.Close())
	}
	return errors.Join(errs...)
}
