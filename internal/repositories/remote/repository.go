// Package remote serves a collection from an in-memory cache that is
// bulk-loaded once from a docstore.Store. Reads never touch the database
// after Initialize; writes update the cache and are persisted in the
// background through a write queue.
package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/repositories"
	"github.com/dmitrijs2005/famledger/internal/storage/docstore"
)

// Queue accepts background writes (see writequeue.Queue).
type Queue interface {
	Enqueue(key string, run func(ctx context.Context) error) string
}

// Repository implements repositories.Repository[T] for one owner's collection.
type Repository[T models.Entity] struct {
	store      docstore.Store
	queue      Queue
	ownerUID   string
	collection string
	codec      repositories.Codec[T]
	logger     logging.Logger

	mu    sync.RWMutex
	ready bool
	items map[string]T
	order []string
}

func NewRepository[T models.Entity](store docstore.Store, queue Queue, ownerUID, collection string, codec repositories.Codec[T], logger logging.Logger) *Repository[T] {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Repository[T]{
		store:      store,
		queue:      queue,
		ownerUID:   ownerUID,
		collection: collection,
		codec:      codec,
		logger:     logger.With("owner_uid", ownerUID, "collection", collection),
		items:      make(map[string]T),
	}
}

// Initialize loads the whole collection. It may be called again to reload;
// on error the previous state is kept.
func (r *Repository[T]) Initialize(ctx context.Context) error {
	docs, err := r.store.List(ctx, r.ownerUID, r.collection)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", r.collection, err)
	}

	items := make(map[string]T, len(docs))
	order := make([]string, 0, len(docs))
	for _, doc := range docs {
		item, err := r.codec.Decode(doc.Data)
		if err != nil {
			r.logger.Error(ctx, "stored document rejected", "id", doc.ID, "error", err)
			return fmt.Errorf("failed to decode %s/%s: %w", r.collection, doc.ID, err)
		}
		id := item.EntityID()
		if _, dup := items[id]; !dup {
			order = append(order, id)
		}
		items[id] = item
	}

	r.mu.Lock()
	r.items, r.order, r.ready = items, order, true
	r.mu.Unlock()

	r.logger.Debug(ctx, "collection loaded", "count", len(order))
	return nil
}

func (r *Repository[T]) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

// checkReady must be called with r.mu held.
func (r *Repository[T]) checkReady(ctx context.Context, op string) error {
	if r.ready {
		return nil
	}
	r.logger.Error(ctx, "repository used before initialization", "op", op)
	return fmt.Errorf("%s %s: %w", op, r.collection, common.ErrorNotReady)
}

func (r *Repository[T]) GetAll(ctx context.Context) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.checkReady(ctx, "get all"); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *Repository[T]) GetByID(ctx context.Context, id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var zero T
	if err := r.checkReady(ctx, "get"); err != nil {
		return zero, err
	}
	item, ok := r.items[id]
	if !ok {
		return zero, common.ErrorNotFound
	}
	return item, nil
}

// Create and Update both upsert the cached record and schedule a write.
func (r *Repository[T]) Create(ctx context.Context, entity T) error {
	return r.put(ctx, "create", entity)
}

func (r *Repository[T]) Update(ctx context.Context, entity T) error {
	return r.put(ctx, "update", entity)
}

func (r *Repository[T]) put(ctx context.Context, op string, entity T) error {
	if err := entity.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInvalidInput, err)
	}
	data, err := r.codec.Encode(entity)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", r.collection, err)
	}

	r.mu.Lock()
	if err := r.checkReady(ctx, op); err != nil {
		r.mu.Unlock()
		return err
	}
	id := entity.EntityID()
	if _, ok := r.items[id]; !ok {
		r.order = append(r.order, id)
	}
	r.items[id] = entity
	r.mu.Unlock()

	r.queue.Enqueue(r.docKey(id), func(ctx context.Context) error {
		return r.store.Put(ctx, r.ownerUID, r.collection, id, data)
	})
	return nil
}

func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	if err := r.checkReady(ctx, "delete"); err != nil {
		r.mu.Unlock()
		return err
	}
	if _, ok := r.items[id]; ok {
		delete(r.items, id)
		for i, v := range r.order {
			if v == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	r.queue.Enqueue(r.docKey(id), func(ctx context.Context) error {
		return r.store.Delete(ctx, r.ownerUID, r.collection, id)
	})
	return nil
}

func (r *Repository[T]) docKey(id string) string {
	return r.ownerUID + "/" + r.collection + "/" + id
}
