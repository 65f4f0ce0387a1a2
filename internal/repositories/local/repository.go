// Package local stores each collection as one JSON array in a kv.Store.
// Every read re-reads the snapshot and every mutation rewrites it before
// returning, so the store is always the source of truth.
package local

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/repositories"
	"github.com/dmitrijs2005/famledger/internal/storage/kv"
)

// Repository implements repositories.Repository[T] over a single kv key.
type Repository[T models.Entity] struct {
	mu     sync.Mutex
	store  kv.Store
	key    string
	codec  repositories.Codec[T]
	logger logging.Logger
}

func NewRepository[T models.Entity](store kv.Store, key string, codec repositories.Codec[T], logger logging.Logger) *Repository[T] {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Repository[T]{
		store:  store,
		key:    key,
		codec:  codec,
		logger: logger.With("key", key),
	}
}

// Key returns the snapshot key, "<prefix>:<collection>".
func Key(prefix, collection string) string {
	return prefix + ":" + collection
}

func (r *Repository[T]) load(ctx context.Context) ([]T, error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", r.key, err)
	}
	items, err := repositories.DecodeAll(r.codec, data)
	if err != nil {
		r.logger.Error(ctx, "stored snapshot rejected", "error", err)
		return nil, fmt.Errorf("failed to decode %s: %w", r.key, err)
	}
	return items, nil
}

func (r *Repository[T]) save(ctx context.Context, items []T) error {
	data, err := repositories.EncodeAll(r.codec, items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", r.key, err)
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.key, err)
	}
	return nil
}

func (r *Repository[T]) GetAll(ctx context.Context) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *Repository[T]) GetByID(ctx context.Context, id string) (T, error) {
	var zero T
	items, err := r.GetAll(ctx)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if item.EntityID() == id {
			return item, nil
		}
	}
	return zero, common.ErrorNotFound
}

func (r *Repository[T]) Create(ctx context.Context, entity T) error {
	if err := entity.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInvalidInput, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load(ctx)
	if err != nil {
		return err
	}
	if i := indexOf(items, entity.EntityID()); i >= 0 {
		items[i] = entity
	} else {
		items = append(items, entity)
	}
	return r.save(ctx, items)
}

// Update replaces the record with the same id. An unknown id is a no-op.
func (r *Repository[T]) Update(ctx context.Context, entity T) error {
	if err := entity.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInvalidInput, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(items, entity.EntityID())
	if i < 0 {
		r.logger.Debug(ctx, "update of unknown record ignored", "id", entity.EntityID())
		return nil
	}
	items[i] = entity
	return r.save(ctx, items)
}

func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(items, id)
	if i < 0 {
		return nil
	}
	items = append(items[:i], items[i+1:]...)
	return r.save(ctx, items)
}

func indexOf[T models.Entity](items []T, id string) int {
	for i, item := range items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}
