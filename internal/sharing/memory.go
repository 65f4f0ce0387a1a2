package sharing

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/famledger/internal/common"
)

// MemoryRepository is used with the in-memory document store.
type MemoryRepository struct {
	mu     sync.RWMutex
	shares map[string]string
	emails map[string][]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		shares: make(map[string]string),
		emails: make(map[string][]string),
	}
}

func (r *MemoryRepository) ResolveDataOwner(_ context.Context, email string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.shares[email]
	if !ok {
		return "", common.ErrorNotFound
	}
	return owner, nil
}

func (r *MemoryRepository) GetSharedEmails(_ context.Context, ownerUID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := slices.Clone(r.emails[ownerUID])
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (r *MemoryRepository) AddSharedEmail(_ context.Context, ownerUID, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.shares[email]; ok && prev != ownerUID {
		r.emails[prev] = slices.DeleteFunc(r.emails[prev], func(e string) bool { return e == email })
	}
	r.shares[email] = ownerUID
	if !slices.Contains(r.emails[ownerUID], email) {
		r.emails[ownerUID] = append(r.emails[ownerUID], email)
	}
	return nil
}

func (r *MemoryRepository) RemoveSharedEmail(_ context.Context, ownerUID, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.Contains(r.emails[ownerUID], email) {
		return common.ErrorNotFound
	}
	r.emails[ownerUID] = slices.DeleteFunc(r.emails[ownerUID], func(e string) bool { return e == email })
	if r.shares[email] == ownerUID {
		delete(r.shares, email)
	}
	return nil
}
