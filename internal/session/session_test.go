package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/sharing"
	"github.com/dmitrijs2005/famledger/internal/storage/docstore"
	"github.com/dmitrijs2005/famledger/internal/storage/kv"
	"github.com/dmitrijs2005/famledger/internal/writequeue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueue(string) Queue {
	opts := writequeue.DefaultOptions()
	opts.Workers = 1
	opts.RetryDelay = 0
	return writequeue.New(opts, logging.Discard())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "not_ready", StateNotReady.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "state(9)", State(9).String())
}

func TestLocal_ReadyImmediately(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	s, err := NewLocal(store, "alice", Options{Prefix: "t"})
	require.NoError(t, err)
	assert.Equal(t, StateReady, s.State())
	assert.False(t, s.Delegated())
	require.NoError(t, s.Initialize(ctx))

	svc, err := s.Services()
	require.NoError(t, err)
	res := svc.Owners.Create(ctx, "Alice")
	require.True(t, res.Success, res.Message)

	raw, err := store.Get(ctx, "t:owners")
	require.NoError(t, err)
	assert.Contains(t, string(raw), res.Data.ID)

	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))
	_, err = s.Services()
	require.ErrorIs(t, err, common.ErrorClosed)
}

func TestLocal_SealsWithPassphrase(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	s, err := NewLocal(store, "alice", Options{Prefix: "t", Passphrase: []byte("correct horse")})
	require.NoError(t, err)

	set, err := s.Repositories()
	require.NoError(t, err)
	secret := "hunter2"
	tpl := models.NewPaymentTemplate(models.CreatePaymentTemplateInput{
		Name: "Power", Value: 10, OwnerID: "o1", CategoryID: "c1", WebsitePassword: &secret,
	})
	require.NoError(t, set.PaymentTemplates.Create(ctx, tpl))

	raw, err := store.Get(ctx, "t:paymentTemplates")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), secret)

	got, err := set.PaymentTemplates.GetByID(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, secret, *got.WebsitePassword)
}

func TestRemote_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	seeded := models.NewOwner("Seeded")
	data, err := json.Marshal(seeded)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "alice", common.CollectionOwners, seeded.ID, data))

	s, err := NewRemote(store, newQueue("alice"), "bob", "alice", Options{})
	require.NoError(t, err)
	assert.Equal(t, StateNotReady, s.State())
	assert.True(t, s.Delegated())
	assert.Equal(t, "bob", s.PrincipalUID())
	assert.Equal(t, "alice", s.DataOwnerUID())

	_, err = s.Services()
	require.ErrorIs(t, err, common.ErrorNotReady)
	_, err = s.Repositories()
	require.ErrorIs(t, err, common.ErrorNotReady)

	require.NoError(t, s.Initialize(ctx))
	assert.Equal(t, StateReady, s.State())

	svc, err := s.Services()
	require.NoError(t, err)
	owners, err := svc.Owners.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, "Seeded", owners[0].Name)

	res := svc.Owners.Create(ctx, "Fresh")
	require.True(t, res.Success, res.Message)

	require.NoError(t, s.Close(ctx))
	assert.Equal(t, StateClosed, s.State())

	docs, err := store.List(ctx, "alice", common.CollectionOwners)
	require.NoError(t, err)
	assert.Len(t, docs, 2, "close drains pending writes")

	require.ErrorIs(t, s.Initialize(ctx), common.ErrorClosed)
}

func TestRemote_InitializeFailureKeepsNotReady(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "alice", common.CollectionPayments, "p1", []byte(`{"id":"p1"}`)))

	s, err := NewRemote(store, newQueue("alice"), "alice", "alice", Options{})
	require.NoError(t, err)
	require.ErrorIs(t, s.Initialize(ctx), common.ErrorMalformedRecord)
	assert.Equal(t, StateNotReady, s.State())
}

func TestRemote_NeedsQueue(t *testing.T) {
	_, err := NewRemote(docstore.NewMemoryStore(), nil, "a", "a", Options{})
	require.Error(t, err)
}

func TestManager_CachesPerDataOwner(t *testing.T) {
	ctx := context.Background()
	var opened atomic.Int32
	base := LocalFactory(kv.NewMemoryStore(), Options{Prefix: "t"})
	factory := func(ctx context.Context, principal, owner string) (*Session, error) {
		opened.Add(1)
		return base(ctx, principal, owner)
	}

	shares := sharing.NewMemoryRepository()
	require.NoError(t, shares.AddSharedEmail(ctx, "alice", "bob@example.com"))

	m := NewManager(factory, shares, nil)
	assert.Same(t, shares, m.Shares())

	a1, err := m.Get(ctx, "alice", "alice@example.com")
	require.NoError(t, err)
	a2, err := m.Get(ctx, "alice", "")
	require.NoError(t, err)
	assert.Same(t, a1, a2)

	b, err := m.Get(ctx, "bob", "bob@example.com")
	require.NoError(t, err)
	assert.Same(t, a1, b, "bob works on alice's books")

	c, err := m.Get(ctx, "carol", "carol@example.com")
	require.NoError(t, err)
	assert.NotSame(t, a1, c)
	assert.Equal(t, "carol", c.DataOwnerUID())
	assert.Equal(t, int32(2), opened.Load())

	require.NoError(t, m.Evict(ctx, "carol"))
	assert.Equal(t, StateClosed, c.State())
	_, err = m.Get(ctx, "carol", "")
	require.NoError(t, err)
	assert.Equal(t, int32(3), opened.Load())

	_, err = m.Get(ctx, "", "")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestManager_ConcurrentFirstAccessOpensOnce(t *testing.T) {
	ctx := context.Background()
	var opened atomic.Int32
	store := docstore.NewMemoryStore()
	factory := func(ctx context.Context, principal, owner string) (*Session, error) {
		opened.Add(1)
		return RemoteFactory(store, newQueue, Options{})(ctx, principal, owner)
	}
	m := NewManager(factory, nil, logging.Discard())

	var wg sync.WaitGroup
	got := make([]*Session, 8)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := m.Get(ctx, "alice", "")
			assert.NoError(t, err)
			got[i] = s
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), opened.Load())
	for _, s := range got {
		assert.Same(t, got[0], s)
	}
	assert.Equal(t, StateReady, got[0].State())

	require.NoError(t, m.Close(ctx))
	assert.Equal(t, StateClosed, got[0].State())
	_, err := m.Get(ctx, "alice", "")
	require.ErrorIs(t, err, common.ErrorClosed)
}

func TestManager_FailedOpenIsNotCached(t *testing.T) {
	ctx := context.Background()
	calls := 0
	boom := errors.New("boom")
	factory := func(ctx context.Context, principal, owner string) (*Session, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return NewLocal(kv.NewMemoryStore(), owner, Options{})
	}
	m := NewManager(factory, nil, nil)

	_, err := m.Get(ctx, "alice", "")
	require.ErrorIs(t, err, boom)

	s, err := m.Get(ctx, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, 2, calls)
}

func TestManager_EvictQueue(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	var queues []Queue
	record := func(owner string) Queue {
		q := newQueue(owner)
		queues = append(queues, q)
		return q
	}
	m := NewManager(RemoteFactory(store, record, Options{}), nil, nil)
	t.Cleanup(func() { _ = m.Close(ctx) })

	first, err := m.Get(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, queues, 1)

	other := newQueue("alice")
	t.Cleanup(func() { _ = other.Close(ctx) })
	evicted, err := m.EvictQueue(ctx, "alice", other)
	require.NoError(t, err)
	assert.False(t, evicted, "a queue the session does not use leaves it cached")

	evicted, err = m.EvictQueue(ctx, "alice", queues[0])
	require.NoError(t, err)
	assert.True(t, evicted)
	assert.Equal(t, StateClosed, first.State())

	second, err := m.Get(ctx, "alice", "")
	require.NoError(t, err)
	assert.NotSame(t, first, second, "the next request reloads the books")
	require.Len(t, queues, 2)

	evicted, err = m.EvictQueue(ctx, "alice", queues[0])
	require.NoError(t, err)
	assert.False(t, evicted, "a stale queue does not evict the reloaded session")
	assert.Equal(t, StateReady, second.State())
}

func TestOwnerPrefix(t *testing.T) {
	assert.Equal(t, "famledger:u1", ownerPrefix("", "u1"))
	assert.Equal(t, "x:u1", ownerPrefix("x", "u1"))
}
