package writequeue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failureSink struct {
	mu       sync.Mutex
	failures []Failure
}

func (s *failureSink) add(f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, f)
}

func (s *failureSink) all() []Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Failure(nil), s.failures...)
}

func TestQueue_RunsJobsAndDrainsOnClose(t *testing.T) {
	q := New(Options{Workers: 3, Size: 4}, logging.Discard())

	var ran atomic.Int64
	ids := map[string]bool{}
	for i := 0; i < 20; i++ {
		id := q.Enqueue(fmt.Sprintf("owners/o%d", i), func(context.Context) error {
			ran.Add(1)
			return nil
		})
		assert.NotEmpty(t, id)
		ids[id] = true
	}
	require.NoError(t, q.Close(context.Background()))

	assert.Len(t, ids, 20, "job ids are unique")
	assert.Equal(t, int64(20), ran.Load())
	assert.Equal(t, Stats{Enqueued: 20, Succeeded: 20}, q.Stats())
}

func TestQueue_RetriesUntilSuccess(t *testing.T) {
	sink := &failureSink{}
	q := New(Options{Workers: 1, MaxRetries: 3, RetryDelay: time.Millisecond, OnFailure: sink.add}, logging.Discard())

	calls := 0
	q.Enqueue("payments/p1", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("unavailable")
		}
		return nil
	})
	require.NoError(t, q.Close(context.Background()))

	assert.Equal(t, 3, calls)
	assert.Empty(t, sink.all())
	assert.Equal(t, Stats{Enqueued: 1, Succeeded: 1, Retried: 2}, q.Stats())
}

func TestQueue_ReportsFinalFailure(t *testing.T) {
	sink := &failureSink{}
	q := New(Options{Workers: 2, MaxRetries: 2, RetryDelay: time.Millisecond, OnFailure: sink.add}, logging.Discard())

	boom := errors.New("permission denied")
	id := q.Enqueue("bankAccounts/a1", func(context.Context) error { return boom })
	err := q.Close(context.Background())
	require.ErrorIs(t, err, ErrWritesLost, "close reports jobs that were given up on")
	require.ErrorIs(t, err, boom)
	require.NoError(t, q.Close(context.Background()), "second close is a no-op")

	failures := sink.all()
	require.Len(t, failures, 1)
	assert.Equal(t, id, failures[0].JobID)
	assert.Equal(t, "bankAccounts/a1", failures[0].Key)
	assert.Equal(t, 3, failures[0].Attempts)
	assert.ErrorIs(t, failures[0].Err, boom)
	assert.Equal(t, Stats{Enqueued: 1, Failed: 1, Retried: 2}, q.Stats())
}

func TestQueue_PreservesOrderPerKey(t *testing.T) {
	q := New(Options{Workers: 4, Size: 8}, logging.Discard())

	var mu sync.Mutex
	var seen []int
	for i := 0; i < 50; i++ {
		i := i
		q.Enqueue("owners/o1", func(context.Context) error {
			mu.Lock()
			seen = append(seen, i)
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, q.Close(context.Background()))

	require.Len(t, seen, 50)
	for i, v := range seen {
		assert.Equal(t, i, v)
	}
}

func TestQueue_EnqueueAfterClose(t *testing.T) {
	sink := &failureSink{}
	q := New(Options{OnFailure: sink.add}, logging.Discard())
	require.NoError(t, q.Close(context.Background()))
	require.NoError(t, q.Close(context.Background()), "second close is a no-op")

	ran := false
	q.Enqueue("owners/o1", func(context.Context) error {
		ran = true
		return nil
	})

	assert.False(t, ran)
	failures := sink.all()
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0].Err, common.ErrorClosed)
	assert.Equal(t, int64(1), q.Stats().Failed)
}

func TestQueue_CloseDeadlineCancelsJobs(t *testing.T) {
	sink := &failureSink{}
	q := New(Options{Workers: 1, MaxRetries: 5, RetryDelay: time.Hour, OnFailure: sink.add}, logging.Discard())

	started := make(chan struct{})
	q.Enqueue("payments/p1", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	q.Enqueue("payments/p1", func(context.Context) error { return nil })
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Close(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.ErrorIs(t, err, ErrWritesLost)

	failures := sink.all()
	require.Len(t, failures, 2, "the running job and the queued one both fail")
	assert.ErrorIs(t, failures[0].Err, context.Canceled)
	assert.ErrorIs(t, failures[1].Err, context.Canceled)
	assert.Equal(t, int64(0), q.Stats().Succeeded)
}

func TestQueue_SharedCounters(t *testing.T) {
	counters := &Counters{}
	q1 := New(Options{Workers: 1, Counters: counters}, logging.Discard())
	q2 := New(Options{Workers: 1, MaxRetries: -1, Counters: counters}, logging.Discard())

	q1.Enqueue("owners/o1", func(context.Context) error { return nil })
	q2.Enqueue("owners/o2", func(context.Context) error { return errors.New("offline") })

	require.NoError(t, q1.Close(context.Background()), "failures of other queues are not reported")
	require.ErrorIs(t, q2.Close(context.Background()), ErrWritesLost)

	want := Stats{Enqueued: 2, Succeeded: 1, Failed: 1}
	assert.Equal(t, want, counters.Stats())
	assert.Equal(t, want, q1.Stats())
}

func TestNew_Defaults(t *testing.T) {
	q := New(Options{MaxRetries: -1}, nil)
	defer q.Close(context.Background())

	def := DefaultOptions()
	assert.Equal(t, def.Workers, len(q.shards))
	assert.Equal(t, def.Size, cap(q.shards[0]))
	assert.Equal(t, 0, q.opts.MaxRetries)
}
