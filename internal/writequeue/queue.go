// Package writequeue runs background persistence jobs for the remote
// repositories. Callers never wait for a write; a job that keeps failing
// after its retries is logged, reported through Options.OnFailure and
// surfaced again by Close.
//
// Jobs are sharded by key over the workers, so writes to the same document
// are applied in the order they were enqueued.
package writequeue

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/google/uuid"
)

// Job is a unit of work, typically one document write.
type Job struct {
	ID  string
	Key string
	Run func(ctx context.Context) error
}

// Failure describes a job that was given up on.
type Failure struct {
	JobID    string
	Key      string
	Attempts int
	Err      error
}

// ErrWritesLost is returned by Close when at least one job was given up on.
var ErrWritesLost = errors.New("writes lost")

// Stats are cumulative counters since New.
type Stats struct {
	Enqueued  int64 `json:"enqueued"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Retried   int64 `json:"retried"`
}

// Counters accumulate Stats. Queues created with the same Counters report
// combined numbers from Stats.
type Counters struct {
	enqueued  atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	retried   atomic.Int64
}

func (c *Counters) Stats() Stats {
	return Stats{
		Enqueued:  c.enqueued.Load(),
		Succeeded: c.succeeded.Load(),
		Failed:    c.failed.Load(),
		Retried:   c.retried.Load(),
	}
}

type Options struct {
	// Size is the buffer of each worker; Enqueue blocks when it is full.
	Size       int
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
	OnFailure  func(Failure)
	// Counters, when set, is shared with other queues. Nil gives the queue
	// its own.
	Counters *Counters
}

// DefaultOptions returns the settings used when configuration leaves them unset.
func DefaultOptions() Options {
	return Options{
		Size:       256,
		Workers:    4,
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
	}
}

type Queue struct {
	opts   Options
	logger logging.Logger
	shards []chan Job

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	counters *Counters

	// lost and firstLost cover this queue only, whatever Counters is shared.
	lostMu    sync.Mutex
	lost      int
	firstLost error
}

// New starts opts.Workers workers. Zero-valued options fall back to
// DefaultOptions.
func New(opts Options, logger logging.Logger) *Queue {
	def := DefaultOptions()
	if opts.Size <= 0 {
		opts.Size = def.Size
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.Counters == nil {
		opts.Counters = &Counters{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		opts:     opts,
		logger:   logger.With("component", "writequeue"),
		shards:   make([]chan Job, opts.Workers),
		ctx:      ctx,
		cancel:   cancel,
		counters: opts.Counters,
	}
	for i := range q.shards {
		q.shards[i] = make(chan Job, opts.Size)
		q.wg.Add(1)
		go q.worker(q.shards[i])
	}
	return q
}

func (q *Queue) shard(key string) chan Job {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return q.shards[h.Sum32()%uint32(len(q.shards))]
}

// Enqueue schedules run and returns the job id. After Close the job is not
// run; it is reported as a failure with common.ErrorClosed instead.
func (q *Queue) Enqueue(key string, run func(ctx context.Context) error) string {
	job := Job{ID: uuid.New().String(), Key: key, Run: run}

	q.mu.RLock()
	defer q.mu.RUnlock()

	q.counters.enqueued.Add(1)
	if q.closed {
		q.fail(job, 0, common.ErrorClosed)
		return job.ID
	}
	q.shard(key) <- job
	return job.ID
}

func (q *Queue) worker(jobs <-chan Job) {
	defer q.wg.Done()
	for job := range jobs {
		q.process(job)
	}
}

func (q *Queue) process(job Job) {
	if err := q.ctx.Err(); err != nil {
		q.fail(job, 0, err)
		return
	}
	attempts := 0
	for {
		attempts++
		err := job.Run(q.ctx)
		if err == nil {
			q.counters.succeeded.Add(1)
			return
		}
		if attempts > q.opts.MaxRetries || q.ctx.Err() != nil {
			q.fail(job, attempts, err)
			return
		}

		q.counters.retried.Add(1)
		q.logger.Warn(q.ctx, "write failed, retrying", "job_id", job.ID, "key", job.Key, "attempt", attempts, "error", err)

		select {
		case <-q.ctx.Done():
			q.fail(job, attempts, fmt.Errorf("%w (queue aborted)", err))
			return
		case <-time.After(q.opts.RetryDelay):
		}
	}
}

func (q *Queue) fail(job Job, attempts int, err error) {
	q.counters.failed.Add(1)
	q.lostMu.Lock()
	q.lost++
	if q.firstLost == nil {
		q.firstLost = err
	}
	q.lostMu.Unlock()

	q.logger.Error(context.Background(), "write failed", "job_id", job.ID, "key", job.Key, "attempts", attempts, "error", err)
	if q.opts.OnFailure != nil {
		q.opts.OnFailure(Failure{JobID: job.ID, Key: job.Key, Attempts: attempts, Err: err})
	}
}

// Stats reads the queue's counters, which include every queue sharing
// Options.Counters.
func (q *Queue) Stats() Stats {
	return q.counters.Stats()
}

// lostErr wraps ErrWritesLost and the first failure, or is nil when every
// job so far succeeded.
func (q *Queue) lostErr() error {
	q.lostMu.Lock()
	defer q.lostMu.Unlock()
	if q.lost == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d gave up, first: %w", ErrWritesLost, q.lost, q.firstLost)
}

// Close stops intake and waits for queued jobs to finish. If ctx ends
// first, running jobs are cancelled and remaining ones fail fast; ctx.Err()
// is part of the returned error. Jobs given up on before Close returns
// make it return an error wrapping ErrWritesLost.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	for _, ch := range q.shards {
		close(ch)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return q.lostErr()
	case <-ctx.Done():
		q.cancel()
		<-done
		return errors.Join(ctx.Err(), q.lostErr())
	}
}
