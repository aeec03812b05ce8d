// Package tasks provides the bounded background-work queue used for
// fire-and-forget jobs (stats preloading, settings background sync). Task
// failures are only observable via the log, never propagated to the caller.
package tasks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

type task struct {
	name string
	fn   func(context.Context) error
}

// Queue runs background tasks on a fixed worker pool. Spawn never blocks:
// when the queue is full the task is dropped with a warning, matching the
// best-effort contract of background refreshes.
type Queue struct {
	log     zerolog.Logger
	pending chan task
	workers int
	wg      sync.WaitGroup

	started  atomic.Bool
	closed   atomic.Bool
	spawned  atomic.Int64
	dropped  atomic.Int64
	finished atomic.Int64
}

func NewQueue(workers, capacity int, log zerolog.Logger) *Queue {
	if workers < 1 {
		workers = 1
	}
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{
		log:     log.With().Str("component", "tasks").Logger(),
		pending: make(chan task, capacity),
		workers: workers,
	}
}

// Start launches the worker pool. Workers exit when ctx is canceled or the
// queue is stopped.
func (q *Queue) Start(ctx context.Context) {
	if !q.started.CompareAndSwap(false, true) {
		return
	}
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
}

// Spawn enqueues a background task. Returns false when the queue is full or
// stopped and the task was dropped.
func (q *Queue) Spawn(name string, fn func(context.Context) error) bool {
	if q.closed.Load() {
		return false
	}
	select {
	case q.pending <- task{name: name, fn: fn}:
		q.spawned.Add(1)
		return true
	default:
		q.dropped.Add(1)
		q.log.Warn().Str("task", name).Msg("background queue full, task dropped")
		return false
	}
}

// Stop prevents new tasks, drains the queue and waits for workers.
func (q *Queue) Stop() {
	if !q.closed.CompareAndSwap(false, true) {
		return
	}
	close(q.pending)
	q.wg.Wait()
}

// Spawned reports how many tasks were accepted. Tests use it to assert that
// a background refresh was attempted.
func (q *Queue) Spawned() int64 { return q.spawned.Load() }

// Finished reports how many tasks have completed (successfully or not).
func (q *Queue) Finished() int64 { return q.finished.Load() }

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-q.pending:
			if !ok {
				return
			}
			q.run(ctx, t)
		}
	}
}

func (q *Queue) run(ctx context.Context, t task) {
	defer q.finished.Add(1)
	defer func() {
		if r := recover(); r != nil {
			q.log.Error().Interface("panic", r).Str("task", t.name).Msg("background task panicked")
		}
	}()
	if err := t.fn(ctx); err != nil {
		q.log.Warn().Err(err).Str("task", t.name).Msg("background task failed")
	}
}
