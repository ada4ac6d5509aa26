// Package threadrunner provides a parallel runner backed by a persistent
// pool of worker goroutines.
//
// A Runner outlives any single decode session and may be shared by
// decoders used one after another. Concurrent calls to Run are serialized.
package threadrunner

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/user/jxlstream/pkg/ports"
)

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("threadrunner: runner closed")

// DefaultNumWorkers returns the default pool size.
func DefaultNumWorkers() int {
	return runtime.NumCPU()
}

// Runner dispatches tasks to a fixed set of worker goroutines.
type Runner struct {
	mu         sync.Mutex
	numWorkers int
	jobs       chan job
	workers    sync.WaitGroup
	closed     bool
}

// job is one task of a batch.
type job struct {
	b     *batch
	index int
}

// batch tracks one Run call.
type batch struct {
	task    ports.TaskFunc
	pending sync.WaitGroup
	failed  atomic.Bool
	errOnce sync.Once
	err     error
}

func (b *batch) fail(err error) {
	b.errOnce.Do(func() {
		b.err = err
		b.failed.Store(true)
	})
}

// New starts a Runner with numWorkers workers.
// A non-positive count uses DefaultNumWorkers.
func New(numWorkers int) *Runner {
	if numWorkers <= 0 {
		numWorkers = DefaultNumWorkers()
	}
	r := &Runner{
		numWorkers: numWorkers,
		jobs:       make(chan job, numWorkers),
	}
	for id := range numWorkers {
		r.workers.Add(1)
		go r.worker(id)
	}
	return r
}

// NumWorkers returns the pool size.
func (r *Runner) NumWorkers() int {
	return r.numWorkers
}

// Run implements ports.ParallelRunner. Thread IDs are worker indices, so
// init receives the pool size even when numTasks is smaller.
func (r *Runner) Run(numTasks int, init ports.InitFunc, task ports.TaskFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if numTasks <= 0 {
		return nil
	}
	if init != nil {
		if err := init(r.numWorkers); err != nil {
			return fmt.Errorf("init: %w", err)
		}
	}

	b := &batch{task: task}
	b.pending.Add(numTasks)
	for i := range numTasks {
		if b.failed.Load() {
			b.pending.Add(-(numTasks - i))
			break
		}
		r.jobs <- job{b: b, index: i}
	}
	b.pending.Wait()

	return b.err
}

// Close stops the workers after in-flight work completes. It is safe to
// call more than once.
func (r *Runner) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.jobs)
	}
	r.mu.Unlock()

	r.workers.Wait()
}

// worker executes jobs until the pool is closed.
func (r *Runner) worker(id int) {
	defer r.workers.Done()

	for j := range r.jobs {
		if !j.b.failed.Load() {
			if err := j.b.task(j.index, id); err != nil {
				j.b.fail(fmt.Errorf("task %d: %w", j.index, err))
			}
		}
		j.b.pending.Done()
	}
}

var _ ports.ParallelRunner = (*Runner)(nil)
