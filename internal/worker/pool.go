// Package worker runs CPU-bound jobs on a fixed set of goroutines.
//
// Jobs start in FIFO order subject to worker availability, but completions
// arrive in any order: a fast job queued after a slow one may finish first.
// Callers correlate completions by the sequence number they submitted with,
// never by submission order.
package worker

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Completion pairs a finished job's value with the sequence number it was
// submitted under.
type Completion[T any] struct {
	Seq   uint64
	Value T
}

type job[T any] struct {
	seq uint64
	run func() T
}

// Pool is a fixed-size worker pool with a bounded FIFO queue.
type Pool[T any] struct {
	jobs    chan job[T]
	results chan Completion[T]
	active  atomic.Int64
	wg      sync.WaitGroup

	mu     sync.RWMutex // guards closed against Submit/Close races
	closed bool
}

// New starts numWorkers goroutines with room for queueCap queued jobs.
func New[T any](numWorkers, queueCap int) (*Pool[T], error) {
	if numWorkers <= 0 {
		return nil, fmt.Errorf("worker: %d workers, want > 0", numWorkers)
	}
	if queueCap <= 0 {
		return nil, fmt.Errorf("worker: queue capacity %d, want > 0", queueCap)
	}

	p := &Pool[T]{
		jobs: make(chan job[T], queueCap),
		// Sized so workers can always deliver without blocking each other
		// indefinitely while the consumer drains per frame.
		results: make(chan Completion[T], queueCap+numWorkers),
	}
	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.work()
	}
	return p, nil
}

func (p *Pool[T]) work() {
	defer p.wg.Done()
	for j := range p.jobs {
		v := j.run()
		p.active.Add(-1)
		p.results <- Completion[T]{Seq: j.seq, Value: v}
	}
}

// Submit queues a job under a caller-chosen sequence number. It returns
// false when the queue is full (back-pressure) or the pool is closed;
// the job is not queued in that case.
func (p *Pool[T]) Submit(seq uint64, run func() T) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	p.active.Add(1)
	select {
	case p.jobs <- job[T]{seq: seq, run: run}:
		return true
	default:
		p.active.Add(-1)
		return false
	}
}

// Results returns the completion channel. Completions remain readable
// after Close until the channel drains.
func (p *Pool[T]) Results() <-chan Completion[T] {
	return p.results
}

// Busy reports whether any job is queued or in flight. Orchestrators use
// it to avoid destructive operations while builds are outstanding.
func (p *Pool[T]) Busy() bool {
	return p.active.Load() > 0
}

// Close stops accepting jobs, waits for in-flight jobs to finish and then
// closes the results channel.
func (p *Pool[T]) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	close(p.results)
}
