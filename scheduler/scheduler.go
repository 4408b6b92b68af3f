// Package scheduler runs per-agent update tasks on a fixed pool of
// long-lived workers and provides the barrier that separates the parallel
// phase of a tick from the serial phase.
package scheduler

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Submit once the pool has been closed.
var ErrClosed = errors.New("scheduler: pool closed")

// Task is one unit of work: a fixed update function applied to an agent index.
// Run must not panic; a panic inside a task is a defect and crashes the process.
type Task struct {
	Index int
	Run   func(index int)
}

// Pool is a fixed-size worker pool fed by a FIFO queue.
//
// The orchestrator drives it one tick at a time: StartTick, one Submit per
// task, then AwaitDrain. StartTick must only be called while no tasks from
// the previous tick are outstanding.
type Pool struct {
	mu       sync.Mutex
	nonEmpty *sync.Cond // signalled when a task is queued or the pool closes
	drained  *sync.Cond // broadcast after every completed task

	queue []Task
	head  int

	submitted int64        // guarded by mu
	completed atomic.Int64 // incremented by workers

	closed  bool
	workers int
	wg      sync.WaitGroup
}

// New starts a pool with the given number of workers (at least one).
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}

	p := &Pool{
		queue:   make([]Task, 0, 256),
		workers: workers,
	}
	p.nonEmpty = sync.NewCond(&p.mu)
	p.drained = sync.NewCond(&p.mu)

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	slog.Debug("scheduler_started", "workers", workers)
	return p
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// StartTick resets the completed counter and the submitted count for a new tick.
func (p *Pool) StartTick() {
	p.mu.Lock()
	p.submitted = 0
	p.completed.Store(0)
	p.mu.Unlock()
}

// Submit enqueues a task and wakes one idle worker.
func (p *Pool) Submit(t Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	p.queue = append(p.queue, t)
	p.submitted++
	p.nonEmpty.Signal()
	return nil
}

// AwaitDrain blocks until every task submitted since StartTick has completed.
// It returns the number of completed tasks.
func (p *Pool) AwaitDrain() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.completed.Load() < p.submitted {
		p.drained.Wait()
	}
	return p.completed.Load()
}

// Completed returns the number of tasks finished since the last StartTick.
func (p *Pool) Completed() int64 {
	return p.completed.Load()
}

// Close stops accepting tasks, lets workers finish what is queued, and waits
// for them to exit. It is safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.nonEmpty.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
	slog.Debug("scheduler_stopped", "workers", p.workers)
}

// worker pops tasks until the pool is closed and the queue is empty.
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for p.head == len(p.queue) && !p.closed {
			p.nonEmpty.Wait()
		}
		if p.head == len(p.queue) {
			p.mu.Unlock()
			return
		}

		t := p.queue[p.head]
		p.queue[p.head] = Task{}
		p.head++
		if p.head == len(p.queue) {
			p.queue = p.queue[:0]
			p.head = 0
		}
		p.mu.Unlock()

		t.Run(t.Index)

		// Increment under the lock so AwaitDrain cannot miss the wakeup
		// between its check and its Wait.
		p.mu.Lock()
		p.completed.Add(1)
		p.drained.Broadcast()
		p.mu.Unlock()
	}
}
