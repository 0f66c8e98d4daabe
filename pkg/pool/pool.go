// Copyright 2024 Nokia
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	ErrNoWorkers   = errors.New("pool needs at least one worker")
	ErrWorkerStart = errors.New("worker failed to start")
	ErrPoolJoined  = errors.New("pool is joined")
)

// Task is a unit of work executed by a pool worker.
type Task interface {
	Run(ctx context.Context) error
}

// TaskFunc convenience adapter so closures are easy to submit.
type TaskFunc func(ctx context.Context) error

func (f TaskFunc) Run(ctx context.Context) error {
	if f == nil {
		return nil
	}
	return f(ctx)
}

type jobKind uint8

const (
	jobWork jobKind = iota
	// jobStop tells the worker that dequeues it to exit.
	jobStop
)

type job struct {
	kind jobKind
	task Task
}

// StartError reports which worker failed to come up during New.
type StartError struct {
	Worker int
	Err    error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("%v: worker %d: %v", ErrWorkerStart, e.Worker, e.Err)
}

func (e *StartError) Unwrap() []error { return []error{ErrWorkerStart, e.Err} }

// Pool is a fixed-size set of workers draining one shared FIFO queue.
// The size never changes after New. Only the goroutine that created the
// pool may call Join.
type Pool struct {
	jobs    *WorkerPoolQueue[job]
	workers int

	// ctx is only cancelled to tear down workers when New rolls back.
	ctx    context.Context
	cancel context.CancelFunc

	workersWg sync.WaitGroup
	joining   atomic.Bool

	firstErr atomic.Pointer[error]

	lockOSThread bool
	workerInit   func(id int) error
	metrics      *Metrics
	logger       *log.Entry
}

type Option func(*Pool)

// WithLockOSThread wires every worker to its own OS thread for its lifetime.
func WithLockOSThread() Option {
	return func(p *Pool) { p.lockOSThread = true }
}

// WithWorkerInit runs fn on each worker before it starts pulling jobs.
// A non-nil error aborts New.
func WithWorkerInit(fn func(id int) error) Option {
	return func(p *Pool) { p.workerInit = fn }
}

func WithMetrics(m *Metrics) Option {
	return func(p *Pool) { p.metrics = m }
}

func WithLogger(l *log.Entry) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// New starts a pool of n workers. Either all n workers are running when New
// returns, or none are and the error says why.
func New(n int, opts ...Option) (*Pool, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNoWorkers, n)
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:    NewWorkerPoolQueue[job](),
		workers: n,
		ctx:     ctx,
		cancel:  cancel,
		logger:  log.NewEntry(log.StandardLogger()),
	}
	for _, o := range opts {
		o(p)
	}
	p.logger = p.logger.WithField("pool-size", n)

	started := make(chan error, n)
	p.workersWg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker(i, started)
	}

	var startErr error
	for i := 0; i < n; i++ {
		if err := <-started; err != nil && startErr == nil {
			startErr = err
		}
	}
	if startErr != nil {
		// workers that did start are parked in Get; cancelling ctx unblocks them.
		p.cancel()
		p.workersWg.Wait()
		p.jobs.Close()
		p.logger.Errorf("pool creation rolled back: %v", startErr)
		return nil, startErr
	}
	p.logger.Debugf("pool started")
	return p, nil
}

func (p *Pool) worker(id int, started chan<- error) {
	defer p.workersWg.Done()
	if p.lockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	if p.workerInit != nil {
		if err := p.workerInit(id); err != nil {
			started <- &StartError{Worker: id, Err: err}
			return
		}
	}
	started <- nil

	for {
		j, err := p.jobs.Get(p.ctx)
		if err != nil {
			// rollback or closed queue
			return
		}
		if j.kind == jobStop {
			p.logger.Tracef("worker %d stopping", id)
			return
		}
		p.execute(id, j.task)
	}
}

// execute runs one task, turning a panic into an error so the worker survives.
func (p *Pool) execute(id int, t Task) {
	p.metrics.taskStarted(p.jobs.Len())
	begin := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panicked: %v", r)
			}
		}()
		return t.Run(p.ctx)
	}()
	p.metrics.taskFinished(time.Since(begin), err)
	if err != nil {
		p.logger.Warnf("worker %d: task failed: %v", id, err)
		ep := new(error)
		*ep = err
		p.firstErr.CompareAndSwap(nil, ep)
	}
}

// Size returns the fixed number of workers.
func (p *Pool) Size() int { return p.workers }

// Submit enqueues t and returns immediately. Completion is not reported
// back; callers that need it use a Countdown.
func (p *Pool) Submit(t Task) error {
	if t == nil {
		return errors.New("nil task")
	}
	if p.joining.Load() {
		return ErrPoolJoined
	}
	if err := p.jobs.Put(job{kind: jobWork, task: t}); err != nil {
		return err
	}
	p.metrics.taskSubmitted(p.jobs.Len())
	return nil
}

// SubmitFunc convenience to submit a TaskFunc.
func (p *Pool) SubmitFunc(f TaskFunc) error { return p.Submit(f) }

// Join queues one stop job per worker behind any pending work, waits for
// every worker to exit and releases the queue. It returns the first task
// error seen over the pool's lifetime. The pool can't be used afterwards.
func (p *Pool) Join() error {
	if !p.joining.CompareAndSwap(false, true) {
		return ErrPoolJoined
	}
	for i := 0; i < p.workers; i++ {
		if err := p.jobs.Put(job{kind: jobStop}); err != nil {
			return err
		}
	}
	p.workersWg.Wait()
	p.jobs.Close()
	p.cancel()
	p.logger.Debugf("pool joined")
	if e := p.firstErr.Load(); e != nil && *e != nil {
		return *e
	}
	return nil
}
