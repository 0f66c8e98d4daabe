package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var ErrClosed = errors.New("queue closed")

// noCopy may be embedded into structs which must not be copied after first use.
// go vet will warn on accidental copies (it looks for Lock methods).
type noCopy struct{}

func (*noCopy) Lock() {}

// node for single-lock queue (plain pointer; protected by mu)
type node[T any] struct {
	val  T
	next *node[T]
}

// WorkerPoolQueue is a simple, single-mutex MPMC FIFO queue.
// Put never blocks; Get blocks until an item is available, the queue is
// closed or the caller's context is done.
type WorkerPoolQueue[T any] struct {
	noCopy noCopy

	mu     sync.Mutex
	cond   *sync.Cond
	head   *node[T] // sentinel
	tail   *node[T]
	closed bool
	size   int64 // track queued count (atomic operations used for Len to avoid taking mu)
}

// NewWorkerPoolQueue constructs a new queue.
func NewWorkerPoolQueue[T any]() *WorkerPoolQueue[T] {
	s := &node[T]{}
	q := &WorkerPoolQueue[T]{head: s, tail: s}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Put appends v at the tail and wakes one blocked consumer.
func (q *WorkerPoolQueue[T]) Put(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	n := &node[T]{val: v}
	q.tail.next = n
	q.tail = n
	atomic.AddInt64(&q.size, 1)
	// signal one waiter (consumer checks under mu)
	q.cond.Signal()
	return nil
}

// Get removes and returns the head item, blocking while the queue is empty.
// It returns ctx.Err() if ctx is done before an item arrives and ErrClosed
// once the queue is closed and drained. On both error paths no item is
// removed and the lock is released.
func (q *WorkerPoolQueue[T]) Get(ctx context.Context) (T, error) {
	var zero T
	// sync.Cond has no notion of cancellation, so a cancelled context
	// broadcasts under mu. Taking mu in the callback means the wakeup can't
	// slip in between the ctx check below and cond.Wait.
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for q.head.next == nil {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if q.closed {
			return zero, ErrClosed
		}
		q.cond.Wait()
	}
	return q.pop(), nil
}

// TryGet removes the head item if there is one.
func (q *WorkerPoolQueue[T]) TryGet() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head.next == nil {
		var zero T
		return zero, false
	}
	return q.pop(), true
}

// pop unlinks head.next; mu must be held and the queue non-empty.
func (q *WorkerPoolQueue[T]) pop() T {
	n := q.head.next
	q.head.next = n.next
	if q.head.next == nil {
		q.tail = q.head
	}
	atomic.AddInt64(&q.size, -1)
	return n.val
}

func (q *WorkerPoolQueue[T]) Len() int {
	return int(atomic.LoadInt64(&q.size))
}

// Close rejects further Puts, drops whatever is still queued and wakes all
// blocked consumers. It returns the number of dropped items.
func (q *WorkerPoolQueue[T]) Close() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	dropped := 0
	for q.head.next != nil {
		q.pop()
		dropped++
	}
	q.closed = true
	q.cond.Broadcast()
	return dropped
}
