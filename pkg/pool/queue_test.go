package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolQueue_FIFO(t *testing.T) {
	q := NewWorkerPoolQueue[int]()
	for i := 0; i < 10; i++ {
		if err := q.Put(i); err != nil {
			t.Fatal(err)
		}
	}
	if got := q.Len(); got != 10 {
		t.Fatalf("expected len 10, got %d", got)
	}
	for i := 0; i < 10; i++ {
		v, err := q.Get(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if v != i {
			t.Fatalf("expected %d got %d", i, v)
		}
	}
	if _, ok := q.TryGet(); ok {
		t.Fatalf("expected empty queue")
	}
}

func TestWorkerPoolQueue_GetBlocksUntilPut(t *testing.T) {
	q := NewWorkerPoolQueue[string]()
	got := make(chan string, 1)
	go func() {
		v, err := q.Get(context.Background())
		if err != nil {
			t.Error(err)
		}
		got <- v
	}()

	select {
	case v := <-got:
		t.Fatalf("Get returned %q on an empty queue", v)
	case <-time.After(50 * time.Millisecond):
	}

	if err := q.Put("x"); err != nil {
		t.Fatal(err)
	}
	select {
	case v := <-got:
		if v != "x" {
			t.Fatalf("expected x got %q", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Get did not wake up after Put")
	}
}

func TestWorkerPoolQueue_GetCancelled(t *testing.T) {
	q := NewWorkerPoolQueue[int]()
	ctx, cancel := context.WithCancel(context.Background())

	errC := make(chan error, 1)
	go func() {
		_, err := q.Get(ctx)
		errC <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errC:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled Get did not return")
	}

	// the lock must have been released and nothing consumed
	if err := q.Put(7); err != nil {
		t.Fatal(err)
	}
	v, ok := q.TryGet()
	if !ok || v != 7 {
		t.Fatalf("expected 7, got %d (ok=%v)", v, ok)
	}
}

func TestWorkerPoolQueue_Close(t *testing.T) {
	q := NewWorkerPoolQueue[int]()
	_ = q.Put(1)
	_ = q.Put(2)
	if dropped := q.Close(); dropped != 2 {
		t.Fatalf("expected 2 dropped items, got %d", dropped)
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue after close, got %d", q.Len())
	}
	if err := q.Put(3); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if _, err := q.Get(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed from Get, got %v", err)
	}
}

func TestWorkerPoolQueue_Stress(t *testing.T) {
	q := NewWorkerPoolQueue[int]()
	const producers = 8
	const consumers = 16
	const perProducer = 5000
	total := int64(producers * perProducer)

	var consumed int64
	var sum int64
	var wg sync.WaitGroup
	wg.Add(consumers)
	for i := 0; i < consumers; i++ {
		go func() {
			defer wg.Done()
			for {
				v, err := q.Get(context.Background())
				if err != nil {
					return
				}
				atomic.AddInt64(&sum, int64(v))
				if atomic.AddInt64(&consumed, 1) == total {
					q.Close()
				}
			}
		}()
	}

	var pwg sync.WaitGroup
	pwg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(base int) {
			defer pwg.Done()
			for i := 0; i < perProducer; i++ {
				if err := q.Put(base*perProducer + i); err != nil {
					t.Error(err)
				}
			}
		}(p)
	}
	pwg.Wait()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("consumers did not finish, consumed=%d", atomic.LoadInt64(&consumed))
	}

	if got := atomic.LoadInt64(&consumed); got != total {
		t.Fatalf("expected %d consumed, got %d", total, got)
	}
	want := total * (total - 1) / 2
	if got := atomic.LoadInt64(&sum); got != want {
		t.Fatalf("expected sum %d, got %d", want, got)
	}
}
