package sorting

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// BoundedSorter is the bottom-up merge sort without a pool: every merge of
// a level gets its own goroutine, at most limit of them at a time. When
// the limit is reached the level waits for a slot instead of merging on
// the calling goroutine.
type BoundedSorter struct {
	limit int64
	options
}

func NewBoundedSorter(limit int, opts ...Option) *BoundedSorter {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	return &BoundedSorter{limit: int64(limit), options: newOptions(AlgBounded, opts)}
}

func (s *BoundedSorter) Sort(ctx context.Context, a []int) error {
	sem := semaphore.NewWeighted(s.limit)
	n := len(a)
	for size := 1; size < n; size *= 2 {
		g, gctx := errgroup.WithContext(ctx)
		for _, sp := range levelSpans(n, size) {
			if err := sem.Acquire(gctx, 1); err != nil {
				break
			}
			sp := sp
			g.Go(func() error {
				defer sem.Release(1)
				if err := gctx.Err(); err != nil {
					return err
				}
				begin := time.Now()
				Merge(sp.of(a), sp.LeftLen)
				s.trace(TaskEvent{Phase: PhaseLevel, Level: size, Span: sp.Range, LeftLen: sp.LeftLen, Begin: begin, End: time.Now()})
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("merge level %d: %w", size, err)
		}
		// Acquire may have given up on a cancelled ctx without any merge failing
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
