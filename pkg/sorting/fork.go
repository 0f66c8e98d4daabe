package sorting

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultForkDepth = 5

// ForkSorter is a top-down merge sort that sorts the left half on a new
// goroutine while the current one sorts the right half, until depth
// levels of forking have been used up. Below that it recurses serially.
type ForkSorter struct {
	depth int
	options
}

func NewForkSorter(depth int, opts ...Option) *ForkSorter {
	if depth < 0 {
		depth = defaultForkDepth
	}
	return &ForkSorter{depth: depth, options: newOptions(AlgFork, opts)}
}

func (s *ForkSorter) Sort(ctx context.Context, a []int) error {
	return s.sort(ctx, a, 0, s.depth)
}

// start is the offset of a in the caller's array, for tracing only.
func (s *ForkSorter) sort(ctx context.Context, a []int, start, depth int) error {
	if len(a) < 2 {
		return nil
	}
	if depth <= 0 {
		SortRuns(a)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// the left half takes the odd element
	leftLen := len(a) - len(a)/2
	left, right := a[:leftLen:leftLen], a[leftLen:]

	var g errgroup.Group
	g.Go(func() error { return s.sort(ctx, left, start, depth-1) })
	rerr := s.sort(ctx, right, start+leftLen, depth-1)
	if err := g.Wait(); err != nil {
		return err
	}
	if rerr != nil {
		return rerr
	}

	begin := time.Now()
	Merge(a, leftLen)
	s.trace(TaskEvent{Phase: PhaseLevel, Level: depth, Span: Range{Start: start, Len: len(a)}, LeftLen: leftLen, Begin: begin, End: time.Now()})
	return nil
}
