package sorting

import (
	"context"
	"time"
)

// SequentialSorter runs the RunStack sort on the calling goroutine.
type SequentialSorter struct {
	options
}

func NewSequentialSorter(opts ...Option) *SequentialSorter {
	return &SequentialSorter{options: newOptions(AlgSequential, opts)}
}

func (s *SequentialSorter) Sort(ctx context.Context, a []int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	begin := time.Now()
	SortRuns(a)
	s.trace(TaskEvent{Phase: PhaseSlice, Span: Range{Len: len(a)}, Begin: begin, End: time.Now()})
	return nil
}
