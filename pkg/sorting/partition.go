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

package sorting

import (
	"context"
	"fmt"
	"time"

	"github.com/sdcio/parsort/pkg/pool"
)

// PartitionSorter cuts the array into one slice per pool worker, sorts
// the slices concurrently with a RunStack each, then merges the sorted
// slices on the calling goroutine.
type PartitionSorter struct {
	ex Executor
	options
}

func NewPartitionSorter(ex Executor, opts ...Option) *PartitionSorter {
	return &PartitionSorter{ex: ex, options: newOptions(AlgPartition, opts)}
}

func (s *PartitionSorter) Sort(ctx context.Context, a []int) error {
	if len(a) < 2 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	slices := Partition(len(a), s.ex.Size())

	round := pool.NewCountdown(len(slices))
	for i, r := range slices {
		if err := s.ex.Submit(round.Wrap(s.sliceTask(ctx, a, i, r))); err != nil {
			round.Skip(len(slices)-i, err)
			break
		}
	}
	if err := round.Wait(); err != nil {
		return fmt.Errorf("sort slices: %w", err)
	}
	s.logger.Tracef("%d slices sorted", len(slices))

	if err := ctx.Err(); err != nil {
		return err
	}
	s.mergeSlices(a, slices)
	return nil
}

func (s *PartitionSorter) sliceTask(ctx context.Context, a []int, idx int, r Range) pool.TaskFunc {
	return func(context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		begin := time.Now()
		SortRuns(r.of(a))
		s.trace(TaskEvent{Phase: PhaseSlice, Level: idx, Span: r, Begin: begin, End: time.Now()})
		return nil
	}
}

// mergeSlices folds the sorted slices together from the right: slice i-1
// is merged with everything after it, which is already one sorted run.
func (s *PartitionSorter) mergeSlices(a []int, slices []Range) {
	var scratch []int
	for i := len(slices) - 1; i > 0; i-- {
		left := slices[i-1]
		tail := Range{Start: left.Start, Len: len(a) - left.Start}
		begin := time.Now()
		scratch = mergeFunc(tail.of(a), left.Len, scratch, less[int])
		s.trace(TaskEvent{Phase: PhaseFinalMerge, Level: i, Span: tail, LeftLen: left.Len, Begin: begin, End: time.Now()})
	}
}
