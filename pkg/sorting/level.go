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

// LevelSorter is a bottom-up merge sort that hands every merge of a level
// to the pool and waits for the whole level before doubling the run
// length. The barrier, not queue order, keeps levels apart: a merge of
// runs of length 2s reads the output of two merges of length s.
type LevelSorter struct {
	ex Executor
	options
}

func NewLevelSorter(ex Executor, opts ...Option) *LevelSorter {
	return &LevelSorter{ex: ex, options: newOptions(AlgLevel, opts)}
}

func (s *LevelSorter) Sort(ctx context.Context, a []int) error {
	n := len(a)
	for size := 1; size < n; size *= 2 {
		if err := ctx.Err(); err != nil {
			return err
		}
		spans := levelSpans(n, size)
		if err := s.runLevel(ctx, a, size, spans); err != nil {
			return fmt.Errorf("merge level %d: %w", size, err)
		}
		s.logger.Tracef("level %d done, %d merges", size, len(spans))
	}
	return nil
}

// runLevel submits one merge per span and returns once all of them have
// finished, including when submission fails part way.
func (s *LevelSorter) runLevel(ctx context.Context, a []int, size int, spans []span) error {
	level := pool.NewCountdown(len(spans))
	for i, sp := range spans {
		if err := s.ex.Submit(level.Wrap(s.mergeTask(ctx, a, size, sp))); err != nil {
			level.Skip(len(spans)-i, err)
			break
		}
	}
	return level.Wait()
}

func (s *LevelSorter) mergeTask(ctx context.Context, a []int, size int, sp span) pool.TaskFunc {
	return func(context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		begin := time.Now()
		Merge(sp.of(a), sp.LeftLen)
		s.trace(TaskEvent{Phase: PhaseLevel, Level: size, Span: sp.Range, LeftLen: sp.LeftLen, Begin: begin, End: time.Now()})
		return nil
	}
}
