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
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sdcio/parsort/pkg/array"
	"github.com/sdcio/parsort/pkg/pool"
)

func newPool(t *testing.T, n int) *pool.Pool {
	t.Helper()
	p, err := pool.New(n)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := p.Join(); err != nil && !errors.Is(err, pool.ErrPoolJoined) {
			t.Errorf("join: %v", err)
		}
	})
	return p
}

func newSorter(t *testing.T, name string, workers int, opts ...Option) Sorter {
	t.Helper()
	var ex Executor
	if UsesPool(name) {
		ex = newPool(t, workers)
	}
	s, err := New(name, ex, Params{MaxGoroutines: workers, ForkDepth: 3}, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSorters_Sort(t *testing.T) {
	lengths := []int{0, 1, 2, 3, 5, 8, 31, 32, 33, 1000, 4099}
	for _, name := range Algorithms() {
		for _, workers := range []int{1, 3, 8} {
			s := newSorter(t, name, workers)
			for _, n := range lengths {
				in := array.Generate(n, uint32(n)+7)
				want := append([]int(nil), in...)
				sort.Ints(want)

				got := append([]int(nil), in...)
				if err := s.Sort(context.Background(), got); err != nil {
					t.Fatalf("%s/%d workers/len %d: %v", name, workers, n, err)
				}
				if err := array.Validate(got); err != nil {
					t.Fatalf("%s/%d workers/len %d: %v", name, workers, n, err)
				}
				// sorted permutation of the input
				if d := cmp.Diff(want, got); d != "" {
					t.Fatalf("%s/%d workers/len %d mismatch (-want +got):\n%s", name, workers, n, d)
				}
			}
		}
	}
}

func TestSorters_Duplicates(t *testing.T) {
	for _, name := range Algorithms() {
		s := newSorter(t, name, 4)
		in := make([]int, 517)
		for i := range in {
			in[i] = (i * 7919) % 5
		}
		if err := s.Sort(context.Background(), in); err != nil {
			t.Fatal(err)
		}
		if err := array.Validate(in); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
}

type traceLog struct {
	mu     sync.Mutex
	events []TaskEvent
}

func (l *traceLog) record(ev TaskEvent) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func TestLevelSorter_Scenario(t *testing.T) {
	var log traceLog
	s := NewLevelSorter(newPool(t, 1), WithTracer(log.record))
	a := []int{5, 3, 4, 1, 2}
	if err := s.Sort(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]int{1, 2, 3, 4, 5}, a); d != "" {
		t.Fatalf("mismatch (-want +got):\n%s", d)
	}

	type merge struct {
		Level   int
		Span    Range
		LeftLen int
	}
	var got []merge
	for _, ev := range log.events {
		got = append(got, merge{ev.Level, ev.Span, ev.LeftLen})
	}
	want := []merge{
		{1, Range{0, 2}, 1}, // (5,3) -> (3,5)
		{1, Range{2, 2}, 1}, // (4,1) -> (1,4), 2 untouched
		{2, Range{0, 4}, 2}, // (3,5)+(1,4)
		{4, Range{0, 5}, 4}, // (1,3,4,5)+(2)
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Fatalf("merge trace mismatch (-want +got):\n%s", d)
	}
}

func TestLevelSorter_LevelsDoNotOverlap(t *testing.T) {
	var log traceLog
	s := NewLevelSorter(newPool(t, 8), WithTracer(log.record))
	a := array.Generate(20000, 11)
	if err := s.Sort(context.Background(), a); err != nil {
		t.Fatal(err)
	}

	lastEnd := map[int]time.Time{}
	firstBegin := map[int]time.Time{}
	for _, ev := range log.events {
		if e, ok := lastEnd[ev.Level]; !ok || ev.End.After(e) {
			lastEnd[ev.Level] = ev.End
		}
		if b, ok := firstBegin[ev.Level]; !ok || ev.Begin.Before(b) {
			firstBegin[ev.Level] = ev.Begin
		}
	}
	for size := 1; size*2 < len(a); size *= 2 {
		if firstBegin[size*2].Before(lastEnd[size]) {
			t.Fatalf("level %d started before level %d finished", size*2, size)
		}
	}
}

func TestPartitionSorter_Trace(t *testing.T) {
	var log traceLog
	s := NewPartitionSorter(newPool(t, 4), WithTracer(log.record))
	a := array.Generate(103, 5)
	if err := s.Sort(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if err := array.Validate(a); err != nil {
		t.Fatal(err)
	}

	var slices, finals []TaskEvent
	for _, ev := range log.events {
		switch ev.Phase {
		case PhaseSlice:
			slices = append(slices, ev)
		case PhaseFinalMerge:
			finals = append(finals, ev)
		}
	}
	if len(slices) != 4 {
		t.Fatalf("expected 4 slice tasks, got %d", len(slices))
	}
	// boundaries are merged right to left, always up to the end of the array
	wantFinals := []Range{{50, 53}, {25, 78}, {0, 103}}
	if len(finals) != len(wantFinals) {
		t.Fatalf("expected %d final merges, got %d", len(wantFinals), len(finals))
	}
	for i, ev := range finals {
		if ev.Span != wantFinals[i] {
			t.Errorf("final merge %d: expected %v got %v", i, wantFinals[i], ev.Span)
		}
		if ev.LeftLen != 25 {
			t.Errorf("final merge %d: expected left run of 25, got %d", i, ev.LeftLen)
		}
		for _, sl := range slices {
			if ev.Begin.Before(sl.End) {
				t.Errorf("final merge %d began before slice %d ended", i, sl.Level)
			}
		}
	}
}

var errSubmit = errors.New("submit refused")

// flakyExecutor runs tasks inline and refuses every submission after the
// first accept ones.
type flakyExecutor struct {
	size   int
	accept int
}

func (f *flakyExecutor) Size() int { return f.size }

func (f *flakyExecutor) Submit(t pool.Task) error {
	if f.accept <= 0 {
		return errSubmit
	}
	f.accept--
	_ = t.Run(context.Background())
	return nil
}

func TestPooledSorters_SubmitFailure(t *testing.T) {
	tests := []struct {
		name string
		mk   func(Executor) Sorter
	}{
		{name: AlgLevel, mk: func(ex Executor) Sorter { return NewLevelSorter(ex) }},
		{name: AlgPartition, mk: func(ex Executor) Sorter { return NewPartitionSorter(ex) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.mk(&flakyExecutor{size: 4, accept: 2})
			err := s.Sort(context.Background(), array.Generate(64, 1))
			if !errors.Is(err, errSubmit) {
				t.Fatalf("expected submit error, got %v", err)
			}
		})
	}
}

func TestSorters_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, name := range Algorithms() {
		s := newSorter(t, name, 2)
		err := s.Sort(ctx, array.Generate(100, 3))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", name, err)
		}
	}
}

func TestNew(t *testing.T) {
	if _, err := New("quick", nil, Params{}); err == nil {
		t.Fatal("expected unknown algorithm error")
	}
	if _, err := New(AlgLevel, nil, Params{}); err == nil {
		t.Fatal("expected missing pool error")
	}
	s, err := New(AlgSequential, nil, Params{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*SequentialSorter); !ok {
		t.Fatalf("expected *SequentialSorter, got %T", s)
	}
}
