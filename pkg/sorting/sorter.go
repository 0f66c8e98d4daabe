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
	"sort"
	"time"

	"github.com/sdcio/parsort/pkg/pool"
	log "github.com/sirupsen/logrus"
)

// Sorter sorts an int slice in place, ascending.
type Sorter interface {
	Sort(ctx context.Context, a []int) error
}

// Executor is the part of *pool.Pool the pooled sorters need.
type Executor interface {
	Submit(pool.Task) error
	Size() int
}

// Phase says which part of a sort a traced task belongs to.
type Phase string

const (
	PhaseLevel      Phase = "level"
	PhaseSlice      Phase = "slice"
	PhaseFinalMerge Phase = "final-merge"
)

// TaskEvent describes one finished unit of sorting work.
type TaskEvent struct {
	Phase Phase
	// Level is the run length being merged for PhaseLevel, the slice index
	// for PhaseSlice and the boundary index for PhaseFinalMerge.
	Level   int
	Span    Range
	LeftLen int
	Begin   time.Time
	End     time.Time
}

// Tracer receives a TaskEvent for every task. It is called from worker
// goroutines and must be safe for concurrent use.
type Tracer func(TaskEvent)

type options struct {
	tracer Tracer
	logger *log.Entry
}

type Option func(*options)

func WithTracer(t Tracer) Option {
	return func(o *options) { o.tracer = t }
}

func WithLogger(l *log.Entry) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(name string, opts []Option) options {
	o := options{logger: log.NewEntry(log.StandardLogger())}
	for _, fn := range opts {
		fn(&o)
	}
	o.logger = o.logger.WithField("algorithm", name)
	return o
}

func (o *options) trace(ev TaskEvent) {
	if o.tracer != nil {
		o.tracer(ev)
	}
}

// Algorithm names as accepted by New.
const (
	AlgLevel      = "level"
	AlgPartition  = "partition"
	AlgBounded    = "bounded"
	AlgFork       = "fork"
	AlgSequential = "sequential"
)

// Params carries the knobs New needs for algorithms that don't run on the pool.
type Params struct {
	// MaxGoroutines caps concurrent merges for the bounded sorter.
	MaxGoroutines int
	// ForkDepth limits how deep the fork sorter keeps spawning goroutines.
	ForkDepth int
}

// Algorithms lists every name New accepts, sorted.
func Algorithms() []string {
	names := []string{AlgLevel, AlgPartition, AlgBounded, AlgFork, AlgSequential}
	sort.Strings(names)
	return names
}

// UsesPool reports whether algorithm name schedules its work on an Executor.
func UsesPool(name string) bool {
	return name == AlgLevel || name == AlgPartition
}

// New returns the sorter registered under name. ex is required for the
// pooled algorithms and ignored by the others.
func New(name string, ex Executor, p Params, opts ...Option) (Sorter, error) {
	if UsesPool(name) && ex == nil {
		return nil, fmt.Errorf("algorithm %q needs a worker pool", name)
	}
	switch name {
	case AlgLevel:
		return NewLevelSorter(ex, opts...), nil
	case AlgPartition:
		return NewPartitionSorter(ex, opts...), nil
	case AlgBounded:
		return NewBoundedSorter(p.MaxGoroutines, opts...), nil
	case AlgFork:
		return NewForkSorter(p.ForkDepth, opts...), nil
	case AlgSequential:
		return NewSequentialSorter(opts...), nil
	}
	return nil, fmt.Errorf("unknown algorithm %q, expected one of %v", name, Algorithms())
}
