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
	"fmt"
	"sync"
	"sync/atomic"
)

// Countdown is a one-shot completion barrier for a known number of tasks.
// Every expected task must report exactly once, via Done, Skip or a task
// built by Wrap; Wait returns after the last report.
type Countdown struct {
	remaining atomic.Int64
	once      sync.Once
	done      chan struct{}

	mu   sync.Mutex
	errs []error
}

// NewCountdown returns a barrier expecting n completions. With n == 0 it
// is already released.
func NewCountdown(n int) *Countdown {
	c := &Countdown{done: make(chan struct{})}
	c.remaining.Store(int64(n))
	if n <= 0 {
		c.release()
	}
	return c
}

func (c *Countdown) release() {
	c.once.Do(func() { close(c.done) })
}

func (c *Countdown) record(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
}

// Done reports one completion, with err if the task failed.
func (c *Countdown) Done(err error) {
	c.Skip(1, err)
}

// Skip reports n completions at once, typically for tasks that were never
// submitted because submission failed part way through.
func (c *Countdown) Skip(n int, err error) {
	if n <= 0 {
		return
	}
	c.record(err)
	left := c.remaining.Add(int64(-n))
	if left < 0 {
		panic(fmt.Sprintf("countdown: %d more completions than expected", -left))
	}
	if left == 0 {
		c.release()
	}
}

// Wrap returns a task that runs t and reports its outcome exactly once,
// panics included.
func (c *Countdown) Wrap(t Task) Task {
	return TaskFunc(func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panicked: %v", r)
			}
			c.Done(err)
		}()
		return t.Run(ctx)
	})
}

// Remaining is the number of completions still outstanding.
func (c *Countdown) Remaining() int {
	return int(c.remaining.Load())
}

// Wait blocks until the count reaches zero and returns the first reported
// error, if any.
func (c *Countdown) Wait() error {
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errs) > 0 {
		return c.errs[0]
	}
	return nil
}

// Errors returns a snapshot of every reported error.
func (c *Countdown) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]error, len(c.errs))
	copy(out, c.errs)
	return out
}
