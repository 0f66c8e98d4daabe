package sorting

import "fmt"

// RunStack sorts a buffer by run accumulation. Runs are appended left to
// right; whenever the two newest pending runs have the same length they are
// merged, the way a binary counter carries. The pending stack therefore
// never holds more than about log2(len(buf))+1 runs.
type RunStack struct {
	buf     []int
	pending []int // run lengths, oldest first
	total   int   // buf[:total] is covered by pending runs
	scratch []int
}

// NewRunStack returns an empty run stack over buf.
func NewRunStack(buf []int) *RunStack {
	return &RunStack{buf: buf}
}

// Push appends the next n elements of the buffer as a run. The run must
// already be ascending; a single element always is.
func (s *RunStack) Push(n int) {
	if n <= 0 {
		return
	}
	if s.total+n > len(s.buf) {
		panic(fmt.Sprintf("runstack: run of %d at %d overflows buffer of %d", n, s.total, len(s.buf)))
	}
	s.pending = append(s.pending, n)
	s.total += n

	for len(s.pending) >= 2 {
		top := len(s.pending) - 1
		if s.pending[top] != s.pending[top-1] {
			break
		}
		s.mergeTop()
	}
}

// Collapse merges whatever runs are still pending, newest (and smallest)
// pair first, until at most one run remains.
func (s *RunStack) Collapse() {
	for len(s.pending) > 1 {
		s.mergeTop()
	}
}

func (s *RunStack) mergeTop() {
	top := len(s.pending) - 1
	right, left := s.pending[top], s.pending[top-1]
	start := s.total - right - left
	s.scratch = mergeFunc(s.buf[start:s.total], left, s.scratch, less[int])
	s.pending = s.pending[:top]
	s.pending[top-1] = left + right
}

// Lengths returns a copy of the pending run lengths, oldest first.
func (s *RunStack) Lengths() []int {
	out := make([]int, len(s.pending))
	copy(out, s.pending)
	return out
}

// Covered is the number of leading elements already pushed.
func (s *RunStack) Covered() int { return s.total }

// SortRuns sorts buf in place by pushing every element as a unit run and
// collapsing the leftovers.
func SortRuns(buf []int) {
	if len(buf) < 2 {
		return
	}
	s := NewRunStack(buf)
	for range buf {
		s.Push(1)
	}
	s.Collapse()
}
