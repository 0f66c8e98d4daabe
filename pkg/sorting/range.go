package sorting

import "fmt"

// Range is a contiguous region of the array being sorted.
type Range struct {
	Start int
	Len   int
}

func (r Range) End() int { return r.Start + r.Len }

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End())
}

// of returns the part of a that r describes.
func (r Range) of(a []int) []int { return a[r.Start:r.End():r.End()] }

// span is one merge: Range covers both runs, the left run is the first
// LeftLen elements.
type span struct {
	Range
	LeftLen int
}

// levelSpans lists the merges of the level where runs have length size.
// A trailing run without a partner is left out; the last right run may be
// short.
func levelSpans(n, size int) []span {
	if size <= 0 || size >= n {
		return nil
	}
	spans := make([]span, 0, (n+2*size-1)/(2*size))
	for left := 0; left < n; left += 2 * size {
		right := left + size
		if right >= n {
			continue
		}
		end := right + size
		if end > n {
			end = n
		}
		spans = append(spans, span{Range: Range{Start: left, Len: end - left}, LeftLen: size})
	}
	return spans
}

// Partition splits [0,n) into exactly parts contiguous ranges of n/parts
// elements; the last one also takes the remainder.
func Partition(n, parts int) []Range {
	if parts < 1 {
		parts = 1
	}
	base := n / parts
	out := make([]Range, parts)
	for i := 0; i < parts-1; i++ {
		out[i] = Range{Start: i * base, Len: base}
	}
	last := (parts - 1) * base
	out[parts-1] = Range{Start: last, Len: n - last}
	return out
}
