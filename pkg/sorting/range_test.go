package sorting

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLevelSpans(t *testing.T) {
	tests := []struct {
		name string
		n    int
		size int
		want []span
	}{
		{name: "too short", n: 1, size: 1, want: nil},
		{name: "five by one", n: 5, size: 1, want: []span{
			{Range{0, 2}, 1}, {Range{2, 2}, 1},
		}},
		{name: "five by two", n: 5, size: 2, want: []span{
			{Range{0, 4}, 2},
		}},
		{name: "five by four", n: 5, size: 4, want: []span{
			{Range{0, 5}, 4},
		}},
		{name: "short right run", n: 7, size: 2, want: []span{
			{Range{0, 4}, 2}, {Range{4, 3}, 2},
		}},
		{name: "size reaches n", n: 4, size: 4, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := levelSpans(tt.n, tt.size)
			if d := cmp.Diff(tt.want, got); d != "" {
				t.Errorf("levelSpans(%d, %d) mismatch (-want +got):\n%s", tt.n, tt.size, d)
			}
		})
	}
}

func TestPartition(t *testing.T) {
	tests := []struct {
		n, parts int
		want     []Range
	}{
		{n: 10, parts: 3, want: []Range{{0, 3}, {3, 3}, {6, 4}}},
		{n: 8, parts: 4, want: []Range{{0, 2}, {2, 2}, {4, 2}, {6, 2}}},
		{n: 2, parts: 4, want: []Range{{0, 0}, {0, 0}, {0, 0}, {0, 2}}},
		{n: 5, parts: 1, want: []Range{{0, 5}}},
	}
	for _, tt := range tests {
		got := Partition(tt.n, tt.parts)
		if d := cmp.Diff(tt.want, got); d != "" {
			t.Errorf("Partition(%d, %d) mismatch (-want +got):\n%s", tt.n, tt.parts, d)
		}
		// every index covered exactly once
		next := 0
		for _, r := range got {
			if r.Start != next {
				t.Errorf("Partition(%d, %d): gap or overlap at %v", tt.n, tt.parts, r)
			}
			next = r.End()
		}
		if next != tt.n {
			t.Errorf("Partition(%d, %d) covers %d elements", tt.n, tt.parts, next)
		}
	}
}
