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

import "golang.org/x/exp/constraints"

// Merge merges the two adjacent ascending runs buf[:leftLen] and
// buf[leftLen:] in place. The left run is copied aside first, so the
// right run is consumed from buf itself. Equal elements keep their order
// (left wins ties).
//
// Concurrent calls must be given disjoint regions.
func Merge[T constraints.Ordered](buf []T, leftLen int) {
	mergeFunc(buf, leftLen, nil, less[T])
}

// MergeFunc is Merge with a caller supplied strict ordering.
func MergeFunc[E any](buf []E, leftLen int, lessFn func(a, b E) bool) {
	mergeFunc(buf, leftLen, nil, lessFn)
}

func less[T constraints.Ordered](a, b T) bool { return a < b }

// mergeFunc does the work of Merge using scratch as the left-run buffer,
// growing it if needed. The (possibly reallocated) scratch is returned so
// callers merging repeatedly can keep reusing it.
func mergeFunc[E any](buf []E, leftLen int, scratch []E, lessFn func(a, b E) bool) []E {
	if leftLen <= 0 || leftLen >= len(buf) {
		return scratch
	}
	scratch = append(scratch[:0], buf[:leftLen]...)

	// k never catches up with j: k = i + (j - leftLen) and i < leftLen.
	i, j, k := 0, leftLen, 0
	for i < len(scratch) && j < len(buf) {
		if lessFn(buf[j], scratch[i]) {
			buf[k] = buf[j]
			j++
		} else {
			buf[k] = scratch[i]
			i++
		}
		k++
	}
	// whatever is left of the right run is already in place
	copy(buf[k:], scratch[i:])
	return scratch
}
