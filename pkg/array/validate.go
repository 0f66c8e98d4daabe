package array

import "fmt"

// InversionError is the first position where a sorted array goes down.
type InversionError struct {
	Index int // a[Index-1] > a[Index]
	Prev  int
	Next  int
}

func (e *InversionError) Error() string {
	return fmt.Sprintf("ascending order is expected: a[%d]=%d > a[%d]=%d", e.Index-1, e.Prev, e.Index, e.Next)
}

// Validate scans a once and returns an *InversionError for the first
// adjacent pair out of order.
func Validate(a []int) error {
	for i := 1; i < len(a); i++ {
		if a[i] < a[i-1] {
			return &InversionError{Index: i, Prev: a[i-1], Next: a[i]}
		}
	}
	return nil
}
