package core

import "golang.org/x/exp/constraints"

// Series is an append-only numeric sequence with rolling-window helpers,
// used for indicator histories.
type Series[T constraints.Float] []T

// Values returns the underlying slice.
func (s Series[T]) Values() []T { return s }

// Length returns the number of stored values.
func (s Series[T]) Length() int { return len(s) }

// Last returns the value at position (length-1-index). Last(0) is the
// most recent value.
func (s Series[T]) Last(index int) T {
	return s[len(s)-index-1]
}

// LastValues returns up to size most recent values, oldest first.
func (s Series[T]) LastValues(size int) []T {
	if l := len(s); l > size {
		return s[l-size:]
	}
	return s
}

// Push appends a value, trimming from the front once maxLen is exceeded.
func (s *Series[T]) Push(value T, maxLen int) {
	*s = append(*s, value)
	if maxLen > 0 && len(*s) > maxLen {
		*s = (*s)[len(*s)-maxLen:]
	}
}

// Crossover reports whether s crossed above ref on the latest value.
func (s Series[T]) Crossover(ref Series[T]) bool {
	if len(s) < 2 || len(ref) < 2 {
		return false
	}
	return s.Last(0) > ref.Last(0) && s.Last(1) <= ref.Last(1)
}

// Crossunder reports whether s crossed below ref on the latest value.
func (s Series[T]) Crossunder(ref Series[T]) bool {
	if len(s) < 2 || len(ref) < 2 {
		return false
	}
	return s.Last(0) < ref.Last(0) && s.Last(1) >= ref.Last(1)
}
