package vocab

import (
	"cmp"
	"slices"
)

// Set is a hash set whose iteration is always through Sorted, so results never
// depend on insertion order. The zero value is ready to use.
type Set[T cmp.Ordered] struct {
	m map[T]struct{}
}

// Add inserts v and reports whether it was new.
func (s *Set[T]) Add(v T) bool {
	if s.m == nil {
		s.m = make(map[T]struct{})
	}
	if _, ok := s.m[v]; ok {
		return false
	}
	s.m[v] = struct{}{}
	return true
}

// Has reports membership.
func (s *Set[T]) Has(v T) bool {
	_, ok := s.m[v]
	return ok
}

// Len returns the number of members.
func (s *Set[T]) Len() int { return len(s.m) }

// Sorted returns the members in ascending order.
func (s *Set[T]) Sorted() []T {
	out := make([]T, 0, len(s.m))
	for v := range s.m {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
