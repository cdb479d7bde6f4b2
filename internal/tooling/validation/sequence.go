package validation

import "slices"

// Ordered is a canonical ordering key.
type Ordered[K any] interface {
	Compare(K) int
}

// SequenceMismatch describes the first record whose id breaks the dense
// 1..N sequence.
type SequenceMismatch[T any] struct {
	Item     T
	Position int
	Got      int
	Want     int
}

// Canonical returns a copy of items stably sorted by key.
func Canonical[T any, K Ordered[K]](items []T, key func(T) K) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return key(a).Compare(key(b))
	})
	return sorted
}

// VerifySequence sorts items by key and checks that ids run 1, 2, 3, ... in
// that order. Scanning stops at the first mismatch since every later
// expectation is shifted by it. The sorted slice is returned either way.
func VerifySequence[T any, K Ordered[K]](items []T, key func(T) K, id func(T) int) ([]T, *SequenceMismatch[T]) {
	sorted := Canonical(items, key)
	for i, item := range sorted {
		want := i + 1
		if got := id(item); got != want {
			return sorted, &SequenceMismatch[T]{Item: item, Position: i, Got: got, Want: want}
		}
	}
	return sorted, nil
}

// FindTies returns each adjacent pair in canonical order whose keys are equal.
func FindTies[T any, K Ordered[K]](items []T, key func(T) K) [][2]T {
	sorted := Canonical(items, key)
	var ties [][2]T
	for i := 1; i < len(sorted); i++ {
		if key(sorted[i-1]).Compare(key(sorted[i])) == 0 {
			ties = append(ties, [2]T{sorted[i-1], sorted[i]})
		}
	}
	return ties
}
