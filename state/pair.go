package state

import "slices"

type Pair[Ty1, Ty2 any] struct {
	V1 Ty1
	V2 Ty2
}
type Triple[Ty1, Ty2, Ty3 any] struct {
	V1 Ty1
	V2 Ty2
	V3 Ty3
}

// SortPairsFunc sorts by V1 using order, keeping the input order of equal keys.
func SortPairsFunc[T1, T2 any](pairs []Pair[T1, T2], order func(a, b T1) int) {
	slices.SortStableFunc(pairs, func(a, b Pair[T1, T2]) int {
		return order(a.V1, b.V1)
	})
}
