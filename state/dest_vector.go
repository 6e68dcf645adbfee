package state

import (
	"cmp"
	"slices"
)

// PIDDestVector requests distances from Src to each of Dsts, in order. With
// Reverse set the portal also returns Dst -> Src for every destination.
type PIDDestVector struct {
	Src     PID
	Dsts    []PID
	Reverse bool
}

func NewPIDDestVector(src PID, reverse bool, dsts ...PID) PIDDestVector {
	return PIDDestVector{Src: src, Dsts: slices.Clone(dsts), Reverse: reverse}
}

// Equal compares the source and the destination sequence. Reverse is not part of the identity.
func (v PIDDestVector) Equal(o PIDDestVector) bool {
	return v.Src == o.Src && slices.Equal(v.Dsts, o.Dsts)
}

// Compare orders by source, then destination count, then destinations pairwise.
func (v PIDDestVector) Compare(o PIDDestVector) int {
	if c := v.Src.Compare(o.Src); c != 0 {
		return c
	}
	if c := cmp.Compare(len(v.Dsts), len(o.Dsts)); c != 0 {
		return c
	}
	return slices.CompareFunc(v.Dsts, o.Dsts, ComparePID)
}

func (v PIDDestVector) ReverseToken() string {
	if v.Reverse {
		return IncReverse
	}
	return NoReverse
}
