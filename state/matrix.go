package state

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Matrix is a sparse source -> destination -> value map. Entries are never
// implied: a reverse value exists only if it was Set explicitly.
// The zero value is ready to use.
type Matrix[K comparable, V any] struct {
	rows map[K]map[K]V
}

// PIDMatrix holds pdistances between PIDs.
type PIDMatrix = Matrix[PID, float64]

func NewMatrix[K comparable, V any]() *Matrix[K, V] {
	return &Matrix[K, V]{rows: make(map[K]map[K]V)}
}

func NewPIDMatrix() *PIDMatrix {
	return NewMatrix[PID, float64]()
}

func (m *Matrix[K, V]) Set(src, dst K, value V) {
	if m.rows == nil {
		m.rows = make(map[K]map[K]V)
	}
	row, ok := m.rows[src]
	if !ok {
		row = make(map[K]V)
		m.rows[src] = row
	}
	row[dst] = value
}

// Get returns the value stored for (src, dst) and whether it was present.
func (m *Matrix[K, V]) Get(src, dst K) (V, bool) {
	v, ok := m.rows[src][dst]
	return v, ok
}

// GetOr returns the value stored for (src, dst), or dflt if there is none.
func (m *Matrix[K, V]) GetOr(src, dst K, dflt V) V {
	if v, ok := m.Get(src, dst); ok {
		return v
	}
	return dflt
}

// Row returns a copy of the destinations of src, nil if src has none.
func (m *Matrix[K, V]) Row(src K) map[K]V {
	row, ok := m.rows[src]
	if !ok {
		return nil
	}
	return maps.Clone(row)
}

// Sources returns every key with at least one outgoing entry, in no particular order.
func (m *Matrix[K, V]) Sources() []K {
	return slices.Collect(maps.Keys(m.rows))
}

// Len returns the number of stored entries.
func (m *Matrix[K, V]) Len() int {
	n := 0
	for _, row := range m.rows {
		n += len(row)
	}
	return n
}

// Entries returns every (src, dst, value), sorted by src then dst using order.
func (m *Matrix[K, V]) Entries(order func(a, b K) int) []Triple[K, K, V] {
	out := make([]Triple[K, K, V], 0, m.Len())
	for _, src := range slices.SortedFunc(maps.Keys(m.rows), order) {
		row := m.rows[src]
		for _, dst := range slices.SortedFunc(maps.Keys(row), order) {
			out = append(out, Triple[K, K, V]{src, dst, row[dst]})
		}
	}
	return out
}

// Dump renders one "src,dst=value" line per entry.
func (m *Matrix[K, V]) Dump(order func(a, b K) int) string {
	sb := strings.Builder{}
	for _, e := range m.Entries(order) {
		sb.WriteString(fmt.Sprintf("%v,%v=%v\n", e.V1, e.V2, e.V3))
	}
	return sb.String()
}

func FormatPIDMatrix(m *PIDMatrix) string {
	return m.Dump(ComparePID)
}
