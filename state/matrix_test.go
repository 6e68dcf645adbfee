package state

import (
	"cmp"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

func TestMatrix_SetGet(t *testing.T) {
	m := NewPIDMatrix()
	a, b := MustParsePID("1.i.x"), MustParsePID("2.i.x")
	m.Set(a, b, 3.5)

	v, ok := m.Get(a, b)
	assert.True(t, ok)
	assert.Equal(t, 3.5, v)

	// no implied reverse entry
	_, ok = m.Get(b, a)
	assert.False(t, ok)
	assert.Equal(t, -1.0, m.GetOr(b, a, -1))

	m.Set(a, b, 4)
	assert.Equal(t, 4.0, m.GetOr(a, b, 0))
	assert.Equal(t, 1, m.Len())
}

func TestMatrix_ZeroValue(t *testing.T) {
	var m Matrix[string, int]
	_, ok := m.Get("a", "b")
	assert.False(t, ok)
	assert.Nil(t, m.Row("a"))
	assert.Empty(t, m.Sources())
	m.Set("a", "b", 1)
	assert.Equal(t, 1, m.Len())
}

func TestMatrix_RowIsCopy(t *testing.T) {
	m := NewMatrix[string, int]()
	m.Set("a", "b", 1)
	m.Set("a", "c", 2)
	m.Set("d", "a", 3)

	row := m.Row("a")
	assert.Equal(t, map[string]int{"b": 1, "c": 2}, row)
	row["b"] = 100
	assert.Equal(t, 1, m.GetOr("a", "b", 0))

	if diff := gocmp.Diff([]string{"a", "d"}, m.Sources(), cmpopts.SortSlices(func(x, y string) bool { return x < y })); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestMatrix_Entries(t *testing.T) {
	m := NewMatrix[int, string]()
	m.Set(2, 1, "c")
	m.Set(1, 3, "b")
	m.Set(1, 2, "a")
	want := []Triple[int, int, string]{
		{1, 2, "a"},
		{1, 3, "b"},
		{2, 1, "c"},
	}
	if diff := gocmp.Diff(want, m.Entries(cmp.Compare[int])); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatPIDMatrix(t *testing.T) {
	m := NewPIDMatrix()
	m.Set(MustParsePID("2.i.x"), MustParsePID("1.e.y"), 7)
	m.Set(MustParsePID("1.i.x"), MustParsePID("2.i.x"), 0.5)
	assert.Equal(t, "1.i.x,2.i.x=0.5\n2.i.x,1.e.y=7\n", FormatPIDMatrix(m))
	assert.Equal(t, "", FormatPIDMatrix(NewPIDMatrix()))
}
