package enumerate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerator_Completeness(t *testing.T) {
	e := New(Selection{Category: "A", Index: 0}, []Dim{{Size: 2, Category: "B"}, {Size: 3, Category: "C"}})
	require.Equal(t, 6, e.Total())

	seen := map[[2]int]bool{}
	for c := range e.All() {
		require.Len(t, c, 3)
		assert.Equal(t, Selection{Category: "A", Index: 0}, c[0])
		b, _ := c.Index("B")
		cc, _ := c.Index("C")
		key := [2]int{b, cc}
		assert.False(t, seen[key], "duplicate %v", key)
		seen[key] = true
	}
	assert.Len(t, seen, 6)
	for j := 0; j < 2; j++ {
		for k := 0; k < 3; k++ {
			assert.True(t, seen[[2]int{j, k}], "missing (%d,%d)", j, k)
		}
	}
}

func TestEnumerator_DecodeLeastSignificantFirst(t *testing.T) {
	e := New(Selection{Category: "A", Index: 4}, []Dim{{Size: 2, Category: "cat0"}, {Size: 3, Category: "cat1"}})
	got, ok := e.Decode(5)
	require.True(t, ok)
	want := Combination{{"A", 4}, {"cat0", 1}, {"cat1", 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Decode(5) mismatch (-want +got):\n%s", diff)
	}
}

func TestEnumerator_FirstDimVariesFastest(t *testing.T) {
	e := New(Selection{Category: "A"}, []Dim{{Size: 2, Category: "B"}, {Size: 2, Category: "C"}})
	var order []string
	for c := range e.All() {
		order = append(order, c.String())
	}
	want := []string{"A=0,B=0,C=0", "A=0,B=1,C=0", "A=0,B=0,C=1", "A=0,B=1,C=1"}
	assert.Equal(t, want, order)
}

func TestEnumerator_ZeroSizeIsEmpty(t *testing.T) {
	e := New(Selection{Category: "A"}, []Dim{{Size: 3, Category: "B"}, {Size: 0, Category: "C"}})
	assert.Equal(t, 0, e.Total())
	_, ok := e.Next()
	assert.False(t, ok)
	for _, i := range []int{0, 1, -1} {
		c, ok := e.Decode(i)
		assert.False(t, ok, "Decode(%d)", i)
		assert.Nil(t, c)
	}
}

func TestEnumerator_DecodeOutOfRange(t *testing.T) {
	e := New(Selection{Category: "A"}, []Dim{{Size: 2, Category: "B"}})
	_, ok := e.Decode(2)
	assert.False(t, ok)
	_, ok = e.Decode(-1)
	assert.False(t, ok)
	_, ok = e.Decode(1)
	assert.True(t, ok)
}

func TestEnumerator_NoRemainingCategories(t *testing.T) {
	e := New(Selection{Category: "A", Index: 2}, nil)
	require.Equal(t, 1, e.Total())
	c, ok := e.Next()
	require.True(t, ok)
	assert.Equal(t, Combination{{"A", 2}}, c)
}

func TestEnumerator_NotRestartableUntilReset(t *testing.T) {
	e := New(Selection{Category: "A"}, []Dim{{Size: 2, Category: "B"}})
	n := 0
	for range e.All() {
		n++
	}
	require.Equal(t, 2, n)
	for range e.All() {
		t.Fatal("exhausted enumerator must not yield again")
	}
	e.Reset()
	_, ok := e.Next()
	assert.True(t, ok)
}

func TestEnumerator_DimsCopied(t *testing.T) {
	dims := []Dim{{Size: 2, Category: "B"}}
	e := New(Selection{Category: "A"}, dims)
	dims[0].Size = 10
	assert.Equal(t, 2, e.Total())
}

func TestCombination_Map(t *testing.T) {
	c := Combination{{"A", 1}, {"B", 2}}
	assert.Equal(t, map[string]int{"A": 1, "B": 2}, c.Map())
	_, ok := c.Index("Z")
	assert.False(t, ok)
}
