// Package enumerate walks the Cartesian product of library categories.
//
// A linear position i in [0, Total) is decoded as a mixed-radix number whose
// digit bases are the category sizes, least-significant digit first: the first
// Dim varies fastest. The mapping is a bijection, so every combination is
// produced exactly once.
package enumerate

import (
	"iter"
	"strconv"
	"strings"
)

// Selection pins one element (by index) of one category.
type Selection struct {
	Category string
	Index    int
}

// Dim describes one remaining category: its element count and identifier.
type Dim struct {
	Size     int
	Category string
}

// Combination is one library member: the outer selection first, then the
// remaining categories in Dim order.
type Combination []Selection

// Index returns the selected element index for category id.
func (c Combination) Index(id string) (int, bool) {
	for _, s := range c {
		if s.Category == id {
			return s.Index, true
		}
	}
	return 0, false
}

// Map returns the combination as category id -> element index.
func (c Combination) Map() map[string]int {
	m := make(map[string]int, len(c))
	for _, s := range c {
		m[s.Category] = s.Index
	}
	return m
}

func (c Combination) String() string {
	var b strings.Builder
	for i, s := range c {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s.Category)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(s.Index))
	}
	return b.String()
}

// Total is the product of the sizes. Any non-positive size empties the space.
func Total(dims []Dim) int {
	n := 1
	for _, d := range dims {
		if d.Size <= 0 {
			return 0
		}
		n *= d.Size
	}
	return n
}

// Enumerator yields every combination of the remaining categories, each
// joined with a fixed outer selection. It is consumed by Next and does not
// restart unless Reset is called.
type Enumerator struct {
	outer Selection
	dims  []Dim
	total int
	pos   int
}

// New builds an Enumerator. dims is copied; callers may reuse their slice.
func New(outer Selection, dims []Dim) *Enumerator {
	d := make([]Dim, len(dims))
	copy(d, dims)
	return &Enumerator{outer: outer, dims: d, total: Total(d)}
}

// Total returns the number of combinations the enumerator produces.
func (e *Enumerator) Total() int { return e.total }

// Decode maps linear position i onto its combination. It reports false
// when i is outside [0, Total()), which includes every i for an empty space.
func (e *Enumerator) Decode(i int) (Combination, bool) {
	if i < 0 || i >= e.total {
		return nil, false
	}
	out := make(Combination, 0, len(e.dims)+1)
	out = append(out, e.outer)
	for _, d := range e.dims {
		out = append(out, Selection{Category: d.Category, Index: i % d.Size})
		i /= d.Size
	}
	return out, true
}

// Next returns the next combination, or false once the space is exhausted.
func (e *Enumerator) Next() (Combination, bool) {
	if e.pos >= e.total {
		return nil, false
	}
	c, _ := e.Decode(e.pos)
	e.pos++
	return c, true
}

// Reset rewinds the enumerator to the first combination.
func (e *Enumerator) Reset() { e.pos = 0 }

// All adapts the remaining combinations to a range-over-func sequence.
func (e *Enumerator) All() iter.Seq[Combination] {
	return func(yield func(Combination) bool) {
		for {
			c, ok := e.Next()
			if !ok || !yield(c) {
				return
			}
		}
	}
}
