// Package codon locates codon slots in an aligned reference template and
// reads the corresponding codons off the aligned read.
package codon

import (
	"delgen/internal/dna"
)

// Slot is a half-open column range [Start, End) of a gapped alignment row.
type Slot struct {
	Start, End int
}

// Coordinates returns the codon slots of an aligned template: maximal runs
// of wildcard columns. Gap columns inside a run belong to the slot (an
// insertion in the read); gaps at a run's edge do not.
func Coordinates(alignedTemplate string) []Slot {
	var (
		out   []Slot
		start = -1
		last  = -1
	)
	for i := 0; i < len(alignedTemplate); i++ {
		switch b := alignedTemplate[i]; {
		case b == dna.Wildcard || b == 'n':
			if start < 0 {
				start = i
			}
			last = i
		case b == dna.Gap:
		default:
			if start >= 0 {
				out = append(out, Slot{Start: start, End: last + 1})
				start = -1
			}
		}
	}
	if start >= 0 {
		out = append(out, Slot{Start: start, End: last + 1})
	}
	return out
}

// Extract reads the codon under every slot of alignedRead, dropping gap
// columns. For reverse-strand reads each codon is reverse-complemented and
// the list is reversed, so codons come back in forward template order.
func Extract(alignedRead string, slots []Slot, reverse bool) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		start, end := clamp(s.Start, len(alignedRead)), clamp(s.End, len(alignedRead))
		c := dna.StripGaps(alignedRead[start:end])
		if reverse {
			out[len(slots)-1-i] = dna.RevComp(c)
		} else {
			out[i] = c
		}
	}
	return out
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v > n {
		return n
	}
	return v
}
