// Package align implements the custom-scored local alignment used to match
// sequencing reads against a library's reference template.
//
// Scores: template wildcard N +1, identity +5, anything else -4. Gaps are
// affine: a gap of length L costs GapOpen + (L-1)*GapExtend.
//
// Ties are broken deterministically:
//   - the reported alignment ends at the first best-scoring cell in
//     read-major order (smallest read end, then smallest template end);
//   - traceback prefers a diagonal step, then continuing the current gap,
//     then switching gap direction;
//   - an alignment starts as soon as its prefix score would be <= 0, so the
//     shortest alignment reaching the best score is returned.
package align

import (
	"math"
	"strings"

	"delgen/internal/dna"
)

const (
	MatchScore    = 5
	WildcardScore = 1
	MismatchScore = -4
	GapOpen       = -10
	GapExtend     = -1
)

// Score is the substitution score of read base x against template base y.
func Score(x, y byte) int {
	switch {
	case y == dna.Wildcard:
		return WildcardScore
	case x == y:
		return MatchScore
	}
	return MismatchScore
}

// Alignment is one local alignment of a read against a template.
//
// Read and Template are gapped rows of equal length that cover both full
// sequences: unaligned prefixes are right-justified against the aligned
// block, suffixes follow it, and the shorter row is padded with gaps.
type Alignment struct {
	Score         int
	Read          string
	Template      string
	ReadStart     int // aligned region of the read, [ReadStart, ReadEnd)
	ReadEnd       int
	TemplateStart int
	TemplateEnd   int
}

// Empty reports whether no positive-scoring alignment exists.
func (a Alignment) Empty() bool { return a.ReadEnd == a.ReadStart && a.TemplateEnd == a.TemplateStart }

const negInf = math.MinInt / 4

// trace codes: which state a cell was reached from.
const (
	fromStart byte = iota
	fromM
	fromX // read base against template gap
	fromY // template base against read gap
)

// Aligner holds reusable DP buffers. It is not safe for concurrent use;
// give each worker its own.
type Aligner struct {
	Sub       func(read, tmpl byte) int
	GapOpen   int
	GapExtend int

	m, x, y    []int
	tm, tx, ty []byte
}

// NewAligner returns an Aligner using the package scoring.
func NewAligner() *Aligner {
	return &Aligner{Sub: Score, GapOpen: GapOpen, GapExtend: GapExtend}
}

// Local aligns read against tmpl with a fresh Aligner.
func Local(read, tmpl string) Alignment { return NewAligner().Align(read, tmpl) }

func (a *Aligner) grow(cells int) {
	if cap(a.m) < cells {
		a.m, a.x, a.y = make([]int, cells), make([]int, cells), make([]int, cells)
		a.tm, a.tx, a.ty = make([]byte, cells), make([]byte, cells), make([]byte, cells)
	}
	a.m, a.x, a.y = a.m[:cells], a.x[:cells], a.y[:cells]
	a.tm, a.tx, a.ty = a.tm[:cells], a.tx[:cells], a.ty[:cells]
}

// Align computes the best local alignment of read against tmpl.
func (a *Aligner) Align(read, tmpl string) Alignment {
	n, w := len(read), len(tmpl)
	c := w + 1
	a.grow((n + 1) * c)
	M, X, Y := a.m, a.x, a.y
	for j := 0; j < c; j++ {
		M[j], X[j], Y[j] = negInf, negInf, negInf
	}

	best, bi, bj := 0, 0, 0
	for i := 1; i <= n; i++ {
		row, prev := i*c, (i-1)*c
		M[row], X[row], Y[row] = negInf, negInf, negInf
		rb := read[i-1]
		for j := 1; j <= w; j++ {
			k := row + j

			// diagonal
			d := prev + j - 1
			pv, pt := 0, fromStart
			if M[d] > pv {
				pv, pt = M[d], fromM
			}
			if X[d] > pv {
				pv, pt = X[d], fromX
			}
			if Y[d] > pv {
				pv, pt = Y[d], fromY
			}
			M[k] = pv + a.Sub(rb, tmpl[j-1])
			a.tm[k] = pt

			// read base against a template gap (vertical)
			u := prev + j
			xv, xt := M[u]+a.GapOpen, fromM
			if v := X[u] + a.GapExtend; v > xv {
				xv, xt = v, fromX
			}
			if v := Y[u] + a.GapOpen; v > xv {
				xv, xt = v, fromY
			}
			X[k], a.tx[k] = xv, xt

			// template base against a read gap (horizontal)
			l := k - 1
			yv, yt := M[l]+a.GapOpen, fromM
			if v := Y[l] + a.GapExtend; v > yv {
				yv, yt = v, fromY
			}
			if v := X[l] + a.GapOpen; v > yv {
				yv, yt = v, fromX
			}
			Y[k], a.ty[k] = yv, yt

			if M[k] > best {
				best, bi, bj = M[k], i, j
			}
		}
	}

	if best <= 0 {
		return Alignment{
			Read:     read + strings.Repeat(string(dna.Gap), w),
			Template: strings.Repeat(string(dna.Gap), n) + tmpl,
		}
	}
	return a.traceback(read, tmpl, best, bi, bj)
}

func (a *Aligner) traceback(read, tmpl string, score, bi, bj int) Alignment {
	c := len(tmpl) + 1
	var rr, tr []byte
	i, j, state := bi, bj, fromM
walk:
	for {
		k := i*c + j
		switch state {
		case fromM:
			rr = append(rr, read[i-1])
			tr = append(tr, tmpl[j-1])
			state = a.tm[k]
			i, j = i-1, j-1
			if state == fromStart {
				break walk
			}
		case fromX:
			rr = append(rr, read[i-1])
			tr = append(tr, dna.Gap)
			state = a.tx[k]
			i--
		case fromY:
			rr = append(rr, dna.Gap)
			tr = append(tr, tmpl[j-1])
			state = a.ty[k]
			j--
		}
	}
	reverse(rr)
	reverse(tr)

	rs, ts := i, j
	lead := max(rs, ts)
	var rb, tb strings.Builder
	rb.WriteString(strings.Repeat(string(dna.Gap), lead-rs))
	rb.WriteString(read[:rs])
	rb.Write(rr)
	rb.WriteString(read[bi:])
	tb.WriteString(strings.Repeat(string(dna.Gap), lead-ts))
	tb.WriteString(tmpl[:ts])
	tb.Write(tr)
	tb.WriteString(tmpl[bj:])
	rowR, rowT := rb.String(), tb.String()
	if d := len(rowT) - len(rowR); d > 0 {
		rowR += strings.Repeat(string(dna.Gap), d)
	} else if d < 0 {
		rowT += strings.Repeat(string(dna.Gap), -d)
	}

	return Alignment{
		Score:         score,
		Read:          rowR,
		Template:      rowT,
		ReadStart:     rs,
		ReadEnd:       bi,
		TemplateStart: ts,
		TemplateEnd:   bj,
	}
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
