// Package qc decides whether a read aligns well enough to its reference
// template and, if so, extracts the codons it carries.
package qc

import (
	"math"

	"delgen/internal/align"
	"delgen/internal/codon"
)

// DefaultQuality is used when no quality is configured.
const DefaultQuality = 0.3

// ReadMetadata describes how one side of a pair is decoded.
type ReadMetadata struct {
	Template string // reference with N runs at codon slots
	Reverse  bool   // read comes from the reverse strand
}

// Metadata is the per-run decoding setup shared by all workers.
type Metadata struct {
	R1, R2  ReadMetadata
	Paired  bool
	Quality *float64 // fraction of the perfect score in (0,1]; nil means DefaultQuality
}

// EffectiveQuality is min(|quality|, 1), or DefaultQuality when unset.
func (m Metadata) EffectiveQuality() float64 {
	q := DefaultQuality
	if m.Quality != nil {
		q = math.Abs(*m.Quality)
	}
	return math.Min(q, 1)
}

// Threshold is the score a side must strictly exceed.
func Threshold(readLen, templateLen int, quality float64) float64 {
	return float64(min(readLen, templateLen)) * align.MatchScore * quality
}

// Passes applies the strict threshold test.
func Passes(score, readLen, templateLen int, quality float64) bool {
	return float64(score) > Threshold(readLen, templateLen, quality)
}

// Side is the verdict for one read. Codons is nil unless Pass is true.
type Side struct {
	Pass      bool
	Codons    []string
	Alignment align.Alignment
}

// Outcome is the verdict for a read pair.
type Outcome struct {
	R1, R2 Side
}

// Checker evaluates reads against fixed metadata. It owns alignment buffers
// and is therefore not safe for concurrent use; create one per worker.
type Checker struct {
	meta    Metadata
	quality float64
	al      *align.Aligner
}

// NewChecker returns a Checker for meta.
func NewChecker(meta Metadata) *Checker {
	return &Checker{meta: meta, quality: meta.EffectiveQuality(), al: align.NewAligner()}
}

// Metadata returns the checker's configuration.
func (c *Checker) Metadata() Metadata { return c.meta }

// Side aligns read against rm.Template and applies the quality test.
func (c *Checker) Side(read string, rm ReadMetadata) Side {
	a := c.al.Align(read, rm.Template)
	if !Passes(a.Score, len(read), len(rm.Template), c.quality) {
		return Side{Alignment: a}
	}
	return Side{
		Pass:      true,
		Codons:    codon.Extract(a.Read, codon.Coordinates(a.Template), rm.Reverse),
		Alignment: a,
	}
}

// Check evaluates a pair. In unpaired mode r2 is never looked at and the
// second side passes with no codons.
func (c *Checker) Check(r1, r2 string) Outcome {
	out := Outcome{R1: c.Side(r1, c.meta.R1)}
	if !c.meta.Paired {
		out.R2 = Side{Pass: true}
		return out
	}
	out.R2 = c.Side(r2, c.meta.R2)
	return out
}
