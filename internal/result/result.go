// Package result accumulates decoding statistics: a fixed set of named
// counters, codon-tuple frequencies and an archive of failed read pairs.
//
// Merge is associative and commutative over counters and frequencies, so
// partial results built by independent workers can be reduced in any order.
// A Result is owned by one goroutine at a time.
package result

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"delgen/internal/fastq"
)

// Key names one counter of the fixed schema.
type Key string

const (
	ReadsProcessed      Key = "reads_processed"
	ReadsUseful         Key = "reads_useful"
	ValidPairs          Key = "valid_pairs"
	InvalidPairs        Key = "invalid_pairs"
	LowQualitySkips     Key = "low_quality_skips"
	BothLowQualitySkips Key = "both_low_quality_skips"
	R1LowQualitySkips   Key = "r1_low_quality_skips"
	R2LowQualitySkips   Key = "r2_low_quality_skips"
)

// Scope selects in which summary mode a counter is displayed.
type Scope int

const (
	ScopeBoth Scope = iota
	ScopeSingle
	ScopePaired
)

func (s Scope) shows(paired bool) bool {
	switch s {
	case ScopeSingle:
		return !paired
	case ScopePaired:
		return paired
	}
	return true
}

const numKeys = 8

type field struct {
	key   Key
	label string
	scope Scope
}

var schema = [numKeys]field{
	{ReadsProcessed, "Processed Reads", ScopeBoth},
	{ReadsUseful, "Useful Reads", ScopeBoth},
	{ValidPairs, "Valid Pairs", ScopePaired},
	{InvalidPairs, "Invalid Pairs", ScopePaired},
	{LowQualitySkips, "Low Quality skips", ScopeSingle},
	{BothLowQualitySkips, "Low Quality skips (both)", ScopePaired},
	{R1LowQualitySkips, "Low Quality skips (r1)", ScopePaired},
	{R2LowQualitySkips, "Low Quality skips (r2)", ScopePaired},
}

// Keys returns the schema keys in declaration order.
func Keys() []Key {
	out := make([]Key, numKeys)
	for i, f := range schema {
		out[i] = f.key
	}
	return out
}

// ErrSchemaViolation is wrapped by every access with an undeclared key.
var ErrSchemaViolation = errors.New("result only supports a fixed set of keys")

func index(k Key) (int, error) {
	for i, f := range schema {
		if f.key == k {
			return i, nil
		}
	}
	names := make([]string, numKeys)
	for i, f := range schema {
		names[i] = string(f.key)
	}
	return 0, fmt.Errorf("%w: %s, but %q given", ErrSchemaViolation, strings.Join(names, ", "), string(k))
}

// Tuple is a codon combination usable as a map key.
type Tuple string

const tupleSep = "|"

// NewTuple joins codons into a Tuple.
func NewTuple(codons []string) Tuple { return Tuple(strings.Join(codons, tupleSep)) }

// Codons splits the tuple back into its codons.
func (t Tuple) Codons() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), tupleSep)
}

// FailedPair is an archived read pair that did not yield codons. R2 is
// empty for single-end data.
type FailedPair struct {
	R1, R2 fastq.Record
}

// Result is one accumulator instance. The zero value is not usable; call New.
type Result struct {
	paired   bool
	counters [numKeys]int
	codons   map[Tuple]int
	failed   []FailedPair
}

// New returns an empty Result for paired or single-end summaries.
func New(paired bool) *Result {
	return &Result{paired: paired, codons: make(map[Tuple]int)}
}

func (r *Result) Paired() bool { return r.paired }

// Get returns the value of counter k.
func (r *Result) Get(k Key) (int, error) {
	i, err := index(k)
	if err != nil {
		return 0, err
	}
	return r.counters[i], nil
}

// Set overwrites counter k.
func (r *Result) Set(k Key, v int) error {
	i, err := index(k)
	if err != nil {
		return err
	}
	r.counters[i] = v
	return nil
}

// Add increments counter k by n.
func (r *Result) Add(k Key, n int) error {
	i, err := index(k)
	if err != nil {
		return err
	}
	r.counters[i] += n
	return nil
}

// MustAdd is Add for schema keys known at compile time. It panics on a
// schema violation.
func (r *Result) MustAdd(k Key, n int) {
	if err := r.Add(k, n); err != nil {
		panic(err)
	}
}

// Counters returns a copy of all counters.
func (r *Result) Counters() map[Key]int {
	m := make(map[Key]int, numKeys)
	for i, f := range schema {
		m[f.key] = r.counters[i]
	}
	return m
}

// InitCodon registers t with a zero count. Existing counts are kept.
func (r *Result) InitCodon(t Tuple) {
	if _, ok := r.codons[t]; !ok {
		r.codons[t] = 0
	}
}

// IncreaseCodon adds n to the frequency of t.
func (r *Result) IncreaseCodon(t Tuple, n int) {
	r.InitCodon(t)
	r.codons[t] += n
}

// CountCodon adds one observation of t.
func (r *Result) CountCodon(t Tuple) { r.IncreaseCodon(t, 1) }

// CodonCount returns the frequency of t.
func (r *Result) CodonCount(t Tuple) int { return r.codons[t] }

// Codons returns a copy of the frequency map.
func (r *Result) Codons() map[Tuple]int {
	m := make(map[Tuple]int, len(r.codons))
	for t, n := range r.codons {
		m[t] = n
	}
	return m
}

// AddFailedRead archives a read pair.
func (r *Result) AddFailedRead(r1, r2 fastq.Record) {
	r.failed = append(r.failed, FailedPair{R1: r1, R2: r2})
}

// FailedReads returns the archive in insertion order.
func (r *Result) FailedReads() []FailedPair {
	out := make([]FailedPair, len(r.failed))
	copy(out, r.failed)
	return out
}

// Merge returns a new Result holding the sum of r and o. Neither input is
// modified. Failed pairs are concatenated r first, then o.
func (r *Result) Merge(o *Result) *Result {
	switch {
	case r == nil && o == nil:
		return nil
	case r == nil:
		r = New(o.paired)
	case o == nil:
		o = New(r.paired)
	}
	out := New(r.paired || o.paired)
	for i := range out.counters {
		out.counters[i] = r.counters[i] + o.counters[i]
	}
	for t, n := range r.codons {
		out.IncreaseCodon(t, n)
	}
	for t, n := range o.codons {
		out.IncreaseCodon(t, n)
	}
	out.failed = make([]FailedPair, 0, len(r.failed)+len(o.failed))
	out.failed = append(out.failed, r.failed...)
	out.failed = append(out.failed, o.failed...)
	return out
}

// Absorb adds o into r in place and returns r. It gives the same totals as
// Merge without copying r, so a single owner can fold many partials.
func (r *Result) Absorb(o *Result) *Result {
	if o == nil {
		return r
	}
	r.paired = r.paired || o.paired
	for i := range r.counters {
		r.counters[i] += o.counters[i]
	}
	for t, n := range o.codons {
		r.IncreaseCodon(t, n)
	}
	r.failed = append(r.failed, o.failed...)
	return r
}

// Merge folds any number of results left to right.
func Merge(rs ...*Result) *Result {
	var acc *Result
	for _, r := range rs {
		acc = acc.Merge(r)
	}
	return acc
}

// TupleCount is one row of the frequency table.
type TupleCount struct {
	Tuple Tuple
	Count int
}

// Sorted returns the frequencies ordered by count (descending), then tuple.
func (r *Result) Sorted() []TupleCount {
	out := make([]TupleCount, 0, len(r.codons))
	for t, n := range r.codons {
		out = append(out, TupleCount{Tuple: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tuple < out[j].Tuple
	})
	return out
}

// String renders the counters visible in the current mode, one per line,
// in schema order.
func (r *Result) String() string {
	var lines []string
	for i, f := range schema {
		if f.scope.shows(r.paired) {
			lines = append(lines, fmt.Sprintf("%-30s %d", f.label, r.counters[i]))
		}
	}
	return strings.Join(lines, "\n")
}
