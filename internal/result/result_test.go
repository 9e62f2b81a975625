package result

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delgen/internal/fastq"
)

func TestResult_SchemaViolation(t *testing.T) {
	r := New(true)
	_, err := r.Get("reads_total")
	require.ErrorIs(t, err, ErrSchemaViolation)
	assert.Contains(t, err.Error(), `"reads_total"`)
	assert.ErrorIs(t, r.Set("nope", 1), ErrSchemaViolation)
	assert.ErrorIs(t, r.Add("", 1), ErrSchemaViolation)
	assert.Panics(t, func() { r.MustAdd("nope", 1) })
}

func TestResult_GetSetAdd(t *testing.T) {
	r := New(false)
	for _, k := range Keys() {
		v, err := r.Get(k)
		require.NoError(t, err)
		assert.Zero(t, v)
	}
	require.NoError(t, r.Set(ValidPairs, 4))
	require.NoError(t, r.Add(ValidPairs, 3))
	v, _ := r.Get(ValidPairs)
	assert.Equal(t, 7, v)
	assert.Len(t, Keys(), 8)
}

func TestResult_Codons(t *testing.T) {
	r := New(true)
	tp := NewTuple([]string{"AAA", "CCC"})
	r.InitCodon(tp)
	assert.Equal(t, 0, r.CodonCount(tp))
	r.CountCodon(tp)
	r.IncreaseCodon(tp, 4)
	r.InitCodon(tp)
	assert.Equal(t, 5, r.CodonCount(tp))
	assert.Equal(t, []string{"AAA", "CCC"}, tp.Codons())
	assert.Nil(t, Tuple("").Codons())

	m := r.Codons()
	m[tp] = 100
	assert.Equal(t, 5, r.CodonCount(tp), "Codons must return a copy")
}

func TestResult_InstancesDoNotShareState(t *testing.T) {
	a, b := New(true), New(true)
	a.MustAdd(ReadsProcessed, 1)
	a.CountCodon("X")
	a.AddFailedRead(fastq.Record{ID: "r"}, fastq.Record{})
	v, _ := b.Get(ReadsProcessed)
	assert.Zero(t, v)
	assert.Empty(t, b.Codons())
	assert.Empty(t, b.FailedReads())
}

func TestResult_MergeFailedReadsConcatenate(t *testing.T) {
	a, b := New(true), New(true)
	a.AddFailedRead(fastq.Record{ID: "a"}, fastq.Record{ID: "a2"})
	b.AddFailedRead(fastq.Record{ID: "b"}, fastq.Record{ID: "b2"})
	m := a.Merge(b)
	ids := []string{}
	for _, p := range m.FailedReads() {
		ids = append(ids, p.R1.ID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Len(t, a.FailedReads(), 1, "inputs must not change")
}

func TestResult_MergeNil(t *testing.T) {
	a := New(false)
	a.MustAdd(ReadsUseful, 2)
	var none *Result
	assert.Equal(t, a.Counters(), none.Merge(a).Counters())
	assert.Equal(t, a.Counters(), a.Merge(nil).Counters())
	assert.Nil(t, Merge())
	assert.True(t, New(false).Merge(New(true)).Paired())
}

func randomResult(rng *rand.Rand) *Result {
	r := New(rng.IntN(2) == 0)
	for _, k := range Keys() {
		r.MustAdd(k, rng.IntN(1000))
	}
	alphabet := []string{"AAA", "CCC", "GGG", "TTT"}
	for i := rng.IntN(6); i > 0; i-- {
		tp := NewTuple([]string{alphabet[rng.IntN(4)], alphabet[rng.IntN(4)]})
		r.IncreaseCodon(tp, rng.IntN(50))
	}
	return r
}

func TestMerge_MonoidLaws(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 500; i++ {
		a, b, c := randomResult(rng), randomResult(rng), randomResult(rng)

		left := a.Merge(b).Merge(c)
		right := a.Merge(b.Merge(c))
		rev := c.Merge(b).Merge(a)

		for name, other := range map[string]*Result{"assoc": right, "commut": rev} {
			if diff := cmp.Diff(left.Counters(), other.Counters()); diff != "" {
				t.Fatalf("iteration %d %s counters (-left +other):\n%s", i, name, diff)
			}
			if diff := cmp.Diff(left.Codons(), other.Codons()); diff != "" {
				t.Fatalf("iteration %d %s codons (-left +other):\n%s", i, name, diff)
			}
		}
		identity := a.Merge(New(a.Paired()))
		if diff := cmp.Diff(a.Codons(), identity.Codons()); diff != "" {
			t.Fatalf("identity codons:\n%s", diff)
		}
	}
}

func TestResult_AbsorbMatchesMerge(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 200; i++ {
		parts := []*Result{randomResult(rng), randomResult(rng), randomResult(rng)}
		parts[1].AddFailedRead(fastq.Record{ID: fmt.Sprintf("f%d", i)}, fastq.Record{})

		want := Merge(parts...)
		got := New(false)
		for _, p := range parts {
			got.Absorb(p)
		}
		if diff := cmp.Diff(want.Counters(), got.Counters()); diff != "" {
			t.Fatalf("iteration %d counters (-merge +absorb):\n%s", i, diff)
		}
		if diff := cmp.Diff(want.Codons(), got.Codons()); diff != "" {
			t.Fatalf("iteration %d codons (-merge +absorb):\n%s", i, diff)
		}
		assert.Equal(t, want.FailedReads(), got.FailedReads())
		assert.Equal(t, want.Paired(), got.Paired())
	}
}

func TestResult_AbsorbInPlace(t *testing.T) {
	total := New(false)
	part := New(true)
	part.MustAdd(ReadsProcessed, 3)
	part.CountCodon("AAA|CCC")

	assert.Same(t, total, total.Absorb(part))
	assert.Same(t, total, total.Absorb(nil))
	v, _ := total.Get(ReadsProcessed)
	assert.Equal(t, 3, v)
	assert.Equal(t, 1, total.CodonCount("AAA|CCC"))
	assert.True(t, total.Paired())

	v, _ = part.Get(ReadsProcessed)
	assert.Equal(t, 3, v, "absorbed input is left alone")
}

func TestResult_Sorted(t *testing.T) {
	r := New(false)
	r.IncreaseCodon("B", 2)
	r.IncreaseCodon("A", 2)
	r.IncreaseCodon("C", 5)
	assert.Equal(t, []TupleCount{{"C", 5}, {"A", 2}, {"B", 2}}, r.Sorted())
}

func TestResult_StringScopes(t *testing.T) {
	r := New(true)
	r.MustAdd(ReadsProcessed, 10)
	r.MustAdd(LowQualitySkips, 99)
	out := r.String()
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, fmt.Sprintf("%-30s %d", "Processed Reads", 10), lines[0])
	assert.NotContains(t, out, "99")
	assert.Contains(t, out, "Low Quality skips (r2)")

	s := New(false)
	s.MustAdd(LowQualitySkips, 3)
	single := strings.Split(s.String(), "\n")
	assert.Equal(t, []string{
		fmt.Sprintf("%-30s %d", "Processed Reads", 0),
		fmt.Sprintf("%-30s %d", "Useful Reads", 0),
		fmt.Sprintf("%-30s %d", "Low Quality skips", 3),
	}, single)
}
