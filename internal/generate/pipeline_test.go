package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"delgen/internal/enumerate"
	"delgen/internal/library"
	"delgen/internal/molecule"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newLibrary(t *testing.T, outer int, dnaTmpl string) *library.Library {
	t.Helper()
	a := make([]library.Element, outer)
	for i := range a {
		a[i] = library.Element{Codon: fmt.Sprintf("A%02d", i), Structure: "C"}
	}
	l, err := library.New(library.Options{Name: "t", DNATemplate: dnaTmpl}, []library.Category{
		{ID: "A", Elements: a},
		{ID: "B", Elements: []library.Element{{Codon: "B0", Structure: "N"}, {Codon: "B1", Structure: "O"}}},
		{ID: "C", Elements: []library.Element{{Codon: "C0", Structure: "F"}, {Codon: "C1", Structure: "S"}, {Codon: "C2", Structure: "P"}}},
	})
	require.NoError(t, err)
	return l
}

func TestRun_EndToEndSingleOuter(t *testing.T) {
	lib := newLibrary(t, 1, "{A}-{B}-{C}")
	queue, _ := lib.GenerateQueue()
	require.Len(t, queue, 1)

	var rows []molecule.Record
	sum, err := Run(context.Background(), Config{Threads: 2, Flags: molecule.NewFlagSet(false)},
		queue, lib, molecule.Verbatim{}, func(r molecule.Record) error {
			rows = append(rows, r)
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Molecules)
	assert.Equal(t, 1, sum.Jobs)
	assert.Equal(t, 1.0, sum.Fraction())
	require.Len(t, rows, 6)

	seen := map[string]bool{}
	for _, r := range rows {
		require.Len(t, r.Codons, 3)
		assert.Equal(t, strings.Join(r.Codons, "-"), r.DNA)
		assert.Equal(t, r.DNA, r.CodonSummary)
		assert.False(t, seen[r.DNA], "duplicate row %s", r.DNA)
		seen[r.DNA] = true
	}
}

func TestRun_ParallelRowCountMatchesSize(t *testing.T) {
	lib := newLibrary(t, 25, "")
	queue, _ := lib.GenerateQueue()

	var progress []float64
	n := 0
	sum, err := Run(context.Background(), Config{
		Threads: 4,
		Flags:   molecule.NewFlagSet(true),
		Logger:  zap.NewNop(),
		Progress: func(done, total int) {
			progress = append(progress, float64(done)/float64(total))
		},
	}, queue, lib, molecule.Verbatim{}, func(r molecule.Record) error {
		assert.Empty(t, r.DNA)
		assert.Len(t, r.Values, 17)
		n++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, lib.Size(), n)
	assert.Equal(t, lib.Size(), sum.Molecules)
	assert.Equal(t, 25, sum.Jobs)
	require.Len(t, progress, 25)
	assert.Equal(t, 1.0, progress[len(progress)-1])
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1])
	}
}

type failingSource struct {
	*library.Library
	failOn int
}

func (f failingSource) Resolve(c enumerate.Combination) (string, []string, error) {
	if c[0].Index == f.failOn {
		return "", nil, errors.New("boom")
	}
	return f.Library.Resolve(c)
}

func TestRun_WorkerErrorAborts(t *testing.T) {
	lib := newLibrary(t, 10, "")
	queue, _ := lib.GenerateQueue()

	emitted := 0
	_, err := Run(context.Background(), Config{Threads: 1}, queue,
		failingSource{Library: lib, failOn: 3}, molecule.Verbatim{},
		func(molecule.Record) error { emitted++; return nil })

	var we *WorkerError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, 3, we.Outer.Index)
	assert.Contains(t, err.Error(), "boom")
	assert.Less(t, emitted, lib.Size())
	assert.Equal(t, 0, emitted%6, "rows are emitted per whole item")
}

type badTemplateSource struct{ *library.Library }

func (badTemplateSource) DNATemplate() (string, bool) { return "{A}{Z}", true }
func (badTemplateSource) FormatDNA(parts map[string]string) (string, error) {
	return "", &library.TemplateFormatError{Template: "{A}{Z}", Placeholder: "Z"}
}

func TestRun_TemplateErrorFailsRun(t *testing.T) {
	lib := newLibrary(t, 3, "")
	queue, _ := lib.GenerateQueue()

	_, err := Run(context.Background(), Config{Threads: 2}, queue,
		badTemplateSource{lib}, molecule.Verbatim{},
		func(molecule.Record) error { return nil })
	require.Error(t, err)
	assert.True(t, library.IsTemplateError(err))
}

func TestRun_EmitErrorStops(t *testing.T) {
	lib := newLibrary(t, 20, "")
	queue, _ := lib.GenerateQueue()
	sentinel := errors.New("disk full")

	_, err := Run(context.Background(), Config{Threads: 3}, queue, lib, molecule.Verbatim{},
		func(molecule.Record) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}

func TestRun_CanceledContext(t *testing.T) {
	lib := newLibrary(t, 20, "")
	queue, _ := lib.GenerateQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Config{Threads: 2}, queue, lib, molecule.Verbatim{},
		func(molecule.Record) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_EmptyQueue(t *testing.T) {
	sum, err := Run(context.Background(), Config{}, nil, newLibrary(t, 1, ""), molecule.Verbatim{},
		func(molecule.Record) error { t.Fatal("no rows expected"); return nil })
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Molecules)
	assert.Equal(t, 1.0, sum.Fraction())
}

func TestProcess_IsDeterministic(t *testing.T) {
	lib := newLibrary(t, 2, "{C}{B}{A}")
	queue, _ := lib.GenerateQueue()
	a, err := Process(queue[1], lib, molecule.Verbatim{}, molecule.NewFlagSet(false))
	require.NoError(t, err)
	b, err := Process(queue[1], lib, molecule.Verbatim{}, molecule.NewFlagSet(false))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "C0B0A01", a[0].DNA)
	assert.Equal(t, "A01-B0-C0", a[0].CodonSummary)
}
