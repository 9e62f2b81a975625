package fastq

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plain = "@r1 1:N:0\nacgt\n+\nIIII\n\n@r2\nGGCC\n+r2\n!!!!\n"

func readAll(t *testing.T, r *Reader) []Record {
	t.Helper()
	var out []Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func TestReader_Plain(t *testing.T) {
	r, err := NewReader(strings.NewReader(plain))
	require.NoError(t, err)
	recs := readAll(t, r)
	assert.Equal(t, []Record{
		{ID: "r1", Seq: "ACGT", Qual: "IIII"},
		{ID: "r2", Seq: "GGCC", Qual: "!!!!"},
	}, recs)
}

func TestReader_GzipFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reads.fq.gz")
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte(plain))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Len(t, readAll(t, r), 2)
}

func TestReader_CloseReleasesGzipAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reads.fq.gz")
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte(plain))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	require.Len(t, r.closers, 2)
	assert.IsType(t, &gzip.Reader{}, r.closers[0])
	fh, ok := r.closers[1].(*os.File)
	require.True(t, ok)

	require.NoError(t, r.Close())
	_, err = fh.Read(make([]byte, 1))
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.NoError(t, r.Close(), "second Close is a no-op")

	plainReader, err := NewReader(strings.NewReader(plain))
	require.NoError(t, err)
	assert.Empty(t, plainReader.closers)
	assert.NoError(t, plainReader.Close())
}

func TestReader_Malformed(t *testing.T) {
	for name, in := range map[string]string{
		"bad id":     ">r1\nACGT\n+\nIIII\n",
		"no plus":    "@r1\nACGT\nIIII\n",
		"short qual": "@r1\nACGT\n+\nII\n",
		"truncated":  "@r1\n",
	} {
		t.Run(name, func(t *testing.T) {
			r, err := NewReader(strings.NewReader(in))
			require.NoError(t, err)
			_, err = r.Next()
			assert.Error(t, err)
			assert.NotEqual(t, io.EOF, err)
		})
	}
}

func TestPairReader(t *testing.T) {
	r1, _ := NewReader(strings.NewReader("@a\nAC\n+\nII\n@b\nGG\n+\nII\n"))
	r2, _ := NewReader(strings.NewReader("@a\nTT\n+\nII\n"))
	p := PairReader{R1: r1, R2: r2}

	a, b, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, "AC", a.Seq)
	assert.Equal(t, "TT", b.Seq)

	_, _, err = p.Next()
	assert.ErrorIs(t, err, ErrUnevenPairs)
}

func TestPairReader_Single(t *testing.T) {
	r1, _ := NewReader(strings.NewReader("@a\nAC\n+\nII\n"))
	p := PairReader{R1: r1}
	a, b, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", a.ID)
	assert.Equal(t, Record{}, b)
	_, _, err = p.Next()
	assert.Equal(t, io.EOF, err)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Record{ID: "x", Seq: "ACG", Qual: "III"}))
	require.NoError(t, Write(&buf, Record{ID: "y", Seq: "AC"}))
	assert.Equal(t, "@x\nACG\n+\nIII\n@y\nAC\n+\nII\n", buf.String())
}
