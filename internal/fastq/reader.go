// Package fastq reads and writes four-line FASTQ records, plain or gzipped.
package fastq

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one sequencing read. Qual is kept as the raw Phred+33 line.
type Record struct {
	ID   string
	Seq  string
	Qual string
}

// Reader pulls records from an underlying stream.
type Reader struct {
	sc      *bufio.Scanner
	line    int
	closers []io.Closer // innermost first
}

var gzipMagic = []byte{0x1f, 0x8b}

// NewReader wraps r, transparently decompressing gzip input.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReaderSize(r, 64<<10)
	var src io.Reader = br
	var closers []io.Closer
	if head, err := br.Peek(2); err == nil && bytes.Equal(head, gzipMagic) {
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		src = gr
		closers = append(closers, gr)
	}
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64<<10), 16<<20)
	return &Reader{sc: sc, closers: closers}, nil
}

// Open opens path ("-" for stdin) for reading.
func Open(path string) (*Reader, error) {
	if path == "-" {
		return NewReader(os.Stdin)
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(fh)
	if err != nil {
		fh.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.closers = append(r.closers, fh)
	return r, nil
}

// Close releases the gzip stream and the underlying file, if any. Every
// closer runs; the first error is returned.
func (r *Reader) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

func (r *Reader) scan() (string, bool) {
	if !r.sc.Scan() {
		return "", false
	}
	r.line++
	return strings.TrimRight(r.sc.Text(), "\r"), true
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	head, ok := r.scan()
	for ok && head == "" {
		head, ok = r.scan()
	}
	if !ok {
		if err := r.sc.Err(); err != nil {
			return Record{}, err
		}
		return Record{}, io.EOF
	}
	if head[0] != '@' {
		return Record{}, fmt.Errorf("line %d: invalid id line %q", r.line, head)
	}
	seq, ok := r.scan()
	if !ok {
		return Record{}, fmt.Errorf("line %d: expecting DNA sequence", r.line)
	}
	plus, ok := r.scan()
	if !ok || !strings.HasPrefix(plus, "+") {
		return Record{}, fmt.Errorf("line %d: expecting '+' line", r.line)
	}
	qual, ok := r.scan()
	if !ok {
		return Record{}, fmt.Errorf("line %d: expecting quality line", r.line)
	}
	if len(qual) != len(seq) {
		return Record{}, fmt.Errorf("line %d: lengths of sequence and quality lines differ: %d:%d", r.line, len(seq), len(qual))
	}
	id := head[1:]
	if f := strings.Fields(id); len(f) > 0 {
		id = f[0]
	}
	return Record{ID: id, Seq: strings.ToUpper(seq), Qual: qual}, nil
}

// ErrUnevenPairs is returned when paired inputs hold different read counts.
var ErrUnevenPairs = errors.New("fastq: paired inputs have different numbers of reads")

// PairReader reads R1 and R2 in lockstep. A nil R2 yields empty mates.
type PairReader struct {
	R1, R2 *Reader
}

// Next returns the next pair, or io.EOF when both inputs are exhausted.
func (p PairReader) Next() (Record, Record, error) {
	a, err := p.R1.Next()
	if p.R2 == nil {
		return a, Record{}, err
	}
	b, err2 := p.R2.Next()
	switch {
	case err == io.EOF && err2 == io.EOF:
		return Record{}, Record{}, io.EOF
	case err == io.EOF || err2 == io.EOF:
		return Record{}, Record{}, ErrUnevenPairs
	case err != nil:
		return Record{}, Record{}, err
	case err2 != nil:
		return Record{}, Record{}, err2
	}
	return a, b, nil
}

// Write emits rec in four-line FASTQ form.
func Write(w io.Writer, rec Record) error {
	qual := rec.Qual
	if len(qual) != len(rec.Seq) {
		qual = strings.Repeat("I", len(rec.Seq))
	}
	_, err := fmt.Fprintf(w, "@%s\n%s\n+\n%s\n", rec.ID, rec.Seq, qual)
	return err
}
