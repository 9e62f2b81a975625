package writers

import (
	"context"
	"fmt"
	"io"
	"sort"

	"delgen/internal/molecule"
	"delgen/pkg/api"
)

// Format names shared by the CLI and the registries.
const (
	FormatCSV    = "csv"
	FormatTSV    = "tsv"
	FormatJSON   = "json"
	FormatJSONL  = "jsonl"
	FormatSQLite = "sqlite"
)

// Target is where a writer sends its output. Stream formats use W; the
// sqlite format writes through Store.
type Target struct {
	W     io.Writer
	Store *Store
	RunID string
}

// RowFunc consumes molecule records until in is closed or an error occurs.
// It may return early; the caller drains what is left.
type RowFunc func(ctx context.Context, t Target, h molecule.Header, in <-chan molecule.Record) error

// CountFunc writes a finished decode report.
type CountFunc func(ctx context.Context, t Target, rep api.DecodeReportV1) error

// Writer registries (format → handler). Register in init() blocks.
var (
	RowWriters   = map[string]RowFunc{}
	CountWriters = map[string]CountFunc{}
)

// Register helpers (idempotent last-wins)
func RegisterRows(format string, fn RowFunc)     { RowWriters[format] = fn }
func RegisterCounts(format string, fn CountFunc) { CountWriters[format] = fn }

// RowFormats lists the registered molecule formats.
func RowFormats() []string { return keys(RowWriters) }

// CountFormats lists the registered codon-count formats.
func CountFormats() []string { return keys(CountWriters) }

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NeedsStore reports whether format writes to a database file rather than a stream.
func NeedsStore(format string) bool { return format == FormatSQLite }

// DefaultRowsFile is the output file used when none is given.
func DefaultRowsFile(format string) string {
	switch format {
	case FormatSQLite:
		return "library-properties.db"
	case "", FormatCSV:
		return "library-properties.csv"
	}
	return "library-properties." + format
}

// StartRowWriter spins up a writer goroutine for molecule records. The error
// channel yields as soon as the writer finishes; records sent after an early
// finish are discarded.
func StartRowWriter(ctx context.Context, t Target, format string, h molecule.Header, bufSize int) (chan<- molecule.Record, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan molecule.Record, bufSize)
	done := make(chan error, 1)
	go func() {
		defer drain(in)
		fn, ok := RowWriters[format]
		if !ok {
			done <- fmt.Errorf("unknown row format %q (no writer registered; have %v)", format, RowFormats())
			return
		}
		done <- fn(ctx, t, h, in)
	}()
	return in, done
}

// WriteCounts dispatches rep to the writer registered for format.
func WriteCounts(ctx context.Context, t Target, format string, rep api.DecodeReportV1) error {
	fn, ok := CountWriters[format]
	if !ok {
		return fmt.Errorf("unknown count format %q (no writer registered; have %v)", format, CountFormats())
	}
	return fn(ctx, t, rep)
}

// ValidRowFormat reports whether a row writer is registered for format.
func ValidRowFormat(format string) bool {
	_, ok := RowWriters[format]
	return ok
}

func drain[T any](in <-chan T) {
	for range in {
	}
}
