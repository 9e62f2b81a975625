package writers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"delgen/internal/result"
	"delgen/pkg/api"
)

// codonSep joins the codons of a tuple in tabular outputs, matching the
// Codon-Combination column of generated libraries.
const codonSep = "-"

func init() {
	RegisterCounts(FormatTSV, countsTSV)
	RegisterCounts(FormatJSON, countsJSON)
	RegisterCounts(FormatSQLite, countsSQLite)
}

// Report converts a finished result to its v1 wire form. Codons are sorted
// by count (descending), then tuple.
func Report(runID string, r *result.Result) api.DecodeReportV1 {
	rep := api.DecodeReportV1{
		RunID:    runID,
		Paired:   r.Paired(),
		Counters: make(map[string]int),
		Codons:   []api.CodonCountV1{},
	}
	for k, v := range r.Counters() {
		rep.Counters[string(k)] = v
	}
	for _, tc := range r.Sorted() {
		rep.Codons = append(rep.Codons, api.CodonCountV1{Codons: tc.Tuple.Codons(), Count: tc.Count})
	}
	return rep
}

func countsTSV(_ context.Context, t Target, rep api.DecodeReportV1) error {
	bw := bufio.NewWriter(t.W)
	if _, err := fmt.Fprintln(bw, "Codon-Combination\tCount"); err != nil {
		return suppressBrokenPipe(err)
	}
	for _, c := range rep.Codons {
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", strings.Join(c.Codons, codonSep), c.Count); err != nil {
			return suppressBrokenPipe(err)
		}
	}
	return suppressBrokenPipe(bw.Flush())
}

// encodePretty writes v as indented JSON to w.
func encodePretty(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func countsJSON(_ context.Context, t Target, rep api.DecodeReportV1) error {
	return suppressBrokenPipe(encodePretty(t.W, rep))
}

func countsSQLite(ctx context.Context, t Target, rep api.DecodeReportV1) error {
	if t.Store == nil {
		return errNoStore
	}
	return t.Store.WriteDecodeReport(ctx, t.RunID, rep)
}

// WriteSummary renders the mode-filtered counter table.
func WriteSummary(w io.Writer, r *result.Result) error {
	_, err := fmt.Fprintln(w, r.String())
	return suppressBrokenPipe(err)
}
