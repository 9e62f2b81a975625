package writers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"

	"delgen/internal/jsonlutil"
	"delgen/internal/molecule"
	"delgen/pkg/api"
)

func init() {
	RegisterRows(FormatCSV, delimitedRows(','))
	RegisterRows(FormatTSV, delimitedRows('\t'))
	RegisterRows(FormatJSONL, jsonlRows)
	RegisterRows(FormatSQLite, sqliteRows)
}

func delimitedRows(comma rune) RowFunc {
	return func(ctx context.Context, t Target, h molecule.Header, in <-chan molecule.Record) error {
		cw := csv.NewWriter(t.W)
		cw.Comma = comma
		if err := cw.Write(h.Columns()); err != nil {
			return suppressBrokenPipe(err)
		}
		for r := range in {
			if err := cw.Write(r.Fields()); err != nil {
				return suppressBrokenPipe(err)
			}
		}
		cw.Flush()
		return suppressBrokenPipe(cw.Error())
	}
}

// ToAPIMolecule converts a record to its v1 wire form.
func ToAPIMolecule(h molecule.Header, r molecule.Record, runID string) api.MoleculeV1 {
	out := api.MoleculeV1{
		CodonCombination: r.CodonSummary,
		Codons:           make(map[string]string, len(h.Categories)),
		DNA:              r.DNA,
		Descriptors:      make(map[string]string, len(h.Descriptors)),
		RunID:            runID,
	}
	for i, id := range h.Categories {
		if i < len(r.Codons) {
			out.Codons[id] = r.Codons[i]
		}
	}
	for i, d := range h.Descriptors {
		if i < len(r.Values) {
			out.Descriptors[d] = r.Values[i]
		}
	}
	return out
}

func jsonlRows(ctx context.Context, t Target, h molecule.Header, in <-chan molecule.Record) error {
	return jsonlutil.Encode(t.W, in,
		func(enc *json.Encoder, r molecule.Record) error {
			return enc.Encode(ToAPIMolecule(h, r, t.RunID))
		},
		IsBrokenPipe,
	)
}

var errNoStore = errors.New("sqlite output needs an open store")

func sqliteRows(ctx context.Context, t Target, h molecule.Header, in <-chan molecule.Record) error {
	if t.Store == nil {
		return errNoStore
	}
	return t.Store.InsertMolecules(ctx, t.RunID, h, in)
}
