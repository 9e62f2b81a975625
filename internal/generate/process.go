package generate

import (
	"fmt"

	"delgen/internal/enumerate"
	"delgen/internal/library"
	"delgen/internal/molecule"
)

// Source is the read-only library view the workers need.
type Source interface {
	Resolve(c enumerate.Combination) (structure string, codons []string, err error)
	DNATemplate() (string, bool)
	FormatDNA(parts map[string]string) (string, error)
	CodonSummary(parts map[string]string) string
}

var _ Source = (*library.Library)(nil)

// Process expands one work item into its records. It is a pure function of
// its inputs; any error aborts the whole item.
func Process(it library.WorkItem, src Source, ev molecule.Evaluator, flags molecule.FlagSet) ([]molecule.Record, error) {
	_, hasDNA := src.DNATemplate()
	e := enumerate.New(it.Outer, it.Rest)
	recs := make([]molecule.Record, 0, e.Total())
	for c := range e.All() {
		structure, codons, err := src.Resolve(c)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", c, err)
		}
		parts := library.Parts(c, codons)

		dna := ""
		if hasDNA {
			if dna, err = src.FormatDNA(parts); err != nil {
				return nil, fmt.Errorf("generation of DNA strand for %s was not possible: %w", c, err)
			}
		}

		vals, err := ev.Evaluate(structure, flags)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", c, err)
		}
		recs = append(recs, molecule.Record{
			CodonSummary: src.CodonSummary(parts),
			Codons:       codons,
			DNA:          dna,
			Values:       vals,
		})
	}
	return recs, nil
}
