package molecule

// Record is one output row: the codon summary, per-category codons, the
// formatted DNA tag (empty without a template) and descriptor values.
type Record struct {
	CodonSummary string
	Codons       []string
	DNA          string
	Values       []string
}

// Fields flattens the record in column order.
func (r Record) Fields() []string {
	out := make([]string, 0, 2+len(r.Codons)+len(r.Values))
	out = append(out, r.CodonSummary)
	out = append(out, r.Codons...)
	out = append(out, r.DNA)
	out = append(out, r.Values...)
	return out
}

// Header describes the column layout shared by every Record of a run.
type Header struct {
	Categories  []string
	Descriptors []string
}

// Columns returns the header row:
// Codon-Combination, <category ids>, DNA, <descriptor headers>.
func (h Header) Columns() []string {
	out := make([]string, 0, 2+len(h.Categories)+len(h.Descriptors))
	out = append(out, "Codon-Combination")
	out = append(out, h.Categories...)
	out = append(out, "DNA")
	out = append(out, h.Descriptors...)
	return out
}
