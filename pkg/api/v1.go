// pkg/api/v1.go
package api

// MoleculeV1 is the stable JSON/JSONL schema for one generated library member.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type MoleculeV1 struct {
	CodonCombination string            `json:"codon_combination"`
	Codons           map[string]string `json:"codons"` // category id -> codon
	DNA              string            `json:"dna,omitempty"`
	Descriptors      map[string]string `json:"descriptors"` // header -> value
	RunID            string            `json:"run_id,omitempty"`
}

// CodonCountV1 is one row of a decode frequency table.
type CodonCountV1 struct {
	Codons []string `json:"codons"`
	Count  int      `json:"count"`
}

// DecodeReportV1 is the stable schema for a finished decode run.
type DecodeReportV1 struct {
	RunID    string         `json:"run_id,omitempty"`
	Paired   bool           `json:"paired"`
	Counters map[string]int `json:"counters"`
	Codons   []CodonCountV1 `json:"codons"`
}
