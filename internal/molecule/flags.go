// Package molecule defines the boundary to the external molecule evaluator:
// the closed vocabulary of descriptor flags, their column headers, and the
// row record emitted per library member.
package molecule

import (
	"fmt"
	"strings"
)

// Flag names one descriptor the evaluator can compute.
type Flag string

const (
	CanonicalSMILES Flag = "canonical_smiles"
	MW              Flag = "mw"
	QED             Flag = "qed"
	TPSA            Flag = "tpsa"
	TPSAPerMW       Flag = "tpsapermw"
	LabuteASA       Flag = "labute_asa"
	ALogP           Flag = "alogp"
	HDonors         Flag = "hdonors"
	HAcceptors      Flag = "hacceptors"
	NHetero         Flag = "nhetero"
	Rotatable       Flag = "rotatable"
	NOCount         Flag = "no_count"
	NHOH            Flag = "nhoh"
	Rings           Flag = "rings"
	MaxRingSize     Flag = "max_ring_size"
	CSP3            Flag = "csp3"
	HeavyAtoms      Flag = "heavy_atoms"
)

type flagInfo struct {
	flag   Flag
	header string
	usage  string
}

// vocabulary fixes both the set of flags and their column order.
var vocabulary = []flagInfo{
	{CanonicalSMILES, "Canonical SMILES", "canonical SMILES (always included)"},
	{MW, "MW", "molecular weight"},
	{QED, "QED", "quantitative estimation of drug-likeness"},
	{TPSA, "TPSA", "topological polar surface area"},
	{TPSAPerMW, "TPSA/MW", "topological polar surface area per Da"},
	{LabuteASA, "Labute ASA", "Labute approximate surface area"},
	{ALogP, "aLogP", "Ghose-Crippen logP"},
	{HDonors, "H Donors", "number of H donors"},
	{HAcceptors, "H Acceptors", "number of H acceptors"},
	{NHetero, "Hetero Atoms", "number of hetero atoms"},
	{Rotatable, "Rotatable Bonds", "number of rotatable bonds"},
	{NOCount, "N+O", "number of N and O"},
	{NHOH, "NH+OH", "number of NH and OH"},
	{Rings, "Rings", "number of rings"},
	{MaxRingSize, "Max Ring Size", "maximum ring size"},
	{CSP3, "Fsp3", "fraction of C atoms that are sp3"},
	{HeavyAtoms, "Heavy Atoms", "number of heavy (non-hydrogen) atoms"},
}

// Flags returns the whole vocabulary in column order.
func Flags() []Flag {
	out := make([]Flag, len(vocabulary))
	for i, v := range vocabulary {
		out[i] = v.flag
	}
	return out
}

// Usage returns a one-line description of f.
func Usage(f Flag) string {
	for _, v := range vocabulary {
		if v.flag == f {
			return v.usage
		}
	}
	return ""
}

// ParseFlag validates a flag name.
func ParseFlag(s string) (Flag, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range vocabulary {
		if string(v.flag) == s {
			return v.flag, nil
		}
	}
	return "", fmt.Errorf("unknown descriptor %q", s)
}

// FlagSet is a set of requested descriptors. Canonical SMILES is always
// requested regardless of what the set holds.
type FlagSet map[Flag]bool

// NewFlagSet builds a set from flags; all=true enables the full vocabulary.
func NewFlagSet(all bool, flags ...Flag) FlagSet {
	fs := FlagSet{CanonicalSMILES: true}
	for _, v := range vocabulary {
		if all {
			fs[v.flag] = true
		}
	}
	for _, f := range flags {
		fs[f] = true
	}
	return fs
}

// Enabled returns the requested flags in vocabulary order.
func (fs FlagSet) Enabled() []Flag {
	var out []Flag
	for _, v := range vocabulary {
		if v.flag == CanonicalSMILES || fs[v.flag] {
			out = append(out, v.flag)
		}
	}
	return out
}

// Headers returns the column headers of the requested flags.
func (fs FlagSet) Headers() []string {
	enabled := fs.Enabled()
	out := make([]string, 0, len(enabled))
	for _, f := range enabled {
		for _, v := range vocabulary {
			if v.flag == f {
				out = append(out, v.header)
				break
			}
		}
	}
	return out
}
