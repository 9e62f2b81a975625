// Package dna holds the small nucleotide helpers shared by template
// handling and read decoding.
package dna

// Gap is the alignment gap symbol.
const Gap = '-'

// Wildcard marks an ambiguous reference position.
const Wildcard = 'N'

var complement = [256]byte{}

func init() {
	for i := range complement {
		complement[i] = 'N'
	}
	pairs := map[byte]byte{
		'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A',
		'R': 'Y', 'Y': 'R',
		'S': 'S', 'W': 'W',
		'K': 'M', 'M': 'K',
		'B': 'V', 'V': 'B',
		'D': 'H', 'H': 'D',
		'N': 'N',
		Gap: Gap,
	}
	for b, c := range pairs {
		complement[b] = c
		if b >= 'A' && b <= 'Z' {
			complement[b+'a'-'A'] = c
		}
	}
}

// Complement returns the IUPAC complement of b. Unknown symbols map to N.
func Complement(b byte) byte { return complement[b] }

// RevComp returns the reverse complement of seq.
func RevComp(seq string) string {
	n := len(seq)
	if n == 0 {
		return ""
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = complement[seq[n-1-i]]
	}
	return string(out)
}

// Upper returns seq with ASCII letters uppercased. It avoids the rune
// machinery of strings.ToUpper for the common all-ASCII case.
func Upper(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		if b >= 'a' && b <= 'z' {
			b -= 'a' - 'A'
		}
		out[i] = b
	}
	return out
}

// StripGaps removes alignment gap symbols.
func StripGaps(s string) string {
	k := 0
	buf := []byte(s)
	for _, b := range buf {
		if b != Gap {
			buf[k] = b
			k++
		}
	}
	return string(buf[:k])
}
