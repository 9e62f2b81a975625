package molecule

// Evaluator computes descriptor values for a resolved structure, one value
// per flag of fs.Enabled(), in that order. Implementations must be safe for
// concurrent use.
type Evaluator interface {
	Evaluate(structure string, fs FlagSet) ([]string, error)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(structure string, fs FlagSet) ([]string, error)

func (f EvaluatorFunc) Evaluate(structure string, fs FlagSet) ([]string, error) {
	return f(structure, fs)
}

// NotAvailable fills descriptor columns the evaluator cannot compute.
const NotAvailable = "NA"

// Verbatim reports the assembled structure as the canonical SMILES and
// NotAvailable for every other descriptor. It is the evaluator used when no
// cheminformatics backend is attached.
type Verbatim struct{}

func (Verbatim) Evaluate(structure string, fs FlagSet) ([]string, error) {
	enabled := fs.Enabled()
	out := make([]string, len(enabled))
	for i, f := range enabled {
		if f == CanonicalSMILES {
			out[i] = structure
		} else {
			out[i] = NotAvailable
		}
	}
	return out, nil
}
