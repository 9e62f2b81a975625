// ./internal/arch/arch_test.go
package arch

import (
	"bytes"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"testing"
)

type pkg struct {
	ImportPath string
	Imports    []string
	Standard   bool
}

const module = "delgen/"

// Domain packages stay free of orchestration, presentation and logging.
var domain = []string{
	"delgen/internal/dna",
	"delgen/internal/enumerate",
	"delgen/internal/align",
	"delgen/internal/codon",
	"delgen/internal/qc",
	"delgen/internal/result",
	"delgen/internal/library",
	"delgen/internal/molecule",
	"delgen/internal/fastq",
}

var outer = []string{
	"delgen/internal/generate", "delgen/internal/decode",
	"delgen/internal/writers", "delgen/internal/config",
	"delgen/internal/progress", "delgen/internal/app", "delgen/cmd/",
	"go.uber.org/zap",
}

func bans() map[string][]string {
	b := map[string][]string{
		"delgen/internal/generate": {
			"delgen/internal/writers", "delgen/internal/config", "delgen/internal/decode",
			"delgen/internal/app", "delgen/cmd/",
		},
		"delgen/internal/decode": {
			"delgen/internal/writers", "delgen/internal/config", "delgen/internal/generate",
			"delgen/internal/app", "delgen/cmd/",
		},
		"delgen/internal/writers": {
			"delgen/internal/generate", "delgen/internal/decode", "delgen/internal/config",
			"delgen/internal/app", "delgen/cmd/",
		},
		"delgen/pkg/api": {"delgen/internal/"},
	}
	for _, d := range domain {
		b[d] = outer
	}
	return b
}

func TestImportBoundaries(t *testing.T) {
	cmd := exec.Command("go", "list", "-json", "./...")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		t.Fatalf("go list: %v", err)
	}
	dec := json.NewDecoder(&out)
	rules := bans()

	var violations []string
	for {
		var p pkg
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.HasPrefix(p.ImportPath, module) {
			continue
		}
		imp := p.ImportPath
		forbidden, ok := rules[imp]
		if !ok {
			continue
		}
		for _, dep := range p.Imports {
			for _, ban := range forbidden {
				if strings.HasPrefix(dep, ban) {
					violations = append(violations, imp+" → "+dep)
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n  %s", strings.Join(violations, "\n  "))
	}
}
