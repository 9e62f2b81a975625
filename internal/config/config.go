// Package config loads library definitions and decode settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"delgen/internal/dna"
	"delgen/internal/library"
	"delgen/internal/qc"
)

// ElementConfig is one building block of a category.
type ElementConfig struct {
	Codon  string `yaml:"codon"`
	Smiles string `yaml:"smiles"`
}

// CategoryConfig is one ordered category of a library.
type CategoryConfig struct {
	ID       string          `yaml:"id"`
	Elements []ElementConfig `yaml:"elements"`
}

// LibraryConfig is the on-disk library definition.
type LibraryConfig struct {
	Name             string           `yaml:"name"`
	Description      string           `yaml:"description,omitempty"`
	MoleculeTemplate string           `yaml:"molecule_template,omitempty"`
	DNATemplate      string           `yaml:"dna_template,omitempty"`
	Categories       []CategoryConfig `yaml:"categories"`
}

// Build validates the definition and returns the library.
func (c *LibraryConfig) Build() (*library.Library, error) {
	cats := make([]library.Category, len(c.Categories))
	for i, cc := range c.Categories {
		els := make([]library.Element, len(cc.Elements))
		for j, e := range cc.Elements {
			els[j] = library.Element{Codon: e.Codon, Structure: e.Smiles}
		}
		cats[i] = library.Category{ID: cc.ID, Elements: els}
	}
	lib, err := library.New(library.Options{
		Name:             c.Name,
		Description:      c.Description,
		MoleculeTemplate: c.MoleculeTemplate,
		DNATemplate:      c.DNATemplate,
	}, cats)
	if err != nil {
		return nil, fmt.Errorf("library %q: %w", c.Name, err)
	}
	// Read templates need uniform codon lengths per placeholder.
	if c.DNATemplate != "" {
		if _, err := lib.ReadTemplate(); err != nil {
			return nil, fmt.Errorf("library %q: %w", c.Name, err)
		}
	}
	return lib, nil
}

// decodeStrict unmarshals YAML rejecting unknown fields.
func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ParseLibrary parses a library definition.
func ParseLibrary(data []byte) (*LibraryConfig, error) {
	var c LibraryConfig
	if err := decodeStrict(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse library: %w", err)
	}
	return &c, nil
}

// LoadLibrary reads and builds the library at path.
func LoadLibrary(path string) (*library.Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library: %w", err)
	}
	c, err := ParseLibrary(data)
	if err != nil {
		return nil, err
	}
	return c.Build()
}

// SaveLibrary writes a library definition as YAML.
func SaveLibrary(path string, c *LibraryConfig) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal library: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write library: %w", err)
	}
	return nil
}

// ReadConfig describes how one mate is decoded. An empty template is
// derived from the library's DNA template.
type ReadConfig struct {
	Template string `yaml:"template,omitempty"`
	Reverse  bool   `yaml:"reverse,omitempty"`
}

// DecodeConfig holds the settings of a decode run.
type DecodeConfig struct {
	Library   string     `yaml:"library,omitempty"`
	R1        ReadConfig `yaml:"r1"`
	R2        ReadConfig `yaml:"r2"`
	Paired    bool       `yaml:"paired"`
	Quality   *float64   `yaml:"quality,omitempty"`
	Threads   int        `yaml:"threads,omitempty"`
	BatchSize int        `yaml:"batch_size,omitempty"`
}

// DefaultDecodeConfig returns the settings used without a config file.
func DefaultDecodeConfig() *DecodeConfig {
	return &DecodeConfig{R2: ReadConfig{Reverse: true}}
}

// LoadDecode reads decode settings from path. A missing file yields the
// defaults. Environment overrides are applied last.
func LoadDecode(path string) (*DecodeConfig, error) {
	cfg := DefaultDecodeConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decodeStrict(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse decode config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read decode config: %w", err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies DELGEN_THREADS and DELGEN_QUALITY.
func (c *DecodeConfig) applyEnvOverrides() error {
	if v := os.Getenv("DELGEN_THREADS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DELGEN_THREADS: %w", err)
		}
		c.Threads = n
	}
	if v := os.Getenv("DELGEN_QUALITY"); v != "" {
		q, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("DELGEN_QUALITY: %w", err)
		}
		c.Quality = &q
	}
	return nil
}

// Metadata resolves read templates and returns the QC setup. lib may be nil
// when both templates are given explicitly. A derived R2 template is the
// reverse complement of the R1 reference when R2 is reverse-oriented.
// Templates are upper-cased to match the reads.
func (c *DecodeConfig) Metadata(lib *library.Library) (qc.Metadata, error) {
	m := qc.Metadata{
		R1:      qc.ReadMetadata{Template: strings.ToUpper(c.R1.Template), Reverse: c.R1.Reverse},
		R2:      qc.ReadMetadata{Template: strings.ToUpper(c.R2.Template), Reverse: c.R2.Reverse},
		Paired:  c.Paired,
		Quality: c.Quality,
	}
	need := m.R1.Template == "" || (c.Paired && m.R2.Template == "")
	if !need {
		return m, nil
	}
	if lib == nil {
		return qc.Metadata{}, errors.New("read templates need a library with a DNA template")
	}
	ref, err := lib.ReadTemplate()
	if err != nil {
		return qc.Metadata{}, err
	}
	if m.R1.Template == "" {
		m.R1.Template = orient(ref, m.R1.Reverse)
	}
	if c.Paired && m.R2.Template == "" {
		m.R2.Template = orient(ref, m.R2.Reverse)
	}
	return m, nil
}

func orient(ref string, reverse bool) string {
	ref = strings.ToUpper(ref)
	if reverse {
		return dna.RevComp(ref)
	}
	return ref
}
