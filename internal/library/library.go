// Package library holds the read-only definition of a DNA-encoded library:
// its ordered categories, their building blocks and the templates used to
// assemble structures and DNA tags for a combination.
//
// A Library is created once and shared by all workers; nothing here mutates
// after New returns.
package library

import (
	"fmt"
	"strconv"
	"strings"

	"delgen/internal/enumerate"
)

// Element is one building block: its DNA codon and structure fragment.
type Element struct {
	Codon     string
	Structure string
}

// Category is one synthesis position with an ordered set of elements.
type Category struct {
	ID       string
	Elements []Element
}

// Size returns the number of elements.
func (c Category) Size() int { return len(c.Elements) }

// Codons returns the element codons in order.
func (c Category) Codons() []string {
	out := make([]string, len(c.Elements))
	for i, e := range c.Elements {
		out[i] = e.Codon
	}
	return out
}

// Options carries the library-level metadata and templates.
type Options struct {
	Name             string
	Description      string
	MoleculeTemplate string // optional; {id} placeholders take element structures
	DNATemplate      string // optional; {id} placeholders take element codons
}

// WorkItem is one unit of generation work: a pinned element of the first
// category plus the dimensions of the remaining categories. It carries only
// plain values.
type WorkItem struct {
	Outer enumerate.Selection
	Rest  []enumerate.Dim
}

// Library is the immutable library definition.
type Library struct {
	name        string
	description string
	categories  []Category
	byID        map[string]int
	molecule    *Template
	dna         *Template
}

// New validates and freezes a library definition. Categories and elements
// are copied.
func New(opts Options, cats []Category) (*Library, error) {
	if len(cats) == 0 {
		return nil, ErrNotInitialized
	}
	l := &Library{
		name:        opts.Name,
		description: opts.Description,
		byID:        make(map[string]int, len(cats)),
	}
	for _, c := range cats {
		if c.ID == "" {
			return nil, fmt.Errorf("category with empty id")
		}
		if _, dup := l.byID[c.ID]; dup {
			return nil, &CategoryExistsError{ID: c.ID}
		}
		els := make([]Element, len(c.Elements))
		for i, e := range c.Elements {
			codon := strings.ToUpper(strings.TrimSpace(e.Codon))
			if codon == "" {
				return nil, &ElementError{Category: c.ID, Index: i, Reason: "empty codon"}
			}
			els[i] = Element{Codon: codon, Structure: strings.TrimSpace(e.Structure)}
		}
		l.byID[c.ID] = len(l.categories)
		l.categories = append(l.categories, Category{ID: c.ID, Elements: els})
	}

	known := func(id string) bool { _, ok := l.byID[id]; return ok }
	var err error
	if opts.MoleculeTemplate != "" {
		if l.molecule, err = ParseTemplate(opts.MoleculeTemplate); err != nil {
			return nil, err
		}
		if err := l.molecule.Validate(known); err != nil {
			return nil, err
		}
	}
	if opts.DNATemplate != "" {
		if l.dna, err = ParseTemplate(opts.DNATemplate); err != nil {
			return nil, err
		}
		if err := l.dna.Validate(known); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Library) Name() string { return l.name }

// Size is the number of members: the product of all category sizes.
func (l *Library) Size() int {
	dims := make([]enumerate.Dim, len(l.categories))
	for i, c := range l.categories {
		dims[i] = enumerate.Dim{Size: c.Size(), Category: c.ID}
	}
	return enumerate.Total(dims)
}

// CategoryIDs returns the category ids in library order.
func (l *Library) CategoryIDs() []string {
	ids := make([]string, len(l.categories))
	for i, c := range l.categories {
		ids[i] = c.ID
	}
	return ids
}

// Category returns a copy of the category with the given id.
func (l *Library) Category(id string) (Category, error) {
	i, ok := l.byID[id]
	if !ok {
		return Category{}, &CategoryNotFoundError{ID: id}
	}
	c := l.categories[i]
	els := make([]Element, len(c.Elements))
	copy(els, c.Elements)
	return Category{ID: c.ID, Elements: els}, nil
}

// GenerateQueue returns one WorkItem per element of the first category and
// the ordered ids of all categories (the output column order).
func (l *Library) GenerateQueue() ([]WorkItem, []string) {
	first := l.categories[0]
	rest := make([]enumerate.Dim, 0, len(l.categories)-1)
	for _, c := range l.categories[1:] {
		rest = append(rest, enumerate.Dim{Size: c.Size(), Category: c.ID})
	}
	queue := make([]WorkItem, first.Size())
	for i := range queue {
		r := make([]enumerate.Dim, len(rest))
		copy(r, rest)
		queue[i] = WorkItem{Outer: enumerate.Selection{Category: first.ID, Index: i}, Rest: r}
	}
	return queue, l.CategoryIDs()
}

func (l *Library) element(s enumerate.Selection) (Element, error) {
	ci, ok := l.byID[s.Category]
	if !ok {
		return Element{}, &CategoryNotFoundError{ID: s.Category}
	}
	c := l.categories[ci]
	if s.Index < 0 || s.Index >= len(c.Elements) {
		return Element{}, &ElementNotFoundError{Category: s.Category, Index: s.Index}
	}
	return c.Elements[s.Index], nil
}

// Resolve returns the assembled structure for a combination and its codons
// in combination order.
func (l *Library) Resolve(c enumerate.Combination) (string, []string, error) {
	codons := make([]string, len(c))
	frags := make(map[string]string, len(c))
	ordered := make([]string, 0, len(c))
	for i, s := range c {
		e, err := l.element(s)
		if err != nil {
			return "", nil, err
		}
		codons[i] = e.Codon
		frags[s.Category] = e.Structure
		ordered = append(ordered, e.Structure)
	}
	if l.molecule == nil {
		return strings.Join(ordered, "."), codons, nil
	}
	structure, err := l.molecule.Format(frags)
	if err != nil {
		return "", nil, err
	}
	return structure, codons, nil
}

// Parts pairs the categories of c with codons, as returned by Resolve.
func Parts(c enumerate.Combination, codons []string) map[string]string {
	parts := make(map[string]string, len(c))
	for i, s := range c {
		if i < len(codons) {
			parts[s.Category] = codons[i]
		}
	}
	return parts
}

// DNATemplate returns the raw DNA template, if one is configured.
func (l *Library) DNATemplate() (string, bool) {
	if l.dna == nil {
		return "", false
	}
	return l.dna.String(), true
}

// FormatDNA renders the DNA template with parts. Every placeholder must have
// a part; otherwise a TemplateFormatError is returned and nothing is rendered.
func (l *Library) FormatDNA(parts map[string]string) (string, error) {
	if l.dna == nil {
		return "", nil
	}
	return l.dna.Format(parts)
}

// CodonSummary joins the codons of parts in library category order.
func (l *Library) CodonSummary(parts map[string]string) string {
	out := make([]string, 0, len(parts))
	for _, c := range l.categories {
		if v, ok := parts[c.ID]; ok {
			out = append(out, v)
		}
	}
	return strings.Join(out, "-")
}

// CodonLength returns the codon length of a category. All codons of one
// category must share a length.
func (l *Library) CodonLength(id string) (int, error) {
	i, ok := l.byID[id]
	if !ok {
		return 0, &CategoryNotFoundError{ID: id}
	}
	c := l.categories[i]
	if len(c.Elements) == 0 {
		return 0, &ElementError{Category: id, Index: 0, Reason: "category has no elements"}
	}
	n := len(c.Elements[0].Codon)
	for j, e := range c.Elements[1:] {
		if len(e.Codon) != n {
			return 0, &ElementError{Category: id, Index: j + 1, Reason: fmt.Sprintf("codon length %d differs from %d", len(e.Codon), n)}
		}
	}
	return n, nil
}

// ReadTemplate derives the alignment reference from the DNA template: each
// placeholder becomes a run of N as long as that category's codons.
func (l *Library) ReadTemplate() (string, error) {
	if l.dna == nil {
		return "", fmt.Errorf("library %q has no DNA template", l.name)
	}
	lens := make(map[string]int, len(l.categories))
	for _, id := range l.dna.Placeholders() {
		n, err := l.CodonLength(id)
		if err != nil {
			return "", err
		}
		lens[id] = n
	}
	return strings.ToUpper(l.dna.render(func(id string) string {
		return strings.Repeat("N", lens[id])
	})), nil
}

// Field is one labelled value of a library description.
type Field struct {
	Key   string
	Value string
}

// Describe returns an ordered summary of the library.
func (l *Library) Describe() []Field {
	var cats []string
	for _, c := range l.categories {
		cats = append(cats, c.ID+"("+strconv.Itoa(c.Size())+")")
	}
	out := []Field{
		{"Name", l.name},
		{"Description", l.description},
		{"Categories", strings.Join(cats, ", ")},
		{"Size", strconv.Itoa(l.Size())},
	}
	if l.molecule != nil {
		out = append(out, Field{"Template", l.molecule.String()})
	}
	if l.dna != nil {
		out = append(out, Field{"DNA Template", l.dna.String()})
	}
	return out
}
