package library

import "strings"

type segment struct {
	text        string
	placeholder bool
}

// Template is a parsed pattern with {id} placeholders. "{{" and "}}" render
// as literal braces. A Template is immutable after parsing.
type Template struct {
	raw  string
	segs []segment
}

// ParseTemplate splits raw into literal and placeholder segments.
func ParseTemplate(raw string) (*Template, error) {
	t := &Template{raw: raw}
	var lit strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch c {
		case '{':
			if i+1 < len(raw) && raw[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(raw[i+1:], '}')
			if end < 0 {
				return nil, &TemplateFormatError{Template: raw, Reason: "unterminated '{'"}
			}
			id := raw[i+1 : i+1+end]
			if id == "" || strings.ContainsAny(id, "{") {
				return nil, &TemplateFormatError{Template: raw, Reason: "empty or nested placeholder"}
			}
			if lit.Len() > 0 {
				t.segs = append(t.segs, segment{text: lit.String()})
				lit.Reset()
			}
			t.segs = append(t.segs, segment{text: id, placeholder: true})
			i += end + 1
		case '}':
			if i+1 < len(raw) && raw[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, &TemplateFormatError{Template: raw, Reason: "single '}' encountered"}
		default:
			lit.WriteByte(c)
		}
	}
	if lit.Len() > 0 {
		t.segs = append(t.segs, segment{text: lit.String()})
	}
	return t, nil
}

func (t *Template) String() string { return t.raw }

// Placeholders returns the placeholder ids in order of appearance.
func (t *Template) Placeholders() []string {
	var ids []string
	for _, s := range t.segs {
		if s.placeholder {
			ids = append(ids, s.text)
		}
	}
	return ids
}

// Validate checks every placeholder against known and returns a
// TemplateFormatError for the first one that does not resolve.
func (t *Template) Validate(known func(id string) bool) error {
	for _, s := range t.segs {
		if s.placeholder && !known(s.text) {
			return &TemplateFormatError{Template: t.raw, Placeholder: s.text}
		}
	}
	return nil
}

// Format substitutes parts into the template. All placeholders are checked
// before anything is rendered; a missing part yields a TemplateFormatError.
func (t *Template) Format(parts map[string]string) (string, error) {
	if err := t.Validate(func(id string) bool { _, ok := parts[id]; return ok }); err != nil {
		return "", err
	}
	return t.render(func(id string) string { return parts[id] }), nil
}

func (t *Template) render(value func(id string) string) string {
	var b strings.Builder
	for _, s := range t.segs {
		if s.placeholder {
			b.WriteString(value(s.text))
		} else {
			b.WriteString(s.text)
		}
	}
	return b.String()
}
