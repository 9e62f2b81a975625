package library

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when a library has no categories to combine.
var ErrNotInitialized = notInitialized{}

type notInitialized struct{}

func (notInitialized) Error() string { return "library not initialized: no categories defined" }
func (notInitialized) ExitCode() int { return 2 }

// TemplateFormatError reports a template that cannot be rendered: either a
// placeholder with no matching category/part, or malformed brace syntax.
type TemplateFormatError struct {
	Template    string
	Placeholder string
	Reason      string
}

func (e *TemplateFormatError) Error() string {
	if e.Placeholder != "" {
		return fmt.Sprintf("template %q: placeholder {%s} does not name a category in the library", e.Template, e.Placeholder)
	}
	return fmt.Sprintf("template %q: %s", e.Template, e.Reason)
}

func (e *TemplateFormatError) ExitCode() int { return 10 }

// CategoryNotFoundError is returned for lookups of an undeclared category.
type CategoryNotFoundError struct{ ID string }

func (e *CategoryNotFoundError) Error() string { return fmt.Sprintf("category %q not found", e.ID) }
func (e *CategoryNotFoundError) ExitCode() int { return 22 }

// CategoryExistsError is returned when a category id is declared twice.
type CategoryExistsError struct{ ID string }

func (e *CategoryExistsError) Error() string { return fmt.Sprintf("category %q already exists", e.ID) }
func (e *CategoryExistsError) ExitCode() int { return 23 }

// ElementNotFoundError is returned for an element index outside its category.
type ElementNotFoundError struct {
	Category string
	Index    int
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("category %q has no element #%d", e.Category, e.Index)
}
func (e *ElementNotFoundError) ExitCode() int { return 32 }

// ElementError reports an invalid element definition.
type ElementError struct {
	Category string
	Index    int
	Reason   string
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("category %q element #%d: %s", e.Category, e.Index, e.Reason)
}
func (e *ElementError) ExitCode() int { return 30 }

// IsTemplateError reports whether err is (or wraps) a TemplateFormatError.
func IsTemplateError(err error) bool {
	var te *TemplateFormatError
	return errors.As(err, &te)
}
