package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic message
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Kind classifies a diagnostic by the pass that produced it
type Kind int

const (
	KindParse Kind = iota
	KindNameResolution
	KindType
	KindOwnership
	KindDecoration
	KindLint
)

// String returns the string representation of the diagnostic kind
func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindNameResolution:
		return "name"
	case KindType:
		return "type"
	case KindOwnership:
		return "ownership"
	case KindDecoration:
		return "decoration"
	case KindLint:
		return "lint"
	default:
		return "unknown"
	}
}

// Span is a secondary source location attached to a diagnostic
type Span struct {
	Line   int
	Column int
	Label  string
}

// Diagnostic represents a single compiler error, warning, or info message
type Diagnostic struct {
	Severity  Severity
	Kind      Kind
	Message   string
	Line      int
	Column    int
	File      string // optional file path (for multi-file compilation)
	Hint      string // optional actionable suggestion
	Secondary []Span // optional related locations
}

// Diagnostics manages a collection of diagnostic messages
type Diagnostics struct {
	items []Diagnostic
}

// New creates a new empty Diagnostics collection
func New() *Diagnostics {
	return &Diagnostics{
		items: make([]Diagnostic, 0),
	}
}

// Errorf adds an error diagnostic with formatted message
func (d *Diagnostics) Errorf(line, col int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// ErrorfKind adds an error diagnostic with an explicit kind
func (d *Diagnostics) ErrorfKind(kind Kind, line, col int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Error,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// Warningf adds a warning diagnostic with formatted message
func (d *Diagnostics) Warningf(line, col int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// WarningfKind adds a warning diagnostic with an explicit kind
func (d *Diagnostics) WarningfKind(kind Kind, line, col int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Warning,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// Infof adds an info diagnostic with formatted message
func (d *Diagnostics) Infof(line, col int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Info,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// ErrorWithHint adds an error diagnostic with an actionable suggestion
func (d *Diagnostics) ErrorWithHint(kind Kind, line, col int, msg, hint string) {
	d.items = append(d.items, Diagnostic{
		Severity: Error,
		Kind:     kind,
		Message:  msg,
		Line:     line,
		Column:   col,
		Hint:     hint,
	})
}

// Add appends a fully populated diagnostic
func (d *Diagnostics) Add(diag Diagnostic) {
	d.items = append(d.items, diag)
}

// Merge appends all diagnostics from another collection
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.items = append(d.items, other.items...)
}

// HasErrors returns true if there are any error-level diagnostics
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == Error {
			return true
		}
	}
	return false
}

// HasKind returns true if any diagnostic carries the given kind
func (d *Diagnostics) HasKind(kind Kind) bool {
	for _, item := range d.items {
		if item.Kind == kind {
			return true
		}
	}
	return false
}

// Errors returns only the error-level diagnostics
func (d *Diagnostics) Errors() []Diagnostic {
	errors := make([]Diagnostic, 0)
	for _, item := range d.items {
		if item.Severity == Error {
			errors = append(errors, item)
		}
	}
	return errors
}

// ByKind returns all diagnostics of the given kind
func (d *Diagnostics) ByKind(kind Kind) []Diagnostic {
	out := make([]Diagnostic, 0)
	for _, item := range d.items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}

// All returns all diagnostics regardless of severity
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// Count returns the total number of diagnostics
func (d *Diagnostics) Count() int {
	return len(d.items)
}

// ErrorCount returns the number of error-level diagnostics
func (d *Diagnostics) ErrorCount() int {
	count := 0
	for _, item := range d.items {
		if item.Severity == Error {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warning-level diagnostics
func (d *Diagnostics) WarningCount() int {
	count := 0
	for _, item := range d.items {
		if item.Severity == Warning {
			count++
		}
	}
	return count
}

// ErrorfInFile adds an error diagnostic with file path and formatted message
func (d *Diagnostics) ErrorfInFile(file string, line, col int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
		File:     file,
	})
}

// Format returns human-readable messages.
// Output format:
//
//	type error[filename:3:10]: cannot assign Float to Int
//	  hint: use a Float annotation
//	warning[filename:5:1]: unused binding 'z'
func (d *Diagnostics) Format(filename string) string {
	if len(d.items) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, item := range d.items {
		// Use item.File if set, otherwise use the filename parameter
		fileToUse := filename
		if item.File != "" {
			fileToUse = item.File
		}

		severity := item.Severity.String()
		if item.Kind != KindParse {
			severity = item.Kind.String() + " " + severity
		}

		builder.WriteString(fmt.Sprintf("%s[%s:%d:%d]: %s",
			severity,
			fileToUse,
			item.Line,
			item.Column,
			item.Message,
		))

		for _, sec := range item.Secondary {
			builder.WriteString(fmt.Sprintf("\n  note[%d:%d]: %s", sec.Line, sec.Column, sec.Label))
		}

		if item.Hint != "" {
			builder.WriteString(fmt.Sprintf("\n  hint: %s", item.Hint))
		}

		if i < len(d.items)-1 {
			builder.WriteString("\n")
		}
	}

	return builder.String()
}

// Clear removes all diagnostics from the collection
func (d *Diagnostics) Clear() {
	d.items = make([]Diagnostic, 0)
}
