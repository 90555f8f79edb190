package formwork

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType    = "invalid_type"    // Parse-stage coercion failure.
	CodeRequired       = "required"        // Absent with no default or compute fallback.
	CodeConstraint     = "constraint"      // Validate-stage predicate failure.
	CodeUnknownVariant = "unknown_variant" // Discriminant value has no registered schema.
	CodeHook           = "hook"            // A user hook returned an error.
)

// Issue represents a single validation entry at an exact location in the
// source structure.
type Issue struct {
	Path    Path
	Code    string
	Message string
}

func (it Issue) render() string {
	if it.Path.IsRoot() {
		return it.Message
	}
	return it.Path.String() + " - " + it.Message
}

// String renders the entry as "<path> - <message>".
func (it Issue) String() string { return it.render() }

// Issues is an ordered collection of validation entries that implements
// error. Entry order is discovery order, stable for reproducible reports.
type Issues []Issue

// Error renders every entry as "<path> - <message>", joined with "; ".
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	parts := make([]string, 0, len(iss))
	for _, it := range iss {
		parts = append(parts, it.render())
	}
	return strings.Join(parts, "; ")
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ErrRecorded signals that a coercer already recorded its issues on the
// accumulator it was handed. The field pipeline treats the value as absent
// without recording anything further; a polymorphic dispatch failure is the
// canonical producer.
var ErrRecorded = errors.New("formwork: issues already recorded")

// Errors accumulates Issues during one top-level resolution. It is owned
// exclusively by that call: accumulators are never shared between concurrent
// resolutions. Recording never interrupts sibling-field processing; only the
// Err boundary converts a non-empty accumulator into a surfaced failure.
type Errors struct {
	issues Issues
}

// Add appends an entry.
func (e *Errors) Add(it Issue) { e.issues = append(e.issues, it) }

// Missing records a missing-required-value entry at p.
func (e *Errors) Missing(p Path) {
	e.Add(Issue{Path: p, Code: CodeRequired, Message: "is missing"})
}

// Invalid records a constraint violation at p.
func (e *Errors) Invalid(p Path, format string, args ...any) {
	e.Add(Issue{Path: p, Code: CodeConstraint, Message: fmt.Sprintf(format, args...)})
}

// InvalidType records a parse-stage coercion failure at p.
func (e *Errors) InvalidType(p Path, format string, args ...any) {
	e.Add(Issue{Path: p, Code: CodeInvalidType, Message: fmt.Sprintf(format, args...)})
}

// Extend merges a child resolution's entries, re-rooting each child path
// under prefix. Child accumulators carry paths relative to their own root,
// so nested failures are never silently dropped and always re-pathed before
// the top-level decision.
func (e *Errors) Extend(child *Errors, prefix Path) {
	if child == nil {
		return
	}
	for _, it := range child.issues {
		e.Add(Issue{Path: prefix.Join(it.Path), Code: it.Code, Message: it.Message})
	}
}

// Empty reports whether nothing has accumulated.
func (e *Errors) Empty() bool { return len(e.issues) == 0 }

// Len returns the number of accumulated entries.
func (e *Errors) Len() int { return len(e.issues) }

// Issues returns a copy of the accumulated entries in discovery order.
func (e *Errors) Issues() Issues {
	return append(Issues(nil), e.issues...)
}

// Err is the terminal boundary: it returns the accumulated entries as a
// single error, or nil when the accumulator is empty.
func (e *Errors) Err() error {
	if len(e.issues) == 0 {
		return nil
	}
	return e.Issues()
}
