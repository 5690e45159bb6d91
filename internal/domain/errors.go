package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist. Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// FieldError describes one per-field validation failure.
// Value is present only when the offending field arrived with a defined
// (possibly empty-string) value; its absence signals the field was missing
// entirely. Param carries the field name, index-qualified for array elements
// ("metrics[2].value"). Location is always "body".
type FieldError struct {
	Value    any    `json:"value,omitempty"`
	Msg      string `json:"msg"`
	Param    string `json:"param"`
	Location string `json:"location"`
}

// NewFieldError builds a FieldError for a field that was present with value v.
func NewFieldError(param, msg string, v any) FieldError {
	return FieldError{Value: v, Msg: msg, Param: param, Location: "body"}
}

// NewMissingFieldError builds a FieldError for a field that was absent.
func NewMissingFieldError(param, msg string) FieldError {
	return FieldError{Msg: msg, Param: param, Location: "body"}
}

// ValidationError carries the accumulated per-field errors for a rejected
// payload plus the type-coerced echo of that payload, so clients can
// re-render their form state. Handlers map this to HTTP 422.
type ValidationError struct {
	Fields []FieldError
	Echo   map[string]any
}

func (e *ValidationError) Error() string {
	params := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		params[i] = f.Param
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(params, ", "))
}

// DuplicateError reports a sibling-uniqueness violation (same tag name, same
// person name triple, same note date+title). Handlers map this to HTTP 422.
type DuplicateError struct {
	Msg string
}

func (e *DuplicateError) Error() string { return e.Msg }

// ReferenceError reports unresolved or role-mismatched tag/person references.
// The message lists every offending identifier in input order.
// Handlers map this to HTTP 422.
type ReferenceError struct {
	Msg string
}

func (e *ReferenceError) Error() string { return e.Msg }

// NewReferenceError formats the standard invalid-reference message, e.g.
// "Invalid tag(s): fishing, golf." The noun describes what was being resolved
// ("tag(s)", "person(s)", "type", "workout").
func NewReferenceError(noun string, idents []string) *ReferenceError {
	return &ReferenceError{Msg: fmt.Sprintf("Invalid %s: %s.", noun, strings.Join(idents, ", "))}
}

// BlockingRef is one nonzero referential-integrity probe result: count
// documents in collection hold the checked id in field.
type BlockingRef struct {
	Collection string
	Field      string
	Count      int64
}

// IntegrityError reports that updating or deleting a tag/person would orphan
// references in other collections. Refs holds every nonzero probe found, not
// just the first. Handlers map this to HTTP 422.
type IntegrityError struct {
	Verb string // "update" or "delete"
	Kind string // "tag" or "person"
	ID   string
	Refs []BlockingRef
}

func (e *IntegrityError) Error() string {
	parts := make([]string, len(e.Refs))
	for i, r := range e.Refs {
		parts[i] = fmt.Sprintf("%d %s.%s field(s)", r.Count, r.Collection, r.Field)
	}
	return fmt.Sprintf(
		"Cannot %s %s with ID '%s' without breaking referential integrity. The %s is referenced in: %s.",
		e.Verb, e.Kind, e.ID, e.Kind, strings.Join(parts, ", "))
}
