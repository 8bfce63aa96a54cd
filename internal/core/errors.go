package core

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every one of them is fatal to the run.
var (
	ErrInputUnavailable  = errors.New("input unavailable")
	ErrMalformedRow      = errors.New("malformed row")
	ErrReferenceNotFound = errors.New("reference not found")
	ErrOutputWrite       = errors.New("output write failure")
)

// Error locates a failure by entity type and, where known, input row.
type Error struct {
	Kind   error // One of the Err* sentinels
	Entity EntityType
	Source string // Input file name, empty if not row-specific
	Line   int    // 1-based CSV line, 0 if not row-specific
	Field  string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Entity != "" {
		fmt.Fprintf(&b, " [%s]", e.Entity)
	}
	switch {
	case e.Source != "" && e.Line > 0:
		fmt.Fprintf(&b, " %s line %d", e.Source, e.Line)
	case e.Source != "":
		fmt.Fprintf(&b, " %s", e.Source)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InputUnavailable reports an input that cannot be opened or read.
func InputUnavailable(entity EntityType, source string, err error) error {
	return &Error{Kind: ErrInputUnavailable, Entity: entity, Source: source, Err: err}
}

// MalformedRow reports a row that cannot be decoded into its entity's shape.
func MalformedRow(entity EntityType, source string, line int, field string, err error) error {
	return &Error{Kind: ErrMalformedRow, Entity: entity, Source: source, Line: line, Field: field, Err: err}
}

// OutputWrite reports a failure to write emitted rows.
func OutputWrite(entity EntityType, err error) error {
	return &Error{Kind: ErrOutputWrite, Entity: entity, Err: err}
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
