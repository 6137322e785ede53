package expr

import (
	"errors"
	"fmt"
)

// ParseError reports malformed expression syntax.
type ParseError struct {
	// Source is the full expression text.
	Source string

	// Offset is the byte offset where parsing failed.
	Offset int

	// Message describes what was expected.
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse expression %q at offset %d: %s", e.Source, e.Offset, e.Message)
}

// UnknownPredicateError reports a predicate outside the recognized key set.
type UnknownPredicateError struct {
	Source    string
	Predicate Predicate
}

// Error implements the error interface.
func (e *UnknownPredicateError) Error() string {
	return fmt.Sprintf("unknown predicate used in expression %q: %s", e.Source, e.Predicate)
}

// IsParseError returns true if err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsUnknownPredicate returns true if err is or wraps an *UnknownPredicateError.
func IsUnknownPredicate(err error) bool {
	var ue *UnknownPredicateError
	return errors.As(err, &ue)
}
