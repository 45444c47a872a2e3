package timing

import (
	"errors"
	"fmt"
)

var (
	// ErrInputNotFound is matched by errors.Is when the input file does not exist.
	ErrInputNotFound = errors.New("input not found")
	// ErrParse wraps every decoding and validation failure.
	ErrParse = errors.New("parse error")
)

// InputNotFoundError reports a profile file that does not exist.
type InputNotFoundError struct {
	Path string
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("No profile data found at %s", e.Path)
}

func (e *InputNotFoundError) Is(target error) bool {
	return target == ErrInputNotFound
}

// ParseError reports a malformed input file. Index is the offending
// element of "profiles", or -1 when the failure is not tied to one.
type ParseError struct {
	Index int
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	switch {
	case e.Index < 0 && e.Field == "":
		return fmt.Sprintf("invalid profile data: %v", e.Err)
	case e.Index < 0:
		return fmt.Sprintf("invalid profile data: field %q: %v", e.Field, e.Err)
	default:
		return fmt.Sprintf("invalid profile #%d: field %q: %v", e.Index, e.Field, e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
