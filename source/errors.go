package source

import (
	"errors"
	"fmt"
)

// ErrPathNotFound is the sentinel wrapped by PathNotFoundError.
var ErrPathNotFound = errors.New("path not found")

// ErrWrongType is the sentinel wrapped by WrongTypeError.
var ErrWrongType = errors.New("wrong type")

// PathNotFoundError is returned when a requested path does not resolve to an
// existing node at read time.
type PathNotFoundError struct {
	Path string
	Info Info
}

// Error implements the error interface.
func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("path %q not found in source (%s)", e.Path, e.Info.Description())
}

// Unwrap makes errors.Is(err, ErrPathNotFound) work.
func (e *PathNotFoundError) Unwrap() error {
	return ErrPathNotFound
}

// WrongTypeError is returned by a typed accessor when the node's kind does
// not match the expected kind. Actual and Expected are kind descriptions;
// Info identifies which file/URL/resource produced the offending value.
type WrongTypeError struct {
	Actual   string
	Expected string
	Info     Info
}

// Error implements the error interface.
func (e *WrongTypeError) Error() string {
	return fmt.Sprintf("wrong type: value is %s, expected %s (%s)",
		e.Actual, e.Expected, e.Info.Description())
}

// Unwrap makes errors.Is(err, ErrWrongType) work.
func (e *WrongTypeError) Unwrap() error {
	return ErrWrongType
}
