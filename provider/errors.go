package provider

import (
	"errors"
	"fmt"
)

// ErrParse is returned (wrapped in a ParseError) when raw input cannot be
// parsed by the provider's format.
var ErrParse = errors.New("malformed content")

// ErrSourceNotFound is returned when the file, resource or URL to load from
// does not exist.
var ErrSourceNotFound = errors.New("source not found")

// ErrUnsupportedExtension is returned when dispatching on a file extension
// with no registered provider.
var ErrUnsupportedExtension = errors.New("unsupported extension")

// ErrInvalidRemoteRepo is returned by remote-repository loaders (e.g. a git
// collaborator registered by the host application) when the repository
// reference cannot be resolved.
var ErrInvalidRemoteRepo = errors.New("invalid remote repository")

// ParseError reports malformed input, naming the format and the origin of
// the offending document.
type ParseError struct {
	Format string
	Origin string
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s from %s: %v", e.Format, e.Origin, e.Err)
}

// Unwrap exposes both the ErrParse sentinel and the parser's own error.
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}
