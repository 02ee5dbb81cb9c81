package provider

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/0xalexb/strata/source"
)

// literalMarkerLen bounds the literal-content marker embedded in provenance
// for in-memory inputs.
const literalMarkerLen = 40

// Parser parses one document of a concrete format into a source tree.
// Implementations live in the per-format subpackages.
type Parser func(data []byte) (*source.Source, error)

// Provider maps raw input to a root source tree, tagging provenance and
// applying any registered transforms.
type Provider struct {
	format    string
	parse     Parser
	transform func(*source.Source) *source.Source
}

// New creates a Provider for the named format around a Parser.
func New(format string, parse Parser) *Provider {
	return &Provider{
		format:    format,
		parse:     parse,
		transform: nil,
	}
}

// Format returns the provider's format name, e.g. "yaml".
func (p *Provider) Format() string {
	return p.format
}

// Map returns a derived provider whose outputs are post-processed by
// transform before being handed to a config. Transforms compose by function
// composition and run in registration order: the transform given first runs
// first.
func (p *Provider) Map(transform func(*source.Source) *source.Source) *Provider {
	previous := p.transform

	composed := transform
	if previous != nil {
		composed = func(src *source.Source) *source.Source {
			return transform(previous(src))
		}
	}

	return &Provider{
		format:    p.format,
		parse:     p.parse,
		transform: composed,
	}
}

// FromBytes parses an in-memory document.
func (p *Provider) FromBytes(data []byte) (*source.Source, error) {
	return p.produce(data, source.Info{
		source.InfoType:    p.format,
		source.InfoContent: literalMarker(data),
	}, "bytes")
}

// FromString parses a literal document.
func (p *Provider) FromString(content string) (*source.Source, error) {
	return p.produce([]byte(content), source.Info{
		source.InfoType:    p.format,
		source.InfoContent: literalMarker([]byte(content)),
	}, "string")
}

// FromReader reads the stream to the end and parses it.
func (p *Provider) FromReader(r io.Reader) (*source.Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading stream: %w", err)
	}

	return p.produce(data, source.Info{
		source.InfoType:    p.format,
		source.InfoContent: literalMarker(data),
	}, "stream")
}

// FromFile reads and parses the file at path. A missing file or a directory
// yields ErrSourceNotFound.
func (p *Provider) FromFile(path string) (*source.Source, error) {
	cleanPath := filepath.Clean(path)

	stat, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("%w: file %q: %w", ErrSourceNotFound, cleanPath, err)
	}

	if stat.IsDir() {
		return nil, fmt.Errorf("%w: %q is a directory, not a file", ErrSourceNotFound, cleanPath)
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 -- path is cleaned and validated
	if err != nil {
		return nil, fmt.Errorf("%w: reading file %q: %w", ErrSourceNotFound, cleanPath, err)
	}

	return p.produce(data, source.Info{
		source.InfoType: p.format,
		source.InfoFile: cleanPath,
	}, cleanPath)
}

// FromURL fetches and parses the document at rawURL. The fetch is
// synchronous; callers wanting a timeout bound it through ctx. Any
// non-2xx response yields ErrSourceNotFound.
func (p *Provider) FromURL(ctx context.Context, rawURL string) (*source.Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %q: %w", rawURL, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %q: %w", ErrSourceNotFound, rawURL, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: fetching %q: status %s", ErrSourceNotFound, rawURL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %q: %w", ErrSourceNotFound, rawURL, err)
	}

	return p.produce(data, source.Info{
		source.InfoType: p.format,
		source.InfoURL:  rawURL,
	}, rawURL)
}

// FromFS reads and parses the named resource from fsys.
func (p *Provider) FromFS(fsys fs.FS, name string) (*source.Source, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: resource %q: %w", ErrSourceNotFound, name, err)
	}

	return p.produce(data, source.Info{
		source.InfoType:     p.format,
		source.InfoResource: name,
	}, name)
}

func (p *Provider) produce(data []byte, info source.Info, origin string) (*source.Source, error) {
	src, err := p.parse(data)
	if err != nil {
		return nil, &ParseError{Format: p.format, Origin: origin, Err: err}
	}

	src = src.WithInfo(info)

	if p.transform != nil {
		src = p.transform(src)
	}

	return src, nil
}

func literalMarker(data []byte) string {
	if len(data) <= literalMarkerLen {
		return string(data)
	}

	truncated := data[:literalMarkerLen]

	// Back off only over a multi-byte rune split by the cut; bytes that were
	// never valid UTF-8 stay in the marker as-is.
	for i := 0; i < utf8.UTFMax-1; i++ {
		if len(truncated) == 0 {
			break
		}

		r, size := utf8.DecodeLastRune(truncated)
		if r != utf8.RuneError || size > 1 {
			break
		}

		truncated = truncated[:len(truncated)-1]
	}

	return string(truncated) + "..."
}
