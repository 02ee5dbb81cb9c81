package strata

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xalexb/strata/provider"
	"github.com/0xalexb/strata/source"
)

// FromFile loads the file at path with the provider registered for its
// extension and returns a child Config with the result as the top layer.
func (c *Config) FromFile(path string) (*Config, error) {
	p, err := provider.ByExtension(fileExt(path))
	if err != nil {
		return nil, err
	}

	src, err := p.FromFile(path)
	if err != nil {
		return nil, err
	}

	return c.WithSource(src), nil
}

// FromURL fetches the document at rawURL, dispatching on the extension of
// the URL path. The fetch is synchronous; bound it with ctx if needed.
func (c *Config) FromURL(ctx context.Context, rawURL string) (*Config, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}

	p, err := provider.ByExtension(fileExt(parsed.Path))
	if err != nil {
		return nil, err
	}

	src, err := p.FromURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	return c.WithSource(src), nil
}

// FromFS loads the named resource from fsys, dispatching on its extension.
func (c *Config) FromFS(fsys fs.FS, name string) (*Config, error) {
	p, err := provider.ByExtension(fileExt(name))
	if err != nil {
		return nil, err
	}

	src, err := p.FromFS(fsys, name)
	if err != nil {
		return nil, err
	}

	return c.WithSource(src), nil
}

// FromString parses a literal document in the format registered for ext.
func (c *Config) FromString(ext, content string) (*Config, error) {
	p, err := provider.ByExtension(ext)
	if err != nil {
		return nil, err
	}

	src, err := p.FromString(content)
	if err != nil {
		return nil, err
	}

	return c.WithSource(src), nil
}

// FromBytes parses an in-memory document in the format registered for ext.
func (c *Config) FromBytes(ext string, data []byte) (*Config, error) {
	p, err := provider.ByExtension(ext)
	if err != nil {
		return nil, err
	}

	src, err := p.FromBytes(data)
	if err != nil {
		return nil, err
	}

	return c.WithSource(src), nil
}

// FromMap pushes an in-memory value tree as the top layer. Nested maps and
// slices build nested sections.
func (c *Config) FromMap(values map[string]any) (*Config, error) {
	src, err := source.FromAny(values)
	if err != nil {
		return nil, fmt.Errorf("building map source: %w", err)
	}

	return c.WithSource(src.WithInfo(source.Info{source.InfoType: "map"})), nil
}

// FromEnv pushes a layer built from environment variables starting with
// prefix. The prefix is stripped and the rest of the name maps to a dotted
// path, lowercased, underscores becoming separators: with prefix "APP_",
// APP_SERVER_PORT=9090 yields the text value "9090" at "server.port".
func (c *Config) FromEnv(prefix string) *Config {
	builder := newEnvTree()

	for _, entry := range os.Environ() {
		name, value, _ := strings.Cut(entry, "=")
		if !strings.HasPrefix(name, prefix) {
			continue
		}

		key := strings.ToLower(strings.TrimPrefix(name, prefix))
		key = strings.ReplaceAll(key, "_", ".")

		builder.set(strings.Split(key, "."), value)
	}

	src := builder.build().WithInfo(source.Info{
		source.InfoType:   "env",
		source.InfoPrefix: prefix,
	})

	return c.WithSource(src)
}

func fileExt(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// envTree nests flat underscore-delimited names into map sections.
type envTree struct {
	order    []string
	children map[string]*envTree
	leaf     string
	isLeaf   bool
}

func newEnvTree() *envTree {
	return &envTree{
		order:    nil,
		children: make(map[string]*envTree),
		leaf:     "",
		isLeaf:   false,
	}
}

func (n *envTree) set(segments []string, value string) {
	if len(segments) == 0 {
		n.isLeaf = true
		n.leaf = value

		return
	}

	n.isLeaf = false

	head := segments[0]

	child, ok := n.children[head]
	if !ok {
		child = newEnvTree()
		n.children[head] = child
		n.order = append(n.order, head)
	}

	child.set(segments[1:], value)
}

func (n *envTree) build() *source.Source {
	if n.isLeaf {
		return source.NewText(n.leaf)
	}

	builder := source.NewMapBuilder()

	for _, key := range n.order {
		builder.Set(key, n.children[key].build())
	}

	return builder.Build()
}
