package strata

import (
	"log/slog"
	"sync/atomic"

	"github.com/0xalexb/strata/keypath"
	"github.com/0xalexb/strata/source"
)

// facet is one layer of a config: a slot holding the layer's source tree.
// The slot is the only mutable location in the whole structure, and only a
// Watcher writes to it; the atomic pointer guarantees readers observe
// either the pre- or post-reload tree in full, never a partial mix.
type facet struct {
	content atomic.Pointer[source.Source]
}

func newFacet(src *source.Source) *facet {
	f := &facet{} //nolint:exhaustruct // atomic.Pointer must start zero-valued

	f.content.Store(src)

	return f
}

func (f *facet) load() *source.Source {
	return f.content.Load()
}

func (f *facet) swap(next *source.Source) {
	f.content.Store(next)
}

// Config is an immutable stack of configuration layers. Loading a source
// returns a new child Config with one more layer; the parent keeps its own
// stack, so both remain safe to read concurrently. The topmost layer wins
// for a path unless the path is absent there, in which case resolution
// falls through to the next layer, with map subtrees merging deep.
type Config struct {
	facets []*facet // oldest first
	logger *slog.Logger
}

// New creates an empty root Config.
func New(opts ...Option) *Config {
	var options Options

	for _, apply := range opts {
		apply(&options)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Config{facets: nil, logger: logger}
}

// WithSource returns a child Config with src pushed as the topmost layer.
func (c *Config) WithSource(src *source.Source) *Config {
	return c.withFacet(newFacet(src))
}

func (c *Config) withFacet(f *facet) *Config {
	facets := make([]*facet, 0, len(c.facets)+1)
	facets = append(facets, c.facets...)
	facets = append(facets, f)

	return &Config{facets: facets, logger: c.logger}
}

// Layers returns the number of layers in the stack.
func (c *Config) Layers() int {
	return len(c.facets)
}

// Get returns the node at path, merging across layers: the result is
// exactly what folding source.Merge over the stack (newest as primary)
// and then reading path off the merged tree would yield. The empty path
// returns the whole merged tree.
func (c *Config) Get(path string) (*source.Source, error) {
	segments := keypath.Parse(path)

	// The layer nodes at the current prefix, newest first. At every prefix
	// the merged node's kind is decided by the newest layer defining it, so
	// the descent can prune layers without building the full merged tree.
	alive := make([]*source.Source, 0, len(c.facets))

	for i := len(c.facets) - 1; i >= 0; i-- {
		alive = append(alive, c.facets[i].load())
	}

	for i, segment := range segments {
		if len(alive) == 0 {
			break
		}

		// A non-map in the newest layer defining this prefix shadows every
		// older layer wholesale; the rest of the path resolves within that
		// subtree alone.
		if !alive[0].IsMap() {
			return alive[0].Get(keypath.Path(segments[i:]).String())
		}

		next := make([]*source.Source, 0, len(alive))

		for _, node := range alive {
			// A non-map under a newer map drops out of the union entirely.
			if !node.IsMap() {
				continue
			}

			child, err := node.Get(segment)
			if err != nil {
				continue
			}

			next = append(next, child)
		}

		if len(next) == 0 {
			return nil, &source.PathNotFoundError{Path: path, Info: alive[0].Info()}
		}

		alive = next
	}

	if len(alive) == 0 {
		return nil, &source.PathNotFoundError{Path: path, Info: nil}
	}

	merged := alive[0]

	for _, node := range alive[1:] {
		if !merged.IsMap() {
			break
		}

		var err error

		merged, err = source.Merge(merged, node)
		if err != nil {
			return nil, err
		}
	}

	return merged, nil
}

// Merged returns the whole stack folded into a single tree.
func (c *Config) Merged() (*source.Source, error) {
	return c.Get("")
}

// Contains reports whether path resolves in any layer.
func (c *Config) Contains(path string) bool {
	_, err := c.Get(path)

	return err == nil
}

// Text returns the string value at path.
func (c *Config) Text(path string) (string, error) {
	node, err := c.Get(path)
	if err != nil {
		return "", err
	}

	return node.Text()
}

// Bool returns the boolean value at path.
func (c *Config) Bool(path string) (bool, error) {
	node, err := c.Get(path)
	if err != nil {
		return false, err
	}

	return node.Bool()
}

// Int returns the integer value at path.
func (c *Config) Int(path string) (int, error) {
	node, err := c.Get(path)
	if err != nil {
		return 0, err
	}

	return node.Int()
}

// Int64 returns the integer value at path as int64.
func (c *Config) Int64(path string) (int64, error) {
	node, err := c.Get(path)
	if err != nil {
		return 0, err
	}

	return node.Int64()
}

// Float64 returns the float value at path; integer values widen.
func (c *Config) Float64(path string) (float64, error) {
	node, err := c.Get(path)
	if err != nil {
		return 0, err
	}

	return node.Float64()
}
