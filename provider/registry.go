package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// The process-wide extension registry. Format packages seed it from init;
// applications may mutate it at runtime, but such mutation is global and is
// never rolled back automatically.
//
//nolint:gochecknoglobals // the registry is deliberately process-wide, like database/sql drivers.
var registry = struct {
	mu        sync.RWMutex
	providers map[string]*Provider
}{
	providers: make(map[string]*Provider),
}

// Register binds ext (lowercased, leading dot ignored) to a provider,
// replacing any previous binding.
func Register(ext string, p *Provider) {
	key := normalizeExt(ext)

	registry.mu.Lock()
	defer registry.mu.Unlock()

	registry.providers[key] = p
}

// Unregister removes the binding for ext, if any.
func Unregister(ext string) {
	key := normalizeExt(ext)

	registry.mu.Lock()
	defer registry.mu.Unlock()

	delete(registry.providers, key)
}

// Lookup returns the provider bound to ext.
func Lookup(ext string) (*Provider, bool) {
	key := normalizeExt(ext)

	registry.mu.RLock()
	defer registry.mu.RUnlock()

	p, ok := registry.providers[key]

	return p, ok
}

// ByExtension returns the provider bound to ext, or ErrUnsupportedExtension
// when no provider is registered for it.
func ByExtension(ext string) (*Provider, error) {
	p, ok := Lookup(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, normalizeExt(ext))
	}

	return p, nil
}

// Extensions returns the registered extensions in sorted order.
func Extensions() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	exts := make([]string, 0, len(registry.providers))

	for ext := range registry.providers {
		exts = append(exts, ext)
	}

	sort.Strings(exts)

	return exts
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
