// Package provider turns raw configuration input into source trees.
//
// A Provider wraps a single format parser and gives it a uniform set of
// inputs: readers, byte slices, strings, files, URLs and fs.FS resources.
// Each input tags the produced tree with provenance metadata (file path,
// URL, resource name, or a truncated literal marker) so that type errors
// deep inside a config can name the document that produced the value.
//
// Providers are registered against file-extension strings in a process-wide
// registry, in the manner of database/sql drivers: each format package
// registers itself from init, so importing it (blank import is enough) makes
// the extension dispatchable. The registry is shared mutable state; runtime
// mutation through Register and Unregister is global and is not rolled back
// automatically. Confine mutation to startup, and to serialized test setup.
package provider
