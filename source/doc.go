// Package source defines the uniform tree model every configuration format
// parser produces, and the override algebra used to compose trees from
// multiple layers.
//
// A Source is an immutable node of one of four shapes: null, scalar (text,
// boolean, integer or float), list, or map with insertion-ordered keys.
// Nodes are addressed with dotted paths (see package keypath) and read
// through typed accessors that check the node's kind strictly; the only
// permitted coercion is numeric widening, where an integer scalar is also
// readable as an int64 or float64.
//
// Every node carries provenance metadata (Info) describing where it came
// from (file path, URL, resource name), extended with an "inMap"/"inList"
// trail as lookups descend. The metadata feeds error messages only; it never
// participates in value resolution.
//
// Merge composes two trees: maps merge key-by-key recursively, while lists,
// scalars and nulls from the primary tree replace the fallback wholesale.
package source
