// Package keypath implements the dotted-path addressing scheme used to
// navigate configuration trees.
//
// A path is an ordered sequence of string segments. The textual form joins
// segments with a dot: "database.pool.size" addresses the node reachable by
// descending the keys "database", "pool", "size". The empty text form denotes
// the root path (zero segments).
//
// Parse and Path.String are inverses: Parse(p.String()) equals p for every
// path whose segments contain no separator.
package keypath
