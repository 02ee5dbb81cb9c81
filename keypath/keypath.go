package keypath

import "strings"

// Separator joins path segments in the textual form.
const Separator = "."

// Path is an ordered sequence of segments addressing a node in a
// configuration tree. The zero value is the root path.
type Path []string

// Parse splits text on the separator into a Path.
// The empty string parses to the root path.
func Parse(text string) Path {
	if text == "" {
		return nil
	}

	return Path(strings.Split(text, Separator))
}

// String joins the segments with the separator. It is the inverse of Parse.
func (p Path) String() string {
	return strings.Join(p, Separator)
}

// IsRoot reports whether the path has no segments.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Join returns the concatenation of p and q as a new Path.
// Neither receiver nor argument is modified.
func (p Path) Join(q Path) Path {
	if len(q) == 0 {
		return p
	}

	if len(p) == 0 {
		return q
	}

	joined := make(Path, 0, len(p)+len(q))
	joined = append(joined, p...)
	joined = append(joined, q...)

	return joined
}

// Child returns a new Path with segment appended.
func (p Path) Child(segment string) Path {
	child := make(Path, 0, len(p)+1)
	child = append(child, p...)
	child = append(child, segment)

	return child
}
