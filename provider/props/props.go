// Package props provides the Java properties format provider, built on
// magiconair/properties. Importing the package registers it for the
// "properties" extension.
//
// Dotted keys build a nested tree: "source.test.type = x" produces a map
// chain source → test → type. Values stay text scalars; the properties
// format carries no type information. When a later key turns an existing
// leaf into a section (or the reverse), the later key wins.
package props

import (
	"fmt"

	"github.com/magiconair/properties"

	"github.com/0xalexb/strata/keypath"
	"github.com/0xalexb/strata/provider"
	"github.com/0xalexb/strata/source"
)

// Provider parses Java properties documents into source trees, preserving
// key order.
//
//nolint:gochecknoglobals // registry-seeded singleton, like database/sql drivers.
var Provider = provider.New("properties", parse)

//nolint:gochecknoinits // extension self-registration is the package's contract.
func init() {
	provider.Register("properties", Provider)
}

func parse(data []byte) (*source.Source, error) {
	loader := &properties.Loader{
		Encoding:         properties.UTF8,
		DisableExpansion: true,
	}

	parsed, err := loader.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("load error: %w", err)
	}

	root := newTreeNode()

	for _, key := range parsed.Keys() {
		value, _ := parsed.Get(key)
		root.insert(keypath.Parse(key), source.NewText(value))
	}

	return root.build(), nil
}

// treeNode assembles the nested tree from flat dotted keys while keeping
// first-seen key order.
type treeNode struct {
	order    []string
	children map[string]*treeNode
	leaf     *source.Source
}

func newTreeNode() *treeNode {
	return &treeNode{
		order:    nil,
		children: make(map[string]*treeNode),
		leaf:     nil,
	}
}

func (n *treeNode) insert(path keypath.Path, value *source.Source) {
	if path.IsRoot() {
		n.leaf = value
		n.order = nil
		n.children = make(map[string]*treeNode)

		return
	}

	// Becoming a section discards a previously set leaf.
	n.leaf = nil

	head := path[0]

	child, ok := n.children[head]
	if !ok {
		child = newTreeNode()
		n.children[head] = child
		n.order = append(n.order, head)
	}

	child.insert(path[1:], value)
}

func (n *treeNode) build() *source.Source {
	if n.leaf != nil {
		return n.leaf
	}

	builder := source.NewMapBuilder()

	for _, key := range n.order {
		builder.Set(key, n.children[key].build())
	}

	return builder.Build()
}
