// Package yaml provides the YAML format provider, built on goccy/go-yaml.
// Importing the package registers it for the "yml" and "yaml" extensions.
package yaml

import (
	"fmt"

	goyaml "github.com/goccy/go-yaml"

	"github.com/0xalexb/strata/provider"
	"github.com/0xalexb/strata/source"
)

// Provider parses YAML documents into source trees, preserving map key
// order via goccy's ordered-map decoding.
//
//nolint:gochecknoglobals // registry-seeded singleton, like database/sql drivers.
var Provider = provider.New("yaml", parse)

//nolint:gochecknoinits // extension self-registration is the package's contract.
func init() {
	provider.Register("yml", Provider)
	provider.Register("yaml", Provider)
}

func parse(data []byte) (*source.Source, error) {
	var value any

	err := goyaml.UnmarshalWithOptions(data, &value, goyaml.UseOrderedMap())
	if err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	return toSource(value)
}

func toSource(value any) (*source.Source, error) {
	switch v := value.(type) {
	case goyaml.MapSlice:
		builder := source.NewMapBuilder()

		for _, item := range v {
			node, err := toSource(item.Value)
			if err != nil {
				return nil, err
			}

			builder.Set(fmt.Sprint(item.Key), node)
		}

		return builder.Build(), nil
	case []any:
		items := make([]*source.Source, 0, len(v))

		for _, item := range v {
			node, err := toSource(item)
			if err != nil {
				return nil, err
			}

			items = append(items, node)
		}

		return source.NewList(items...), nil
	default:
		return source.FromAny(v)
	}
}
