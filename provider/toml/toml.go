// Package toml provides the TOML format provider, built on pelletier/go-toml.
// Importing the package registers it for the "toml" extension.
package toml

import (
	"fmt"

	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/0xalexb/strata/provider"
	"github.com/0xalexb/strata/source"
)

// Provider parses TOML documents into source trees. go-toml decodes into
// plain maps, so key order follows sorted-key normalization rather than
// document order.
//
//nolint:gochecknoglobals // registry-seeded singleton, like database/sql drivers.
var Provider = provider.New("toml", parse)

//nolint:gochecknoinits // extension self-registration is the package's contract.
func init() {
	provider.Register("toml", Provider)
}

func parse(data []byte) (*source.Source, error) {
	value := make(map[string]any)

	err := gotoml.Unmarshal(data, &value)
	if err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	return source.FromAny(normalize(value))
}

// normalize rewrites go-toml's local date/time values as their textual
// form, which source.FromAny can ingest.
func normalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))

		for key, item := range v {
			out[key] = normalize(item)
		}

		return out
	case []any:
		out := make([]any, 0, len(v))

		for _, item := range v {
			out = append(out, normalize(item))
		}

		return out
	case gotoml.LocalDate:
		return v.String()
	case gotoml.LocalTime:
		return v.String()
	case gotoml.LocalDateTime:
		return v.String()
	default:
		return v
	}
}
