// Package json provides the JSON format provider. Importing the package
// registers it for the "json" extension.
//
// Documents are decoded token by token rather than into map[string]any, so
// object key order survives into the source tree for round-trip fidelity.
package json

import (
	"bytes"
	gojson "encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/0xalexb/strata/provider"
	"github.com/0xalexb/strata/source"
)

// Provider parses JSON documents into source trees.
//
//nolint:gochecknoglobals // registry-seeded singleton, like database/sql drivers.
var Provider = provider.New("json", parse)

//nolint:gochecknoinits // extension self-registration is the package's contract.
func init() {
	provider.Register("json", Provider)
}

var errTrailingContent = errors.New("trailing content after document")

func parse(data []byte) (*source.Source, error) {
	decoder := gojson.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	node, err := decodeValue(decoder)
	if err != nil {
		return nil, err
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingContent
	}

	return node, nil
}

func decodeValue(decoder *gojson.Decoder) (*source.Source, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("decode error: %w", err)
	}

	switch t := token.(type) {
	case gojson.Delim:
		switch t {
		case '{':
			return decodeObject(decoder)
		case '[':
			return decodeArray(decoder)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t.String())
		}
	case string:
		return source.NewText(t), nil
	case bool:
		return source.NewBool(t), nil
	case gojson.Number:
		if i, intErr := t.Int64(); intErr == nil {
			return source.NewInt(i), nil
		}

		f, floatErr := t.Float64()
		if floatErr != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t.String(), floatErr)
		}

		return source.NewFloat(f), nil
	case nil:
		return source.NewNull(), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", token)
	}
}

func decodeObject(decoder *gojson.Decoder) (*source.Source, error) {
	builder := source.NewMapBuilder()

	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("decode error: %w", err)
		}

		key, ok := keyToken.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", keyToken)
		}

		value, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}

		builder.Set(key, value)
	}

	// Consume the closing brace.
	if _, err := decoder.Token(); err != nil {
		return nil, fmt.Errorf("decode error: %w", err)
	}

	return builder.Build(), nil
}

func decodeArray(decoder *gojson.Decoder) (*source.Source, error) {
	var items []*source.Source

	for decoder.More() {
		value, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}

		items = append(items, value)
	}

	// Consume the closing bracket.
	if _, err := decoder.Token(); err != nil {
		return nil, fmt.Errorf("decode error: %w", err)
	}

	return source.NewList(items...), nil
}
