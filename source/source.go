package source

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/0xalexb/strata/keypath"
)

// Source is an immutable configuration tree node. Its kind is fixed at
// construction; derived views (Sub, WithPrefix, Enable) are new values and
// never mutate the original, which makes nodes safe to share across
// goroutines without locking.
type Source struct {
	kind    Kind
	boolean bool
	integer int64
	float   float64
	text    string
	items   []*Source
	keys    []string
	fields  map[string]*Source

	info     Info
	features map[string]bool

	// A scoped view holds the node it was scoped from plus the pending
	// path; the path is resolved lazily, on first access.
	base  *Source
	scope keypath.Path
}

// NewNull returns a null node.
func NewNull() *Source {
	return &Source{kind: KindNull}
}

// NewBool returns a boolean scalar node.
func NewBool(value bool) *Source {
	return &Source{kind: KindBool, boolean: value}
}

// NewInt returns an integer scalar node. Integer nodes satisfy the numeric
// widening rule: they are readable as int, int64 and float64.
func NewInt(value int64) *Source {
	return &Source{kind: KindInt, integer: value}
}

// NewFloat returns a float scalar node.
func NewFloat(value float64) *Source {
	return &Source{kind: KindFloat, float: value}
}

// NewText returns a text scalar node.
func NewText(value string) *Source {
	return &Source{kind: KindString, text: value}
}

// NewList returns a list node holding items in order.
func NewList(items ...*Source) *Source {
	return &Source{kind: KindList, items: items}
}

// Field pairs a map key with its value, preserving declaration order.
type Field struct {
	Key   string
	Value *Source
}

// NewMap returns a map node whose keys keep the given order.
// A later duplicate key replaces the earlier value but keeps its position.
func NewMap(fields ...Field) *Source {
	builder := NewMapBuilder()

	for _, field := range fields {
		builder.Set(field.Key, field.Value)
	}

	return builder.Build()
}

// MapBuilder assembles an insertion-ordered map node incrementally.
// It is the tool format parsers use to keep round-trip key order.
type MapBuilder struct {
	keys   []string
	fields map[string]*Source
}

// NewMapBuilder returns an empty builder.
func NewMapBuilder() *MapBuilder {
	return &MapBuilder{
		keys:   nil,
		fields: make(map[string]*Source),
	}
}

// Set adds or replaces the value under key. A replaced key keeps its
// original position.
func (b *MapBuilder) Set(key string, value *Source) {
	if _, exists := b.fields[key]; !exists {
		b.keys = append(b.keys, key)
	}

	b.fields[key] = value
}

// Get returns the value currently stored under key.
func (b *MapBuilder) Get(key string) (*Source, bool) {
	value, ok := b.fields[key]

	return value, ok
}

// Build freezes the builder into a map node. The builder must not be
// reused afterwards.
func (b *MapBuilder) Build() *Source {
	return &Source{kind: KindMap, keys: b.keys, fields: b.fields}
}

// FromAny builds a tree from plain Go values: nil, bool, integers, floats,
// strings, time.Time (rendered as RFC 3339 text), []any and map[string]any.
// Map keys are sorted, since Go maps carry no order. Parsers that preserve
// key order build trees with MapBuilder instead.
func FromAny(value any) (*Source, error) {
	switch v := value.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(v), nil
	case int:
		return NewInt(int64(v)), nil
	case int8:
		return NewInt(int64(v)), nil
	case int16:
		return NewInt(int64(v)), nil
	case int32:
		return NewInt(int64(v)), nil
	case int64:
		return NewInt(v), nil
	case uint:
		return NewInt(int64(v)), nil
	case uint8:
		return NewInt(int64(v)), nil
	case uint16:
		return NewInt(int64(v)), nil
	case uint32:
		return NewInt(int64(v)), nil
	case uint64:
		if v > uint64(maxInt64) {
			return nil, fmt.Errorf("value %d overflows int64", v)
		}

		return NewInt(int64(v)), nil
	case float32:
		return NewFloat(float64(v)), nil
	case float64:
		return NewFloat(v), nil
	case string:
		return NewText(v), nil
	case time.Time:
		return NewText(v.Format(time.RFC3339)), nil
	case []any:
		items := make([]*Source, 0, len(v))

		for _, item := range v {
			node, err := FromAny(item)
			if err != nil {
				return nil, err
			}

			items = append(items, node)
		}

		return NewList(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(v))

		for key := range v {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		builder := NewMapBuilder()

		for _, key := range keys {
			node, err := FromAny(v[key])
			if err != nil {
				return nil, err
			}

			builder.Set(key, node)
		}

		return builder.Build(), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}

const maxInt64 = int64(^uint64(0) >> 1)

// WithInfo returns a copy of the source carrying the given provenance.
// Descendants inherit it lazily, as lookups descend.
func (s *Source) WithInfo(info Info) *Source {
	out := s.clone()
	out.info = info

	return out
}

// Info returns the node's provenance metadata.
func (s *Source) Info() Info {
	return s.info
}

// Enable returns a copy of the source with the named feature flag switched
// on. Flags travel with the source into config layers; the reading side
// consults them to pick strict or lenient behavior.
func (s *Source) Enable(feature string) *Source {
	return s.withFeature(feature, true)
}

// Disable returns a copy of the source with the named feature flag
// switched off.
func (s *Source) Disable(feature string) *Source {
	return s.withFeature(feature, false)
}

func (s *Source) withFeature(feature string, on bool) *Source {
	out := s.clone()
	out.features = make(map[string]bool, len(s.features)+1)

	for name, enabled := range s.features {
		out.features[name] = enabled
	}

	out.features[feature] = on

	return out
}

// Feature reports the state of the named feature flag. ok is false when the
// flag was never set on this source or any source it derives from.
func (s *Source) Feature(feature string) (enabled, ok bool) {
	enabled, ok = s.features[feature]

	return enabled, ok
}

// Contains reports whether path resolves to an existing node.
func (s *Source) Contains(path string) bool {
	_, err := s.Get(path)

	return err == nil
}

// Get returns the node at path. The empty path returns the source itself.
// A missing path yields a PathNotFoundError.
func (s *Source) Get(path string) (*Source, error) {
	return s.get(keypath.Parse(path))
}

// GetOrNull returns the node at path, or nil when the path is absent.
func (s *Source) GetOrNull(path string) *Source {
	node, err := s.Get(path)
	if err != nil {
		return nil
	}

	return node
}

// Sub returns a view of the source rooted at path. The empty path returns
// the source unchanged. Scoping is lazy: a nonexistent path fails with
// PathNotFoundError when the view is queried, not when it is built, so
// Sub("a.b").Get("c") behaves exactly like Get("a.b.c").
func (s *Source) Sub(path string) *Source {
	parsed := keypath.Parse(path)
	if parsed.IsRoot() {
		return s
	}

	out := s.clone()

	if s.base != nil {
		out.scope = s.scope.Join(parsed)

		return out
	}

	out.base = s
	out.scope = parsed

	return out
}

// WithPrefix wraps the source under a synthetic map chain so that looking
// up "prefix.rest" in the result resolves "rest" in the original.
// The empty prefix returns the source unchanged.
func (s *Source) WithPrefix(prefix string) *Source {
	segments := keypath.Parse(prefix)
	if segments.IsRoot() {
		return s
	}

	wrapped := s

	for i := len(segments) - 1; i >= 0; i-- {
		wrapped = NewMap(Field{Key: segments[i], Value: wrapped})
	}

	out := wrapped.clone()
	out.info = s.info.With(InfoPrefix, prefix)
	out.features = s.features

	return out
}

// Kind predicates. Exactly one of IsNull/IsBool/IsText/IsList/IsMap and the
// numeric predicates below is the node's own kind; IsInt64 and IsFloat64
// additionally accept integer nodes per the widening rule. A predicate on
// an unresolvable scoped view reports false.

// IsNull reports whether the node is null.
func (s *Source) IsNull() bool { return s.kindIs(KindNull) }

// IsBool reports whether the node is a boolean scalar.
func (s *Source) IsBool() bool { return s.kindIs(KindBool) }

// IsInt reports whether the node is an integer scalar.
func (s *Source) IsInt() bool { return s.kindIs(KindInt) }

// IsInt64 reports whether the node is readable as int64; true for every
// integer scalar.
func (s *Source) IsInt64() bool { return s.kindIs(KindInt) }

// IsFloat64 reports whether the node is readable as float64; true for
// float scalars and, by widening, integer scalars.
func (s *Source) IsFloat64() bool {
	resolved, err := s.resolve()
	if err != nil {
		return false
	}

	return resolved.kind == KindFloat || resolved.kind == KindInt
}

// IsText reports whether the node is a text scalar.
func (s *Source) IsText() bool { return s.kindIs(KindString) }

// IsList reports whether the node is a list.
func (s *Source) IsList() bool { return s.kindIs(KindList) }

// IsMap reports whether the node is a map.
func (s *Source) IsMap() bool { return s.kindIs(KindMap) }

func (s *Source) kindIs(kind Kind) bool {
	resolved, err := s.resolve()
	if err != nil {
		return false
	}

	return resolved.kind == kind
}

// Text returns the node's string value, or a WrongTypeError.
func (s *Source) Text() (string, error) {
	resolved, err := s.expect(KindString)
	if err != nil {
		return "", err
	}

	return resolved.text, nil
}

// Bool returns the node's boolean value, or a WrongTypeError.
func (s *Source) Bool() (bool, error) {
	resolved, err := s.expect(KindBool)
	if err != nil {
		return false, err
	}

	return resolved.boolean, nil
}

// Int returns the node's integer value as int, or a WrongTypeError.
func (s *Source) Int() (int, error) {
	resolved, err := s.expect(KindInt)
	if err != nil {
		return 0, err
	}

	return int(resolved.integer), nil
}

// Int64 returns the node's integer value, or a WrongTypeError.
func (s *Source) Int64() (int64, error) {
	resolved, err := s.expect(KindInt)
	if err != nil {
		return 0, err
	}

	return resolved.integer, nil
}

// Float64 returns the node's float value. Integer nodes widen; every other
// kind yields a WrongTypeError.
func (s *Source) Float64() (float64, error) {
	resolved, err := s.resolve()
	if err != nil {
		return 0, err
	}

	switch resolved.kind {
	case KindFloat:
		return resolved.float, nil
	case KindInt:
		return float64(resolved.integer), nil
	default:
		return 0, resolved.wrongType(KindFloat)
	}
}

// List returns the node's items, or a WrongTypeError. The slice is a copy;
// mutating it leaves the source untouched.
func (s *Source) List() ([]*Source, error) {
	resolved, err := s.expect(KindList)
	if err != nil {
		return nil, err
	}

	items := make([]*Source, len(resolved.items))
	copy(items, resolved.items)

	return items, nil
}

// Map returns the node's fields keyed by name, or a WrongTypeError. The map
// is a copy; mutating it leaves the source untouched. Use Keys for the
// insertion order.
func (s *Source) Map() (map[string]*Source, error) {
	resolved, err := s.expect(KindMap)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]*Source, len(resolved.fields))

	for key, value := range resolved.fields {
		fields[key] = value
	}

	return fields, nil
}

// Keys returns the map node's keys in insertion order, or a WrongTypeError.
// The slice is a copy; mutating it leaves the source untouched.
func (s *Source) Keys() ([]string, error) {
	resolved, err := s.expect(KindMap)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(resolved.keys))
	copy(keys, resolved.keys)

	return keys, nil
}

// Interface renders the tree as plain Go values: nil, bool, int64, float64,
// string, []any and map[string]any. Map key order is lost; callers needing
// order walk Keys themselves.
func (s *Source) Interface() (any, error) {
	resolved, err := s.resolve()
	if err != nil {
		return nil, err
	}

	switch resolved.kind {
	case KindNull:
		return nil, nil
	case KindBool:
		return resolved.boolean, nil
	case KindInt:
		return resolved.integer, nil
	case KindFloat:
		return resolved.float, nil
	case KindString:
		return resolved.text, nil
	case KindList:
		items := make([]any, 0, len(resolved.items))

		for _, item := range resolved.items {
			value, itemErr := item.Interface()
			if itemErr != nil {
				return nil, itemErr
			}

			items = append(items, value)
		}

		return items, nil
	case KindMap:
		fields := make(map[string]any, len(resolved.fields))

		for key, field := range resolved.fields {
			value, fieldErr := field.Interface()
			if fieldErr != nil {
				return nil, fieldErr
			}

			fields[key] = value
		}

		return fields, nil
	default:
		return nil, fmt.Errorf("unsupported kind %s", resolved.kind)
	}
}

func (s *Source) expect(kind Kind) (*Source, error) {
	resolved, err := s.resolve()
	if err != nil {
		return nil, err
	}

	if resolved.kind != kind {
		return nil, resolved.wrongType(kind)
	}

	return resolved, nil
}

func (s *Source) wrongType(expected Kind) error {
	return &WrongTypeError{
		Actual:   s.kind.String(),
		Expected: expected.String(),
		Info:     s.info,
	}
}

// resolve applies a pending scope. Concrete nodes resolve to themselves.
func (s *Source) resolve() (*Source, error) {
	if s.base == nil {
		return s, nil
	}

	node, err := s.base.get(s.scope)
	if err != nil {
		return nil, err
	}

	out := node.clone()
	out.info = s.info.overlay(node.info)
	out.features = mergeFeatures(s.features, node.features)

	return out, nil
}

func (s *Source) get(path keypath.Path) (*Source, error) {
	cur, err := s.resolve()
	if err != nil {
		return nil, err
	}

	for _, segment := range path {
		cur, err = cur.resolve()
		if err != nil {
			return nil, err
		}

		switch cur.kind {
		case KindMap:
			child, ok := cur.fields[segment]
			if !ok {
				return nil, &PathNotFoundError{Path: path.String(), Info: cur.info}
			}

			cur = child.inherited(cur, InfoInMap, segment)
		case KindList:
			index, convErr := strconv.Atoi(segment)
			if convErr != nil || index < 0 || index >= len(cur.items) {
				return nil, &PathNotFoundError{Path: path.String(), Info: cur.info}
			}

			cur = cur.items[index].inherited(cur, InfoInList, segment)
		default:
			return nil, &PathNotFoundError{Path: path.String(), Info: cur.info}
		}
	}

	return cur.resolve()
}

// inherited returns a copy of the child carrying the parent's provenance
// extended with a trail entry, and the parent's feature flags as defaults.
func (s *Source) inherited(parent *Source, trailKey, segment string) *Source {
	out := s.clone()
	out.info = parent.info.extendTrail(trailKey, segment).overlay(s.info)
	out.features = mergeFeatures(parent.features, s.features)

	return out
}

func (s *Source) clone() *Source {
	out := *s

	return &out
}

func mergeFeatures(defaults, overrides map[string]bool) map[string]bool {
	if len(defaults) == 0 {
		return overrides
	}

	if len(overrides) == 0 {
		return defaults
	}

	out := make(map[string]bool, len(defaults)+len(overrides))

	for name, enabled := range defaults {
		out[name] = enabled
	}

	for name, enabled := range overrides {
		out[name] = enabled
	}

	return out
}
