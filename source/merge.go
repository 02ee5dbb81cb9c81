package source

// Merge composes two trees with primary taking precedence. When both nodes
// are maps the result is their key union, merging recursively where a key
// appears on both sides; for every other combination of kinds the primary
// node wins outright and the fallback is ignored for that subtree. Lists
// and scalars never merge element-wise: structural sections compose, leaf
// and collection values are replaced.
//
// Scoped views are resolved before merging; an unresolvable view surfaces
// its PathNotFoundError.
func Merge(primary, fallback *Source) (*Source, error) {
	p, err := primary.resolve()
	if err != nil {
		return nil, err
	}

	f, err := fallback.resolve()
	if err != nil {
		return nil, err
	}

	if p.kind != KindMap || f.kind != KindMap {
		return p, nil
	}

	builder := NewMapBuilder()

	for _, key := range p.keys {
		value := p.fields[key]

		if fValue, ok := f.fields[key]; ok {
			merged, mergeErr := Merge(value, fValue)
			if mergeErr != nil {
				return nil, mergeErr
			}

			value = merged
		}

		builder.Set(key, value)
	}

	for _, key := range f.keys {
		if _, ok := p.fields[key]; !ok {
			builder.Set(key, f.fields[key])
		}
	}

	merged := builder.Build()
	merged.info = p.info
	merged.features = p.features

	return merged, nil
}

// Equal reports whether two trees hold the same values. Map comparison is
// key-set based, so two maps with the same entries in different insertion
// order are equal. Unresolvable scoped views are never equal to anything.
func Equal(a, b *Source) bool {
	ra, err := a.resolve()
	if err != nil {
		return false
	}

	rb, err := b.resolve()
	if err != nil {
		return false
	}

	if ra.kind != rb.kind {
		return false
	}

	switch ra.kind {
	case KindNull:
		return true
	case KindBool:
		return ra.boolean == rb.boolean
	case KindInt:
		return ra.integer == rb.integer
	case KindFloat:
		return ra.float == rb.float
	case KindString:
		return ra.text == rb.text
	case KindList:
		if len(ra.items) != len(rb.items) {
			return false
		}

		for i := range ra.items {
			if !Equal(ra.items[i], rb.items[i]) {
				return false
			}
		}

		return true
	case KindMap:
		if len(ra.fields) != len(rb.fields) {
			return false
		}

		for key, value := range ra.fields {
			other, ok := rb.fields[key]
			if !ok || !Equal(value, other) {
				return false
			}
		}

		return true
	default:
		return false
	}
}
