package source

import (
	"sort"
	"strings"
)

// Well-known provenance keys. Providers fill "type" plus one origin key;
// lookups extend the trail keys as they descend.
const (
	InfoType     = "type"
	InfoFile     = "file"
	InfoURL      = "url"
	InfoResource = "resource"
	InfoContent  = "content"
	InfoPrefix   = "prefix"
	InfoInMap    = "inMap"
	InfoInList   = "inList"
)

// Info is the provenance metadata attached to a Source: descriptive keys
// mapped to string values, used exclusively for error messages.
type Info map[string]string

// With returns a copy of the info with key set to value.
// The receiver is not modified; a nil receiver is treated as empty.
func (i Info) With(key, value string) Info {
	out := i.clone()
	out[key] = value

	return out
}

// Description renders the info as a human-readable origin marker, e.g.
// "type: yaml, file: app.yml, inMap: database". The "type" entry leads,
// remaining keys follow in sorted order. Empty info describes as "unknown".
func (i Info) Description() string {
	if len(i) == 0 {
		return "unknown"
	}

	keys := make([]string, 0, len(i))

	for key := range i {
		if key != InfoType {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	if _, ok := i[InfoType]; ok {
		keys = append([]string{InfoType}, keys...)
	}

	parts := make([]string, 0, len(keys))

	for _, key := range keys {
		parts = append(parts, key+": "+i[key])
	}

	return strings.Join(parts, ", ")
}

func (i Info) clone() Info {
	out := make(Info, len(i)+1)

	for key, value := range i {
		out[key] = value
	}

	return out
}

// overlay returns the receiver extended with every entry of over,
// entries of over taking precedence.
func (i Info) overlay(over Info) Info {
	if len(over) == 0 {
		return i.clone()
	}

	out := i.clone()

	for key, value := range over {
		out[key] = value
	}

	return out
}

// extendTrail appends segment to the dotted trail stored under key.
func (i Info) extendTrail(key, segment string) Info {
	trail := i[key]
	if trail != "" {
		trail += "."
	}

	return i.With(key, trail+segment)
}
