// Package recon assembles display-ready view models from denormalized,
// inconsistently shaped database records. The same logical field may live
// under several key names depending on which version of the mobile client
// wrote the record, so every read goes through an ordered fallback chain.
package recon

import (
	"fmt"
	"strings"

	"github.com/carelink/carelink/internal/platform/docstore"
)

// Lookup reads a key path from a record, supporting one level of nesting
// ("profile.phone"). The second return reports whether a non-nil value was
// found.
func Lookup(record docstore.Document, keyPath string) (interface{}, bool) {
	if record == nil {
		return nil, false
	}
	key := keyPath
	if i := strings.Index(keyPath, "."); i >= 0 {
		nested, ok := record[keyPath[:i]].(map[string]interface{})
		if !ok {
			return nil, false
		}
		record = nested
		key = keyPath[i+1:]
	}
	v, ok := record[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Resolve returns the first candidate key whose value is usable: non-nil,
// and for strings non-empty after trimming. Non-string scalars are
// stringified. A nil record short-circuits to the fallback. Resolve is pure;
// the same inputs always yield the same output.
func Resolve(record docstore.Document, candidateKeys []string, fallback string) string {
	if record == nil {
		return fallback
	}
	for _, key := range candidateKeys {
		v, ok := Lookup(record, key)
		if !ok {
			continue
		}
		if s, isStr := v.(string); isStr {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			return s
		}
	}
	return fallback
}

// ResolveValue is Resolve for non-string values: it returns the first
// candidate that is present and non-nil, or the fallback.
func ResolveValue(record docstore.Document, candidateKeys []string, fallback interface{}) interface{} {
	if record == nil {
		return fallback
	}
	for _, key := range candidateKeys {
		if v, ok := Lookup(record, key); ok {
			return v
		}
	}
	return fallback
}
