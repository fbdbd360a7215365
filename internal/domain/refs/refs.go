// Package refs discovers document identifiers inside arbitrary JSON-shaped
// result trees so they can be resolved to the documents they point at.
package refs

import (
	"regexp"
	"sort"
)

var objectIDRe = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// IsID reports whether s has the shape of a 24-hex document identifier.
func IsID(s string) bool {
	return objectIDRe.MatchString(s)
}

// CollectIDs walks a result tree of maps, slices and scalars and returns the
// deduplicated identifier-shaped strings found in string-valued positions,
// sorted for deterministic output. An empty result is the normal outcome for
// trees without references.
func CollectIDs(data any) []string {
	found := make(map[string]struct{})
	walk(data, found)

	ids := make([]string, 0, len(found))
	for id := range found {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func walk(data any, found map[string]struct{}) {
	switch v := data.(type) {
	case string:
		if objectIDRe.MatchString(v) {
			found[v] = struct{}{}
		}
	case []any:
		for _, item := range v {
			walk(item, found)
		}
	// The executor hands find/aggregate results over as []map[string]any,
	// which does not assert to []any.
	case []map[string]any:
		for _, item := range v {
			walk(item, found)
		}
	case map[string]any:
		for _, item := range v {
			walk(item, found)
		}
	}
}
