// Package schema holds the sample-derived schema hint: a best-effort
// inventory of field names per collection plus guessed cross-collection
// relations. A hint is a lower bound on the real schema: it never claims a
// field that was not observed in the sample.
package schema

import (
	"regexp"
	"sort"
	"strings"
)

var objectIDLike = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// Relation is a guessed link from a field to another collection.
type Relation struct {
	FromField    string `json:"fromField"`
	ToCollection string `json:"toCollection"`
}

// Hint is the discovered shape of one collection.
type Hint struct {
	Fields    []string   `json:"fields"`
	Relations []Relation `json:"relations"`
}

// Hints maps collection name to its hint.
type Hints map[string]Hint

// Singularize strips a plural suffix: "ies" -> "y", trailing "s" dropped.
func Singularize(word string) string {
	if strings.HasSuffix(word, "ies") {
		return word[:len(word)-3] + "y"
	}
	if strings.HasSuffix(word, "s") {
		return word[:len(word)-1]
	}
	return word
}

// Pluralize maps a word to its guessed plural collection name.
func Pluralize(word string) string {
	singular := Singularize(word)
	if strings.HasSuffix(singular, "y") {
		return singular[:len(singular)-1] + "ies"
	}
	return singular + "s"
}

// Infer builds the hint for a collection from a bounded random sample.
//
// Fields are the union of top-level keys across the sample. A field is
// guessed to be a relation when any sampled value is a 24-hex identifier or
// the field name ends in id/Id; the target collection name is derived by
// stemming and accepted only when it actually exists and differs from the
// source. False positives and negatives are acceptable; the hint narrows,
// never constrains, the translator.
func Infer(collection string, samples []map[string]any, collectionNames []string) Hint {
	fieldSet := make(map[string]struct{})
	for _, doc := range samples {
		for k := range doc {
			fieldSet[k] = struct{}{}
		}
	}

	fields := make([]string, 0, len(fieldSet))
	for f := range fieldSet {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	existing := make(map[string]struct{}, len(collectionNames))
	for _, n := range collectionNames {
		existing[n] = struct{}{}
	}

	var relations []Relation
	for _, field := range fields {
		if field == "_id" {
			continue
		}
		if !idLikeValues(field, samples) && !strings.HasSuffix(strings.ToLower(field), "id") {
			continue
		}
		target := Pluralize(stripIDSuffix(field))
		if target == collection || target == "" {
			continue
		}
		if _, ok := existing[target]; ok {
			relations = append(relations, Relation{FromField: field, ToCollection: target})
		}
	}

	return Hint{Fields: fields, Relations: relations}
}

// idLikeValues reports whether any sampled value of the field looks like a
// 24-hex document identifier.
func idLikeValues(field string, samples []map[string]any) bool {
	for _, doc := range samples {
		if s, ok := doc[field].(string); ok && objectIDLike.MatchString(s) {
			return true
		}
	}
	return false
}

func stripIDSuffix(field string) string {
	field = strings.ReplaceAll(field, "_id", "")
	field = strings.ReplaceAll(field, "Id", "")
	return field
}
