// Package extract recovers structured data from raw LLM output: free text
// that may carry a reasoning block, markdown fences, prose, and zero or one
// usable JSON object.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mongoman-ai/mongoman/internal/domain"
)

var thinkRe = regexp.MustCompile(`(?is)<think>(.*?)</think>`)

// looseObjectRe matches the shortest {...} spans, nesting-unaware. Used only
// for flat single-object contracts (classification, suggestions).
var looseObjectRe = regexp.MustCompile(`\{[\s\S]*?\}`)

// Extraction is the outcome of scanning one LLM response for a structured
// query. Query is the exact JSON substring from the source text, preserved
// verbatim so downstream parsing sees what the model wrote. An empty Query is
// a normal outcome, not an error: the model produced no usable query.
type Extraction struct {
	Reasoning string
	Query     string
}

// ReasoningAndQuery parses raw LLM text into a reasoning trace and a
// candidate structured query.
//
// The query is located in two attempts: first the whole text is tried as
// JSON; failing that, the text is scanned backward from its last opening
// brace, matching balanced objects, so the rightmost outermost object wins.
// A candidate is accepted only if it parses and carries both "collection"
// and "method". Invalid candidates are skipped silently; they are expected
// noise such as examples embedded in explanatory prose.
func ReasoningAndQuery(raw string) Extraction {
	ext := Extraction{Reasoning: reasoning(raw)}

	// Attempt 1: the entire response is the query.
	if hasQueryKeys(raw) {
		ext.Query = raw
		return ext
	}

	// Attempt 2: rightmost balanced object embedded in surrounding text.
	start := strings.LastIndex(raw, "{")
	for start != -1 {
		if end, ok := matchObject(raw, start); ok {
			candidate := raw[start:end]
			if hasQueryKeys(candidate) {
				ext.Query = candidate
				return ext
			}
		}
		start = strings.LastIndex(raw[:start], "{")
	}

	return ext
}

// LastJSONObject decodes the last {...} span in the text. This is the
// permissive contract for responses that promise exactly one flat JSON
// object. Returns ErrNoJSONFound when no span exists or the span does not
// parse; there is no fallback.
func LastJSONObject(raw string, v any) error {
	matches := looseObjectRe.FindAllString(raw, -1)
	if len(matches) == 0 {
		return domain.ErrNoJSONFound
	}
	if err := json.Unmarshal([]byte(matches[len(matches)-1]), v); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrNoJSONFound, err)
	}
	return nil
}

func reasoning(raw string) string {
	if m := thinkRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// hasQueryKeys reports whether s parses as a JSON object carrying non-empty
// "collection" and "method" values.
func hasQueryKeys(s string) bool {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return false
	}
	return truthy(m["collection"]) && truthy(m["method"])
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	default:
		return true
	}
}

// matchObject walks forward from the opening brace at start and returns the
// index one past its balanced closing brace. Braces inside string literals
// do not count toward nesting; backslash escapes inside strings are honored.
func matchObject(s string, start int) (end int, ok bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}
