package domain

import "encoding/json"

// Answer types of a completed pipeline run.
const (
	AnswerQuery   = "query"
	AnswerInsight = "insight"
)

// Answer is the terminal artifact of one question. Never mutated after
// construction.
type Answer struct {
	Type      string          `json:"type"`
	Reasoning string          `json:"reasoning,omitempty"`
	Query     json.RawMessage `json:"query,omitempty"`
	Result    any             `json:"result,omitempty"`
	Data      any             `json:"data,omitempty"`
	Summary   string          `json:"summary"`
}

// Classification is the classifier's verdict on a question.
type Classification struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// Reference is one document matched while resolving an identifier.
type Reference struct {
	Collection string `json:"collection"`
	Document   any    `json:"document"`
}

// ReferenceMap maps an identifier to every document it matched across
// collections. An identifier may coincidentally hit more than one collection;
// all hits are kept.
type ReferenceMap map[string][]Reference
