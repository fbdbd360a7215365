// Package query defines the structured query document: the JSON contract
// between the LLM translator and the executor describing exactly one
// database operation.
package query

import (
	"encoding/json"
	"fmt"

	"github.com/mongoman-ai/mongoman/internal/domain"
)

// Method is a supported document store operation.
type Method string

// The fixed set of operations the executor accepts.
const (
	Find       Method = "find"
	Count      Method = "count"
	InsertOne  Method = "insertOne"
	DeleteMany Method = "deleteMany"
	UpdateOne  Method = "updateOne"
	Aggregate  Method = "aggregate"
)

// Query is one validated database operation. Constructed from LLM text,
// consumed exactly once by the executor, then discarded.
type Query struct {
	Collection string         `json:"collection"`
	Method     Method         `json:"method"`
	Filter     map[string]any `json:"filter,omitempty"`
	Projection map[string]any `json:"projection,omitempty"`
	Document   map[string]any `json:"document,omitempty"`
	Pipeline   []any          `json:"pipeline,omitempty"`
}

// Parse decodes a structured query from its JSON text and checks the
// structural invariant: collection and method must both be present.
func Parse(raw string) (Query, error) {
	var q Query
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return Query{}, fmt.Errorf("%w: %w", domain.ErrMalformedQuery, err)
	}
	if q.Collection == "" || q.Method == "" {
		return Query{}, fmt.Errorf("%w: collection and method are required", domain.ErrMalformedQuery)
	}
	return q, nil
}

// Validate rejects methods outside the supported set.
func (q Query) Validate() error {
	switch q.Method {
	case Find, Count, InsertOne, DeleteMany, UpdateOne, Aggregate:
		return nil
	default:
		return domain.NewUnsupportedMethod(string(q.Method))
	}
}
