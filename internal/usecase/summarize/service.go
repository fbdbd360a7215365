// Package summarize composes the final natural-language answer from the
// question, the primary query result and the resolved references.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mongoman-ai/mongoman/internal/domain"
)

// EmptyResultSummary is returned for empty results without a model call.
const EmptyResultSummary = "No results found for the query"

const systemPrompt = `You are a data summarizer. Given a MongoDB result array, generate a short, accurate natural language answer.
The user's query may involve relationships between different collections.
You have been provided with additional 'Contextual Data' which contains documents referenced by ObjectIDs from the main query result.
Use this contextual data to provide a richer, more complete answer. For example, if the main result has a 'userId', you can use the user document from the contextual data to refer to the user by name.
Do not make assumptions. Base your answer only on the data and the contextual data provided. If the result is empty, say so clearly.
The final output should be markdown-formatted.`

// Service summarizes query results.
type Service struct {
	llm LLM
}

// New creates an answer summarizer.
func New(llm LLM) *Service {
	return &Service{llm: llm}
}

// Summarize asks the model for a grounded markdown answer. An empty primary
// result short-circuits to the fixed message without calling the model.
func (s *Service) Summarize(
	ctx context.Context,
	question string,
	result any,
	references domain.ReferenceMap,
	model domain.ModelConfig,
) (string, error) {
	if isEmptyResult(result) {
		return EmptyResultSummary, nil
	}

	mainData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("summarize encode result: %w", err)
	}
	contextual, err := json.MarshalIndent(references, "", "  ")
	if err != nil {
		return "", fmt.Errorf("summarize encode references: %w", err)
	}

	messages := []domain.Message{
		domain.SystemMessage(systemPrompt),
		domain.UserMessage(fmt.Sprintf("Question: %s\n\nMain Data:\n%s\n\nContextual Data:\n%s", question, mainData, contextual)),
	}

	summary, err := s.llm.Ask(ctx, messages, model.Provider, model.APIKey)
	if err != nil {
		return "", fmt.Errorf("summarize result: %w", err)
	}
	return summary, nil
}

// isEmptyResult reports whether the primary result carries nothing to
// summarize. Scalars (counts) and write acknowledgments are never empty.
func isEmptyResult(result any) bool {
	switch v := result.(type) {
	case nil:
		return true
	case []any:
		return len(v) == 0
	case []map[string]any:
		return len(v) == 0
	default:
		return false
	}
}
