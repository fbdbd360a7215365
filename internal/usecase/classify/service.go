// Package classify labels a question as a structured query or an
// open-ended insight request. The verdict governs the whole pipeline branch,
// so a response with no parseable JSON is a hard failure; there is no
// fallback default.
package classify

import (
	"context"
	"fmt"

	"github.com/mongoman-ai/mongoman/internal/domain"
	"github.com/mongoman-ai/mongoman/internal/domain/extract"
)

const systemPrompt = `Analyze if the given question can be converted into a MongoDB query or if it's a general insight request.
Respond ONLY with a JSON object in this format:
{
"type": "query|insight",
"reason": "brief explanation"
}
Rules:
1. type should be "query" if the question:
- Asks for specific data or conditions
- Contains filtering criteria
- Requests counting or aggregation
2. type should be "insight" if the question:
- Asks for general information
- Requests data exploration
- Seeks patterns or overview`

// Service classifies questions.
type Service struct {
	llm LLM
}

// New creates a classifier.
func New(llm LLM) *Service {
	return &Service{llm: llm}
}

// Classify asks the model for a query/insight verdict. One attempt; a
// malformed response surfaces as ErrNoJSONFound.
func (s *Service) Classify(ctx context.Context, question string, model domain.ModelConfig) (domain.Classification, error) {
	messages := []domain.Message{
		domain.SystemMessage(systemPrompt),
		domain.UserMessage(question),
	}

	resp, err := s.llm.Ask(ctx, messages, model.Provider, model.APIKey)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("classify question: %w", err)
	}

	var c domain.Classification
	if err := extract.LastJSONObject(resp, &c); err != nil {
		return domain.Classification{}, fmt.Errorf("classify question: %w", err)
	}
	return c, nil
}
