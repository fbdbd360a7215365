// Package insight answers exploratory questions: sample the collection and
// ask the model for a descriptive narrative grounded in the sample alone.
// No structured query is involved on this branch.
package insight

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mongoman-ai/mongoman/internal/domain"
	"github.com/mongoman-ai/mongoman/internal/domain/query"
)

const systemPrompt = `You are a data analyst. Given a MongoDB collection sample, provide insights about:
1. Data structure (fields and their types)
2. Value patterns and distributions
3. Potential relationships and use cases
Be specific and factual. Base insights only on the provided data.`

// Service generates collection insights.
type Service struct {
	llm        LLM
	executor   Executor
	sampleSize int
}

// New creates an insight generator. sampleSize bounds the random sample.
func New(llm LLM, executor Executor, sampleSize int) *Service {
	return &Service{llm: llm, executor: executor, sampleSize: sampleSize}
}

// Generate samples the collection and asks the model for a narrative.
func (s *Service) Generate(
	ctx context.Context,
	question, collection string,
	conn domain.Connection,
	model domain.ModelConfig,
) (domain.Answer, error) {
	sample, err := s.executor.Execute(ctx, sampleQuery(collection, s.sampleSize), conn)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("insight sample: %w", err)
	}

	encoded, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return domain.Answer{}, fmt.Errorf("insight sample encode: %w", err)
	}

	messages := []domain.Message{
		domain.SystemMessage(systemPrompt),
		domain.UserMessage(fmt.Sprintf("Collection: %s\nQuestion: %s\nData Sample:\n%s", collection, question, encoded)),
	}

	summary, err := s.llm.Ask(ctx, messages, model.Provider, model.APIKey)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("insight summary: %w", err)
	}

	return domain.Answer{
		Type:    domain.AnswerInsight,
		Data:    sample,
		Summary: summary,
	}, nil
}

// sampleQuery flattens each sampled document into key/value pairs so the
// model sees field names and types uniformly, with _id excluded.
func sampleQuery(collection string, size int) query.Query {
	return query.Query{
		Collection: collection,
		Method:     query.Aggregate,
		Pipeline: []any{
			map[string]any{"$sample": map[string]any{"size": size}},
			map[string]any{"$project": map[string]any{
				"_id":      0,
				"__schema": map[string]any{"$objectToArray": "$$ROOT"},
			}},
		},
	}
}
