// Package translate turns a question into a structured query by prompting
// the model and extracting the query object from its free-form answer. One
// LLM call per question; there is no self-correction loop.
package translate

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/mongoman-ai/mongoman/internal/domain"
	"github.com/mongoman-ai/mongoman/internal/domain/extract"
	domschema "github.com/mongoman-ai/mongoman/internal/domain/schema"
	"github.com/mongoman-ai/mongoman/internal/logger"
)

// Service translates questions into structured query text.
type Service struct {
	llm LLM
}

// New creates a translator.
func New(llm LLM) *Service {
	return &Service{llm: llm}
}

// Translate prompts the model and extracts the structured query. The target
// collection is pinned in the prompt; the model is instructed never to
// substitute another one. Returns ErrMalformedQuery when no usable query can
// be recovered from the response.
func (s *Service) Translate(
	ctx context.Context,
	question, collection string,
	hints domschema.Hints,
	model domain.ModelConfig,
) (extract.Extraction, error) {
	messages := []domain.Message{
		domain.SystemMessage(systemPrompt(collection, hints)),
		domain.UserMessage(fmt.Sprintf("Collection: %s\nQuestion: %s", collection, question)),
	}

	resp, err := s.llm.Ask(ctx, messages, model.Provider, model.APIKey)
	if err != nil {
		return extract.Extraction{}, fmt.Errorf("translate question: %w", err)
	}

	ext := extract.ReasoningAndQuery(resp)
	if ext.Query == "" {
		// Candidate objects that failed to parse were skipped silently;
		// leave a trace so the noise is observable.
		logger.FromContext(ctx).Debug("no structured query in LLM response",
			zap.Int("response_len", len(resp)),
		)
		return ext, fmt.Errorf("%w: no structured query in LLM response", domain.ErrMalformedQuery)
	}

	return ext, nil
}

func systemPrompt(collection string, hints domschema.Hints) string {
	schemaPart := ""
	if len(hints) > 0 {
		encoded, err := json.MarshalIndent(hints, "", "  ")
		if err == nil {
			schemaPart = fmt.Sprintf(`
Here is the database schema which describes the collections, their fields, and their relationships. Use this to construct queries, especially for performing joins between collections using the $lookup aggregation stage.

<schema>
%s
</schema>
`, encoded)
		}
	}

	return fmt.Sprintf(`You are an expert MongoDB query writer. Convert the user's question into a valid MongoDB query.
%s
Respond ONLY with valid JSON in this format:
{
 "collection": "%s",
 "method": "find|count|aggregate|etc",
 "pipeline": [],
 "filter": {},
 "projection": {}
}
Rules:
1. The 'collection' MUST be the one specified by the user: "%s".
2. Use EXACT field names from the schema when it is provided.
3. For date ranges, use ISO strings ("YYYY-MM-DD").
4. For questions that require data from related collections, you MUST use an 'aggregate' method with a '$lookup' stage.
5. NEVER include explanations or formatting. Ensure valid JSON syntax.`, schemaPart, collection, collection)
}
