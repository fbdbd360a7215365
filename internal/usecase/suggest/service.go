// Package suggest generates collection-specific question suggestions from
// the cached schema hint, with a canned fallback when the model's answer
// cannot be parsed.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mongoman-ai/mongoman/internal/domain"
	domschema "github.com/mongoman-ai/mongoman/internal/domain/schema"
	"github.com/mongoman-ai/mongoman/internal/logger"
)

const systemPrompt = `You are an expert data analyst helping users explore their MongoDB collection. Based on the following schema information, generate 4-6 specific, actionable question suggestions that users could ask to gain insights from their data.

Generate questions that:
1. Are specific to the actual fields in this collection
2. Would provide valuable business insights
3. Cover different types of analysis (patterns, distributions, outliers, trends, etc.)
4. Are phrased naturally as questions a business user would ask
5. Are actionable and specific to the data structure

Return only the questions as a JSON array of strings, no explanations or additional text. Example format:
["What are the most common values in the status field?", "Show me the distribution of amounts by category"]`

// Fallback suggestions used when the model output cannot be salvaged.
var fallbackSuggestions = []string{
	"What are the most common patterns in this collection?",
	"Show me the distribution of values in this dataset",
	"Find unusual or outlier records in this collection",
	"What insights can you provide about this data?",
}

// Service generates prompt suggestions.
type Service struct {
	llm   LLM
	cache Cache
	max   int
}

// New creates a suggestion service capping output at max entries.
func New(llm LLM, cache Cache, max int) *Service {
	return &Service{llm: llm, cache: cache, max: max}
}

// Suggest returns question suggestions for a collection. Requires a cached
// schema for the caller's database; returns ErrSchemaNotFound otherwise.
func (s *Service) Suggest(
	ctx context.Context,
	userID, collection string,
	conn domain.Connection,
	model domain.ModelConfig,
) ([]string, error) {
	hints, err := s.cache.Get(ctx, userID, conn.DBName)
	if err != nil {
		return nil, fmt.Errorf("suggest prompts: %w", err)
	}

	hint, ok := hints[collection]
	if !ok {
		return nil, fmt.Errorf("%w: no schema for collection %q", domain.ErrSchemaNotFound, collection)
	}

	messages := []domain.Message{
		domain.SystemMessage(systemPrompt),
		domain.UserMessage(userPrompt(collection, hint)),
	}

	resp, err := s.llm.Ask(ctx, messages, model.Provider, model.APIKey)
	if err != nil {
		return nil, fmt.Errorf("suggest prompts: %w", err)
	}

	suggestions := parseSuggestions(resp)
	if len(suggestions) == 0 {
		logger.FromContext(ctx).Warn("unparseable suggestion response, using fallback",
			zap.String("collection", collection),
		)
		suggestions = fallbackSuggestions
	}
	if len(suggestions) > s.max {
		suggestions = suggestions[:s.max]
	}
	return suggestions, nil
}

func userPrompt(collection string, hint domschema.Hint) string {
	relations := "None"
	if len(hint.Relations) > 0 {
		parts := make([]string, len(hint.Relations))
		for i, r := range hint.Relations {
			parts[i] = fmt.Sprintf("%s -> %s", r.FromField, r.ToCollection)
		}
		relations = strings.Join(parts, ", ")
	}

	return fmt.Sprintf(`Schema Information for collection "%s":
- Fields: %s
- Relations: %s

Generate 4-6 question suggestions:`, collection, strings.Join(hint.Fields, ", "), relations)
}

// parseSuggestions decodes the promised JSON array, salvaging plain-text
// lines when the model ignored the contract. Returns nil when nothing
// usable remains.
func parseSuggestions(resp string) []string {
	trimmed := strings.TrimSpace(resp)

	var arr []string
	if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
		return arr
	}

	// Sometimes the array arrives double-encoded as a JSON string.
	var nested string
	if err := json.Unmarshal([]byte(trimmed), &nested); err == nil {
		if err := json.Unmarshal([]byte(nested), &arr); err == nil {
			return arr
		}
	}

	// Line salvage: keep non-structural lines as suggestions.
	var lines []string
	for _, line := range strings.Split(resp, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, "]") || strings.HasPrefix(line, "`") {
			continue
		}
		line = strings.Trim(line, `",`)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
