// Package overview turns the cached schema into a friendly plain-language
// tour of the connected database.
package overview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mongoman-ai/mongoman/internal/domain"
)

// NoSchemaSummary is returned when no schema has been analyzed yet.
const NoSchemaSummary = "No schema information available to summarize."

const systemPrompt = `You are a friendly and helpful AI assistant. Your task is to welcome the user and provide a simple, easy-to-understand overview of their connected database based on its JSON schema.

**Instructions:**
1.  **Start with a warm, welcoming greeting.**
2.  **Use emojis** to make the summary more engaging (e.g., 📦 for collections, 🔗 for relationships).
3.  **Do NOT use technical jargon.** Avoid phrases like "JSON schema definition" or "human-readable summary."
4.  **Do NOT include boilerplate introductions** like "Here is a summary...". Just start with the greeting.
5.  **Use clear, well-spaced formatting.** Create distinct sections for "Collections" and "Relationships" using bold markdown headings.
6.  **Under each heading, use a bulleted list** for each item. Each item in the list should be a separate point.
7.  **Ensure there is vertical space between paragraphs and list items** by using double line breaks in the markdown source.`

// Service summarizes the cached schema.
type Service struct {
	llm   LLM
	cache Cache
}

// New creates a schema overview service.
func New(llm LLM, cache Cache) *Service {
	return &Service{llm: llm, cache: cache}
}

// Summary asks the model for a database overview grounded in the cached
// schema. A missing schema yields the fixed message, not an error.
func (s *Service) Summary(ctx context.Context, userID string, conn domain.Connection, model domain.ModelConfig) (string, error) {
	hints, err := s.cache.Get(ctx, userID, conn.DBName)
	if err != nil {
		if errors.Is(err, domain.ErrSchemaNotFound) {
			return NoSchemaSummary, nil
		}
		return "", fmt.Errorf("schema summary: %w", err)
	}

	encoded, err := json.MarshalIndent(hints, "", "  ")
	if err != nil {
		return "", fmt.Errorf("schema summary encode: %w", err)
	}

	messages := []domain.Message{
		domain.SystemMessage(systemPrompt),
		domain.UserMessage(fmt.Sprintf("Here is the database schema:\n%s", encoded)),
	}

	summary, err := s.llm.Ask(ctx, messages, model.Provider, model.APIKey)
	if err != nil {
		return "", fmt.Errorf("schema summary: %w", err)
	}
	return summary, nil
}
