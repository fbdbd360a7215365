package translate

import (
	"context"

	"github.com/mongoman-ai/mongoman/internal/domain"
)

// LLM asks a model provider for a chat completion.
type LLM interface {
	Ask(ctx context.Context, messages []domain.Message, provider, apiKey string) (string, error)
}
