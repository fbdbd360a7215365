package suggest

import (
	"context"

	"github.com/mongoman-ai/mongoman/internal/domain"
	domschema "github.com/mongoman-ai/mongoman/internal/domain/schema"
)

// LLM asks a model provider for a chat completion.
type LLM interface {
	Ask(ctx context.Context, messages []domain.Message, provider, apiKey string) (string, error)
}

// Cache reads previously analyzed schema hints. Suggestions require a cache
// hit; callers refresh via the collections endpoint first.
type Cache interface {
	Get(ctx context.Context, userID, dbName string) (domschema.Hints, error)
}
