package insight

import (
	"context"

	"github.com/mongoman-ai/mongoman/internal/domain"
	"github.com/mongoman-ai/mongoman/internal/domain/query"
)

// LLM asks a model provider for a chat completion.
type LLM interface {
	Ask(ctx context.Context, messages []domain.Message, provider, apiKey string) (string, error)
}

// Executor runs one structured query against the caller's database.
type Executor interface {
	Execute(ctx context.Context, q query.Query, conn domain.Connection) (any, error)
}
