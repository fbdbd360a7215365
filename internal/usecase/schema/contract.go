package schema

import (
	"context"

	"github.com/mongoman-ai/mongoman/internal/domain"
	domschema "github.com/mongoman-ai/mongoman/internal/domain/schema"
)

// Sampler reads collection names and random document samples from the
// caller's database.
type Sampler interface {
	ListCollections(ctx context.Context, conn domain.Connection) ([]string, error)
	Sample(ctx context.Context, collection string, size int, conn domain.Connection) ([]map[string]any, error)
}

// Cache stores analyzed hints per (userID, dbName).
type Cache interface {
	Get(ctx context.Context, userID, dbName string) (domschema.Hints, error)
	Set(ctx context.Context, userID, dbName string, hints domschema.Hints) error
}
