// Package resolve correlates identifier-shaped strings in a query result
// with the documents they reference, across all collections of the caller's
// database.
package resolve

import (
	"context"
	"fmt"

	"github.com/mongoman-ai/mongoman/internal/domain"
	"github.com/mongoman-ai/mongoman/internal/domain/refs"
)

// Service builds reference maps for query results.
type Service struct {
	finder Finder
}

// New creates a reference resolver.
func New(finder Finder) *Service {
	return &Service{finder: finder}
}

// Resolve scans the result tree for 24-hex identifiers and fetches every
// document they match. A tree with no identifiers yields an empty map
// without touching the store; a valid outcome, not an error.
func (s *Service) Resolve(ctx context.Context, result any, conn domain.Connection) (domain.ReferenceMap, error) {
	ids := refs.CollectIDs(result)
	if len(ids) == 0 {
		return domain.ReferenceMap{}, nil
	}

	found, err := s.finder.FindByIDs(ctx, ids, conn)
	if err != nil {
		return nil, fmt.Errorf("resolve references: %w", err)
	}
	return found, nil
}
