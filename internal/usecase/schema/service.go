// Package schema probes the caller's database for a best-effort schema
// hint: per-collection field inventories and guessed relations derived from
// a bounded random sample.
package schema

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mongoman-ai/mongoman/internal/domain"
	domschema "github.com/mongoman-ai/mongoman/internal/domain/schema"
	"github.com/mongoman-ai/mongoman/internal/logger"
)

// Service analyzes and caches schema hints.
type Service struct {
	store      Sampler
	cache      Cache
	sampleSize int
}

// New creates a schema prober. sampleSize bounds the per-collection random
// sample (3..50).
func New(store Sampler, cache Cache, sampleSize int) *Service {
	return &Service{store: store, cache: cache, sampleSize: sampleSize}
}

// Hints returns the cached hints for the caller's database, analyzing on a
// miss. Cache failures degrade to recomputation, never to request failure.
func (s *Service) Hints(ctx context.Context, userID string, conn domain.Connection) (domschema.Hints, error) {
	hints, err := s.cache.Get(ctx, userID, conn.DBName)
	if err == nil {
		return hints, nil
	}
	if !errors.Is(err, domain.ErrSchemaNotFound) {
		logger.FromContext(ctx).Warn("schema cache read failed", zap.Error(err))
	}

	hints, _, err = s.Refresh(ctx, userID, conn)
	return hints, err
}

// Refresh re-analyzes the database, overwrites the cache and returns the
// hints plus the collection names. This is the user-triggered refresh path.
func (s *Service) Refresh(ctx context.Context, userID string, conn domain.Connection) (domschema.Hints, []string, error) {
	collections, err := s.store.ListCollections(ctx, conn)
	if err != nil {
		return nil, nil, fmt.Errorf("analyze schema: %w", err)
	}

	hints := make(domschema.Hints, len(collections))
	for _, name := range collections {
		sample, err := s.store.Sample(ctx, name, s.sampleSize, conn)
		if err != nil {
			return nil, nil, fmt.Errorf("analyze schema: %w", err)
		}
		hints[name] = domschema.Infer(name, sample, collections)
	}

	if err := s.cache.Set(ctx, userID, conn.DBName, hints); err != nil {
		// Best-effort cache: the next request recomputes.
		logger.FromContext(ctx).Warn("schema cache write failed", zap.Error(err))
	}

	return hints, collections, nil
}
