// Package schemacache is the TTL-bound read-through cache of schema hints,
// keyed by caller and database. Staleness is tolerated until the caller
// re-triggers a refresh; concurrent populations of the same key race
// benignly (last write wins).
package schemacache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mongoman-ai/mongoman/internal/db"
	"github.com/mongoman-ai/mongoman/internal/domain"
	"github.com/mongoman-ai/mongoman/internal/domain/schema"
)

// store is the consumer interface for cache operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Repo caches schema hints.
type Repo struct {
	store  store
	prefix string
	ttl    time.Duration
}

// New creates a schema cache with the given entry TTL.
func New(s store, prefix string, ttl time.Duration) *Repo {
	return &Repo{store: s, prefix: prefix, ttl: ttl}
}

// Get returns the cached hints for (userID, dbName).
// Returns domain.ErrSchemaNotFound on a miss.
func (r *Repo) Get(ctx context.Context, userID, dbName string) (schema.Hints, error) {
	data, err := r.store.Get(ctx, r.key(userID, dbName))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrSchemaNotFound
		}
		return nil, fmt.Errorf("get schema cache: %w", err)
	}

	var hints schema.Hints
	if err := json.Unmarshal(data, &hints); err != nil {
		return nil, fmt.Errorf("decode schema cache: %w", err)
	}
	return hints, nil
}

// Set overwrites the cached hints for (userID, dbName).
func (r *Repo) Set(ctx context.Context, userID, dbName string, hints schema.Hints) error {
	data, err := json.Marshal(hints)
	if err != nil {
		return fmt.Errorf("marshal schema cache: %w", err)
	}
	if err := r.store.SetWithTTL(ctx, r.key(userID, dbName), data, r.ttl); err != nil {
		return fmt.Errorf("set schema cache: %w", err)
	}
	return nil
}

func (r *Repo) key(userID, dbName string) string {
	return r.prefix + "schema:" + userID + ":" + dbName
}
