// Package userconfig stores each caller's database connection and named
// model configurations as JSON values in the service-local store.
package userconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mongoman-ai/mongoman/internal/db"
	"github.com/mongoman-ai/mongoman/internal/domain"
)

// store is the consumer interface for config operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo persists user configuration.
type Repo struct {
	store  store
	prefix string
}

// New creates a user configuration repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// ModelConfigInfo is the listing view of a stored model configuration.
// API keys are never listed back.
type ModelConfigInfo struct {
	Name     string `json:"configName"`
	Provider string `json:"provider"`
}

type dbConfigDTO struct {
	URI    string `json:"db_uri"`
	DBName string `json:"db_name"`
}

type modelConfigDTO struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
}

// SaveDBConfig upserts the caller's database connection.
func (r *Repo) SaveDBConfig(ctx context.Context, userID string, conn domain.Connection) error {
	data, err := json.Marshal(dbConfigDTO{URI: conn.URI, DBName: conn.DBName})
	if err != nil {
		return fmt.Errorf("marshal db config: %w", err)
	}
	if err := r.store.Set(ctx, r.dbKey(userID), data); err != nil {
		return fmt.Errorf("save db config: %w", err)
	}
	return nil
}

// DBConfig returns the caller's database connection.
func (r *Repo) DBConfig(ctx context.Context, userID string) (domain.Connection, error) {
	data, err := r.store.Get(ctx, r.dbKey(userID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Connection{}, fmt.Errorf("%w: no database configured", domain.ErrConfigNotFound)
		}
		return domain.Connection{}, fmt.Errorf("get db config: %w", err)
	}

	var dto dbConfigDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domain.Connection{}, fmt.Errorf("decode db config: %w", err)
	}
	return domain.Connection{URI: dto.URI, DBName: dto.DBName}, nil
}

// SaveModelConfig upserts a named model configuration.
func (r *Repo) SaveModelConfig(ctx context.Context, userID, name string, mc domain.ModelConfig) error {
	data, err := json.Marshal(modelConfigDTO{Provider: mc.Provider, APIKey: mc.APIKey})
	if err != nil {
		return fmt.Errorf("marshal model config: %w", err)
	}
	if err := r.store.Set(ctx, r.modelKey(userID, name), data); err != nil {
		return fmt.Errorf("save model config: %w", err)
	}
	return nil
}

// ModelConfig returns a stored model configuration. An empty name selects
// the first stored configuration, matching the original single-config flow.
func (r *Repo) ModelConfig(ctx context.Context, userID, name string) (domain.ModelConfig, error) {
	if name == "" {
		infos, err := r.ListModelConfigs(ctx, userID)
		if err != nil {
			return domain.ModelConfig{}, err
		}
		if len(infos) == 0 {
			return domain.ModelConfig{}, fmt.Errorf("%w: no model configured", domain.ErrConfigNotFound)
		}
		name = infos[0].Name
	}

	data, err := r.store.Get(ctx, r.modelKey(userID, name))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ModelConfig{}, fmt.Errorf("%w: model config %q", domain.ErrConfigNotFound, name)
		}
		return domain.ModelConfig{}, fmt.Errorf("get model config: %w", err)
	}

	var dto modelConfigDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domain.ModelConfig{}, fmt.Errorf("decode model config: %w", err)
	}
	return domain.ModelConfig{Provider: dto.Provider, APIKey: dto.APIKey}, nil
}

// ListModelConfigs returns name and provider of every stored configuration,
// sorted by name.
func (r *Repo) ListModelConfigs(ctx context.Context, userID string) ([]ModelConfigInfo, error) {
	keyPrefix := r.modelKey(userID, "")
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan model configs: %w", err)
	}
	sort.Strings(keys)

	infos := make([]ModelConfigInfo, 0, len(keys))
	for _, key := range keys {
		data, err := r.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue // deleted between scan and get
			}
			return nil, fmt.Errorf("get model config: %w", err)
		}
		var dto modelConfigDTO
		if err := json.Unmarshal(data, &dto); err != nil {
			return nil, fmt.Errorf("decode model config: %w", err)
		}
		infos = append(infos, ModelConfigInfo{
			Name:     strings.TrimPrefix(key, keyPrefix),
			Provider: dto.Provider,
		})
	}
	return infos, nil
}

// DeleteModelConfig removes a named configuration.
func (r *Repo) DeleteModelConfig(ctx context.Context, userID, name string) error {
	if err := r.store.Del(ctx, r.modelKey(userID, name)); err != nil {
		return fmt.Errorf("delete model config: %w", err)
	}
	return nil
}

func (r *Repo) dbKey(userID string) string {
	return r.prefix + "user:" + userID + ":db"
}

func (r *Repo) modelKey(userID, name string) string {
	return r.prefix + "user:" + userID + ":model:" + name
}
