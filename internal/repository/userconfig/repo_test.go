package userconfig

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/mongoman-ai/mongoman/internal/db"
	"github.com/mongoman-ai/mongoman/internal/domain"
)

type fakeStore struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeStore) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeStore) Del(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func TestDBConfig_RoundTrip(t *testing.T) {
	repo := New(newFakeStore(), "mongoman:")

	conn := domain.Connection{URI: "mongodb://localhost:27017", DBName: "shop"}
	if err := repo.SaveDBConfig(context.Background(), "u1", conn); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.DBConfig(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != conn {
		t.Errorf("got %+v, want %+v", got, conn)
	}
}

func TestDBConfig_MissingIsConfigNotFound(t *testing.T) {
	repo := New(newFakeStore(), "mongoman:")

	_, err := repo.DBConfig(context.Background(), "nobody")

	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("got %v, want ErrConfigNotFound", err)
	}
}

func TestModelConfig_RoundTrip(t *testing.T) {
	repo := New(newFakeStore(), "mongoman:")

	mc := domain.ModelConfig{Provider: "groq", APIKey: "sk-test"}
	if err := repo.SaveModelConfig(context.Background(), "u1", "default", mc); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.ModelConfig(context.Background(), "u1", "default")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != mc {
		t.Errorf("got %+v, want %+v", got, mc)
	}
}

func TestModelConfig_EmptyNameSelectsFirst(t *testing.T) {
	repo := New(newFakeStore(), "mongoman:")

	if err := repo.SaveModelConfig(context.Background(), "u1", "alpha", domain.ModelConfig{Provider: "groq", APIKey: "k1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.SaveModelConfig(context.Background(), "u1", "beta", domain.ModelConfig{Provider: "openai", APIKey: "k2"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.ModelConfig(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Provider != "groq" {
		t.Errorf("provider: got %q, want the first listed config", got.Provider)
	}
}

func TestModelConfig_NoConfigsStored(t *testing.T) {
	repo := New(newFakeStore(), "mongoman:")

	_, err := repo.ModelConfig(context.Background(), "u1", "")

	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("got %v, want ErrConfigNotFound", err)
	}
}

func TestListModelConfigs_SortedWithoutKeys(t *testing.T) {
	repo := New(newFakeStore(), "mongoman:")

	if err := repo.SaveModelConfig(context.Background(), "u1", "zeta", domain.ModelConfig{Provider: "openai", APIKey: "k2"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.SaveModelConfig(context.Background(), "u1", "alpha", domain.ModelConfig{Provider: "groq", APIKey: "k1"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	infos, err := repo.ListModelConfigs(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []ModelConfigInfo{
		{Name: "alpha", Provider: "groq"},
		{Name: "zeta", Provider: "openai"},
	}
	if !reflect.DeepEqual(infos, want) {
		t.Errorf("got %v, want %v", infos, want)
	}
}

func TestListModelConfigs_IsolatedPerUser(t *testing.T) {
	repo := New(newFakeStore(), "mongoman:")

	if err := repo.SaveModelConfig(context.Background(), "u1", "mine", domain.ModelConfig{Provider: "groq"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	infos, err := repo.ListModelConfigs(context.Background(), "u2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("got %v, want no configs for another user", infos)
	}
}

func TestDeleteModelConfig(t *testing.T) {
	repo := New(newFakeStore(), "mongoman:")

	if err := repo.SaveModelConfig(context.Background(), "u1", "gone", domain.ModelConfig{Provider: "groq"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.DeleteModelConfig(context.Background(), "u1", "gone"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := repo.ModelConfig(context.Background(), "u1", "gone"); !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("got %v, want ErrConfigNotFound after delete", err)
	}
}
