package overview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mongoman-ai/mongoman/internal/domain"
	domschema "github.com/mongoman-ai/mongoman/internal/domain/schema"
)

type fakeLLM struct {
	resp     string
	err      error
	calls    int
	messages []domain.Message
}

func (f *fakeLLM) Ask(ctx context.Context, messages []domain.Message, provider, apiKey string) (string, error) {
	f.calls++
	f.messages = messages
	return f.resp, f.err
}

type fakeCache struct {
	hints domschema.Hints
	err   error
}

func (f *fakeCache) Get(ctx context.Context, userID, dbName string) (domschema.Hints, error) {
	return f.hints, f.err
}

func TestSummary_GroundedInCachedSchema(t *testing.T) {
	cache := &fakeCache{hints: domschema.Hints{
		"orders": {Fields: []string{"_id", "total"}},
	}}
	llm := &fakeLLM{resp: "Welcome! 📦 You have an orders collection."}
	svc := New(llm, cache)

	summary, err := svc.Summary(context.Background(), "u1", domain.Connection{DBName: "shop"}, domain.ModelConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary != "Welcome! 📦 You have an orders collection." {
		t.Errorf("summary: got %q", summary)
	}
	if !strings.Contains(llm.messages[1].Content, "orders") {
		t.Errorf("prompt missing schema content")
	}
}

func TestSummary_NoSchemaYieldsFixedMessage(t *testing.T) {
	llm := &fakeLLM{}
	svc := New(llm, &fakeCache{err: domain.ErrSchemaNotFound})

	summary, err := svc.Summary(context.Background(), "u1", domain.Connection{}, domain.ModelConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary != NoSchemaSummary {
		t.Errorf("summary: got %q, want the fixed message", summary)
	}
	if llm.calls != 0 {
		t.Errorf("llm calls: got %d, want none", llm.calls)
	}
}

func TestSummary_CacheFailure(t *testing.T) {
	svc := New(&fakeLLM{}, &fakeCache{err: errors.New("store down")})

	if _, err := svc.Summary(context.Background(), "u1", domain.Connection{}, domain.ModelConfig{}); err == nil {
		t.Error("expected an error for a failing cache")
	}
}

func TestSummary_LLMError(t *testing.T) {
	cache := &fakeCache{hints: domschema.Hints{"orders": {}}}
	llm := &fakeLLM{err: domain.NewLLMRequestError(500, "down")}
	svc := New(llm, cache)

	_, err := svc.Summary(context.Background(), "u1", domain.Connection{}, domain.ModelConfig{})

	if !errors.Is(err, domain.ErrLLMRequest) {
		t.Errorf("got %v, want ErrLLMRequest", err)
	}
}
