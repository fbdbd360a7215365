package ask

import (
	"context"

	"github.com/mongoman-ai/mongoman/internal/domain"
	"github.com/mongoman-ai/mongoman/internal/domain/extract"
	"github.com/mongoman-ai/mongoman/internal/domain/query"
	domschema "github.com/mongoman-ai/mongoman/internal/domain/schema"
)

// Classifier labels a question as query or insight.
type Classifier interface {
	Classify(ctx context.Context, question string, model domain.ModelConfig) (domain.Classification, error)
}

// SchemaSource supplies schema hints for the caller's database.
type SchemaSource interface {
	Hints(ctx context.Context, userID string, conn domain.Connection) (domschema.Hints, error)
}

// Translator turns a question into structured query text.
type Translator interface {
	Translate(ctx context.Context, question, collection string, hints domschema.Hints, model domain.ModelConfig) (extract.Extraction, error)
}

// Executor runs one validated query against the caller's database.
type Executor interface {
	Execute(ctx context.Context, q query.Query, conn domain.Connection) (any, error)
}

// Resolver builds the reference map for a query result.
type Resolver interface {
	Resolve(ctx context.Context, result any, conn domain.Connection) (domain.ReferenceMap, error)
}

// Summarizer produces the final natural-language answer.
type Summarizer interface {
	Summarize(ctx context.Context, question string, result any, references domain.ReferenceMap, model domain.ModelConfig) (string, error)
}

// InsightGenerator answers exploratory questions.
type InsightGenerator interface {
	Generate(ctx context.Context, question, collection string, conn domain.Connection, model domain.ModelConfig) (domain.Answer, error)
}
