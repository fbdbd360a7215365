// Package ask orchestrates one question end to end:
//
//	classify -> { sample + summarize }                       (insight)
//	classify -> probe -> translate -> execute -> resolve ->
//	            summarize                                    (query)
//
// Every stage's output feeds the next, so stages run strictly in order.
// Each LLM call and each store call is attempted exactly once; any stage
// error ends the run.
package ask

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/mongoman-ai/mongoman/internal/domain"
	"github.com/mongoman-ai/mongoman/internal/domain/query"
	domschema "github.com/mongoman-ai/mongoman/internal/domain/schema"
	"github.com/mongoman-ai/mongoman/internal/logger"
	"github.com/mongoman-ai/mongoman/internal/metrics"
)

// Request carries one question plus the caller's resolved configuration.
type Request struct {
	UserID     string
	Question   string
	Collection string
	Conn       domain.Connection
	Model      domain.ModelConfig
}

// Service runs the question pipeline.
type Service struct {
	classifier Classifier
	schemas    SchemaSource
	translator Translator
	executor   Executor
	resolver   Resolver
	summarizer Summarizer
	insights   InsightGenerator
}

// New wires the pipeline stages.
func New(
	classifier Classifier,
	schemas SchemaSource,
	translator Translator,
	executor Executor,
	resolver Resolver,
	summarizer Summarizer,
	insights InsightGenerator,
) *Service {
	return &Service{
		classifier: classifier,
		schemas:    schemas,
		translator: translator,
		executor:   executor,
		resolver:   resolver,
		summarizer: summarizer,
		insights:   insights,
	}
}

// Ask answers one question and returns the terminal envelope.
func (s *Service) Ask(ctx context.Context, req Request) (domain.Answer, error) {
	log := logger.FromContext(ctx).With(
		zap.String("collection", req.Collection),
		zap.String("provider", req.Model.Provider),
	)
	log.Info("processing question", zap.String("question", req.Question))

	verdict, err := s.classifier.Classify(ctx, req.Question, req.Model)
	if err != nil {
		metrics.QuestionsTotal.WithLabelValues("unknown", "error").Inc()
		return domain.Answer{}, err
	}
	log.Info("question classified",
		zap.String("type", verdict.Type),
		zap.String("reason", verdict.Reason),
	)

	answer, err := s.answer(ctx, req, verdict, log)
	if err != nil {
		metrics.QuestionsTotal.WithLabelValues(questionLabel(verdict.Type), "error").Inc()
		return domain.Answer{}, err
	}
	metrics.QuestionsTotal.WithLabelValues(questionLabel(verdict.Type), "success").Inc()
	return answer, nil
}

// questionLabel clamps the classifier's verdict to the known values so a
// misbehaving model cannot inflate metric cardinality.
func questionLabel(t string) string {
	switch t {
	case domain.AnswerQuery, domain.AnswerInsight:
		return t
	}
	return "unknown"
}

func (s *Service) answer(ctx context.Context, req Request, verdict domain.Classification, log *zap.Logger) (domain.Answer, error) {
	if verdict.Type == domain.AnswerInsight {
		return s.insights.Generate(ctx, req.Question, req.Collection, req.Conn, req.Model)
	}

	// The hint narrows the translator's output but never gates it; probing
	// failures degrade to an unhinted prompt.
	var hints domschema.Hints
	if h, err := s.schemas.Hints(ctx, req.UserID, req.Conn); err != nil {
		log.Warn("schema probe failed, translating without hint", zap.Error(err))
	} else {
		hints = h
	}

	ext, err := s.translator.Translate(ctx, req.Question, req.Collection, hints, req.Model)
	if err != nil {
		return domain.Answer{}, err
	}

	q, err := query.Parse(ext.Query)
	if err != nil {
		return domain.Answer{}, err
	}
	log.Info("query extracted", zap.String("method", string(q.Method)))

	result, err := s.executor.Execute(ctx, q, req.Conn)
	if err != nil {
		return domain.Answer{}, err
	}

	references, err := s.resolver.Resolve(ctx, result, req.Conn)
	if err != nil {
		return domain.Answer{}, err
	}
	if len(references) > 0 {
		log.Info("references resolved", zap.Int("identifiers", len(references)))
	}

	summary, err := s.summarizer.Summarize(ctx, req.Question, result, references, req.Model)
	if err != nil {
		return domain.Answer{}, err
	}

	return domain.Answer{
		Type:      domain.AnswerQuery,
		Reasoning: ext.Reasoning,
		Query:     json.RawMessage(ext.Query),
		Result:    result,
		Summary:   summary,
	}, nil
}
