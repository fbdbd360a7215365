package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mongoman-ai/mongoman/internal/domain"
	"github.com/mongoman-ai/mongoman/internal/repository/userconfig"
	askuc "github.com/mongoman-ai/mongoman/internal/usecase/ask"
	healthuc "github.com/mongoman-ai/mongoman/internal/usecase/health"
	overviewuc "github.com/mongoman-ai/mongoman/internal/usecase/overview"
	schemauc "github.com/mongoman-ai/mongoman/internal/usecase/schema"
	suggestuc "github.com/mongoman-ai/mongoman/internal/usecase/suggest"
)

// ErrorCode identifies the failure class in error responses.
type ErrorCode string

const (
	codeBadRequest        ErrorCode = "bad_request"
	codeValidationFailed  ErrorCode = "validation_failed"
	codeUnauthorized      ErrorCode = "unauthorized"
	codeMalformedQuery    ErrorCode = "malformed_query"
	codeUnsupportedMethod ErrorCode = "unsupported_method"
	codeLLMUnavailable    ErrorCode = "llm_unavailable"
	codeConfigRequired    ErrorCode = "config_required"
	codeDataStore         ErrorCode = "data_store_error"
	codeSchemaNotFound    ErrorCode = "schema_not_found"
	codeInternal          ErrorCode = "internal_error"
)

// ErrorResponse is the error envelope for every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// NeedsSetup marks user-correctable failures: the caller must store a
	// database or model configuration before retrying.
	NeedsSetup bool `json:"needs_setup,omitempty"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the question pipeline and configuration API over HTTP.
type Server struct {
	ask           *askuc.Service
	schemas       *schemauc.Service
	suggest       *suggestuc.Service
	overview      *overviewuc.Service
	health        *healthuc.Service
	configs       *userconfig.Repo
	askTimeout    time.Duration
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. askTimeout bounds the whole
// question pipeline per request.
func NewServer(
	ask *askuc.Service,
	schemas *schemauc.Service,
	suggest *suggestuc.Service,
	overview *overviewuc.Service,
	health *healthuc.Service,
	configs *userconfig.Repo,
	askTimeout time.Duration,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ask:        ask,
		schemas:    schemas,
		suggest:    suggest,
		overview:   overview,
		health:     health,
		configs:    configs,
		askTimeout: askTimeout,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		configNotFoundHandler,
		sentinelHandler(domain.ErrMalformedQuery, http.StatusUnprocessableEntity, codeMalformedQuery),
		sentinelHandler(domain.ErrUnsupportedMethod, http.StatusUnprocessableEntity, codeUnsupportedMethod),
		sentinelHandler(domain.ErrNoJSONFound, http.StatusBadGateway, codeLLMUnavailable),
		sentinelHandler(domain.ErrLLMRequest, http.StatusBadGateway, codeLLMUnavailable),
		sentinelHandler(domain.ErrDataStore, http.StatusBadGateway, codeDataStore),
		sentinelHandler(domain.ErrSchemaNotFound, http.StatusNotFound, codeSchemaNotFound),
	}
	return s
}

// Register mounts every route on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Post("/ask", s.Ask)
	r.Post("/collections", s.RefreshCollections)
	r.Get("/suggest-prompts", s.SuggestPrompts)
	r.Get("/schema/summary", s.SchemaSummary)

	r.Get("/config", s.GetConfig)
	r.Post("/config", s.SaveConfig)
	r.Get("/model-configs", s.ListModelConfigs)
	r.Post("/model-configs", s.SaveModelConfig)
	r.Delete("/model-configs/{name}", s.DeleteModelConfig)
}

type askRequest struct {
	Question   string `json:"question"`
	Collection string `json:"collection"`
	ConfigName string `json:"configName"`
}

// Ask handles POST /ask: the full question pipeline.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Question is required")
		return
	}
	if req.Collection == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Collection is required")
		return
	}

	userID := UserID(r.Context())
	conn, model, ok := s.callerSetup(w, r, userID, req.ConfigName)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.askTimeout)
	defer cancel()

	answer, err := s.ask.Ask(ctx, askuc.Request{
		UserID:     userID,
		Question:   req.Question,
		Collection: req.Collection,
		Conn:       conn,
		Model:      model,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

type collectionsResponse struct {
	Collections []string `json:"collections"`
}

// RefreshCollections handles POST /collections: re-analyzes the caller's
// database schema and returns the collection names.
func (s *Server) RefreshCollections(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	conn, err := s.configs.DBConfig(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	_, collections, err := s.schemas.Refresh(r.Context(), userID, conn)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, collectionsResponse{Collections: collections})
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// SuggestPrompts handles GET /suggest-prompts?collection=<name>.
func (s *Server) SuggestPrompts(w http.ResponseWriter, r *http.Request) {
	collection := r.URL.Query().Get("collection")
	if collection == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Collection query parameter is required")
		return
	}

	userID := UserID(r.Context())
	conn, model, ok := s.callerSetup(w, r, userID, r.URL.Query().Get("configName"))
	if !ok {
		return
	}

	suggestions, err := s.suggest.Suggest(r.Context(), userID, collection, conn, model)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, suggestionsResponse{Suggestions: suggestions})
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

// SchemaSummary handles GET /schema/summary.
func (s *Server) SchemaSummary(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	conn, model, ok := s.callerSetup(w, r, userID, r.URL.Query().Get("configName"))
	if !ok {
		return
	}

	summary, err := s.overview.Summary(r.Context(), userID, conn, model)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{Summary: summary})
}

type dbConfigRequest struct {
	DBURI  string `json:"dbUri"`
	DBName string `json:"dbName"`
}

type dbConfigResponse struct {
	Configured bool   `json:"configured"`
	DBName     string `json:"dbName,omitempty"`
}

// GetConfig handles GET /config. The connection URI is never echoed back.
func (s *Server) GetConfig(w http.ResponseWriter, r *http.Request) {
	conn, err := s.configs.DBConfig(r.Context(), UserID(r.Context()))
	if err != nil {
		if errors.Is(err, domain.ErrConfigNotFound) {
			writeJSON(w, http.StatusOK, dbConfigResponse{Configured: false})
			return
		}
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dbConfigResponse{Configured: true, DBName: conn.DBName})
}

// SaveConfig handles POST /config.
func (s *Server) SaveConfig(w http.ResponseWriter, r *http.Request) {
	var req dbConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.DBURI == "" || req.DBName == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "dbUri and dbName are required")
		return
	}

	conn := domain.Connection{URI: req.DBURI, DBName: req.DBName}
	if err := s.configs.SaveDBConfig(r.Context(), UserID(r.Context()), conn); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type modelConfigRequest struct {
	ConfigName string `json:"configName"`
	Provider   string `json:"provider"`
	APIKey     string `json:"apiKey"`
}

type modelConfigsResponse struct {
	Configs []userconfig.ModelConfigInfo `json:"configs"`
}

// ListModelConfigs handles GET /model-configs. API keys are never listed.
func (s *Server) ListModelConfigs(w http.ResponseWriter, r *http.Request) {
	infos, err := s.configs.ListModelConfigs(r.Context(), UserID(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, modelConfigsResponse{Configs: infos})
}

// SaveModelConfig handles POST /model-configs.
func (s *Server) SaveModelConfig(w http.ResponseWriter, r *http.Request) {
	var req modelConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.ConfigName == "" || req.Provider == "" || req.APIKey == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "configName, provider and apiKey are required")
		return
	}

	mc := domain.ModelConfig{Provider: req.Provider, APIKey: req.APIKey}
	if err := s.configs.SaveModelConfig(r.Context(), UserID(r.Context()), req.ConfigName, mc); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteModelConfig handles DELETE /model-configs/{name}.
func (s *Server) DeleteModelConfig(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Config name is required")
		return
	}

	if err := s.configs.DeleteModelConfig(r.Context(), UserID(r.Context()), name); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// callerSetup loads the caller's stored connection and model configuration,
// writing the error response on failure.
func (s *Server) callerSetup(
	w http.ResponseWriter, r *http.Request, userID, configName string,
) (domain.Connection, domain.ModelConfig, bool) {
	conn, err := s.configs.DBConfig(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return domain.Connection{}, domain.ModelConfig{}, false
	}

	model, err := s.configs.ModelConfig(r.Context(), userID, configName)
	if err != nil {
		s.handleDomainError(w, err)
		return domain.Connection{}, domain.ModelConfig{}, false
	}

	return conn, model, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrMalformedQuery,
		domain.ErrUnsupportedMethod,
		domain.ErrNoJSONFound,
		domain.ErrLLMRequest,
		domain.ErrConfigNotFound,
		domain.ErrDataStore,
		domain.ErrSchemaNotFound,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// configNotFoundHandler marks missing configuration as user-correctable.
func configNotFoundHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrConfigNotFound) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:       codeConfigRequired,
		Message:    msg,
		NeedsSetup: true,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}
