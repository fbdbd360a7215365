package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mongoman-ai/mongoman/internal/config"
	dbMongo "github.com/mongoman-ai/mongoman/internal/db/mongo"
	dbRedis "github.com/mongoman-ai/mongoman/internal/db/redis"
	logpkg "github.com/mongoman-ai/mongoman/internal/logger"
	"github.com/mongoman-ai/mongoman/internal/metrics"
	"github.com/mongoman-ai/mongoman/internal/repository/schemacache"
	"github.com/mongoman-ai/mongoman/internal/repository/userconfig"
	chiTransport "github.com/mongoman-ai/mongoman/internal/transport/chi"
	openaiLLM "github.com/mongoman-ai/mongoman/internal/transport/openai"
	askuc "github.com/mongoman-ai/mongoman/internal/usecase/ask"
	classifyuc "github.com/mongoman-ai/mongoman/internal/usecase/classify"
	healthuc "github.com/mongoman-ai/mongoman/internal/usecase/health"
	insightuc "github.com/mongoman-ai/mongoman/internal/usecase/insight"
	overviewuc "github.com/mongoman-ai/mongoman/internal/usecase/overview"
	resolveuc "github.com/mongoman-ai/mongoman/internal/usecase/resolve"
	schemauc "github.com/mongoman-ai/mongoman/internal/usecase/schema"
	suggestuc "github.com/mongoman-ai/mongoman/internal/usecase/suggest"
	summarizeuc "github.com/mongoman-ai/mongoman/internal/usecase/summarize"
	translateuc "github.com/mongoman-ai/mongoman/internal/usecase/translate"
	"github.com/mongoman-ai/mongoman/internal/version"
)

func main() {
	// Load .env if present; real environment variables win.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting mongoman API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("cache_addrs", cfg.Cache.Addrs),
		zap.String("default_provider", cfg.LLM.DefaultProvider),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Cache.Addrs,
		Password: cfg.Cache.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Cache store not ready", zap.Error(err))
	}
	logger.Info("Connected to cache store")

	// Register LLM metrics explicitly (no init())
	metrics.RegisterLLMMetrics()

	// LLM client over the configured provider table
	providers := make(map[string]openaiLLM.Provider, len(cfg.LLM.Providers))
	for name, p := range cfg.LLM.Providers {
		providers[name] = openaiLLM.Provider{
			BaseURL: p.BaseURL,
			Model:   p.Model,
			APIKey:  p.APIKey,
		}
	}
	llm := openaiLLM.NewClient(providers, logger)

	// Document store for the callers' own databases
	mongoStore := dbMongo.NewStore(cfg.Pipeline.ScanWorkers, logger)

	// Repositories
	configRepo := userconfig.New(store, cfg.Cache.KeyPrefix)
	schemaTTL := time.Duration(cfg.Cache.SchemaTTLMin) * time.Minute
	cacheRepo := schemacache.New(store, cfg.Cache.KeyPrefix, schemaTTL)

	// Use case services
	classifySvc := classifyuc.New(llm)
	schemaSvc := schemauc.New(mongoStore, cacheRepo, cfg.Pipeline.SampleSize)
	translateSvc := translateuc.New(llm)
	resolveSvc := resolveuc.New(mongoStore)
	summarizeSvc := summarizeuc.New(llm)
	insightSvc := insightuc.New(llm, mongoStore, cfg.Pipeline.SampleSize)
	askSvc := askuc.New(classifySvc, schemaSvc, translateSvc, mongoStore, resolveSvc, summarizeSvc, insightSvc)

	suggestSvc := suggestuc.New(llm, cacheRepo, cfg.Pipeline.MaxSuggestions)
	overviewSvc := overviewuc.New(llm, cacheRepo)
	healthSvc := healthuc.New(store, llm)

	server := chiTransport.NewServer(
		askSvc,
		schemaSvc,
		suggestSvc,
		overviewSvc,
		healthSvc,
		configRepo,
		time.Duration(cfg.Pipeline.TimeoutSec)*time.Second,
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.JWTAuthMiddleware(cfg.Auth.JWTSecret))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
