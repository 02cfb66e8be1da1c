package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"finrag/features/ask"
	"finrag/features/document"
	"finrag/features/evaluate"
	"finrag/features/job"
	"finrag/features/stats"
	"finrag/internal/adapter/gemini"
	"finrag/internal/adapter/reranker"
	"finrag/internal/boilerplate"
	"finrag/internal/chunking"
	"finrag/internal/config"
	"finrag/internal/middleware"
	"finrag/internal/pipeline"
	"finrag/internal/retrieval"
	"finrag/internal/settings"
	"finrag/internal/vectorstore"
	"finrag/internal/worker"
)

// Database is satisfied by *sql.DB. Repositories need the concrete type, so
// New casts; the interface keeps the signature mockable.
type Database interface {
	PingContext(ctx context.Context) error
}

// TaskPublisher publishes ingest tasks to the queue. *nsq.Producer satisfies
// it in production.
type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

// Embedder covers both the single-text and batch paths of the pipeline.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Options overrides external adapters. Tests inject stubs here; production
// passes nothing.
type Options struct {
	Embedder  Embedder
	Generator pipeline.Generator
}

type App struct {
	Handler         http.Handler
	DocumentService *document.Service
	IngestConsumer  *worker.IngestConsumer

	addr string
}

func New(
	cfg *config.Config,
	db Database,
	store vectorstore.Store,
	taskPub TaskPublisher,
	opts ...*Options,
) (*App, error) {

	// Repositories need *sql.DB; the interface in the signature exists for
	// mocking with sqlmock.
	sqlDB := db.(*sql.DB)

	// Feature: Settings
	settingsRepo := settings.NewPostgresRepo(sqlDB)
	settingsService := settings.NewService(settingsRepo)
	seedAPIKeys(cfg, settingsService)
	settingsHandler := settings.NewHandler(settingsService)

	// Feature: Documents
	documentRepo := document.NewPostgresRepo(sqlDB)
	documentService := document.NewService(documentRepo, taskPub, store)
	documentHandler := document.NewHandler(documentService, cfg.MaxUploadSizeMB<<20)

	// Feature: Jobs
	jobRepo := job.NewPostgresRepo(sqlDB)
	jobService := job.NewService(jobRepo, taskPub)
	jobHandler := job.NewHandler(jobService)

	// Feature: Stats
	statsHandler := stats.NewHandler(documentRepo, jobRepo, store)

	// Adapters: Dynamic
	var embedder Embedder = gemini.NewDynamicEmbedder(settingsService)
	var generator pipeline.Generator = gemini.NewDynamicGenerator(settingsService, pipeline.SystemPrompt())
	rerankerClient := reranker.NewDynamicClient(settingsService)

	if len(opts) > 0 && opts[0] != nil {
		if opts[0].Embedder != nil {
			embedder = opts[0].Embedder
		}
		if opts[0].Generator != nil {
			generator = opts[0].Generator
		}
	}

	// Retrieval
	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}

	// Defaults come from the settings row at startup; per-request options
	// cover everything tunable after that.
	retrievalCfg := retrieval.DefaultConfig()
	if set, err := settingsService.Get(context.Background()); err == nil {
		retrievalCfg = retrieval.Config{
			TopK:       set.RetrievalTopK,
			Rerank:     set.RerankEnabled,
			RerankTopK: set.RerankTopK,
			MinScore:   set.MinScore,
		}
	} else {
		slog.Warn("failed to load retrieval settings, using defaults", "error", err)
	}
	retrievalService := retrieval.NewService(embedder, store, rerankerClient, retrievalCfg, queryLogger)

	// Pipelines
	filterCfg := boilerplate.DefaultConfig()
	filterCfg.Enabled = cfg.FilterBoilerplate
	ingestor := pipeline.NewIngestor(
		boilerplate.NewFilter(filterCfg),
		chunking.NewRegistry(chunking.Options{
			MaxTokens:     cfg.ChunkMaxTokens,
			OverlapTokens: cfg.ChunkOverlapTokens,
			MaxPages:      cfg.ChunkMaxPages,
		}),
		embedder,
		store,
		cfg.EmbedBatchSize,
	)
	querier := pipeline.NewQuerier(retrievalService, generator)

	askHandler := ask.NewHandler(querier)
	evaluateHandler := evaluate.NewHandler(retrievalService)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /documents", middleware.CorrelationID(enableCORS(documentHandler.Create)))
	mux.Handle("POST /documents/upload", middleware.CorrelationID(enableCORS(documentHandler.Upload)))
	mux.Handle("GET /documents", middleware.CorrelationID(enableCORS(documentHandler.List)))
	mux.Handle("GET /documents/{id}", middleware.CorrelationID(enableCORS(documentHandler.Get)))
	mux.Handle("DELETE /documents/{id}", middleware.CorrelationID(enableCORS(documentHandler.Delete)))
	mux.Handle("POST /documents/{id}/reingest", middleware.CorrelationID(enableCORS(documentHandler.ReIngest)))

	mux.Handle("POST /ask", middleware.CorrelationID(enableCORS(askHandler.Ask)))
	mux.Handle("POST /evaluate", middleware.CorrelationID(enableCORS(evaluateHandler.Run)))

	mux.Handle("GET /settings", middleware.CorrelationID(enableCORS(settingsHandler.GetSettings)))
	mux.Handle("PUT /settings", middleware.CorrelationID(enableCORS(settingsHandler.UpdateSettings)))

	mux.Handle("GET /jobs/failed", middleware.CorrelationID(enableCORS(jobHandler.List)))
	mux.Handle("POST /jobs/{id}/retry", middleware.CorrelationID(enableCORS(jobHandler.Retry)))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	ingestConsumer := worker.NewIngestConsumer(ingestor, documentRepo, jobRepo)

	return &App{
		Handler:         mux,
		DocumentService: documentService,
		IngestConsumer:  ingestConsumer,
		addr:            fmt.Sprintf(":%d", cfg.ServerPort),
	}, nil
}

// seedAPIKeys copies keys from the environment into the settings row when
// the row has none, so a fresh deployment works without a manual PUT.
func seedAPIKeys(cfg *config.Config, svc *settings.Service) {
	if cfg.GeminiAPIKey == "" && cfg.RerankAPIKey == "" {
		return
	}

	ctx := context.Background()
	set, err := svc.Get(ctx)
	if err != nil {
		slog.Warn("failed to fetch settings for seeding", "error", err)
		return
	}

	changed := false
	if cfg.GeminiAPIKey != "" && set.GeminiAPIKey == "" {
		set.GeminiAPIKey = cfg.GeminiAPIKey
		changed = true
	}
	if cfg.RerankAPIKey != "" && set.RerankAPIKey == "" {
		set.RerankAPIKey = cfg.RerankAPIKey
		changed = true
	}
	if !changed {
		return
	}

	if err := svc.Update(ctx, set); err != nil {
		slog.Warn("failed to seed api keys", "error", err)
		return
	}
	slog.Info("seeded api keys from environment")
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.addr,
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "addr", a.addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
