// Package bootstrap assembles the service from configuration: storage,
// optional Postgres/NATS/Ollama backends, use cases, and the HTTP handler.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	httpadapter "github.com/adaptlearn/course-ingest/internal/adapters/http"
	"github.com/adaptlearn/course-ingest/internal/config"
	"github.com/adaptlearn/course-ingest/internal/core/ports"
	"github.com/adaptlearn/course-ingest/internal/core/usecase"
	"github.com/adaptlearn/course-ingest/internal/infrastructure/extractor"
	"github.com/adaptlearn/course-ingest/internal/infrastructure/llm/ollama"
	natsqueue "github.com/adaptlearn/course-ingest/internal/infrastructure/queue/nats"
	"github.com/adaptlearn/course-ingest/internal/infrastructure/repository/postgres"
	"github.com/adaptlearn/course-ingest/internal/infrastructure/resilience"
	"github.com/adaptlearn/course-ingest/internal/infrastructure/storage"
	"github.com/adaptlearn/course-ingest/internal/infrastructure/storage/localfs"
	"github.com/adaptlearn/course-ingest/internal/observability/metrics"
)

// App holds everything the entrypoint needs to serve and to shut down.
type App struct {
	Handler  http.Handler
	Pipeline *metrics.PipelineMetrics

	db   *sql.DB
	nats *natsqueue.Publisher
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	executor := resilience.NewExecutor(resilience.DefaultPolicy())

	local, err := localfs.New(cfg.Storage.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	store := storage.NewResilient(local, executor)

	app := &App{
		Pipeline: metrics.NewPipelineMetrics(cfg.Service),
	}

	var enrollments ports.EnrollmentStore
	var enroller ports.CourseEnroller
	queries := usecase.NewCourseQueryUseCase(store, cfg.Pipeline.SignTTL)

	if cfg.Postgres.DSN != "" {
		db, err := postgres.OpenDB(cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		repo := postgres.NewEnrollmentRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate enrollments: %w", err)
		}
		app.db = db
		enrollments = repo
		enroller = usecase.NewEnrollUseCase(queries, repo)
	} else {
		slog.Info("enrollments_disabled", "reason", "no postgres dsn")
	}

	var events ports.EventPublisher
	if cfg.NATS.URL != "" {
		publisher, err := natsqueue.New(cfg.NATS.URL, cfg.NATS.Subject, natsqueue.Options{Executor: executor})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		app.nats = publisher
		events = publisher
	} else {
		slog.Info("events_disabled", "reason", "no nats url")
	}

	var questions ports.QuestionService
	if cfg.Ollama.URL != "" {
		generator := ollama.NewQuestionGenerator(ollama.New(cfg.Ollama.URL, cfg.Ollama.Model, executor))
		questions = usecase.NewQuestionUseCase(store, queries, generator)
	} else {
		slog.Info("question_generation_disabled", "reason", "no ollama url")
	}

	processor := usecase.NewProcessCourseUseCase(store, extractor.NewRegistry(), enrollments, events, usecase.ProcessOptions{
		Bucket:          cfg.Storage.Bucket,
		BucketSizeLimit: cfg.Storage.BucketSizeLimit,
		Workers:         cfg.Pipeline.Workers,
		FileTimeout:     cfg.Pipeline.FileTimeout,
	})

	router := httpadapter.NewRouter(cfg.Service, processor, queries, enroller, questions, app.Pipeline)
	httpMetrics := metrics.NewHTTPServerMetrics(cfg.Service, app.Pipeline)

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.Pipeline.Handler())
	mux.Handle("/", router.Handler())

	handler := httpMetrics.Middleware(cfg.Service, mux)
	handler = httpadapter.AccessLog(handler)
	handler = httpadapter.RateLimit(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, handler)
	handler = httpadapter.RequestID(handler)
	app.Handler = handler

	return app, nil
}

func (a *App) Close() {
	if a.nats != nil {
		a.nats.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			slog.Warn("close_postgres_failed", "error", err)
		}
	}
}
