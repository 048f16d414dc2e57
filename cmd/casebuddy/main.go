package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/casebuddy/casebuddy/internal/ai"
	"github.com/casebuddy/casebuddy/internal/app"
	"github.com/casebuddy/casebuddy/internal/auth"
	"github.com/casebuddy/casebuddy/internal/cases"
	"github.com/casebuddy/casebuddy/internal/documents"
	"github.com/casebuddy/casebuddy/internal/evidence"
	"github.com/casebuddy/casebuddy/internal/foia"
	"github.com/casebuddy/casebuddy/internal/observability"
	"github.com/casebuddy/casebuddy/internal/platform/cache"
	"github.com/casebuddy/casebuddy/internal/platform/db"
	"github.com/casebuddy/casebuddy/internal/shared"
	"github.com/casebuddy/casebuddy/internal/timeline"
	"github.com/casebuddy/casebuddy/internal/users"
	"github.com/casebuddy/casebuddy/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(cfg.PGDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, AI caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	validate := validator.New()
	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)

	authRepo := auth.NewRepository(pool)
	sessionStore := auth.NewSessionStore(authRepo, cfg.SessionTTL)
	authService := auth.NewService(authRepo, sessionStore, auditLogger, logger)
	authMiddleware := auth.Middleware{Service: authService, Logger: logger, Secure: cfg.IsProduction()}
	authHandler := auth.NewHandler(logger, authService, authMiddleware, cfg.IsProduction())

	casesRepo := cases.NewRepository(pool)
	casesService := cases.NewService(casesRepo, auditLogger, logger)
	casesHandler := cases.NewHandler(logger, casesService)

	documentsRepo := documents.NewRepository(pool)
	documentsService := documents.NewService(documentsRepo, auditLogger, logger)
	documentsHandler := documents.NewHandler(logger, documentsService, validate)

	evidenceRepo := evidence.NewRepository(pool)
	evidenceService := evidence.NewService(evidenceRepo, auditLogger, logger)
	evidenceHandler := evidence.NewHandler(logger, evidenceService, validate)

	timelineRepo := timeline.NewRepository(pool)
	timelineService := timeline.NewService(timelineRepo, auditLogger, logger)
	timelineHandler := timeline.NewHandler(logger, timelineService, validate)

	foiaRepo := foia.NewRepository(pool)
	foiaService := foia.NewService(foiaRepo, auditLogger, logger)
	foiaHandler := foia.NewHandler(logger, foiaService, validate)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, auditLogger, logger)
	usersHandler := users.NewHandler(logger, usersService, validate)

	var completer ai.Completer
	if cfg.CompletionAPIKey != "" {
		completer = ai.NewOpenAIClient(ai.OpenAIConfig{
			BaseURL: cfg.CompletionBaseURL,
			APIKey:  cfg.CompletionAPIKey,
			Model:   cfg.CompletionModel,
			Timeout: cfg.CompletionTimeout,
		}, logger)
	} else {
		logger.Warn("no completion API key configured, using canned AI responses")
		completer = ai.NewMockCompleter()
	}
	completer = ai.InstrumentCompleter(completer, metrics)

	aiService := ai.NewService(ai.ServiceParams{
		Completer: completer,
		Repo:      ai.NewPGRepository(pool),
		Cache:     ai.NewCache(redisClient, cfg.AICacheTTL),
		Documents: documentsService,
		Evidence:  evidenceService,
		Timeline:  timelineService,
		FOIA:      foiaService,
		Cases:     casesService,
		Logger:    logger,
	})
	aiHandler := ai.NewHandler(logger, aiService, validate)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthHandler:      authHandler,
		AuthMiddleware:   authMiddleware,
		CasesHandler:     casesHandler,
		DocumentsHandler: documentsHandler,
		EvidenceHandler:  evidenceHandler,
		TimelineHandler:  timelineHandler,
		FOIAHandler:      foiaHandler,
		UsersHandler:     usersHandler,
		AIHandler:        aiHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
