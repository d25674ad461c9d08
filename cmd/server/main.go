package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"pagebuddy-backend/internal/config"
	"pagebuddy-backend/internal/database"
	"pagebuddy-backend/internal/fetch"
	"pagebuddy-backend/internal/handlers"
	"pagebuddy-backend/internal/repository"
	"pagebuddy-backend/internal/router"
	"pagebuddy-backend/internal/services"
	"pagebuddy-backend/internal/session"
	"pagebuddy-backend/internal/websocket"
	"pagebuddy-backend/internal/worker"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg.Env)
	defer logger.Sync()
	logger.Info("starting pagebuddy backend", zap.String("env", cfg.Env))

	hasGoogleCreds, err := config.SetupGoogleCredentials()
	if err != nil {
		logger.Warn("google credentials setup failed, cloud speech disabled", zap.Error(err))
	}

	// Redis is required: sessions, job queue and realtime events live there.
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	defer redisClients.Close()
	logger.Info("redis connected")

	// Postgres is optional. Without it, history endpoints report 501 and
	// jobs live only in redis.
	var pool *pgxpool.Pool
	var summaryRepo *repository.SummaryRepo
	var flashRepo *repository.FlashcardRepo
	var jobRepo *repository.JobRepo
	if cfg.DatabaseURL != "" {
		pool, err = database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("postgres connection failed", zap.Error(err))
		}
		defer pool.Close()

		if err := database.RunMigrations(pool, "migrations"); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
		summaryRepo = repository.NewSummaryRepo(pool)
		flashRepo = repository.NewFlashcardRepo(pool)
		jobRepo = repository.NewJobRepo(pool)
		logger.Info("postgres connected, history enabled")
	} else {
		logger.Info("no DATABASE_URL set, running without history")
	}

	// Generation backend. A missing key is not fatal: the assistant degrades
	// to its extractive heuristics.
	var generator services.TextGenerator
	var geminiGen *services.GeminiGenerator
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey != "" {
			generator = services.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, logger)
		}
	default:
		if cfg.GeminiAPIKey != "" {
			geminiGen, err = services.NewGeminiGenerator(cfg.GeminiAPIKey, cfg.GeminiModel, 4, logger)
			if err != nil {
				logger.Fatal("gemini client failed", zap.Error(err))
			}
			defer geminiGen.Close()
			generator = geminiGen
		}
	}
	if generator == nil {
		logger.Warn("no generation backend configured, serving heuristic fallbacks only",
			zap.String("provider", cfg.LLMProvider))
	}

	assistant := services.NewAssistantService(generator, services.GenerateOptions{
		MaxOutputTokens: cfg.MaxOutputTokens,
		Temperature:     float32(cfg.Temperature),
	}, logger)

	speechSvc := services.NewSpeechService(hasGoogleCreds, nil, logger)
	if geminiGen != nil {
		speechSvc = services.NewSpeechService(hasGoogleCreds, geminiGen, logger)
	}

	fetcher := fetch.NewFetcher(time.Duration(cfg.FetchTimeoutSeconds)*time.Second, cfg.ContentCharBudget, logger)
	youtubeSvc := services.NewYouTubeService(logger)
	fileExtract := services.NewFileExtractService()
	slideSvc := services.NewSlideService(logger)

	sessions := session.NewStore(redisClients.Queue, logger)
	tokens := session.NewTokenAuth(cfg.SessionSecret)
	jobs := worker.NewJobStore(redisClients.Queue, jobRepo, logger)

	workerPool := worker.NewPool(redisClients.Queue, assistant, sessions, jobs, summaryRepo, flashRepo, 2, logger)
	workerPool.Start()
	defer workerPool.Stop()

	wsHub := websocket.NewHub(redisClients.PubSub, tokens, logger)

	handler := router.New(
		handlers.NewSessionHandler(sessions, tokens, logger),
		handlers.NewContentHandler(fetcher, youtubeSvc, fileExtract, sessions, speechSvc, cfg.ContentCharBudget, logger),
		handlers.NewArtifactHandler(assistant, sessions, summaryRepo, flashRepo, redisClients.Queue, logger),
		handlers.NewChatHandler(assistant, sessions, redisClients.Queue, logger),
		handlers.NewSpeechHandler(speechSvc, logger),
		handlers.NewExportHandler(slideSvc, logger),
		handlers.NewExtensionHandler(sessions, jobs, fetcher, speechSvc, cfg.ContentCharBudget, logger),
		handlers.NewJobHandler(jobs, logger),
		wsHub,
		cfg.FrontendURL,
		cfg.ExtensionSharedKey,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("stopped")
}

func newLogger(env string) *zap.Logger {
	if env == "production" {
		logger, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return logger
}
