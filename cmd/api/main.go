package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/modwarden/warden-api/internal/config"
	"github.com/modwarden/warden-api/internal/domain/catalog"
	"github.com/modwarden/warden-api/internal/domain/member"
	"github.com/modwarden/warden-api/internal/domain/policy"
	"github.com/modwarden/warden-api/internal/domain/prompt"
	"github.com/modwarden/warden-api/internal/domain/scoring"
	"github.com/modwarden/warden-api/internal/middleware"
	"github.com/modwarden/warden-api/internal/pkg/classifier"
	"github.com/modwarden/warden-api/internal/pkg/database"
	"github.com/modwarden/warden-api/internal/pkg/discord"
	"github.com/modwarden/warden-api/internal/pkg/logger"
	"github.com/modwarden/warden-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.IsDevelopment())

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Warden API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	// ---------- Repositories ----------
	memberRepo := member.NewRepository(db)
	catalogRepo := catalog.NewRepository(db)
	policyRepo := policy.NewRepository(db)
	promptRepo := prompt.NewRepository(db)
	scoringRepo := scoring.NewRepository(db)

	// ---------- Services ----------
	catalogService := catalog.NewService(catalogRepo, redis)
	policyService := policy.NewService(policyRepo, redis)

	var executor scoring.Executor = scoring.NoopExecutor{}
	if cfg.DiscordToken != "" {
		executor, err = discord.NewExecutor(cfg.DiscordToken, cfg.DiscordGuildID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Discord executor")
		}
	} else {
		log.Warn().Msg("DISCORD_TOKEN not set, punishments will not reach Discord")
	}

	scoringService := scoring.NewService(scoringRepo, policyService, catalogService, executor)

	classifierClient := classifier.NewClient(classifier.Config{
		BaseURL:    cfg.ClassifierBaseURL,
		APIKey:     cfg.ClassifierAPIKey,
		Model:      cfg.ClassifierModel,
		Timeout:    cfg.ClassifierTimeout,
		MaxRetries: cfg.ClassifierMaxRetries,
	})
	pipeline := scoring.NewPipeline(scoringService, classifierClient, promptRepo, catalogService)

	// ---------- Handlers ----------
	catalogHandler := catalog.NewHandler(catalogService)
	policyHandler := policy.NewHandler(policyService)
	promptHandler := prompt.NewHandler(promptRepo)
	scoringHandler := scoring.NewHandler(scoringService, pipeline, memberRepo)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/ingest", scoringHandler.IngestRoutes(cfg.IngestToken))
		r.Mount("/", scoringHandler.Routes())
		r.Mount("/catalog", catalogHandler.Routes())
		r.Mount("/punishment-rules", policyHandler.Routes())
		r.Mount("/prompts", promptHandler.Routes())
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
