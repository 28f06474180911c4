package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/modwarden/warden-api/internal/config"
	"github.com/modwarden/warden-api/internal/domain/catalog"
	"github.com/modwarden/warden-api/internal/domain/policy"
	"github.com/modwarden/warden-api/internal/domain/prompt"
	"github.com/modwarden/warden-api/internal/domain/scoring"
	"github.com/modwarden/warden-api/internal/pkg/classifier"
	"github.com/modwarden/warden-api/internal/pkg/database"
	"github.com/modwarden/warden-api/internal/pkg/discord"
	"github.com/modwarden/warden-api/internal/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.IsDevelopment())

	if cfg.DiscordToken == "" {
		log.Fatal().Msg("DISCORD_TOKEN is required")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("guild_id", cfg.DiscordGuildID).
		Msg("Starting Warden bot")

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

	catalogService := catalog.NewService(catalog.NewRepository(db), redis)
	policyService := policy.NewService(policy.NewRepository(db), redis)
	promptRepo := prompt.NewRepository(db)

	executor, err := discord.NewExecutor(cfg.DiscordToken, cfg.DiscordGuildID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Discord executor")
	}

	scoringService := scoring.NewService(scoring.NewRepository(db), policyService, catalogService, executor)

	classifierClient := classifier.NewClient(classifier.Config{
		BaseURL:    cfg.ClassifierBaseURL,
		APIKey:     cfg.ClassifierAPIKey,
		Model:      cfg.ClassifierModel,
		Timeout:    cfg.ClassifierTimeout,
		MaxRetries: cfg.ClassifierMaxRetries,
	})
	pipeline := scoring.NewPipeline(scoringService, classifierClient, promptRepo, catalogService)

	connector, err := discord.NewConnector(cfg.DiscordToken, cfg.DiscordGuildID, cfg.ContextMessages, pipeline)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Discord connector")
	}

	if err := connector.Open(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Discord gateway")
	}
	log.Info().Msg("Gateway connected, watching messages")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down bot...")
	if err := connector.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close gateway session")
	}
	log.Info().Msg("Bot exited properly")
}
