package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"spectroquiz/internal/config"
	"spectroquiz/internal/quiz"
	"spectroquiz/internal/server"
	"spectroquiz/internal/xenocanto"
)

func main() {
	var cfgPath string

	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to config YAML")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		log.Warn().Str("path", cfgPath).Msg("config file not found; using defaults")
	}

	// Logging
	zerolog.TimeFieldFormat = time.RFC3339Nano
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Logger = logger

	// Optional: the v2 API is open, newer API versions want a key.
	apiKey := strings.TrimSpace(os.Getenv(cfg.XenoCanto.APIKeyEnv))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	recordings := xenocanto.NewClient(xenocanto.Config{
		BaseURL:    cfg.XenoCanto.BaseURL,
		Query:      cfg.XenoCanto.Query,
		TotalPages: cfg.XenoCanto.TotalPages,
		APIKey:     apiKey,
		Timeout:    cfg.XenoCanto.Timeout.ToDuration(),
		UserAgent:  cfg.XenoCanto.UserAgent,
	}, log.Logger.With().Str("component", "xenocanto").Logger())

	srv := server.New(server.Config{
		Bind:              cfg.Server.Bind,
		Port:              cfg.Server.Port,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout.ToDuration(),
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		Autoplay:          cfg.Quiz.Autoplay,
		Policy:            quiz.ParseDistractorPolicy(cfg.Quiz.DistractorPolicy),
		SessionTTL:        cfg.Quiz.SessionTTL.ToDuration(),
		MaxSessions:       cfg.Quiz.MaxSessions,
		FetchTimeout:      cfg.XenoCanto.Timeout.ToDuration(),
	}, recordings, log.Logger)

	log.Info().
		Str("addr", srv.Addr()).
		Str("query", cfg.XenoCanto.Query).
		Int("total_pages", cfg.XenoCanto.TotalPages).
		Str("distractors", cfg.Quiz.DistractorPolicy).
		Bool("autoplay", cfg.Quiz.Autoplay).
		Bool("api_key", apiKey != "").
		Msg("running. Open the UI in your browser")

	if err := srv.Start(ctx, cfg.Quiz.SweepEvery.ToDuration()); err != nil {
		log.Fatal().Err(err).Msg("http server stopped with error")
	}
	log.Info().Msg("shutting down")
}
