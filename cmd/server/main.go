package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/makquiz/live-server-go/internal/config"
	"github.com/makquiz/live-server-go/internal/database"
	"github.com/makquiz/live-server-go/internal/handler"
	"github.com/makquiz/live-server-go/internal/jobs"
	"github.com/makquiz/live-server-go/internal/middleware"
	"github.com/makquiz/live-server-go/internal/redis"
	"github.com/makquiz/live-server-go/internal/repository"
	"github.com/makquiz/live-server-go/internal/service"
	"github.com/makquiz/live-server-go/internal/sse"
	"github.com/makquiz/live-server-go/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	sessions := store.NewMemoryStore()
	archiveRepo := repository.NewArchiveRepository(db)

	broker := sse.NewBroker(redisClient)
	defer broker.Close()

	codes := service.NewCodeGenerator(sessions)
	sessionService := service.NewSessionService(sessions, codes, archiveRepo, broker, cfg.DefaultMaxParticipants)
	registryService := service.NewRegistryService(sessions, broker)
	scoringService := service.NewScoringService(sessions)
	queryService := service.NewQueryService(sessions)

	hostAuth := middleware.NewHostAuthMiddleware(middleware.NewHmacHostVerifier(cfg.HostTokenSecret))

	rateLimiter := middleware.NewRateLimiter()
	joinLimiter := middleware.NewIPRateLimitMiddleware(rateLimiter, cfg.JoinRateLimitPerMin, "join")
	answerLimiter := middleware.NewIPRateLimitMiddleware(rateLimiter, cfg.AnswerRateLimitPerMin, "answer")

	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(config.MaxRequestBodyBytes)

	liveHandler := handler.NewLiveHandler(
		sessionService, registryService, scoringService, queryService,
		archiveRepo, hostAuth, joinLimiter.Handler, answerLimiter.Handler,
	)
	eventsHandler := handler.NewEventsHandler(broker, queryService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/live", func(r chi.Router) {
		// The events stream stays outside the request timeout; everything
		// else rides with it.
		r.Get("/{id}/events", eventsHandler.ServeHTTP)
		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
			r.Mount("/", liveHandler.Routes())
		})
	})

	reaperJob := jobs.NewReaperJob(sessions, archiveRepo, cfg.SessionIdleTTL(), config.ReaperJobInterval)
	reaperJob.Start()
	defer reaperJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
