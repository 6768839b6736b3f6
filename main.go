package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lg/weight-planner-api/internal/advisor"
	"lg/weight-planner-api/internal/llm"
	"lg/weight-planner-api/internal/recipes"
	"lg/weight-planner-api/internal/vectorstore"
)

// setupLogging configures the global zerolog logger.
func setupLogging(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// gracefulShutdown waits for SIGINT/SIGTERM, then gives in-flight requests
// five seconds to finish.
func gracefulShutdown(srv *http.Server, done chan<- struct{}) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("[server] shutting down, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("[server] forced to shutdown")
	}
	close(done)
}

func main() {
	cfg := loadConfig()
	setupLogging(cfg)

	ai, err := llm.New(llm.Config{
		APIKey:         cfg.OpenAIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		EmbeddingModel: cfg.EmbeddingModel,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("[server] OPENAI_API_KEY is required")
	}

	pool, err := getDBPool(cfg.DBURL)
	if err != nil {
		log.Fatal().Err(err).Msg("[server] database unavailable")
	}
	defer pool.Close()

	var searcher advisor.Searcher
	if cfg.DocIndexPath != "" {
		idx, err := vectorstore.LoadMemoryIndex(cfg.DocIndexPath, ai)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DocIndexPath).Msg("[server] load document index")
		}
		log.Info().Int("chunks", idx.Len()).Msg("[server] using file document index")
		searcher = idx
	} else {
		searcher = vectorstore.NewPGStore(pool, ai)
	}

	h := &Handler{
		db:             pool,
		ai:             ai,
		recipes:        recipes.NewRepository(pool),
		searcher:       searcher,
		scoreThreshold: cfg.ScoreThreshold,
	}

	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
	}

	done := make(chan struct{})
	go gracefulShutdown(srv, done)

	log.Info().Str("addr", srv.Addr).Msg("[server] listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("[server] http server error")
	}
	<-done
	log.Info().Msg("[server] shutdown complete")
}
