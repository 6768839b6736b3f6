package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"lg/weight-planner-api/internal/advisor"
	"lg/weight-planner-api/internal/llm"
)

// Config is read once at startup and passed to constructors. Nothing else
// in the server reads the environment.
type Config struct {
	Port           string
	DBURL          string
	OpenAIKey      string
	OpenAIBaseURL  string
	EmbeddingModel string
	DocIndexPath   string // JSON index file; empty means the doc_chunks table
	ScoreThreshold float64
	LogLevel       string
	LogPretty      bool
}

// loadConfig reads .env (when present) and then the process environment.
func loadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("[config] no .env file loaded")
	}

	return Config{
		Port:           envOr("PORT", "3000"),
		DBURL:          os.Getenv("DB_URL"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  envOr("OPENAI_BASE_URL", llm.DefaultBaseURL),
		EmbeddingModel: envOr("OPENAI_EMBEDDING_MODEL", llm.DefaultEmbeddingModel),
		DocIndexPath:   os.Getenv("DOC_INDEX_PATH"),
		ScoreThreshold: envFloat("RAG_SCORE_THRESHOLD", advisor.DefaultScoreThreshold),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		LogPretty:      os.Getenv("LOG_PRETTY") == "true",
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("[config] not a number, using default")
		return fallback
	}
	return f
}
