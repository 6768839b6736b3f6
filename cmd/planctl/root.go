package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"lg/weight-planner-api/internal/advisor"
	"lg/weight-planner-api/internal/llm"
	"lg/weight-planner-api/internal/vectorstore"
	"lg/weight-planner-api/internal/weightplan"
)

// settings is read from the environment once in PersistentPreRunE.
type settings struct {
	DBURL          string
	OpenAIKey      string
	OpenAIBaseURL  string
	EmbeddingModel string
	DocIndexPath   string
}

var (
	cfg     settings
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "planctl",
	Short: "Weight planner command line",
	Long: `planctl drives the weight planner without the HTTP API.

PLANNING:

  $ planctl trajectory --age 30 --gender male --height 180 --weight 90 --target 80 --rate 1
  $ planctl meals --calories 2000 --diet veg --csv recipes.csv

DATA:

  $ planctl import-recipes recipes.csv --replace    # Load recipes into Postgres
  $ planctl index-docs docs/*.txt                   # Embed reference documents
  $ planctl index-docs docs/*.txt --out index.json  # ... into a JSON file instead

QUESTIONS:

  $ planctl ask "How much protein do I need?" --age 30 --gender female ...

MCP INTEGRATION:

  Run 'planctl mcp' to serve the planner tools over stdio.

ENVIRONMENT:

  DB_URL, OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_EMBEDDING_MODEL and
  DOC_INDEX_PATH are read from the environment or a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(verbose)
		cfg = loadSettings()
		return nil
	},
}

// setupLogging sends human-readable logs to stderr, debug level with -v.
func setupLogging(verbose bool) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// loadSettings reads .env (when present) and then the process environment.
func loadSettings() settings {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("[config] no .env file loaded")
	}
	return settings{
		DBURL:          os.Getenv("DB_URL"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		EmbeddingModel: os.Getenv("OPENAI_EMBEDDING_MODEL"),
		DocIndexPath:   os.Getenv("DOC_INDEX_PATH"),
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
}

// openPool connects to DB_URL.
func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	if cfg.DBURL == "" {
		return nil, fmt.Errorf("DB_URL is not set")
	}
	pc, err := pgxpool.ParseConfig(cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("parse DB_URL: %w", err)
	}
	pc.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return pool, nil
}

// newClient builds the LLM client from the environment.
func newClient() (*llm.Client, error) {
	return llm.New(llm.Config{
		APIKey:         cfg.OpenAIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		EmbeddingModel: cfg.EmbeddingModel,
	})
}

// openSearcher prefers a JSON index (flag, then DOC_INDEX_PATH) and falls
// back to the doc_chunks table. The returned close func is never nil.
func openSearcher(ctx context.Context, ai *llm.Client, indexPath string) (advisor.Searcher, func(), error) {
	if indexPath == "" {
		indexPath = cfg.DocIndexPath
	}
	if indexPath != "" {
		idx, err := vectorstore.LoadMemoryIndex(indexPath, ai)
		if err != nil {
			return nil, func() {}, err
		}
		return idx, func() {}, nil
	}
	pool, err := openPool(ctx)
	if err != nil {
		return nil, func() {}, err
	}
	return vectorstore.NewPGStore(pool, ai), pool.Close, nil
}

// profileFlags are the measurement flags shared by trajectory, meals and ask.
type profileFlags struct {
	age      int
	gender   string
	height   float64
	weight   float64
	target   float64
	activity string
	rate     float64
}

func (f *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.age, "age", 0, "age in years")
	cmd.Flags().StringVar(&f.gender, "gender", "", "male or female")
	cmd.Flags().Float64Var(&f.height, "height", 0, "height in cm")
	cmd.Flags().Float64Var(&f.weight, "weight", 0, "current weight in kg")
	cmd.Flags().Float64Var(&f.target, "target", 0, "target weight in kg")
	cmd.Flags().StringVar(&f.activity, "activity", string(weightplan.Moderate), "sedentary, light, moderate, very or super")
	cmd.Flags().Float64Var(&f.rate, "rate", 1.0, "pounds per week to lose or gain (0.4 to 1.0)")
}

func (f *profileFlags) profile() (weightplan.UserProfile, error) {
	gender, err := weightplan.ParseGender(f.gender)
	if err != nil {
		return weightplan.UserProfile{}, err
	}
	activity := weightplan.ActivityLevel(f.activity)
	if !activity.Known() {
		return weightplan.UserProfile{}, fmt.Errorf("%w: unknown activity level %q", weightplan.ErrInvalidConfiguration, f.activity)
	}
	return weightplan.NewUserProfile(f.age, gender, f.height, f.weight, f.target, activity, f.rate)
}
