package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lg/weight-planner-api/internal/advisor"
	"lg/weight-planner-api/internal/llm"
	"lg/weight-planner-api/internal/mcp"
	"lg/weight-planner-api/internal/recipes"
)

var mcpIndex string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol server on stdin/stdout.

Add this to an MCP client config:

  {
    "mcpServers": {
      "weight-planner": { "command": "planctl", "args": ["mcp"] }
    }
  }

AVAILABLE TOOLS:

  calculate_targets    BMR, maintenance and target calories
  simulate_trajectory  Weekly weight projection
  select_meals         One-day meal plan from the recipes table
  ask_nutrition        Question answering over the reference documents

ask_nutrition is only registered with a working backend when
OPENAI_API_KEY is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		var adv *advisor.Advisor
		if ai, err := newClient(); err == nil {
			searcher, closeSearcher, err := openSearcher(ctx, ai, mcpIndex)
			if err != nil {
				return err
			}
			defer closeSearcher()
			adv = advisor.New(searcher, advisor.StuffAnswerer{Completer: ai.AskPrompter()})
		} else if !errors.Is(err, llm.ErrMissingCredential) {
			return err
		}

		server := mcp.NewServer(recipes.NewRepository(pool), adv)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpIndex, "index", "", "JSON index file (default DOC_INDEX_PATH, then the database)")
	rootCmd.AddCommand(mcpCmd)
}
