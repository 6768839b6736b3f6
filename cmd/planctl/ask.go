package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lg/weight-planner-api/internal/advisor"
	"lg/weight-planner-api/internal/weightplan"
)

var (
	askProfile   profileFlags
	askIndex     string
	askGuidance  bool
	askThreshold float64
	askSources   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a nutrition or exercise question",
	Long: `Answer a question from the indexed reference documents, tailored to the
profile flags. With --guidance no question is needed: the planner asks for
general guidance for the profile's goal instead.

EXAMPLES:

  planctl ask "How much protein should I eat?" --age 30 --gender female \
    --height 165 --weight 70 --target 62 --rate 0.5
  planctl ask --guidance --age 30 ... --index index.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if !askGuidance && len(args) == 0 {
			return fmt.Errorf("a question is required unless --guidance is set")
		}

		p, err := askProfile.profile()
		if err != nil {
			return err
		}
		targets, err := weightplan.ComputeCalorieTargets(p)
		if err != nil {
			return err
		}
		metrics := advisor.MetricsFor(p, targets)

		ai, err := newClient()
		if err != nil {
			return err
		}
		searcher, closeSearcher, err := openSearcher(ctx, ai, askIndex)
		if err != nil {
			return err
		}
		defer closeSearcher()

		out := cmd.OutOrStdout()
		if askGuidance {
			adv := advisor.New(searcher, advisor.StuffAnswerer{Completer: ai.GuidancePrompter()}, advisor.WithScoreThreshold(askThreshold))
			ans, err := adv.Guidance(ctx, metrics)
			if err != nil {
				return err
			}
			printAnswer(out, ans, askSources)
			return nil
		}

		adv := advisor.New(searcher, advisor.StuffAnswerer{Completer: ai.AskPrompter()}, advisor.WithScoreThreshold(askThreshold))
		ans, err := adv.Ask(ctx, args[0], metrics, nil)
		if errors.Is(err, advisor.ErrNoMatchingContent) {
			color.Yellow("%s", advisor.NoMatchReply)
			return nil
		}
		if err != nil {
			return err
		}
		printAnswer(out, ans, askSources)
		return nil
	},
}

func init() {
	askProfile.register(askCmd)
	askCmd.Flags().StringVar(&askIndex, "index", "", "JSON index file (default DOC_INDEX_PATH, then the database)")
	askCmd.Flags().BoolVar(&askGuidance, "guidance", false, "general guidance for the profile instead of a question")
	askCmd.Flags().Float64Var(&askThreshold, "threshold", advisor.DefaultScoreThreshold, "minimum similarity score for a passage")
	askCmd.Flags().BoolVar(&askSources, "sources", false, "print the passages behind the answer")
	rootCmd.AddCommand(askCmd)
}

func printAnswer(w io.Writer, ans advisor.Answer, sources bool) {
	fmt.Fprintln(w, advisor.Wrap(ans.Text, advisor.WrapWidth))
	if !sources || len(ans.Sources) == 0 {
		return
	}
	faint := color.New(color.Faint)
	fmt.Fprintln(w)
	for _, s := range ans.Sources {
		faint.Fprintln(w, s.String())
	}
}
