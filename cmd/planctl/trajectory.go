package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lg/weight-planner-api/internal/weightplan"
)

var (
	trajectoryProfile profileFlags
	trajectorySummary bool
)

var trajectoryCmd = &cobra.Command{
	Use:     "trajectory",
	Aliases: []string{"plan"},
	Short:   "Show calorie targets and the weekly weight projection",
	Long: `Compute BMR, maintenance and target calories, then project weight week by
week until the target is reached.

EXAMPLES:

  planctl trajectory --age 30 --gender male --height 180 --weight 90 --target 80 --rate 1
  planctl trajectory ... --summary    # Also ask the model for a short summary`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := trajectoryProfile.profile()
		if err != nil {
			return err
		}
		plan, err := weightplan.BuildPlan(p)
		if err != nil {
			return err
		}
		printPlan(cmd.OutOrStdout(), plan)

		if !trajectorySummary {
			return nil
		}
		ai, err := newClient()
		if err != nil {
			return err
		}
		summary, err := weightplan.Summarize(cmd.Context(), ai.SummaryPrompter(), p, plan.Trajectory)
		if err != nil {
			return fmt.Errorf("summary: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", summary.Text)
		return nil
	},
}

func init() {
	trajectoryProfile.register(trajectoryCmd)
	trajectoryCmd.Flags().BoolVar(&trajectorySummary, "summary", false, "add a model-written summary")
	rootCmd.AddCommand(trajectoryCmd)
}

func printPlan(w io.Writer, plan weightplan.Plan) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	t := plan.Targets

	bold.Fprintf(w, "Goal: %s\n", t.Direction.Goal())
	fmt.Fprintf(w, "  BMR:          %d kcal\n", t.BMR)
	fmt.Fprintf(w, "  Maintenance:  %d kcal\n", t.MaintenanceCalories)
	fmt.Fprintf(w, "  Daily target: %s\n", color.GreenString("%d kcal", t.TargetDailyCalories))
	fmt.Fprintf(w, "  Weeks:        %d\n\n", plan.TotalWeeks)

	for _, pt := range plan.Trajectory {
		fmt.Fprintf(w, "%s %.2f kg\n", faint.Sprintf("week %3d", pt.Week), pt.WeightKG)
	}
}
