package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lg/weight-planner-api/internal/mealplan"
	"lg/weight-planner-api/internal/recipes"
	"lg/weight-planner-api/internal/weightplan"
)

var (
	mealsProfile  profileFlags
	mealsCalories float64
	mealsDiet     string
	mealsCSV      string
	mealsAnnotate bool
)

var mealsCmd = &cobra.Command{
	Use:   "meals",
	Short: "Pick a one-day meal plan",
	Long: `Select breakfast, snack, lunch and dinner recipes for a daily calorie total.

The total comes from --calories, or from the daily target of the profile
flags when --calories is not given. Recipes are read from --csv, or from
the recipes table when no file is given.

EXAMPLES:

  planctl meals --calories 2000 --diet veg --csv recipes.csv
  planctl meals --age 30 --gender male --height 180 --weight 90 --target 80 --diet non_veg
  planctl meals --calories 1800 --diet vegan --annotate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if mealsDiet == "" {
			return fmt.Errorf("--diet is required")
		}

		total := mealsCalories
		if total <= 0 {
			p, err := mealsProfile.profile()
			if err != nil {
				return fmt.Errorf("need --calories or a valid profile: %w", err)
			}
			t, err := weightplan.ComputeCalorieTargets(p)
			if err != nil {
				return err
			}
			total = float64(t.TargetDailyCalories)
		}

		raw, err := loadRecipes(ctx, mealsCSV, mealsDiet)
		if err != nil {
			return err
		}

		alloc := mealplan.NewAllocator()
		plan := alloc.Select(mealplan.Prepare(raw), total, mealsDiet)
		if mealsAnnotate {
			ai, err := newClient()
			if err != nil {
				return err
			}
			if plan, err = alloc.Annotate(ctx, ai.MealPrompter()); err != nil {
				return fmt.Errorf("annotate: %w", err)
			}
		}
		printMealPlan(cmd.OutOrStdout(), plan)
		return nil
	},
}

func init() {
	mealsProfile.register(mealsCmd)
	mealsCmd.Flags().Float64Var(&mealsCalories, "calories", 0, "daily calorie total")
	mealsCmd.Flags().StringVar(&mealsDiet, "diet", "", "diet type (veg, non_veg, vegan)")
	mealsCmd.Flags().StringVar(&mealsCSV, "csv", "", "recipe CSV file instead of the database")
	mealsCmd.Flags().BoolVar(&mealsAnnotate, "annotate", false, "ask the model for a name and tip per meal")
	rootCmd.AddCommand(mealsCmd)
}

// loadRecipes reads path when set, otherwise the diet's rows of the recipes
// table. SelectMeals filters by diet either way.
func loadRecipes(ctx context.Context, path, diet string) ([]mealplan.RawRecipe, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return recipes.ReadCSV(f)
	}

	pool, err := openPool(ctx)
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	return recipes.NewRepository(pool).ListByDiet(ctx, diet)
}

func printMealPlan(w io.Writer, plan mealplan.SelectedMealPlan) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	bold.Fprintf(w, "%s plan, %.0f kcal\n\n", plan.DietType, plan.TotalCalories)
	for _, m := range plan.Meals {
		fmt.Fprintf(w, "%s %s %s\n",
			padRight(title(m.Slot), 10),
			m.Recipe.Name,
			faint.Sprintf("(%.0f kcal, target %.0f)", m.Recipe.Calories, m.TargetCalories))
		if m.Annotation != "" {
			fmt.Fprintf(w, "           %s\n", m.Annotation)
		}
	}
	for _, slot := range plan.EmptySlots() {
		fmt.Fprintf(w, "%s %s\n", padRight(title(slot), 10), color.YellowString("no matching recipe"))
	}

	t := plan.Totals
	fmt.Fprintf(w, "\nTotal: %.0f kcal  protein %.0f  fat %.0f  sugar %.0f  sodium %.0f  carbs %.0f\n",
		t.Calories, t.Protein, t.TotalFat, t.Sugar, t.Sodium, t.Carbohydrates)
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
