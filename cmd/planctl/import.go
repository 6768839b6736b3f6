package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lg/weight-planner-api/internal/recipes"
)

var importReplace bool

var importCmd = &cobra.Command{
	Use:   "import-recipes <file.csv>",
	Short: "Load a recipe CSV into the recipes table",
	Long: `Read a recipe CSV (header row required) and copy it into Postgres.

Columns are matched by header name, case-insensitively: meal_type, diet_type,
calories, protein, total_fat, sugar, sodium, carbohydrates, ingredients,
steps, name, minutes. Ingredients and steps are list literals such as
"['rice', 'beans']".

EXAMPLES:

  planctl import-recipes recipes.csv
  planctl import-recipes recipes.csv --replace    # Empty the table first`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		rows, err := recipes.ReadCSV(f)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("%s has no recipe rows", args[0])
		}

		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		n, err := recipes.NewRepository(pool).Import(ctx, rows, importReplace)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		color.Green("✓ Imported %d recipes", n)
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "delete existing recipes before importing")
	rootCmd.AddCommand(importCmd)
}
