package recipes

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"lg/weight-planner-api/internal/mealplan"
)

// Repository reads and writes the recipes table.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a Repository over db.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// recipeRow maps to the recipes table. Ingredients and steps are stored as
// list literal text.
type recipeRow struct {
	MealType      string  `db:"meal_type"`
	DietType      string  `db:"diet_type"`
	Calories      float64 `db:"calories"`
	Protein       float64 `db:"protein"`
	TotalFat      float64 `db:"total_fat"`
	Sugar         float64 `db:"sugar"`
	Sodium        float64 `db:"sodium"`
	Carbohydrates float64 `db:"carbohydrates"`
	Ingredients   string  `db:"ingredients"`
	Steps         string  `db:"steps"`
	Name          string  `db:"name"`
	Minutes       int     `db:"minutes"`
}

// List returns every recipe in id order.
func (r *Repository) List(ctx context.Context) ([]mealplan.RawRecipe, error) {
	return r.query(ctx, "SELECT "+strings.Join(Columns, ", ")+" FROM recipes ORDER BY id", nil)
}

// ListByDiet returns the recipes for one diet, case-insensitively.
func (r *Repository) ListByDiet(ctx context.Context, diet string) ([]mealplan.RawRecipe, error) {
	return r.query(ctx,
		"SELECT "+strings.Join(Columns, ", ")+" FROM recipes WHERE lower(diet_type) = lower(@diet) ORDER BY id",
		pgx.NamedArgs{"diet": diet})
}

func (r *Repository) query(ctx context.Context, sql string, args pgx.NamedArgs) ([]mealplan.RawRecipe, error) {
	var rows pgx.Rows
	var err error
	if args == nil {
		rows, err = r.db.Query(ctx, sql)
	} else {
		rows, err = r.db.Query(ctx, sql, args)
	}
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[recipeRow])
	if err != nil {
		return nil, fmt.Errorf("scan recipes: %w", err)
	}

	out := make([]mealplan.RawRecipe, len(found))
	for i, f := range found {
		out[i] = mealplan.RawRecipe{
			MealType:      f.MealType,
			DietType:      f.DietType,
			Calories:      f.Calories,
			Protein:       f.Protein,
			TotalFat:      f.TotalFat,
			Sugar:         f.Sugar,
			Sodium:        f.Sodium,
			Carbohydrates: f.Carbohydrates,
			Ingredients:   f.Ingredients,
			Steps:         f.Steps,
			Name:          f.Name,
			Minutes:       f.Minutes,
		}
	}
	return out, nil
}

// Import bulk-loads rows with COPY and returns the number inserted. When
// replace is set the table is emptied first, in the same transaction.
func (r *Repository) Import(ctx context.Context, rows []mealplan.RawRecipe, replace bool) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	if replace {
		if _, err := tx.Exec(ctx, "DELETE FROM recipes"); err != nil {
			return 0, fmt.Errorf("clear recipes: %w", err)
		}
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"recipes"}, Columns, pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		return copyValues(rows[i]), nil
	}))
	if err != nil {
		return 0, fmt.Errorf("copy recipes: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	log.Info().Int64("rows", n).Bool("replace", replace).Msg("[recipes] imported")
	return n, nil
}

// copyValues orders a row's values to match Columns.
func copyValues(r mealplan.RawRecipe) []any {
	return []any{
		r.MealType, r.DietType, r.Calories, r.Protein, r.TotalFat, r.Sugar,
		r.Sodium, r.Carbohydrates, ListText(r.Ingredients), ListText(r.Steps),
		r.Name, r.Minutes,
	}
}

// ListText stores a list cell as text. Strings are kept as given; structured
// values are written as a list literal that mealplan.ParseList reads back.
func ListText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	items := mealplan.ParseList(v)
	if items == nil {
		return ""
	}
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(it) + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
