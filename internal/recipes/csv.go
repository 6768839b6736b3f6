// Package recipes loads the recipe table from CSV files and PostgreSQL.
package recipes

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"lg/weight-planner-api/internal/mealplan"
)

// Columns are the recipe table columns, in storage order.
var Columns = []string{
	"meal_type", "diet_type", "calories", "protein", "total_fat", "sugar",
	"sodium", "carbohydrates", "ingredients", "steps", "name", "minutes",
}

// RowError reports a row that could not be parsed.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("recipes: line %d column %s: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ReadCSV reads a header-mapped recipe CSV. Columns are matched by name,
// case-insensitively; unknown columns are ignored. Empty or missing calories
// and sugar cells read as NaN, other numbers as zero. Ingredient and step
// cells are kept as strings for mealplan.Prepare.
func ReadCSV(r io.Reader) ([]mealplan.RawRecipe, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("recipes: read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := index["meal_type"]; !ok {
		return nil, fmt.Errorf("recipes: header has no meal_type column")
	}

	var out []mealplan.RawRecipe
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("recipes: read line %d: %w", line, err)
		}
		row, err := parseRow(rec, index, line)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
}

func parseRow(rec []string, index map[string]int, line int) (mealplan.RawRecipe, error) {
	cell := func(col string) string {
		if i, ok := index[col]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	var perr error
	parse := func(col string, blank float64) float64 {
		s := cell(col)
		if s == "" || perr != nil {
			return blank
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			perr = &RowError{Line: line, Column: col, Err: err}
		}
		return v
	}
	num := func(col string) float64 { return parse(col, 0) }
	// Blank calories or sugar read as NaN so meal selection skips the row.
	measured := func(col string) float64 { return parse(col, math.NaN()) }

	row := mealplan.RawRecipe{
		MealType:      cell("meal_type"),
		DietType:      cell("diet_type"),
		Calories:      measured("calories"),
		Protein:       num("protein"),
		TotalFat:      num("total_fat"),
		Sugar:         measured("sugar"),
		Sodium:        num("sodium"),
		Carbohydrates: num("carbohydrates"),
		Ingredients:   cell("ingredients"),
		Steps:         cell("steps"),
		Name:          cell("name"),
		Minutes:       int(num("minutes")),
	}
	return row, perr
}
