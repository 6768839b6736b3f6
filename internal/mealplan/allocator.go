package mealplan

import (
	"math"
	"sort"
	"strings"
)

/* ─── Meal slots ─────────────────────────────────────────────────────── */

// Slot names.
const (
	Breakfast = "breakfast"
	Snack     = "snack"
	Lunch     = "lunch"
	Dinner    = "dinner"
)

// MaxSugarPercent is the hard per-recipe sugar ceiling (percent of daily value).
const MaxSugarPercent = 20.0

// MealSlot is one eating occasion and its share of the daily calories.
type MealSlot struct {
	Name     string  `json:"name"`
	Fraction float64 `json:"fraction"`
}

// Slots is the fixed daily split, in serving order. Fractions sum to 1.
var Slots = []MealSlot{
	{Name: Breakfast, Fraction: 0.25},
	{Name: Snack, Fraction: 0.10},
	{Name: Lunch, Fraction: 0.35},
	{Name: Dinner, Fraction: 0.30},
}

// BaseCategory maps a slot name to the recipe meal_type it draws from. Any
// slot whose name contains "snack" uses the snack category.
func (s MealSlot) BaseCategory() string {
	if strings.Contains(strings.ToLower(s.Name), Snack) {
		return Snack
	}
	return strings.ToLower(s.Name)
}

/* ─── Plan types ─────────────────────────────────────────────────────── */

// SelectedMeal is the recipe picked for one slot.
type SelectedMeal struct {
	Slot           string       `json:"slot"`
	TargetCalories float64      `json:"target_calories"`
	Recipe         RecipeRecord `json:"recipe"`
	// Annotation is filled by Allocator.Annotate.
	Annotation string `json:"annotation,omitempty"`
}

// NutritionTotals sums calories and the nutrient fields over a plan. The
// nutrient fields are percentages of daily value added together as raw
// numbers, so they are not themselves meaningful percentages.
type NutritionTotals struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	TotalFat      float64 `json:"total_fat"`
	Sugar         float64 `json:"sugar"`
	Sodium        float64 `json:"sodium"`
	Carbohydrates float64 `json:"carbohydrates"`
}

// SelectedMealPlan holds at most one meal per slot, in slot order. Slots
// with no qualifying recipe are absent.
type SelectedMealPlan struct {
	DietType      string          `json:"diet_type"`
	TotalCalories float64         `json:"total_calories"`
	Meals         []SelectedMeal  `json:"meals"`
	Totals        NutritionTotals `json:"totals"`
}

// Meal returns the meal chosen for slot, if any.
func (p SelectedMealPlan) Meal(slot string) (SelectedMeal, bool) {
	for _, m := range p.Meals {
		if m.Slot == slot {
			return m, true
		}
	}
	return SelectedMeal{}, false
}

// EmptySlots lists the slots that got no recipe.
func (p SelectedMealPlan) EmptySlots() []string {
	var empty []string
	for _, s := range Slots {
		if _, ok := p.Meal(s.Name); !ok {
			empty = append(empty, s.Name)
		}
	}
	return empty
}

/* ─── Selection ──────────────────────────────────────────────────────── */

// SelectMeals picks, for every slot, the qualifying recipe whose calories are
// nearest to totalCalories × fraction. Candidates must match the slot's
// category and the diet (both case-insensitive) and stay within
// MaxSugarPercent. They are ordered by fat ascending, protein descending,
// calories ascending, and the first of equally near candidates wins.
func SelectMeals(records []RecipeRecord, totalCalories float64, diet string) SelectedMealPlan {
	plan := SelectedMealPlan{
		DietType:      diet,
		TotalCalories: totalCalories,
		Meals:         []SelectedMeal{},
	}
	for _, slot := range Slots {
		target := totalCalories * slot.Fraction
		matches := candidates(records, slot.BaseCategory(), diet)
		if len(matches) == 0 {
			continue
		}
		sortCandidates(matches)
		plan.Meals = append(plan.Meals, SelectedMeal{
			Slot:           slot.Name,
			TargetCalories: target,
			Recipe:         nearest(matches, target),
		})
	}
	plan.Totals = Sum(plan.Meals)
	return plan
}

// candidates returns a fresh slice of the records eligible for a category.
func candidates(records []RecipeRecord, category, diet string) []RecipeRecord {
	var out []RecipeRecord
	for _, r := range records {
		if !strings.EqualFold(r.MealType, category) || !strings.EqualFold(r.DietType, diet) {
			continue
		}
		// NaN sugar or calories never qualify.
		if !(r.Sugar <= MaxSugarPercent) || math.IsNaN(r.Calories) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// sortCandidates orders by fat asc, protein desc, calories asc. The sort is
// stable so fully tied rows keep table order.
func sortCandidates(rs []RecipeRecord) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.TotalFat != b.TotalFat {
			return a.TotalFat < b.TotalFat
		}
		if a.Protein != b.Protein {
			return a.Protein > b.Protein
		}
		return a.Calories < b.Calories
	})
}

// nearest returns the first record with the minimal calorie distance.
// rs must not be empty.
func nearest(rs []RecipeRecord, target float64) RecipeRecord {
	best := 0
	bestDist := math.Abs(rs[0].Calories - target)
	for i := 1; i < len(rs); i++ {
		if d := math.Abs(rs[i].Calories - target); d < bestDist {
			best, bestDist = i, d
		}
	}
	return rs[best]
}

// Sum adds up calories and nutrient fields of the given meals.
func Sum(meals []SelectedMeal) NutritionTotals {
	var t NutritionTotals
	for _, m := range meals {
		r := m.Recipe
		t.Calories += r.Calories
		t.Protein += r.Protein
		t.TotalFat += r.TotalFat
		t.Sugar += r.Sugar
		t.Sodium += r.Sodium
		t.Carbohydrates += r.Carbohydrates
	}
	return t
}
