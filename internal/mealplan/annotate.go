package mealplan

import (
	"context"
	"fmt"
	"strings"
)

// Completer turns a single prompt into a single text response.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// promptIngredients is how many ingredients each meal lists in the prompt.
const promptIngredients = 5

const annotationTask = `
Your task:
1. Generate a more appealing name for each meal.
2. Write a brief 1-line recommendation for each (e.g., reduce oil, boost protein).
3. If any ingredient pushes the calories too high, mention that.`

// AnnotationPrompt describes the plan and asks for one name/tip line per meal.
func AnnotationPrompt(plan SelectedMealPlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a personalized 1-day meal plan for a %s diet with a total of %.0f kcal.\n\n", plan.DietType, plan.TotalCalories)
	sb.WriteString("Here is the proposed structure with ingredients and estimated calories:\n\n")
	for _, m := range plan.Meals {
		ingredients := m.Recipe.Ingredients
		if len(ingredients) > promptIngredients {
			ingredients = ingredients[:promptIngredients]
		}
		fmt.Fprintf(&sb, "• %s (%d kcal): Ingredients: %s\n",
			titleCase(m.Slot), int(m.Recipe.Calories), strings.Join(ingredients, ", "))
	}
	sb.WriteString(annotationTask)
	return sb.String()
}

// annotationLines splits a completion into its non-blank lines.
func annotationLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

/* ─── Allocator ──────────────────────────────────────────────────────── */

// Allocator pairs a selection with its annotation step. It keeps only the
// last selected plan, which the next Select replaces. Use one Allocator per
// request; it is not safe for concurrent use.
type Allocator struct {
	last   *SelectedMealPlan
	prompt string
}

// NewAllocator returns an Allocator with no plan selected.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Select runs SelectMeals and remembers the result for Annotate.
func (a *Allocator) Select(records []RecipeRecord, totalCalories float64, diet string) SelectedMealPlan {
	plan := SelectMeals(records, totalCalories, diet)
	a.last = &plan
	a.prompt = AnnotationPrompt(plan)
	return plan
}

// Last returns the most recently selected plan.
func (a *Allocator) Last() (SelectedMealPlan, bool) {
	if a.last == nil {
		return SelectedMealPlan{}, false
	}
	return *a.last, true
}

// Prompt is the annotation prompt built for the last plan.
func (a *Allocator) Prompt() string {
	return a.prompt
}

// Annotate asks the completer for a name and tip per meal of the last plan
// and stores the reply lines on the meals in order. Meals beyond the number
// of reply lines keep an empty annotation. A plan with no meals is returned
// as is without calling the completer.
func (a *Allocator) Annotate(ctx context.Context, c Completer) (SelectedMealPlan, error) {
	if a.last == nil {
		return SelectedMealPlan{}, fmt.Errorf("annotate: no meal plan selected")
	}
	if len(a.last.Meals) == 0 {
		return *a.last, nil
	}

	output, err := c.Complete(ctx, a.prompt)
	if err != nil {
		return SelectedMealPlan{}, err
	}

	lines := annotationLines(output)
	meals := make([]SelectedMeal, len(a.last.Meals))
	copy(meals, a.last.Meals)
	for i := range meals {
		if i < len(lines) {
			meals[i].Annotation = strings.TrimSpace(lines[i])
		}
	}
	a.last.Meals = meals
	return *a.last, nil
}
