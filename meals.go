package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lg/weight-planner-api/internal/mealplan"
	"lg/weight-planner-api/internal/weightplan"
)

// mealsRequest is the body for POST /api/meals. Calories default to the
// profile's target daily calories and Diet to the profile's diet type.
type mealsRequest struct {
	Profile  *profileRequest `json:"profile"`
	Calories float64         `json:"calories"`
	Diet     string          `json:"diet"`
	Annotate bool            `json:"annotate"`
}

// createMealPlan selects one recipe per meal slot and optionally has the
// model name and annotate them. Slots with no qualifying recipe are listed
// in empty_slots.
// POST /api/meals.
func (h *Handler) createMealPlan(c *gin.Context) {
	var req mealsRequest
	if !bindOptional(c, &req) {
		return
	}

	calories, diet := req.Calories, strings.TrimSpace(req.Diet)
	if calories < 0 {
		apiError(c, http.StatusBadRequest, "calories must be positive")
		return
	}
	if calories == 0 || diet == "" {
		p, profileDiet, ok := h.resolveProfile(c, req.Profile)
		if !ok {
			return
		}
		if calories == 0 {
			t, err := weightplan.ComputeCalorieTargets(p)
			if err != nil {
				planError(c, "createMealPlan", err)
				return
			}
			calories = float64(t.TargetDailyCalories)
		}
		if diet == "" {
			diet = profileDiet
		}
	}
	if diet == "" {
		apiError(c, http.StatusBadRequest, "diet is required")
		return
	}

	raw, err := h.recipes.List(c.Request.Context())
	if err != nil {
		planError(c, "createMealPlan", err)
		return
	}

	alloc := mealplan.NewAllocator()
	plan := alloc.Select(mealplan.Prepare(raw), calories, diet)
	if req.Annotate {
		plan, err = alloc.Annotate(c.Request.Context(), h.ai.MealPrompter())
		if err != nil {
			planError(c, "createMealPlan", err)
			return
		}
	}

	resp := gin.H{"plan": plan, "empty_slots": plan.EmptySlots()}
	if req.Annotate {
		resp["prompt"] = alloc.Prompt()
	}
	c.JSON(http.StatusOK, resp)
}
