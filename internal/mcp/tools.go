package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"lg/weight-planner-api/internal/advisor"
	"lg/weight-planner-api/internal/mealplan"
	"lg/weight-planner-api/internal/weightplan"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "calculate_targets",
		Description: "Compute BMR, maintenance and target daily calories for a weight goal",
	}, s.handleCalculateTargets)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "simulate_trajectory",
		Description: "Project weekly weight from current to target weight",
	}, s.handleSimulateTrajectory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "select_meals",
		Description: "Pick breakfast, snack, lunch and dinner recipes for a daily calorie total and diet",
	}, s.handleSelectMeals)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "ask_nutrition",
		Description: "Answer a nutrition or exercise question from the reference library, tailored to the user",
	}, s.handleAskNutrition)
}

// Tool input/output types

type profileInput struct {
	Age             int     `json:"age" jsonschema:"age in years"`
	Gender          string  `json:"gender" jsonschema:"male or female"`
	HeightCM        float64 `json:"height_cm" jsonschema:"height in centimetres"`
	CurrentWeightKG float64 `json:"current_weight_kg" jsonschema:"current weight in kilograms"`
	TargetWeightKG  float64 `json:"target_weight_kg" jsonschema:"target weight in kilograms"`
	Activity        string  `json:"activity,omitempty" jsonschema:"sedentary, light, moderate, very or super (default moderate)"`
	WeeklyRateLbs   float64 `json:"weekly_rate_lbs" jsonschema:"pounds to lose or gain per week, 0.4 to 1.0"`
}

func (in profileInput) profile() (weightplan.UserProfile, error) {
	gender, err := weightplan.ParseGender(in.Gender)
	if err != nil {
		return weightplan.UserProfile{}, err
	}
	activity := weightplan.ActivityLevel(in.Activity)
	if activity == "" {
		activity = weightplan.Moderate
	}
	return weightplan.NewUserProfile(in.Age, gender, in.HeightCM, in.CurrentWeightKG, in.TargetWeightKG, activity, in.WeeklyRateLbs)
}

type trajectoryOutput struct {
	Points     []weightplan.TrajectoryPoint `json:"points"`
	TotalWeeks int                          `json:"total_weeks"`
}

type selectMealsInput struct {
	Calories float64 `json:"calories" jsonschema:"total daily calories"`
	Diet     string  `json:"diet" jsonschema:"diet type such as veg, non_veg or vegan"`
}

type askInput struct {
	Profile  profileInput `json:"profile" jsonschema:"the user's personal details"`
	Question string       `json:"question" jsonschema:"the question to answer"`
}

type askOutput struct {
	Answer  string                  `json:"answer"`
	NoMatch bool                    `json:"no_match"`
	Sources []advisor.SourceSummary `json:"sources,omitempty"`
}

// Tool handlers

func (s *Server) handleCalculateTargets(ctx context.Context, req *mcp.CallToolRequest, in profileInput) (*mcp.CallToolResult, weightplan.CalorieTargets, error) {
	p, err := in.profile()
	if err != nil {
		return nil, weightplan.CalorieTargets{}, err
	}
	t, err := weightplan.ComputeCalorieTargets(p)
	if err != nil {
		return nil, weightplan.CalorieTargets{}, err
	}
	return nil, t, nil
}

func (s *Server) handleSimulateTrajectory(ctx context.Context, req *mcp.CallToolRequest, in profileInput) (*mcp.CallToolResult, trajectoryOutput, error) {
	p, err := in.profile()
	if err != nil {
		return nil, trajectoryOutput{}, err
	}
	points, err := weightplan.SimulateTrajectory(p)
	if err != nil {
		return nil, trajectoryOutput{}, err
	}
	return nil, trajectoryOutput{Points: points, TotalWeeks: weightplan.TotalWeeks(points)}, nil
}

func (s *Server) handleSelectMeals(ctx context.Context, req *mcp.CallToolRequest, in selectMealsInput) (*mcp.CallToolResult, mealplan.SelectedMealPlan, error) {
	if in.Calories <= 0 {
		return nil, mealplan.SelectedMealPlan{}, fmt.Errorf("calories must be positive")
	}
	if in.Diet == "" {
		return nil, mealplan.SelectedMealPlan{}, fmt.Errorf("diet is required")
	}
	raw, err := s.recipes.List(ctx)
	if err != nil {
		return nil, mealplan.SelectedMealPlan{}, fmt.Errorf("load recipes: %w", err)
	}
	return nil, mealplan.SelectMeals(mealplan.Prepare(raw), in.Calories, in.Diet), nil
}

func (s *Server) handleAskNutrition(ctx context.Context, req *mcp.CallToolRequest, in askInput) (*mcp.CallToolResult, askOutput, error) {
	if s.advisor == nil {
		return nil, askOutput{}, fmt.Errorf("ask_nutrition is not configured")
	}
	p, err := in.Profile.profile()
	if err != nil {
		return nil, askOutput{}, err
	}
	targets, err := weightplan.ComputeCalorieTargets(p)
	if err != nil {
		return nil, askOutput{}, err
	}

	ans, err := s.advisor.Ask(ctx, in.Question, advisor.MetricsFor(p, targets), nil)
	if errors.Is(err, advisor.ErrNoMatchingContent) {
		return nil, askOutput{Answer: ans.Text, NoMatch: true}, nil
	}
	if err != nil {
		return nil, askOutput{}, err
	}
	return nil, askOutput{Answer: ans.Text, Sources: ans.Sources}, nil
}
