package advisor

import (
	"fmt"

	"lg/weight-planner-api/internal/weightplan"
)

// Metrics are the personal details woven into advisor prompts.
type Metrics struct {
	Age             int     `json:"age"`
	Gender          string  `json:"gender"`
	HeightCM        float64 `json:"height_cm"`
	CurrentWeightKG float64 `json:"current_weight_kg"`
	TargetWeightKG  float64 `json:"target_weight_kg"`
	Activity        string  `json:"activity"`
	Calories        int     `json:"calories"`
}

// MetricsFor builds Metrics from a profile and its computed targets.
func MetricsFor(p weightplan.UserProfile, t weightplan.CalorieTargets) Metrics {
	return Metrics{
		Age:             p.Age,
		Gender:          string(p.Gender),
		HeightCM:        p.HeightCM,
		CurrentWeightKG: p.CurrentWeightKG,
		TargetWeightKG:  p.TargetWeightKG,
		Activity:        string(p.ActivityLevel),
		Calories:        t.TargetDailyCalories,
	}
}

// Goal is "gain" when the target is above the current weight, else "lose".
func (m Metrics) Goal() string {
	if m.TargetWeightKG > m.CurrentWeightKG {
		return "gain"
	}
	return "lose"
}

// UnrelatedReply is what the model is told to say for off-topic questions.
const UnrelatedReply = "This question appears unrelated to personalized health guidance. Please ask about nutrition, exercise, or weight-related planning."

// AskPrompt wraps a free-form question with the user's metrics.
func AskPrompt(question string, m Metrics) string {
	return fmt.Sprintf(`User wants to %s weight. Answer the following question using the provided context and tailor the response to the user's personal metrics if possible.

**User Details:**
- Age: %d
- Gender: %s
- Height: %g cm
- Current Weight: %g kg
- Target Weight: %g kg
- Caloric Target: %d kcal/day

**User Question:**
%s

**Instructions:**
1. Base the response only on the user details and the retrieved context.
2. Consider weight management, food suggestions, calorie balance, physical activity, macronutrients (carbs, protein, fat) and micronutrients (vitamins, minerals).
3. Keep it short and well structured.
4. If the question is clearly unrelated to health, weight, exercise, or nutrition, respond with:
   "%s"`,
		m.Goal(), m.Age, m.Gender, m.HeightCM, m.CurrentWeightKG, m.TargetWeightKG, m.Calories,
		question, UnrelatedReply)
}

// GuidanceQuery is the retrieval query used for a weekly plan.
func GuidanceQuery(m Metrics) string {
	return fmt.Sprintf("Weekly or daily physical activity exercises and nutrition guidance for someone trying to %s weight.", m.Goal())
}

// GuidancePrompt asks for a day-by-day exercise plan plus nutrition advice.
func GuidancePrompt(m Metrics) string {
	return fmt.Sprintf(`The user wants to %s weight.

**User Details:**
- Age: %d
- Gender: %s
- Height: %g cm
- Current Weight: %g kg
- Target Weight: %g kg
- Activity Level: %s
- Suggested Caloric Intake: %d kcal/day

**Instructions:**
1. Provide a beginner-friendly weekly physical activity plan, laid out day by day.
2. Suggest dietary and nutritional guidance using the context.`,
		m.Goal(), m.Age, m.Gender, m.HeightCM, m.CurrentWeightKG, m.TargetWeightKG, m.Activity, m.Calories)
}
