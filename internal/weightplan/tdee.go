package weightplan

import (
	"fmt"
	"math"
)

const (
	// KgPerLb converts pounds to kilograms.
	KgPerLb = 0.453592
	// KcalPerKg is the energy content of one kilogram of body mass.
	KcalPerKg = 7700.0
)

// CalorieTargets is the output of ComputeCalorieTargets. The rounded ints
// are for display; the Exact fields keep full precision.
type CalorieTargets struct {
	BMR                 int       `json:"bmr"`
	MaintenanceCalories int       `json:"maintenance_calories"`
	TargetDailyCalories int       `json:"target_daily_calories"`
	Direction           Direction `json:"direction"`

	BMRExact         float64 `json:"-"`
	MaintenanceExact float64 `json:"-"`
	TargetDailyExact float64 `json:"-"`
	// DailyDelta is the unsigned kcal/day adjustment implied by the weekly rate.
	DailyDelta     float64 `json:"daily_delta"`
	WeeklyKgChange float64 `json:"weekly_kg_change"`
}

// CalculateBMR computes BMR via Mifflin-St Jeor for the given body weight,
// using the profile's height, age and gender.
func CalculateBMR(p UserProfile, weightKG float64) float64 {
	bmr := 10*weightKG + 6.25*p.HeightCM - 5*float64(p.Age)
	if p.Gender == Male {
		bmr += 5
	} else {
		bmr -= 161
	}
	return bmr
}

// DailyCalorieDelta converts a weekly rate in lbs into a kcal/day delta.
func DailyCalorieDelta(weeklyLbs float64) float64 {
	weeklyKcal := weeklyLbs * KgPerLb * KcalPerKg
	return weeklyKcal / 7
}

// ComputeCalorieTargets derives maintenance and target daily calories.
// BMR is taken at the target weight, so the result does not depend on the
// current weight except through the sign of the goal.
func ComputeCalorieTargets(p UserProfile) (CalorieTargets, error) {
	if err := p.Validate(); err != nil {
		return CalorieTargets{}, err
	}

	bmr := CalculateBMR(p, p.TargetWeightKG)
	maintenance := bmr * p.ActivityLevel.Factor()
	delta := DailyCalorieDelta(p.WeeklyRateLbs)

	dir := p.Direction()
	target := maintenance
	switch dir {
	case Loss:
		target = maintenance - delta
	case Gain:
		target = maintenance + delta
	}
	if target <= 0 {
		return CalorieTargets{}, fmt.Errorf("%w: target intake %.0f kcal is not positive", ErrInvalidConfiguration, target)
	}

	// math.Round rounds half away from zero.
	return CalorieTargets{
		BMR:                 int(math.Round(bmr)),
		MaintenanceCalories: int(math.Round(maintenance)),
		TargetDailyCalories: int(math.Round(target)),
		Direction:           dir,
		BMRExact:            bmr,
		MaintenanceExact:    maintenance,
		TargetDailyExact:    target,
		DailyDelta:          delta,
		WeeklyKgChange:      p.WeeklyKgChange(),
	}, nil
}
