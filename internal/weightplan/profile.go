// Package weightplan computes BMR, calorie targets, and a week-by-week
// weight projection from a user's body profile.
package weightplan

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidConfiguration is returned when a profile violates a precondition
// of the simulator (non-positive measurements, zero weekly rate, ...).
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Weekly rate bounds in lbs/week accepted by NewUserProfile.
const (
	MinWeeklyRateLbs = 0.4
	MaxWeeklyRateLbs = 1.0
)

/* ─── Gender ─────────────────────────────────────────────────────────── */

// Gender selects the additive constant in the Mifflin-St Jeor equation.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ParseGender accepts "male" or "female" in any case.
func ParseGender(s string) (Gender, error) {
	switch Gender(strings.ToLower(strings.TrimSpace(s))) {
	case Male:
		return Male, nil
	case Female:
		return Female, nil
	}
	return "", fmt.Errorf("%w: gender must be male or female, got %q", ErrInvalidConfiguration, s)
}

/* ─── Activity level ─────────────────────────────────────────────────── */

// ActivityLevel is one of the keys of activityFactors.
type ActivityLevel string

const (
	Sedentary ActivityLevel = "sedentary"
	Light     ActivityLevel = "light"
	Moderate  ActivityLevel = "moderate"
	Very      ActivityLevel = "very"
	Super     ActivityLevel = "super"
)

// DefaultActivityFactor is used for activity levels missing from the table.
const DefaultActivityFactor = 1.55

// activityFactors maps activity levels to their TDEE multiplier.
var activityFactors = map[ActivityLevel]float64{
	Sedentary: 1.2,
	Light:     1.375,
	Moderate:  1.55,
	Very:      1.725,
	Super:     1.9,
}

// ActivityLevels lists the known levels in ascending order of activity.
var ActivityLevels = []ActivityLevel{Sedentary, Light, Moderate, Very, Super}

// Factor returns the TDEE multiplier, falling back to "moderate".
func (a ActivityLevel) Factor() float64 {
	if f, ok := activityFactors[ActivityLevel(strings.ToLower(string(a)))]; ok {
		return f
	}
	return DefaultActivityFactor
}

// Known reports whether a is one of ActivityLevels.
func (a ActivityLevel) Known() bool {
	_, ok := activityFactors[ActivityLevel(strings.ToLower(string(a)))]
	return ok
}

/* ─── Direction ──────────────────────────────────────────────────────── */

// Direction is the sign of the weight change a profile asks for.
type Direction string

const (
	Loss     Direction = "loss"
	Gain     Direction = "gain"
	Maintain Direction = "maintain"
)

// Goal returns the verb used in prompts: "lose", "gain", or "maintain".
func (d Direction) Goal() string {
	switch d {
	case Loss:
		return "lose"
	case Gain:
		return "gain"
	}
	return "maintain"
}

/* ─── UserProfile ────────────────────────────────────────────────────── */

// UserProfile is the body profile every calculation runs on. It is a value
// type; pass it by value and build it with NewUserProfile at input edges.
type UserProfile struct {
	Age             int           `json:"age"`
	Gender          Gender        `json:"gender"`
	HeightCM        float64       `json:"height_cm"`
	CurrentWeightKG float64       `json:"current_weight_kg"`
	TargetWeightKG  float64       `json:"target_weight_kg"`
	ActivityLevel   ActivityLevel `json:"activity_level"`
	WeeklyRateLbs   float64       `json:"weekly_rate_lbs"`
}

// NewUserProfile validates the inputs and returns the profile. Unknown
// activity levels are accepted (they resolve to the moderate factor).
func NewUserProfile(age int, gender Gender, heightCM, currentKG, targetKG float64, activity ActivityLevel, weeklyLbs float64) (UserProfile, error) {
	p := UserProfile{
		Age:             age,
		Gender:          gender,
		HeightCM:        heightCM,
		CurrentWeightKG: currentKG,
		TargetWeightKG:  targetKG,
		ActivityLevel:   ActivityLevel(strings.ToLower(string(activity))),
		WeeklyRateLbs:   weeklyLbs,
	}
	if err := p.Validate(); err != nil {
		return UserProfile{}, err
	}
	return p, nil
}

// Validate checks every field, including the weekly-rate clinical range.
func (p UserProfile) Validate() error {
	if err := p.checkMeasurements(); err != nil {
		return err
	}
	if p.WeeklyRateLbs < MinWeeklyRateLbs || p.WeeklyRateLbs > MaxWeeklyRateLbs {
		return fmt.Errorf("%w: weekly rate must be between %.1f and %.1f lbs, got %g",
			ErrInvalidConfiguration, MinWeeklyRateLbs, MaxWeeklyRateLbs, p.WeeklyRateLbs)
	}
	return nil
}

// checkMeasurements requires every measurement to be a positive finite
// number. Validate adds the weekly-rate range on top.
func (p UserProfile) checkMeasurements() error {
	if p.Age <= 0 {
		return fmt.Errorf("%w: age must be positive, got %d", ErrInvalidConfiguration, p.Age)
	}
	if p.Gender != Male && p.Gender != Female {
		return fmt.Errorf("%w: gender must be male or female, got %q", ErrInvalidConfiguration, p.Gender)
	}
	fields := []struct {
		name  string
		value float64
	}{
		{"height_cm", p.HeightCM},
		{"current_weight_kg", p.CurrentWeightKG},
		{"target_weight_kg", p.TargetWeightKG},
		{"weekly_rate_lbs", p.WeeklyRateLbs},
	}
	for _, f := range fields {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be a positive number, got %g", ErrInvalidConfiguration, f.name, f.value)
		}
	}
	return nil
}

// Direction reports whether the profile is a loss, gain, or maintain goal.
func (p UserProfile) Direction() Direction {
	switch {
	case p.TargetWeightKG < p.CurrentWeightKG:
		return Loss
	case p.TargetWeightKG > p.CurrentWeightKG:
		return Gain
	}
	return Maintain
}

// WeeklyKgChange converts the weekly rate from pounds to kilograms.
func (p UserProfile) WeeklyKgChange() float64 {
	return p.WeeklyRateLbs * KgPerLb
}
