package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"lg/weight-planner-api/internal/weightplan"
)

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// userProfile maps to user_profiles. A fresh user has a row with every
// measurement NULL, so the fields are pointers.
type userProfile struct {
	UserID          int        `json:"user_id" db:"user_id"`
	Age             *int       `json:"age" db:"age"`
	Gender          *string    `json:"gender" db:"gender"`
	HeightCM        *float64   `json:"height_cm" db:"height_cm"`
	CurrentWeightKG *float64   `json:"current_weight_kg" db:"current_weight_kg"`
	TargetWeightKG  *float64   `json:"target_weight_kg" db:"target_weight_kg"`
	ActivityLevel   *string    `json:"activity_level" db:"activity_level"`
	WeeklyRateLbs   *float64   `json:"weekly_rate_lbs" db:"weekly_rate_lbs"`
	DietType        *string    `json:"diet_type" db:"diet_type"`
	UpdatedAt       *time.Time `json:"updated_at" db:"updated_at"`
}

// toProfile validates a stored row. Missing fields are reported as
// invalid configuration so the caller sees a 400.
func (p userProfile) toProfile() (weightplan.UserProfile, error) {
	if p.Age == nil || p.Gender == nil || p.HeightCM == nil || p.CurrentWeightKG == nil ||
		p.TargetWeightKG == nil || p.WeeklyRateLbs == nil {
		return weightplan.UserProfile{}, fmt.Errorf("%w: profile is incomplete", weightplan.ErrInvalidConfiguration)
	}
	req := profileRequest{
		Age:             *p.Age,
		Gender:          *p.Gender,
		HeightCM:        *p.HeightCM,
		CurrentWeightKG: *p.CurrentWeightKG,
		TargetWeightKG:  *p.TargetWeightKG,
		WeeklyRateLbs:   *p.WeeklyRateLbs,
	}
	if p.ActivityLevel != nil {
		req.ActivityLevel = *p.ActivityLevel
	}
	return req.toProfile()
}

// chatTurn maps to chat_turns.
type chatTurn struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"-" db:"user_id"`
	SessionID uuid.UUID `json:"session_id" db:"session_id"`
	Question  string    `json:"question" db:"question"`
	Answer    string    `json:"answer" db:"answer"`
	NoMatch   bool      `json:"no_match" db:"no_match"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

/* ─── Request types ──────────────────────────────────────────────────── */

// profileRequest is the JSON form of a user profile in request bodies.
type profileRequest struct {
	Age             int     `json:"age"`
	Gender          string  `json:"gender"`
	HeightCM        float64 `json:"height_cm"`
	CurrentWeightKG float64 `json:"current_weight_kg"`
	TargetWeightKG  float64 `json:"target_weight_kg"`
	ActivityLevel   string  `json:"activity_level"`
	WeeklyRateLbs   float64 `json:"weekly_rate_lbs"`
	DietType        string  `json:"diet_type,omitempty"`
}

// toProfile validates the request. An empty activity level means moderate;
// other unknown levels are accepted and use the default factor.
func (r profileRequest) toProfile() (weightplan.UserProfile, error) {
	gender, err := weightplan.ParseGender(r.Gender)
	if err != nil {
		return weightplan.UserProfile{}, err
	}
	activity := weightplan.ActivityLevel(r.ActivityLevel)
	if activity == "" {
		activity = weightplan.Moderate
	}
	return weightplan.NewUserProfile(r.Age, gender, r.HeightCM, r.CurrentWeightKG, r.TargetWeightKG, activity, r.WeeklyRateLbs)
}
