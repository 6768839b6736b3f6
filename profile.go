package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/weight-planner-api/internal/weightplan"
)

// loadProfile reads the stored profile row for the authenticated user.
func (h *Handler) loadProfile(c *gin.Context) (userProfile, error) {
	return queryOne[userProfile](h.db, c,
		"SELECT * FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": c.GetInt("user_id")})
}

// resolveProfile uses the profile in the request body when given, else the
// stored one. It writes the error response itself and reports ok=false.
func (h *Handler) resolveProfile(c *gin.Context, req *profileRequest) (weightplan.UserProfile, string, bool) {
	if req != nil {
		p, err := req.toProfile()
		if err != nil {
			planError(c, "profile", err)
			return weightplan.UserProfile{}, "", false
		}
		return p, req.DietType, true
	}

	if h.db == nil {
		apiError(c, http.StatusBadRequest, "profile is required")
		return weightplan.UserProfile{}, "", false
	}
	row, err := h.loadProfile(c)
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusNotFound, "profile not found")
		return weightplan.UserProfile{}, "", false
	}
	if err != nil {
		planError(c, "profile", err)
		return weightplan.UserProfile{}, "", false
	}
	p, err := row.toProfile()
	if err != nil {
		planError(c, "profile", err)
		return weightplan.UserProfile{}, "", false
	}
	diet := ""
	if row.DietType != nil {
		diet = *row.DietType
	}
	return p, diet, true
}

// getProfile returns the stored profile for the authenticated user along with
// its calorie targets when the profile is complete.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	row, err := h.loadProfile(c)
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	resp := gin.H{"profile": row}
	if p, err := row.toProfile(); err == nil {
		if t, err := weightplan.ComputeCalorieTargets(p); err == nil {
			resp["targets"] = t
		}
	}
	c.JSON(http.StatusOK, resp)
}

// putProfile validates and stores the whole profile.
// PUT /api/profile. Unlike plan requests, unknown activity levels are
// rejected here so stored profiles always use a known factor.
func (h *Handler) putProfile(c *gin.Context) {
	var body profileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.ActivityLevel != "" && !weightplan.ActivityLevel(body.ActivityLevel).Known() {
		apiError(c, http.StatusBadRequest, "activity_level must be one of: sedentary, light, moderate, very, super")
		return
	}

	p, err := body.toProfile()
	if err != nil {
		planError(c, "putProfile", err)
		return
	}

	row, err := queryOne[userProfile](h.db, c,
		`INSERT INTO user_profiles (user_id, age, gender, height_cm, current_weight_kg, target_weight_kg,
		                            activity_level, weekly_rate_lbs, diet_type, updated_at)
		 VALUES (@userID, @age, @gender, @heightCM, @currentKG, @targetKG, @activity, @weeklyLbs, @diet, now())
		 ON CONFLICT (user_id) DO UPDATE SET
		   age = EXCLUDED.age, gender = EXCLUDED.gender, height_cm = EXCLUDED.height_cm,
		   current_weight_kg = EXCLUDED.current_weight_kg, target_weight_kg = EXCLUDED.target_weight_kg,
		   activity_level = EXCLUDED.activity_level, weekly_rate_lbs = EXCLUDED.weekly_rate_lbs,
		   diet_type = EXCLUDED.diet_type, updated_at = now()
		 RETURNING *`,
		pgx.NamedArgs{
			"userID":    c.GetInt("user_id"),
			"age":       p.Age,
			"gender":    string(p.Gender),
			"heightCM":  p.HeightCM,
			"currentKG": p.CurrentWeightKG,
			"targetKG":  p.TargetWeightKG,
			"activity":  strings.ToLower(string(p.ActivityLevel)),
			"weeklyLbs": p.WeeklyRateLbs,
			"diet":      nullIfEmpty(body.DietType),
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": row})
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
