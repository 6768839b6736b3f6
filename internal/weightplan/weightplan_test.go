package weightplan

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

// exampleProfile is the reference profile: male, 24y, 176cm, 85kg -> 75kg,
// moderate activity, 0.5 lbs/week.
func exampleProfile(t *testing.T) UserProfile {
	t.Helper()
	p, err := NewUserProfile(24, Male, 176, 85, 75, Moderate, 0.5)
	if err != nil {
		t.Fatalf("NewUserProfile: %v", err)
	}
	return p
}

/* ─── BMR / targets ──────────────────────────────────────────────────── */

func TestCalculateBMR_Male(t *testing.T) {
	p := exampleProfile(t)
	// 10*75 + 6.25*176 - 5*24 + 5 = 1735
	if got := CalculateBMR(p, 75); got != 1735 {
		t.Errorf("CalculateBMR(75) = %v, want 1735", got)
	}
}

func TestCalculateBMR_Female(t *testing.T) {
	p := exampleProfile(t)
	p.Gender = Female
	// Same inputs with -161 instead of +5.
	if got := CalculateBMR(p, 75); got != 1569 {
		t.Errorf("CalculateBMR(75) = %v, want 1569", got)
	}
}

// TestComputeCalorieTargets_Example checks the reference profile: maintenance
// 1735*1.55 = 2689.25, daily delta 0.5*0.453592*7700/7 ≈ 249.48.
func TestComputeCalorieTargets_Example(t *testing.T) {
	got, err := ComputeCalorieTargets(exampleProfile(t))
	if err != nil {
		t.Fatalf("ComputeCalorieTargets: %v", err)
	}
	if got.BMR != 1735 {
		t.Errorf("BMR = %d, want 1735", got.BMR)
	}
	if got.MaintenanceCalories != 2689 {
		t.Errorf("MaintenanceCalories = %d, want 2689", got.MaintenanceCalories)
	}
	if math.Abs(got.DailyDelta-249.4756) > 1e-3 {
		t.Errorf("DailyDelta = %f, want ~249.4756", got.DailyDelta)
	}
	// 2689.25 - 249.4756 = 2439.77, rounded half away from zero.
	if got.TargetDailyCalories != 2440 {
		t.Errorf("TargetDailyCalories = %d, want 2440", got.TargetDailyCalories)
	}
	if got.Direction != Loss {
		t.Errorf("Direction = %s, want loss", got.Direction)
	}
}

func TestComputeCalorieTargets_Gain(t *testing.T) {
	p := exampleProfile(t)
	p.CurrentWeightKG, p.TargetWeightKG = 65, 75
	got, err := ComputeCalorieTargets(p)
	if err != nil {
		t.Fatalf("ComputeCalorieTargets: %v", err)
	}
	if got.Direction != Gain {
		t.Errorf("Direction = %s, want gain", got.Direction)
	}
	if math.Abs(got.TargetDailyExact-(got.MaintenanceExact+got.DailyDelta)) > 1e-9 {
		t.Errorf("gain target %f != maintenance %f + delta %f", got.TargetDailyExact, got.MaintenanceExact, got.DailyDelta)
	}
}

// TestComputeCalorieTargets_RoundTrip rebuilds the target from maintenance
// and delta in both directions.
func TestComputeCalorieTargets_RoundTrip(t *testing.T) {
	cases := []struct {
		name            string
		current, target float64
		sign            float64
	}{
		{"loss", 90, 70, -1},
		{"gain", 60, 70, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := exampleProfile(t)
			p.CurrentWeightKG, p.TargetWeightKG = tc.current, tc.target
			got, err := ComputeCalorieTargets(p)
			if err != nil {
				t.Fatalf("ComputeCalorieTargets: %v", err)
			}
			rebuilt := float64(got.MaintenanceCalories) + tc.sign*got.DailyDelta
			if math.Abs(rebuilt-float64(got.TargetDailyCalories)) > 1 {
				t.Errorf("rebuilt %f, want %d ±1", rebuilt, got.TargetDailyCalories)
			}
		})
	}
}

// TestComputeCalorieTargets_IndependentOfCurrentWeight varies only the
// current weight within one direction.
func TestComputeCalorieTargets_IndependentOfCurrentWeight(t *testing.T) {
	p := exampleProfile(t)
	base, err := ComputeCalorieTargets(p)
	if err != nil {
		t.Fatalf("ComputeCalorieTargets: %v", err)
	}
	for _, current := range []float64{76, 90, 120} {
		p.CurrentWeightKG = current
		got, err := ComputeCalorieTargets(p)
		if err != nil {
			t.Fatalf("ComputeCalorieTargets(%v): %v", current, err)
		}
		if got != base {
			t.Errorf("current=%v: targets %+v differ from %+v", current, got, base)
		}
	}
}

func TestComputeCalorieTargets_Maintain(t *testing.T) {
	p := exampleProfile(t)
	p.CurrentWeightKG = p.TargetWeightKG
	got, err := ComputeCalorieTargets(p)
	if err != nil {
		t.Fatalf("ComputeCalorieTargets: %v", err)
	}
	if got.TargetDailyCalories != got.MaintenanceCalories {
		t.Errorf("maintain target %d != maintenance %d", got.TargetDailyCalories, got.MaintenanceCalories)
	}
}

func TestActivityFactor_UnknownDefaultsToModerate(t *testing.T) {
	if f := ActivityLevel("couch").Factor(); f != 1.55 {
		t.Errorf("Factor() = %v, want 1.55", f)
	}
	if ActivityLevel("couch").Known() {
		t.Error("Known() = true for unknown level")
	}
	if f := ActivityLevel("SUPER").Factor(); f != 1.9 {
		t.Errorf("Factor(SUPER) = %v, want 1.9", f)
	}
}

/* ─── Trajectory ─────────────────────────────────────────────────────── */

func TestSimulateTrajectory_Example(t *testing.T) {
	points, err := SimulateTrajectory(exampleProfile(t))
	if err != nil {
		t.Fatalf("SimulateTrajectory: %v", err)
	}
	// ceil(10 / 0.226796) = 45 weeks, plus week 0.
	if len(points) != 46 {
		t.Fatalf("len(points) = %d, want 46", len(points))
	}
	if points[0].Week != 0 || points[0].WeightKG != 85 {
		t.Errorf("first point = %+v, want week 0 at 85kg", points[0])
	}
	if math.Abs(points[1].WeightKG-84.773204) > 1e-9 {
		t.Errorf("week 1 = %f, want 84.773204", points[1].WeightKG)
	}
	last := points[len(points)-1]
	if last.WeightKG != 75 || last.Week != 45 {
		t.Errorf("last point = %+v, want week 45 at 75kg", last)
	}
}

// TestSimulateTrajectory_Properties checks termination, monotonicity, and the
// constant step (except the clamped last one) for loss and gain profiles.
func TestSimulateTrajectory_Properties(t *testing.T) {
	cases := []struct {
		name            string
		current, target float64
		rate            float64
	}{
		{"loss", 120, 70.3, 1.0},
		{"gain", 50.5, 62, 0.4},
		{"exact multiple", 80, 80 - 10*0.453592, 1.0},
		{"tiny gap", 70.0001, 70, 0.4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := exampleProfile(t)
			p.CurrentWeightKG, p.TargetWeightKG, p.WeeklyRateLbs = tc.current, tc.target, tc.rate
			points, err := SimulateTrajectory(p)
			if err != nil {
				t.Fatalf("SimulateTrajectory: %v", err)
			}
			if points[0].WeightKG != tc.current {
				t.Errorf("week 0 = %f, want %f", points[0].WeightKG, tc.current)
			}
			if last := points[len(points)-1].WeightKG; math.Abs(last-tc.target) > 1e-6 {
				t.Errorf("last = %f, want %f", last, tc.target)
			}
			step := p.WeeklyKgChange()
			loss := tc.target < tc.current
			for i := 1; i < len(points); i++ {
				prev, cur := points[i-1].WeightKG, points[i].WeightKG
				if points[i].Week != i {
					t.Fatalf("point %d has week %d", i, points[i].Week)
				}
				if loss && cur > prev || !loss && cur < prev {
					t.Fatalf("not monotonic at week %d: %f -> %f", i, prev, cur)
				}
				diff := math.Abs(cur - prev)
				if i < len(points)-1 && math.Abs(diff-step) > 1e-9 {
					t.Errorf("week %d step = %f, want %f", i, diff, step)
				}
				if diff > step+1e-9 {
					t.Errorf("week %d step %f overshoots %f", i, diff, step)
				}
			}
		})
	}
}

func TestSimulateTrajectory_AlreadyAtTarget(t *testing.T) {
	p := exampleProfile(t)
	p.CurrentWeightKG = p.TargetWeightKG
	points, err := SimulateTrajectory(p)
	if err != nil {
		t.Fatalf("SimulateTrajectory: %v", err)
	}
	if len(points) != 1 || points[0].WeightKG != 75 {
		t.Errorf("points = %+v, want only week 0 at 75kg", points)
	}
}

// TestSimulateTrajectory_ZeroRate must fail fast instead of looping forever.
func TestSimulateTrajectory_ZeroRate(t *testing.T) {
	p := exampleProfile(t)
	p.WeeklyRateLbs = 0
	points, err := SimulateTrajectory(p)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
	if points != nil {
		t.Errorf("points = %v, want nil on error", points)
	}
	if _, err := BuildPlan(p); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("BuildPlan err = %v, want ErrInvalidConfiguration", err)
	}
}

/* ─── Validation ─────────────────────────────────────────────────────── */

func TestNewUserProfile_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *UserProfile)
	}{
		{"zero age", func(p *UserProfile) { p.Age = 0 }},
		{"bad gender", func(p *UserProfile) { p.Gender = "other" }},
		{"negative height", func(p *UserProfile) { p.HeightCM = -1 }},
		{"zero current", func(p *UserProfile) { p.CurrentWeightKG = 0 }},
		{"NaN target", func(p *UserProfile) { p.TargetWeightKG = math.NaN() }},
		{"rate too low", func(p *UserProfile) { p.WeeklyRateLbs = 0.1 }},
		{"rate too high", func(p *UserProfile) { p.WeeklyRateLbs = 2 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := exampleProfile(t)
			tc.mutate(&p)
			_, err := NewUserProfile(p.Age, p.Gender, p.HeightCM, p.CurrentWeightKG, p.TargetWeightKG, p.ActivityLevel, p.WeeklyRateLbs)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("err = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestParseGender(t *testing.T) {
	if g, err := ParseGender(" Female "); err != nil || g != Female {
		t.Errorf("ParseGender(Female) = %q, %v", g, err)
	}
	if _, err := ParseGender("x"); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("ParseGender(x) err = %v, want ErrInvalidConfiguration", err)
	}
}

/* ─── Summary ────────────────────────────────────────────────────────── */

type stubCompleter struct {
	prompt string
	reply  string
	err    error
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.reply, s.err
}

func TestSummarize(t *testing.T) {
	p := exampleProfile(t)
	points, _ := SimulateTrajectory(p)
	c := &stubCompleter{reply: "  You can do it!\n"}
	got, err := Summarize(context.Background(), c, p, points)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got.Text != "You can do it!" {
		t.Errorf("Text = %q", got.Text)
	}
	if !strings.Contains(c.prompt, "from 85 kg to 75 kg over 45 weeks") {
		t.Errorf("prompt = %q", c.prompt)
	}
}

func TestSummarize_PropagatesError(t *testing.T) {
	p := exampleProfile(t)
	boom := errors.New("upstream down")
	_, err := Summarize(context.Background(), &stubCompleter{err: boom}, p, nil)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

// TestSimulateTrajectory_RateOutsideRange covers profiles built without
// NewUserProfile: a near-zero rate must fail instead of sizing a huge slice.
func TestSimulateTrajectory_RateOutsideRange(t *testing.T) {
	for _, rate := range []float64{1e-20, 1e-9, 0.1, 5} {
		p := UserProfile{Age: 24, Gender: Male, HeightCM: 176, CurrentWeightKG: 85, TargetWeightKG: 75,
			ActivityLevel: Moderate, WeeklyRateLbs: rate}
		if _, err := SimulateTrajectory(p); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("rate %g: SimulateTrajectory err = %v, want ErrInvalidConfiguration", rate, err)
		}
		if _, err := ComputeCalorieTargets(p); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("rate %g: ComputeCalorieTargets err = %v, want ErrInvalidConfiguration", rate, err)
		}
	}
}

func TestSimulateTrajectory_TooManyWeeks(t *testing.T) {
	p := exampleProfile(t)
	p.CurrentWeightKG, p.TargetWeightKG = 1e17, 1e17-16
	if _, err := SimulateTrajectory(p); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("no-progress step: err = %v, want ErrInvalidConfiguration", err)
	}

	p.CurrentWeightKG, p.TargetWeightKG = 5000, 10
	if _, err := SimulateTrajectory(p); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("over %d weeks: err = %v, want ErrInvalidConfiguration", MaxTrajectoryWeeks, err)
	}
}
