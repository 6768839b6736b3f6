package weightplan

import (
	"fmt"
	"math"
)

// MaxTrajectoryWeeks bounds a projection to a hundred years.
const MaxTrajectoryWeeks = 5200

// TrajectoryPoint is the projected weight at the end of a week.
type TrajectoryPoint struct {
	Week     int     `json:"week"`
	WeightKG float64 `json:"weight_kg"`
}

// SimulateTrajectory projects weight week by week from the current weight
// to the target. Each step moves WeeklyKgChange toward the target and is
// clamped so the target is never crossed; the last point equals the target
// exactly. A profile already at its target yields only the week-0 point.
func SimulateTrajectory(p UserProfile) ([]TrajectoryPoint, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	step := p.WeeklyKgChange()

	current, target := p.CurrentWeightKG, p.TargetWeightKG
	weeks := math.Ceil(math.Abs(current-target) / step)
	if weeks > MaxTrajectoryWeeks {
		return nil, fmt.Errorf("%w: reaching %g kg takes more than %d weeks", ErrInvalidConfiguration, target, MaxTrajectoryWeeks)
	}
	points := make([]TrajectoryPoint, 0, int(weeks)+1)
	points = append(points, TrajectoryPoint{Week: 0, WeightKG: current})

	weight := current
	for week := 1; weight != target; week++ {
		next := math.Min(weight+step, target)
		if target < weight {
			next = math.Max(weight-step, target)
		}
		if next == weight {
			return nil, fmt.Errorf("%w: a %g kg step does not change a weight of %g kg", ErrInvalidConfiguration, step, weight)
		}
		weight = next
		points = append(points, TrajectoryPoint{Week: week, WeightKG: weight})
	}
	return points, nil
}

// TotalWeeks is the week index of the last point, 0 for an empty slice.
func TotalWeeks(points []TrajectoryPoint) int {
	if len(points) == 0 {
		return 0
	}
	return points[len(points)-1].Week
}

// Plan bundles the targets and trajectory for one profile.
type Plan struct {
	Profile    UserProfile       `json:"profile"`
	Targets    CalorieTargets    `json:"targets"`
	Trajectory []TrajectoryPoint `json:"trajectory"`
	TotalWeeks int               `json:"total_weeks"`
}

// BuildPlan runs ComputeCalorieTargets and SimulateTrajectory. No partial
// plan is returned on error.
func BuildPlan(p UserProfile) (Plan, error) {
	targets, err := ComputeCalorieTargets(p)
	if err != nil {
		return Plan{}, err
	}
	points, err := SimulateTrajectory(p)
	if err != nil {
		return Plan{}, err
	}
	return Plan{
		Profile:    p,
		Targets:    targets,
		Trajectory: points,
		TotalWeeks: TotalWeeks(points),
	}, nil
}
