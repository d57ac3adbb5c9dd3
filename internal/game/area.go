package game

import "fmt"

// PatrolArea is the containment circle an enforcer will not chase beyond.
type PatrolArea struct {
	Center Vec3    `json:"center"`
	Radius float64 `json:"radius"`
}

// ComputePatrolArea derives the area from a waypoint set: the center is the mean of the
// waypoints and the radius is the farthest waypoint from it plus chaseRangeMargin.
func ComputePatrolArea(waypoints []Vec3, chaseRangeMargin float64) (PatrolArea, error) {
	if len(waypoints) == 0 {
		return PatrolArea{}, fmt.Errorf("patrol area needs at least one waypoint: %w", ErrInvalidConfiguration)
	}

	center := Mean(waypoints)
	radius := 0.0
	for _, w := range waypoints {
		if d := Distance(center, w); d > radius {
			radius = d
		}
	}
	if chaseRangeMargin > 0 {
		radius += chaseRangeMargin
	}

	return PatrolArea{Center: center, Radius: radius}, nil
}

// Contains reports whether p lies inside the area.
func (a PatrolArea) Contains(p Vec3) bool {
	return Distance(p, a.Center) <= a.Radius
}
