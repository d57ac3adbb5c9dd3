package game

import (
	"math"
	"time"
)

// Body is the kinematic state of an agent.
type Body struct {
	Position Vec3    `json:"position"`
	Heading  float64 `json:"heading"`
	Stopped  bool    `json:"stopped"`
}

// MoveResult reports the outcome of one movement step.
type MoveResult struct {
	Arrived bool
	HasPath bool
}

// Mover advances a body toward a destination. Enforcers do not care how.
type Mover interface {
	MoveToward(b *Body, dest Vec3, speed float64, dt time.Duration) MoveResult
}

// SteeringMover moves straight at the destination along the ground plane,
// turning the heading gradually like a physics-driven body.
type SteeringMover struct {
	Tolerance float64
	TurnRate  float64
}

// NewSteeringMover creates a steering mover with default tuning.
func NewSteeringMover() *SteeringMover {
	return &SteeringMover{
		Tolerance: DefaultArrivalTolerance,
		TurnRate:  DefaultTurnRate,
	}
}

// MoveToward implements Mover.
func (m *SteeringMover) MoveToward(b *Body, dest Vec3, speed float64, dt time.Duration) MoveResult {
	toDest := dest.Sub(b.Position).Flat()
	dist := toDest.Len()
	if dist < m.Tolerance {
		return MoveResult{Arrived: true, HasPath: true}
	}
	if b.Stopped || speed <= 0 || dt <= 0 {
		return MoveResult{HasPath: true}
	}

	dir := toDest.Scale(1 / dist)
	b.Heading = turnToward(b.Heading, Yaw(dir), m.TurnRate*dt.Seconds())

	step := math.Min(speed*dt.Seconds(), dist)
	b.Position = b.Position.Add(dir.Scale(step))

	return MoveResult{Arrived: dist-step < m.Tolerance, HasPath: true}
}

// Planner computes a corner path between two points. It is a black box to the mover.
type Planner interface {
	Plan(from, to Vec3) ([]Vec3, bool)
}

// StraightPlanner plans a direct line to the destination.
type StraightPlanner struct{}

// Plan implements Planner.
func (StraightPlanner) Plan(_, to Vec3) ([]Vec3, bool) {
	return []Vec3{to}, true
}

// NavMover follows a planned corner path like a navigation agent. It keeps path
// state, so each agent needs its own NavMover.
type NavMover struct {
	Planner          Planner
	StoppingDistance float64
	RepathDistance   float64

	dest    Vec3
	corners []Vec3
	hasPath bool
	planned bool
}

// NewNavMover creates a nav mover using planner, or a straight-line planner if nil.
func NewNavMover(planner Planner) *NavMover {
	if planner == nil {
		planner = StraightPlanner{}
	}
	return &NavMover{
		Planner:          planner,
		StoppingDistance: DefaultArrivalTolerance,
		RepathDistance:   DefaultRepathDistance,
	}
}

// MoveToward implements Mover.
func (m *NavMover) MoveToward(b *Body, dest Vec3, speed float64, dt time.Duration) MoveResult {
	if !m.planned || len(m.corners) == 0 || Distance(dest, m.dest) > m.RepathDistance {
		m.corners, m.hasPath = m.Planner.Plan(b.Position, dest)
		m.dest = dest
		m.planned = true
	}
	if !m.hasPath {
		return MoveResult{}
	}

	if m.remainingDistance(b.Position) < m.StoppingDistance {
		return MoveResult{Arrived: true, HasPath: true}
	}
	if b.Stopped || speed <= 0 || dt <= 0 {
		return MoveResult{HasPath: true}
	}

	budget := speed * dt.Seconds()
	for budget > 0 && len(m.corners) > 0 {
		to := m.corners[0].Sub(b.Position)
		d := to.Len()
		if d > 0 {
			b.Heading = Yaw(to)
		}
		if d <= budget {
			b.Position = m.corners[0]
			m.corners = m.corners[1:]
			budget -= d
			continue
		}
		b.Position = b.Position.Add(to.Scale(budget / d))
		budget = 0
	}

	return MoveResult{
		Arrived: m.remainingDistance(b.Position) < m.StoppingDistance,
		HasPath: true,
	}
}

// remainingDistance is the length of the rest of the path from pos.
func (m *NavMover) remainingDistance(pos Vec3) float64 {
	if len(m.corners) == 0 {
		return Distance(pos, m.dest)
	}
	total := Distance(pos, m.corners[0])
	for i := 1; i < len(m.corners); i++ {
		total += Distance(m.corners[i-1], m.corners[i])
	}
	return total
}
