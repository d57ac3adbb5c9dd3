package game

import (
	"fmt"
	"time"
)

// World is one round of the simulation: every agent of a level sharing a clock,
// a registry and a game-over sink.
type World struct {
	Clock    *Clock
	Round    *Round
	Registry *Registry
	Events   *EventBuffer

	Meter     *ChaosMeter
	Enforcers []*Enforcer
	Witnesses []*WitnessSensor
	Pranks    []*PrankSpot
}

// NewWorld creates an empty world with its shared collaborators.
func NewWorld() *World {
	clock := &Clock{}
	return &World{
		Clock:    clock,
		Round:    NewRound(clock),
		Registry: NewRegistry(),
		Events:   &EventBuffer{},
	}
}

// Target returns a reference to the world's target actor.
func (w *World) Target() TargetRef {
	return NewTargetRef(w.Registry, RoleTarget)
}

// Step advances the world by one tick. Witnesses run before enforcers so an alert
// raised this tick is acted on in the same tick. Nothing advances once the round is
// over, including the agents after the one that ended it within this tick.
func (w *World) Step(dt time.Duration) {
	dt = w.Clock.Advance(dt)
	if dt == 0 {
		return
	}

	for _, p := range w.Pranks {
		p.Tick(dt)
	}
	for _, ws := range w.Witnesses {
		if w.Clock.Frozen() {
			return
		}
		ws.Tick(dt)
	}
	for _, e := range w.Enforcers {
		if w.Clock.Frozen() {
			return
		}
		e.Tick(dt)
	}
	if w.Meter != nil && !w.Clock.Frozen() {
		w.Meter.Tick(dt)
	}
}

// MoveTarget sets the target's position.
func (w *World) MoveTarget(pos Vec3) error {
	id, ok := w.Registry.Resolve(RoleTarget)
	if !ok {
		return fmt.Errorf("no target registered: %w", ErrMissingCollaborator)
	}
	return w.Registry.SetPosition(id, pos)
}

// PerformPrank lets the target prank the spot with the given id. A successful prank
// rewards the meter and is observed by every witness.
func (w *World) PerformPrank(id string) (bool, error) {
	if w.Round.Triggered() {
		return false, nil
	}
	spot := w.Prank(id)
	if spot == nil {
		return false, fmt.Errorf("prank spot %q: %w", id, ErrMissingCollaborator)
	}
	pos, err := w.Target().Position()
	if err != nil {
		return false, err
	}
	if !spot.Perform(pos) {
		return false, nil
	}

	if w.Meter != nil {
		w.Meter.Reward()
	}
	for _, ws := range w.Witnesses {
		ws.Observe(spot.Position)
	}
	return true, nil
}

// Enforcer returns the enforcer with the given id, or nil.
func (w *World) Enforcer(id string) *Enforcer {
	for _, e := range w.Enforcers {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Witness returns the witness with the given id, or nil.
func (w *World) Witness(id string) *WitnessSensor {
	for _, ws := range w.Witnesses {
		if ws.ID == id {
			return ws
		}
	}
	return nil
}

// Prank returns the prank spot with the given id, or nil.
func (w *World) Prank(id string) *PrankSpot {
	for _, p := range w.Pranks {
		if p.ID == id {
			return p
		}
	}
	return nil
}
