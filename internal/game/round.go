package game

import (
	"encoding/json"
	"log/slog"
	"time"
)

// Cause records why a round ended.
type Cause int

const (
	CauseNone Cause = iota
	CauseCaught
	CauseMeterDepleted
)

func (c Cause) String() string {
	switch c {
	case CauseCaught:
		return "caught"
	case CauseMeterDepleted:
		return "meter_depleted"
	default:
		return "none"
	}
}

// MarshalJSON serializes Cause as a string.
func (c Cause) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// GameOverSink is notified when a round reaches a terminal outcome.
type GameOverSink interface {
	Trigger(cause Cause)
}

// Round is the game-over sink of a world. The first Trigger freezes the clock;
// later ones are ignored. Restarting builds a new world.
type Round struct {
	clock     *Clock
	triggered bool
	cause     Cause
	endedAt   time.Duration

	// OnGameOver is called once per round when it ends.
	OnGameOver func(cause Cause)
}

// NewRound creates a round driving clock.
func NewRound(clock *Clock) *Round {
	return &Round{clock: clock}
}

// Trigger implements GameOverSink.
func (r *Round) Trigger(cause Cause) {
	if r.triggered {
		return
	}
	r.triggered = true
	r.cause = cause
	r.endedAt = r.clock.Now()
	r.clock.Freeze()

	slog.Info("round over", "cause", cause.String(), "at", r.endedAt)

	if r.OnGameOver != nil {
		r.OnGameOver(cause)
	}
}

func (r *Round) Triggered() bool { return r.triggered }

func (r *Round) Cause() Cause { return r.cause }

// EndedAt returns the simulated time at which the round ended.
func (r *Round) EndedAt() time.Duration { return r.endedAt }

