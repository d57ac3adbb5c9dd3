package record

import (
	"time"

	"github.com/google/uuid"

	"github.com/ugaemi/horsingaround-server/internal/game"
)

// Round is the persisted result of one finished round.
type Round struct {
	ID          string        `json:"id"`
	SessionCode string        `json:"session_code"`
	Level       string        `json:"level"`
	Cause       string        `json:"cause"`
	Score       int           `json:"score"`
	Duration    time.Duration `json:"duration"` // simulated time, not wall time
	StartedAt   time.Time     `json:"started_at"`
	EndedAt     time.Time     `json:"ended_at"`
}

// NewRound creates a record for a round that ended now.
func NewRound(sessionCode, level string, cause game.Cause, score int, duration time.Duration, startedAt time.Time) *Round {
	return &Round{
		ID:          uuid.New().String(),
		SessionCode: sessionCode,
		Level:       level,
		Cause:       cause.String(),
		Score:       score,
		Duration:    duration,
		StartedAt:   startedAt,
		EndedAt:     time.Now(),
	}
}
