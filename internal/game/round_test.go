package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRound_TriggerFreezesClockOnce(t *testing.T) {
	clock := &Clock{}
	r := NewRound(clock)
	var calls []Cause
	r.OnGameOver = func(c Cause) { calls = append(calls, c) }

	clock.Advance(3 * time.Second)
	r.Trigger(CauseCaught)
	r.Trigger(CauseMeterDepleted)

	assert.True(t, r.Triggered())
	assert.Equal(t, CauseCaught, r.Cause())
	assert.Equal(t, 3*time.Second, r.EndedAt())
	assert.Equal(t, []Cause{CauseCaught}, calls)
	assert.True(t, clock.Frozen())
	assert.Equal(t, time.Duration(0), clock.Advance(time.Second))
	assert.Equal(t, 3*time.Second, clock.Now())
}

func TestWorld_FrozenStopsEveryAgent(t *testing.T) {
	w := newTestWorld(Vec3{X: 1})
	e := addEnforcer(w, configWith(Vec3{}, Vec3{X: 10}), Vec3{}, nil)
	police := &recordingAlerter{}
	ws := newTestWitness(w, Vec3{}, police)
	w.Meter = NewChaosMeter(DefaultMeterConfig(), w.Round, w.Clock, w.Events)

	for i := 0; i < TickRate; i++ {
		w.Step(TickInterval)
	}
	ws.Observe(Vec3{X: 1})
	w.Round.Trigger(CauseCaught)

	pos := e.Position()
	level := w.Meter.Level()
	now := w.Clock.Now()
	for i := 0; i < 2*TickRate; i++ {
		w.Step(TickInterval)
	}

	assert.Equal(t, pos, e.Position())
	assert.Equal(t, level, w.Meter.Level())
	assert.Equal(t, now, w.Clock.Now())
	assert.Empty(t, police.alerts)
}

func TestCause_String(t *testing.T) {
	assert.Equal(t, "caught", CauseCaught.String())
	assert.Equal(t, "meter_depleted", CauseMeterDepleted.String())
	assert.Equal(t, "none", CauseNone.String())
}
