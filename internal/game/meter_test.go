package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChaosMeter_StartsFullAndDecays(t *testing.T) {
	m := NewChaosMeter(DefaultMeterConfig(), nil, nil, nil)
	assert.Equal(t, DefaultMeterMax, m.Level())

	m.Tick(time.Second)
	assert.InDelta(t, DefaultMeterMax-DefaultDecayRate, m.Level(), 1e-9)
}

func TestChaosMeter_Add(t *testing.T) {
	tests := []struct {
		name   string
		start  float64
		amount float64
		want   float64
	}{
		{"reward", 500, 15, 515},
		{"clamped to max", 995, 15, 1000},
		{"negative clamped to zero", 10, -50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewChaosMeter(DefaultMeterConfig(), nil, nil, nil)
			m.level = tt.start

			m.Add(tt.amount)
			assert.InDelta(t, tt.want, m.Level(), 1e-9)
		})
	}
}

func TestChaosMeter_DepletionTriggersOnce(t *testing.T) {
	sink := &countingSink{}
	cfg := MeterConfig{Max: 10, DecayRate: 5, PrankReward: 3}
	m := NewChaosMeter(cfg, sink, nil, nil)

	m.Tick(time.Second)
	assert.Empty(t, sink.causes)

	m.Tick(1500 * time.Millisecond)
	assert.Equal(t, []Cause{CauseMeterDepleted}, sink.causes)
	assert.True(t, m.Depleted())
	assert.Equal(t, 0.0, m.Level())

	m.Tick(time.Second)
	m.Add(-5)
	m.Reward()
	assert.Len(t, sink.causes, 1)
	assert.Equal(t, 0.0, m.Level(), "a depleted meter cannot be refilled")
}

func TestChaosMeter_Score(t *testing.T) {
	m := NewChaosMeter(DefaultMeterConfig(), nil, nil, nil)
	m.level = 123.5
	assert.Equal(t, 124, m.Score())
	m.level = 123.49
	assert.Equal(t, 123, m.Score())
}
