package game

import (
	"log/slog"
	"math"
	"time"
)

// MeterConfig holds the tuning of the chaos meter.
type MeterConfig struct {
	Max         float64
	DecayRate   float64
	PrankReward float64
}

// DefaultMeterConfig returns the stock meter tuning.
func DefaultMeterConfig() MeterConfig {
	return MeterConfig{
		Max:         DefaultMeterMax,
		DecayRate:   DefaultDecayRate,
		PrankReward: DefaultPrankReward,
	}
}

// ChaosMeter drains over time and is refilled by pranks. Running dry ends the round.
type ChaosMeter struct {
	cfg      MeterConfig
	level    float64
	depleted bool

	sink     GameOverSink
	clock    *Clock
	notifier Notifier
}

// NewChaosMeter creates a full meter.
func NewChaosMeter(cfg MeterConfig, sink GameOverSink, clock *Clock, n Notifier) *ChaosMeter {
	if clock == nil {
		clock = &Clock{}
	}
	if n == nil {
		n = nopNotifier{}
	}
	return &ChaosMeter{
		cfg:      cfg,
		level:    cfg.Max,
		sink:     sink,
		clock:    clock,
		notifier: n,
	}
}

// Tick drains the meter by the decay rate.
func (m *ChaosMeter) Tick(dt time.Duration) {
	if m.depleted || dt <= 0 {
		return
	}
	m.level -= m.cfg.DecayRate * dt.Seconds()
	m.checkDepleted()
}

// Add changes the level by amount, clamped to [0, Max].
func (m *ChaosMeter) Add(amount float64) {
	if m.depleted {
		return
	}
	m.level = math.Min(math.Max(m.level+amount, 0), m.cfg.Max)
	m.checkDepleted()
}

// Reward adds the configured prank reward.
func (m *ChaosMeter) Reward() {
	m.Add(m.cfg.PrankReward)
}

func (m *ChaosMeter) checkDepleted() {
	if m.level > 0 {
		return
	}
	m.level = 0
	m.depleted = true
	m.notifier.Notify(Event{Kind: EventMeterDepleted, At: m.clock.Now()})
	slog.Info("chaos meter depleted")

	if m.sink != nil {
		m.sink.Trigger(CauseMeterDepleted)
	}
}

func (m *ChaosMeter) Level() float64 { return m.level }

func (m *ChaosMeter) Max() float64 { return m.cfg.Max }

func (m *ChaosMeter) Depleted() bool { return m.depleted }

// Score is the level shown as the final score.
func (m *ChaosMeter) Score() int {
	return int(math.Round(m.level))
}
