package game

import (
	"log/slog"
	"time"
)

// Alerter receives alerts from witnesses.
type Alerter interface {
	Alert(pos Vec3)
}

// WitnessConfig holds the tuning of a witness.
type WitnessConfig struct {
	DetectionRange float64
	AlertDelay     time.Duration
}

// DefaultWitnessConfig returns the stock witness tuning.
func DefaultWitnessConfig() WitnessConfig {
	return WitnessConfig{
		DetectionRange: DefaultWitnessRange,
		AlertDelay:     DefaultAlertDelay,
	}
}

// WitnessSensor is a single-use tripwire: it notices an event in range, waits out
// its reaction delay and reports the target's current position to its enforcer.
type WitnessSensor struct {
	ID       string
	Position Vec3
	Facing   float64

	cfg      WitnessConfig
	police   Alerter
	target   TargetRef
	clock    *Clock
	notifier Notifier

	alerted  bool
	alerting bool
	timer    time.Duration
}

// NewWitnessSensor creates a witness standing at pos and reporting to police.
func NewWitnessSensor(id string, pos Vec3, cfg WitnessConfig, police Alerter, target TargetRef, clock *Clock, n Notifier) *WitnessSensor {
	if clock == nil {
		clock = &Clock{}
	}
	if n == nil {
		n = nopNotifier{}
	}
	return &WitnessSensor{
		ID:       id,
		Position: pos,
		cfg:      cfg,
		police:   police,
		target:   target,
		clock:    clock,
		notifier: n,
	}
}

// Observe notices an event at eventPos if it is within detection range.
func (w *WitnessSensor) Observe(eventPos Vec3) {
	if w.alerted {
		return
	}
	if Distance(w.Position, eventPos) > w.cfg.DetectionRange {
		return
	}

	w.alerting = true
	w.timer = 0
	if dir := eventPos.Sub(w.Position).Flat(); dir.Len() > 0 {
		w.Facing = Yaw(dir)
	}
	w.notify(EventWitnessAlerting)

	slog.Info("witness saw a prank", "witness", w.ID)
}

// Tick advances the reporting delay.
func (w *WitnessSensor) Tick(dt time.Duration) {
	if !w.alerting || w.alerted || dt <= 0 {
		return
	}

	w.timer += dt
	if w.timer >= w.cfg.AlertDelay {
		w.callPolice()
	}
}

// callPolice reports where the target is now. If the enforcer or target cannot be
// found the witness keeps alerting and tries again next tick.
func (w *WitnessSensor) callPolice() {
	if w.police == nil {
		slog.Debug("witness has no enforcer to call", "witness", w.ID)
		return
	}
	pos, err := w.target.Position()
	if err != nil {
		slog.Debug("witness cannot see target", "witness", w.ID, "error", err)
		return
	}

	w.police.Alert(pos)
	w.alerted = true
	w.alerting = false
	w.notify(EventPoliceCalled)

	slog.Info("witness called the police", "witness", w.ID)
}

func (w *WitnessSensor) notify(kind EventKind) {
	w.notifier.Notify(Event{Kind: kind, ActorID: w.ID, Position: w.Position, At: w.clock.Now()})
}

// Alerted reports whether the witness has already made its one report.
func (w *WitnessSensor) Alerted() bool { return w.alerted }

// Alerting reports whether the witness is waiting out its reaction delay.
func (w *WitnessSensor) Alerting() bool { return w.alerting }
