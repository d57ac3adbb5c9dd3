package game

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// PrankKind selects how a prank spot behaves and how long it takes to reset.
type PrankKind int

const (
	PrankGraffiti PrankKind = iota
	PrankFireAlarm
	PrankKickObject
)

func (k PrankKind) String() string {
	switch k {
	case PrankGraffiti:
		return "graffiti"
	case PrankFireAlarm:
		return "fire_alarm"
	case PrankKickObject:
		return "kick_object"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes PrankKind as a string.
func (k PrankKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// ParsePrankKind parses the string form of a PrankKind.
func ParsePrankKind(s string) (PrankKind, error) {
	switch s {
	case "graffiti":
		return PrankGraffiti, nil
	case "fire_alarm":
		return PrankFireAlarm, nil
	case "kick_object":
		return PrankKickObject, nil
	default:
		return 0, fmt.Errorf("unknown prank kind %q: %w", s, ErrInvalidConfiguration)
	}
}

// PrankConfig holds the tuning of a prank spot.
type PrankConfig struct {
	Kind          PrankKind
	Radius        float64
	FadeTime      time.Duration
	AlarmDuration time.Duration
	RespawnTime   time.Duration
}

// DefaultPrankConfig returns the stock tuning for kind.
func DefaultPrankConfig(kind PrankKind) PrankConfig {
	return PrankConfig{
		Kind:          kind,
		Radius:        DefaultPrankRadius,
		FadeTime:      DefaultGraffitiFadeTime,
		AlarmDuration: DefaultAlarmDuration,
		RespawnTime:   DefaultKickRespawnTime,
	}
}

// PrankSpot is an interactive object that can be pranked once, then resets on a timer.
type PrankSpot struct {
	ID       string
	Position Vec3

	cfg      PrankConfig
	pranked  bool
	elapsed  time.Duration
	clock    *Clock
	notifier Notifier
}

// NewPrankSpot creates a ready prank spot at pos.
func NewPrankSpot(id string, pos Vec3, cfg PrankConfig, clock *Clock, n Notifier) *PrankSpot {
	if clock == nil {
		clock = &Clock{}
	}
	if n == nil {
		n = nopNotifier{}
	}
	return &PrankSpot{ID: id, Position: pos, cfg: cfg, clock: clock, notifier: n}
}

// Perform pranks the spot if it is ready and actorPos is close enough.
func (p *PrankSpot) Perform(actorPos Vec3) bool {
	if p.pranked {
		return false
	}
	if Distance(p.Position.Flat(), actorPos.Flat()) > p.cfg.Radius {
		return false
	}

	p.pranked = true
	p.elapsed = 0
	p.notify(EventPrankPerformed)

	slog.Info("prank performed", "prank", p.ID, "kind", p.cfg.Kind.String())
	return true
}

// Tick advances the reset timer.
func (p *PrankSpot) Tick(dt time.Duration) {
	if !p.pranked || dt <= 0 {
		return
	}

	p.elapsed += dt
	if p.elapsed >= p.resetAfter() {
		p.pranked = false
		p.elapsed = 0
		p.notify(EventPrankReset)
	}
}

func (p *PrankSpot) resetAfter() time.Duration {
	switch p.cfg.Kind {
	case PrankFireAlarm:
		return p.cfg.AlarmDuration * (1 + AlarmCooldownFactor)
	case PrankKickObject:
		return p.cfg.RespawnTime
	default:
		return p.cfg.FadeTime
	}
}

func (p *PrankSpot) notify(kind EventKind) {
	p.notifier.Notify(Event{Kind: kind, ActorID: p.ID, State: p.cfg.Kind.String(), Position: p.Position, At: p.clock.Now()})
}

func (p *PrankSpot) Kind() PrankKind { return p.cfg.Kind }

// Ready reports whether the spot can be pranked.
func (p *PrankSpot) Ready() bool { return !p.pranked }

// Alpha is the graffiti opacity: 1 right after the prank, fading to 0.
func (p *PrankSpot) Alpha() float64 {
	if p.cfg.Kind != PrankGraffiti || !p.pranked || p.cfg.FadeTime <= 0 {
		return 0
	}
	return 1 - float64(p.elapsed)/float64(p.cfg.FadeTime)
}

// Ringing reports whether a fire alarm is sounding.
func (p *PrankSpot) Ringing() bool {
	return p.cfg.Kind == PrankFireAlarm && p.pranked && p.elapsed < p.cfg.AlarmDuration
}

// Displaced reports whether a kicked object is waiting to respawn.
func (p *PrankSpot) Displaced() bool {
	return p.cfg.Kind == PrankKickObject && p.pranked
}
