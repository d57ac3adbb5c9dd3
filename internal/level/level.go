// Package level loads level definitions from YAML and builds simulation worlds from them.
package level

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ugaemi/horsingaround-server/internal/game"
)

// Point is a position written as a [x, y, z] sequence.
type Point []float64

// Vec converts the point to a game vector.
func (p Point) Vec() game.Vec3 {
	var v game.Vec3
	if len(p) > 0 {
		v.X = p[0]
	}
	if len(p) > 1 {
		v.Y = p[1]
	}
	if len(p) > 2 {
		v.Z = p[2]
	}
	return v
}

// Level is one playable map: where the target starts and every agent placed around it.
type Level struct {
	Name      string        `yaml:"name"`
	Target    TargetDef     `yaml:"target"`
	Meter     *MeterDef     `yaml:"meter,omitempty"`
	Enforcers []EnforcerDef `yaml:"enforcers"`
	Witnesses []WitnessDef  `yaml:"witnesses"`
	Pranks    []PrankDef    `yaml:"pranks"`
}

type TargetDef struct {
	Spawn Point `yaml:"spawn"`
}

// MeterDef tunes the chaos meter. Zero fields take the stock values.
type MeterDef struct {
	Max         float64 `yaml:"max"`
	DecayRate   float64 `yaml:"decay_rate"`
	PrankReward float64 `yaml:"prank_reward"`
}

// Mover backends an enforcer can be given.
const (
	MoverSteering = "steering"
	MoverNav      = "nav"
)

// EnforcerDef places an enforcer. Zero speeds and ranges take the stock values.
type EnforcerDef struct {
	ID             string  `yaml:"id"`
	Mover          string  `yaml:"mover,omitempty"`
	Spawn          Point   `yaml:"spawn"`
	Waypoints      []Point `yaml:"waypoints"`
	PatrolSpeed    float64 `yaml:"patrol_speed,omitempty"`
	ChaseSpeed     float64 `yaml:"chase_speed,omitempty"`
	DetectionRange float64 `yaml:"detection_range,omitempty"`
	ChaseRange     float64 `yaml:"chase_range,omitempty"`
	CatchDistance  float64 `yaml:"catch_distance,omitempty"`
}

// WitnessDef places a witness. Without an explicit enforcer it reports to the nearest one.
type WitnessDef struct {
	ID             string        `yaml:"id"`
	Position       Point         `yaml:"position"`
	DetectionRange float64       `yaml:"detection_range,omitempty"`
	AlertDelay     time.Duration `yaml:"alert_delay,omitempty"`
	Enforcer       string        `yaml:"enforcer,omitempty"`
}

type PrankDef struct {
	ID            string        `yaml:"id"`
	Kind          string        `yaml:"kind"`
	Position      Point         `yaml:"position"`
	Radius        float64       `yaml:"radius,omitempty"`
	FadeTime      time.Duration `yaml:"fade_time,omitempty"`
	AlarmDuration time.Duration `yaml:"alarm_duration,omitempty"`
	RespawnTime   time.Duration `yaml:"respawn_time,omitempty"`
}

// Parse decodes and validates a level document.
func Parse(data []byte) (*Level, error) {
	var l Level
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// LoadFile reads a level from disk.
func LoadFile(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks the level for authoring mistakes. An enforcer without waypoints is
// allowed and stays idle in the world.
func (l *Level) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format+": %w", append(args, game.ErrInvalidConfiguration)...))
	}

	if l.Name == "" {
		invalid("level has no name")
	}
	if !validPoint(l.Target.Spawn) {
		invalid("target spawn must be [x, y, z]")
	}
	if l.Meter != nil && (l.Meter.Max < 0 || l.Meter.DecayRate < 0 || l.Meter.PrankReward < 0) {
		invalid("meter values must not be negative")
	}

	ids := make(map[string]bool)
	claim := func(kind, id string) {
		if id == "" {
			invalid("%s without id", kind)
			return
		}
		if ids[id] {
			invalid("duplicate id %q", id)
		}
		ids[id] = true
	}

	enforcers := make(map[string]bool, len(l.Enforcers))
	for _, e := range l.Enforcers {
		claim("enforcer", e.ID)
		enforcers[e.ID] = true
		if e.Mover != "" && e.Mover != MoverSteering && e.Mover != MoverNav {
			invalid("enforcer %q: unknown mover %q", e.ID, e.Mover)
		}
		if !validPoint(e.Spawn) {
			invalid("enforcer %q: spawn must be [x, y, z]", e.ID)
		}
		for i, wp := range e.Waypoints {
			if !validPoint(wp) {
				invalid("enforcer %q: waypoint %d must be [x, y, z]", e.ID, i)
			}
		}
		if e.PatrolSpeed < 0 || e.ChaseSpeed < 0 || e.DetectionRange < 0 || e.ChaseRange < 0 || e.CatchDistance < 0 {
			invalid("enforcer %q: speeds and ranges must not be negative", e.ID)
		}
	}

	for _, w := range l.Witnesses {
		claim("witness", w.ID)
		if !validPoint(w.Position) {
			invalid("witness %q: position must be [x, y, z]", w.ID)
		}
		if w.DetectionRange < 0 || w.AlertDelay < 0 {
			invalid("witness %q: range and delay must not be negative", w.ID)
		}
		if w.Enforcer != "" && !enforcers[w.Enforcer] {
			invalid("witness %q: unknown enforcer %q", w.ID, w.Enforcer)
		}
	}

	for _, p := range l.Pranks {
		claim("prank", p.ID)
		if _, err := game.ParsePrankKind(p.Kind); err != nil {
			errs = append(errs, fmt.Errorf("prank %q: %w", p.ID, err))
		}
		if !validPoint(p.Position) {
			invalid("prank %q: position must be [x, y, z]", p.ID)
		}
		if p.Radius < 0 {
			invalid("prank %q: radius must not be negative", p.ID)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("level %q: %w", l.Name, errors.Join(errs...))
	}
	return nil
}

func validPoint(p Point) bool {
	return len(p) == 3
}
