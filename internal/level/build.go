package level

import (
	"fmt"

	"github.com/ugaemi/horsingaround-server/internal/game"
)

// Build validates l and wires a fresh world for it. The target is registered under targetID.
func Build(l *Level, targetID string) (*game.World, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if targetID == "" {
		return nil, fmt.Errorf("empty target id: %w", game.ErrInvalidConfiguration)
	}

	w := game.NewWorld()
	w.Registry.Register(game.RoleTarget, targetID, l.Target.Spawn.Vec())
	target := w.Target()

	w.Meter = game.NewChaosMeter(meterConfig(l.Meter), w.Round, w.Clock, w.Events)

	for _, def := range l.Enforcers {
		e := game.NewEnforcer(def.ID, enforcerConfig(def), def.Spawn.Vec(), game.EnforcerDeps{
			Mover:    newMover(def.Mover),
			Target:   target,
			Clock:    w.Clock,
			Sink:     w.Round,
			Notifier: w.Events,
		})
		w.Enforcers = append(w.Enforcers, e)
	}

	for _, def := range l.Witnesses {
		pos := def.Position.Vec()
		ws := game.NewWitnessSensor(def.ID, pos, witnessConfig(def), policeFor(w, def, pos), target, w.Clock, w.Events)
		w.Witnesses = append(w.Witnesses, ws)
	}

	for _, def := range l.Pranks {
		cfg, err := prankConfig(def)
		if err != nil {
			return nil, err
		}
		w.Pranks = append(w.Pranks, game.NewPrankSpot(def.ID, def.Position.Vec(), cfg, w.Clock, w.Events))
	}

	return w, nil
}

// policeFor picks the enforcer a witness reports to. A nil Alerter leaves the witness
// unbound so it retries every tick.
func policeFor(w *game.World, def WitnessDef, pos game.Vec3) game.Alerter {
	var e *game.Enforcer
	if def.Enforcer != "" {
		e = w.Enforcer(def.Enforcer)
	} else {
		e = game.NearestEnforcer(pos, w.Enforcers)
	}
	if e == nil {
		return nil
	}
	return e
}

func newMover(kind string) game.Mover {
	if kind == MoverNav {
		return game.NewNavMover(game.StraightPlanner{})
	}
	return game.NewSteeringMover()
}

func enforcerConfig(def EnforcerDef) game.EnforcerConfig {
	cfg := game.DefaultEnforcerConfig()
	for _, wp := range def.Waypoints {
		cfg.Waypoints = append(cfg.Waypoints, wp.Vec())
	}
	setIfPositive(&cfg.PatrolSpeed, def.PatrolSpeed)
	setIfPositive(&cfg.ChaseSpeed, def.ChaseSpeed)
	setIfPositive(&cfg.DetectionRange, def.DetectionRange)
	setIfPositive(&cfg.ChaseRange, def.ChaseRange)
	setIfPositive(&cfg.CatchDistance, def.CatchDistance)
	return cfg
}

func witnessConfig(def WitnessDef) game.WitnessConfig {
	cfg := game.DefaultWitnessConfig()
	setIfPositive(&cfg.DetectionRange, def.DetectionRange)
	if def.AlertDelay > 0 {
		cfg.AlertDelay = def.AlertDelay
	}
	return cfg
}

func meterConfig(def *MeterDef) game.MeterConfig {
	cfg := game.DefaultMeterConfig()
	if def == nil {
		return cfg
	}
	setIfPositive(&cfg.Max, def.Max)
	setIfPositive(&cfg.DecayRate, def.DecayRate)
	setIfPositive(&cfg.PrankReward, def.PrankReward)
	return cfg
}

func prankConfig(def PrankDef) (game.PrankConfig, error) {
	kind, err := game.ParsePrankKind(def.Kind)
	if err != nil {
		return game.PrankConfig{}, err
	}
	cfg := game.DefaultPrankConfig(kind)
	setIfPositive(&cfg.Radius, def.Radius)
	if def.FadeTime > 0 {
		cfg.FadeTime = def.FadeTime
	}
	if def.AlarmDuration > 0 {
		cfg.AlarmDuration = def.AlarmDuration
	}
	if def.RespawnTime > 0 {
		cfg.RespawnTime = def.RespawnTime
	}
	return cfg, nil
}

func setIfPositive(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}
