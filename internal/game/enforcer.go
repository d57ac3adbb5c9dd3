package game

import (
	"encoding/json"
	"log/slog"
	"time"
)

// EnforcerState is the active behaviour of an enforcer.
type EnforcerState int

const (
	StatePatrolling EnforcerState = iota
	StateInvestigating
	StateChasing
	StateReturning
)

func (s EnforcerState) String() string {
	switch s {
	case StatePatrolling:
		return "patrolling"
	case StateInvestigating:
		return "investigating"
	case StateChasing:
		return "chasing"
	case StateReturning:
		return "returning"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes EnforcerState as a string.
func (s EnforcerState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// EnforcerConfig holds the tuning of a single enforcer.
type EnforcerConfig struct {
	Waypoints      []Vec3
	PatrolSpeed    float64
	ChaseSpeed     float64
	DetectionRange float64
	ChaseRange     float64
	CatchDistance  float64
}

// DefaultEnforcerConfig returns the stock tuning with no waypoints.
func DefaultEnforcerConfig() EnforcerConfig {
	return EnforcerConfig{
		PatrolSpeed:    DefaultPatrolSpeed,
		ChaseSpeed:     DefaultChaseSpeed,
		DetectionRange: DefaultDetectionRange,
		ChaseRange:     DefaultChaseRange,
		CatchDistance:  DefaultCatchDistance,
	}
}

// EnforcerDeps are the collaborators wired into an enforcer at construction.
type EnforcerDeps struct {
	Mover    Mover
	Target   TargetRef
	Clock    *Clock
	Sink     GameOverSink
	Notifier Notifier
}

// AlertRecord is the most recent alert an enforcer acted on.
type AlertRecord struct {
	LastKnownTargetPosition Vec3          `json:"last_known_target_position"`
	RaisedAt                time.Duration `json:"raised_at"`
}

// Enforcer is a guard that patrols waypoints, chases alerted targets inside its
// patrol area and ends the round when it reaches one.
type Enforcer struct {
	ID string

	cfg       EnforcerConfig
	waypoints []Vec3
	area      PatrolArea
	hasArea   bool

	body        Body
	state       EnforcerState
	patrolIndex int
	speed       float64
	indicator   bool
	alert       *AlertRecord
	caught      bool

	mover    Mover
	target   TargetRef
	clock    *Clock
	sink     GameOverSink
	notifier Notifier
}

// NewEnforcer creates an enforcer standing at spawn. An empty waypoint set is logged
// and leaves the enforcer without patrol movement or a patrol area.
func NewEnforcer(id string, cfg EnforcerConfig, spawn Vec3, deps EnforcerDeps) *Enforcer {
	e := &Enforcer{
		ID:       id,
		cfg:      cfg,
		body:     Body{Position: spawn},
		state:    StatePatrolling,
		speed:    cfg.PatrolSpeed,
		mover:    deps.Mover,
		target:   deps.Target,
		clock:    deps.Clock,
		sink:     deps.Sink,
		notifier: deps.Notifier,
	}
	if e.mover == nil {
		e.mover = NewSteeringMover()
	}
	if e.clock == nil {
		e.clock = &Clock{}
	}
	if e.notifier == nil {
		e.notifier = nopNotifier{}
	}

	if err := e.SetWaypoints(cfg.Waypoints); err != nil {
		slog.Warn("enforcer has no patrol route, staying idle", "enforcer", id, "error", err)
	}
	return e
}

// SetWaypoints replaces the patrol route and recomputes the patrol area before the
// next tick can read it.
func (e *Enforcer) SetWaypoints(waypoints []Vec3) error {
	area, err := ComputePatrolArea(waypoints, e.cfg.ChaseRange)
	if err != nil {
		e.waypoints = nil
		e.area = PatrolArea{}
		e.hasArea = false
		e.patrolIndex = 0
		return err
	}

	e.waypoints = append([]Vec3(nil), waypoints...)
	e.area = area
	e.hasArea = true
	e.patrolIndex = 0
	return nil
}

// Alert escalates the enforcer into a chase toward pos. It is ignored while
// already chasing.
func (e *Enforcer) Alert(pos Vec3) {
	if e.caught || e.state == StateChasing {
		return
	}

	e.alert = &AlertRecord{LastKnownTargetPosition: pos, RaisedAt: e.clock.Now()}
	e.setState(StateChasing)
	e.speed = e.cfg.ChaseSpeed
	e.indicator = true
	e.notify(EventEnteredChase)

	slog.Info("enforcer alerted", "enforcer", e.ID, "x", pos.X, "y", pos.Y, "z", pos.Z)
}

// Tick advances the enforcer by dt.
func (e *Enforcer) Tick(dt time.Duration) {
	if e.caught || dt <= 0 {
		return
	}

	if e.state == StateChasing && e.tryCatch() {
		return
	}

	switch e.state {
	case StatePatrolling:
		e.patrol(dt)
	case StateInvestigating:
		e.investigate(dt)
	case StateChasing:
		e.chase(dt)
	case StateReturning:
		e.returnToPatrol(dt)
	}
}

func (e *Enforcer) patrol(dt time.Duration) {
	if len(e.waypoints) == 0 {
		return
	}

	res := e.mover.MoveToward(&e.body, e.waypoints[e.patrolIndex], e.cfg.PatrolSpeed, dt)
	if res.Arrived {
		e.patrolIndex = (e.patrolIndex + 1) % len(e.waypoints)
	}
}

func (e *Enforcer) investigate(dt time.Duration) {
	if pos, err := e.target.Position(); err == nil {
		if Distance(e.body.Position, pos) <= e.cfg.DetectionRange {
			e.Alert(pos)
			return
		}
	}

	if e.alert == nil {
		e.enterReturning()
		return
	}

	res := e.mover.MoveToward(&e.body, e.alert.LastKnownTargetPosition, e.cfg.PatrolSpeed, dt)
	if res.Arrived || !res.HasPath {
		e.enterReturning()
	}
}

func (e *Enforcer) chase(dt time.Duration) {
	// Leaving the patrol area outranks losing sight of the target.
	if e.hasArea && !e.area.Contains(e.body.Position) {
		slog.Info("target escaped patrol area", "enforcer", e.ID)
		e.enterReturning()
		return
	}

	pos, err := e.target.Position()
	if err != nil {
		slog.Debug("enforcer lost target reference", "enforcer", e.ID, "error", err)
		e.loseTarget()
		return
	}
	if Distance(e.body.Position, pos) > e.cfg.ChaseRange {
		slog.Info("target too far, investigating last position", "enforcer", e.ID)
		e.loseTarget()
		return
	}

	if e.alert == nil {
		e.alert = &AlertRecord{RaisedAt: e.clock.Now()}
	}
	e.alert.LastKnownTargetPosition = pos
	e.mover.MoveToward(&e.body, pos, e.cfg.ChaseSpeed, dt)
}

func (e *Enforcer) returnToPatrol(dt time.Duration) {
	if len(e.waypoints) == 0 {
		e.resumePatrol()
		return
	}

	nearest := e.nearestWaypoint()
	e.patrolIndex = nearest

	res := e.mover.MoveToward(&e.body, e.waypoints[nearest], e.cfg.PatrolSpeed, dt)
	if res.Arrived {
		e.patrolIndex = (nearest + 1) % len(e.waypoints)
		e.resumePatrol()
	}
}

// tryCatch ends the round if the target is within catch distance. Movers only travel
// on the ground plane, so height is ignored.
func (e *Enforcer) tryCatch() bool {
	pos, err := e.target.Position()
	if err != nil {
		return false
	}
	if GroundDistance(e.body.Position, pos) > e.cfg.CatchDistance {
		return false
	}

	e.caught = true
	e.body.Stopped = true
	e.notify(EventCaught)
	slog.Info("target caught", "enforcer", e.ID)

	if e.sink != nil {
		e.sink.Trigger(CauseCaught)
	}
	return true
}

func (e *Enforcer) loseTarget() {
	e.setState(StateInvestigating)
	e.speed = e.cfg.PatrolSpeed
	e.notify(EventLostTarget)
}

// enterReturning heads back to the route and calms down.
func (e *Enforcer) enterReturning() {
	e.setState(StateReturning)
	e.speed = e.cfg.PatrolSpeed
	e.indicator = false
	e.notify(EventCalmedDown)
	slog.Info("enforcer calmed down, returning to patrol", "enforcer", e.ID)
}

func (e *Enforcer) resumePatrol() {
	e.setState(StatePatrolling)
	e.speed = e.cfg.PatrolSpeed
	e.alert = nil
	e.notify(EventResumedPatrol)
}

func (e *Enforcer) nearestWaypoint() int {
	nearest := 0
	best := Distance(e.body.Position, e.waypoints[0])
	for i := 1; i < len(e.waypoints); i++ {
		if d := Distance(e.body.Position, e.waypoints[i]); d < best {
			best = d
			nearest = i
		}
	}
	return nearest
}

func (e *Enforcer) setState(s EnforcerState) {
	if e.state != s {
		slog.Debug("enforcer state change", "enforcer", e.ID, "from", e.state.String(), "to", s.String())
	}
	e.state = s
}

func (e *Enforcer) notify(kind EventKind) {
	e.notifier.Notify(Event{
		Kind:     kind,
		ActorID:  e.ID,
		State:    e.state.String(),
		Position: e.body.Position,
		At:       e.clock.Now(),
	})
}

func (e *Enforcer) State() EnforcerState { return e.state }

// LastAlert returns the current alert record, or nil when none is active.
func (e *Enforcer) LastAlert() *AlertRecord {
	if e.alert == nil {
		return nil
	}
	rec := *e.alert
	return &rec
}

func (e *Enforcer) Area() (PatrolArea, bool) { return e.area, e.hasArea }

func (e *Enforcer) Position() Vec3 { return e.body.Position }

// Body returns a copy of the enforcer's kinematic state.
func (e *Enforcer) Body() Body { return e.body }

func (e *Enforcer) Speed() float64 { return e.speed }

// IndicatorOn reports whether the alert indicator is showing.
func (e *Enforcer) IndicatorOn() bool { return e.indicator }

func (e *Enforcer) Caught() bool { return e.caught }

func (e *Enforcer) PatrolIndex() int { return e.patrolIndex }

// NearestEnforcer returns the enforcer closest to pos, or nil if there are none.
func NearestEnforcer(pos Vec3, enforcers []*Enforcer) *Enforcer {
	var nearest *Enforcer
	best := 0.0
	for _, e := range enforcers {
		d := Distance(pos, e.body.Position)
		if nearest == nil || d < best {
			nearest = e
			best = d
		}
	}
	return nearest
}
