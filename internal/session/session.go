package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ugaemi/horsingaround-server/internal/game"
	"github.com/ugaemi/horsingaround-server/internal/level"
	"github.com/ugaemi/horsingaround-server/internal/record"
	"github.com/ugaemi/horsingaround-server/internal/store"
	"github.com/ugaemi/horsingaround-server/internal/telemetry"
	"github.com/ugaemi/horsingaround-server/internal/ws"
)

// ErrNotPlaying is returned for gameplay input outside a running round.
var ErrNotPlaying = errors.New("session is not playing")

const saveTimeout = 5 * time.Second

// Options are the server-wide collaborators shared by every session.
type Options struct {
	Store  store.RoundStore
	Tracer trace.Tracer
}

// Session is one simulated round on a level, driven by a tick loop and watched by
// one or more clients. The first client is the UI root that receives game over.
type Session struct {
	Code     string
	level    *level.Level
	targetID string

	state State
	world *game.World

	clients  map[string]*ws.Client
	uiRootID string

	store     store.RoundStore
	tracer    trace.Tracer
	span      trace.Span
	startedAt time.Time

	// Tick loop control
	stopCh  chan struct{}
	running bool

	mu sync.RWMutex
}

// NewSession creates a session in the menu with a world built from lvl.
func NewSession(code string, lvl *level.Level, opts Options) (*Session, error) {
	s := &Session{
		Code:     code,
		level:    lvl,
		targetID: "target-" + code,
		state:    StateMenu,
		clients:  make(map[string]*ws.Client),
		store:    opts.Store,
		tracer:   opts.Tracer,
	}
	if s.tracer == nil {
		s.tracer = telemetry.NoopTracer()
	}

	if err := s.buildWorldLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// buildWorldLocked replaces the world with a fresh one. Caller must hold s.mu.
func (s *Session) buildWorldLocked() error {
	w, err := level.Build(s.level, s.targetID)
	if err != nil {
		return err
	}
	w.Round.OnGameOver = s.onGameOver
	if s.uiRootID != "" {
		w.Registry.Register(game.RoleUIRoot, s.uiRootID, game.Vec3{})
	}
	s.world = w
	return nil
}

// onGameOver runs inside World.Step while s.mu is held.
func (s *Session) onGameOver(cause game.Cause) {
	if s.span != nil {
		s.span.AddEvent("game_over", trace.WithAttributes(attribute.String("cause", cause.String())))
	}
}

// AddClient attaches a client. The first client becomes the UI root.
func (s *Session) AddClient(client *ws.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[client.ID] = client
	if s.uiRootID == "" {
		s.bindUIRootLocked(client.ID)
	}
}

// RemoveClient detaches a client, handing the UI root to another client if needed.
func (s *Session) RemoveClient(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.clients, clientID)
	if s.uiRootID != clientID {
		return
	}

	s.world.Registry.Remove(clientID)
	s.uiRootID = ""
	for id := range s.clients {
		s.bindUIRootLocked(id)
		break
	}
}

func (s *Session) bindUIRootLocked(clientID string) {
	s.uiRootID = clientID
	s.world.Registry.Register(game.RoleUIRoot, clientID, game.Vec3{})
}

// ClientCount returns the number of attached clients.
func (s *Session) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// IsEmpty returns true if no client is attached.
func (s *Session) IsEmpty() bool {
	return s.ClientCount() == 0
}

// HasClient reports whether the client is attached.
func (s *Session) HasClient(clientID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.clients[clientID]
	return ok
}

// UIRoot returns the ID of the client that receives game over.
func (s *Session) UIRoot() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uiRootID
}

// IsController reports whether the client drives the round. The UI root controls
// the target and the round lifecycle; other clients only watch.
func (s *Session) IsController(clientID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clientID != "" && s.uiRootID == clientID
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LevelName returns the name of the level being played.
func (s *Session) LevelName() string {
	return s.level.Name
}

// Start begins the round and the tick loop.
func (s *Session) Start() {
	s.StartRound()
	s.StartLoop()
}

// StartRound moves a session from the menu into a running round. The world only
// advances through Step, so tests can drive it without the loop.
func (s *Session) StartRound() {
	s.mu.Lock()
	if s.state != StateMenu {
		s.mu.Unlock()
		return
	}
	s.beginRoundLocked()
	s.mu.Unlock()

	s.broadcastInfo()
}

// beginRoundLocked marks the round as playing and opens its span. Caller must hold s.mu.
func (s *Session) beginRoundLocked() {
	s.state = StatePlaying
	s.startedAt = time.Now()
	_, s.span = s.tracer.Start(context.Background(), "round",
		trace.WithAttributes(
			attribute.String("session", s.Code),
			attribute.String("level", s.level.Name),
		),
	)
	slog.Info("round started", "session", s.Code, "level", s.level.Name)
}

// endSpanLocked closes the round span. Caller must hold s.mu.
func (s *Session) endSpanLocked(attrs ...attribute.KeyValue) {
	if s.span == nil {
		return
	}
	s.span.SetAttributes(attrs...)
	s.span.End()
	s.span = nil
}

// StartLoop starts the tick loop if it is not running.
func (s *Session) StartLoop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	go s.loop(s.stopCh)
}

// Stop stops the tick loop and abandons any open round span.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Session) stopLocked() {
	if s.running {
		close(s.stopCh)
		s.running = false
	}
	s.endSpanLocked(attribute.Bool("abandoned", true))
}

// Running reports whether the tick loop is running.
func (s *Session) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Session) loop(stopCh chan struct{}) {
	ticker := time.NewTicker(game.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.step(game.TickInterval, stopCh)
		}
	}
}

// Step advances the round by dt and sends feedback, the world state and, once, the
// game over message. Nothing happens outside a running round.
func (s *Session) Step(dt time.Duration) {
	s.step(dt, nil)
}

// step runs one tick. A loop tick that fires after stopCh is closed is dropped.
func (s *Session) step(dt time.Duration, stopCh chan struct{}) {
	s.mu.Lock()
	if s.state != StatePlaying || isClosed(stopCh) {
		s.mu.Unlock()
		return
	}

	s.world.Step(dt)
	events := s.world.Events.Drain()
	if s.span != nil {
		for _, e := range events {
			s.span.AddEvent(string(e.Kind), trace.WithAttributes(attribute.String("actor", e.ActorID)))
		}
	}

	var over *gameOverMessage
	var rec *record.Round
	var uiRoot string
	if s.world.Round.Triggered() {
		over, rec = s.finishRoundLocked()
		uiRoot, _ = s.world.Registry.Resolve(game.RoleUIRoot)
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	for _, e := range events {
		msg, _ := ws.NewMessage(ws.TypeFeedback, e)
		s.BroadcastMessage(msg)
	}

	msg, _ := ws.NewMessage(ws.TypeWorldState, snapshot)
	s.BroadcastMessage(msg)

	if over != nil {
		msg, _ := ws.NewMessage(ws.TypeGameOver, over)
		if uiRoot != "" {
			s.SendToClient(uiRoot, msg)
		} else {
			s.BroadcastMessage(msg)
		}
		s.saveRecord(rec)
	}
}

func isClosed(ch chan struct{}) bool {
	if ch == nil {
		return false
	}
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

type gameOverMessage struct {
	Cause game.Cause `json:"cause"`
	Score int        `json:"score"`
}

// finishRoundLocked closes a round the world has ended. Caller must hold s.mu.
func (s *Session) finishRoundLocked() (*gameOverMessage, *record.Round) {
	s.state = StateOver

	cause := s.world.Round.Cause()
	score := 0
	if s.world.Meter != nil {
		score = s.world.Meter.Score()
	}

	s.endSpanLocked(attribute.String("cause", cause.String()), attribute.Int("score", score))
	rec := record.NewRound(s.Code, s.level.Name, cause, score, s.world.Round.EndedAt(), s.startedAt)

	slog.Info("round finished", "session", s.Code, "cause", cause.String(), "score", score)
	return &gameOverMessage{Cause: cause, Score: score}, rec
}

func (s *Session) saveRecord(rec *record.Round) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := s.store.Save(ctx, rec); err != nil {
		slog.Error("failed to save round", "session", s.Code, "round", rec.ID, "error", err)
	}
}

// MoveTarget sets the target position reported by the client.
func (s *Session) MoveTarget(pos game.Vec3) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying {
		return ErrNotPlaying
	}
	return s.world.MoveTarget(pos)
}

// Prank performs the prank spot with the given id. It reports false when the spot is
// out of reach or still resetting.
func (s *Session) Prank(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying {
		return false, ErrNotPlaying
	}
	return s.world.PerformPrank(id)
}

// Restart rebuilds the world and starts a new round. The tick loop is left as it is.
func (s *Session) Restart() error {
	s.mu.Lock()
	s.endSpanLocked(attribute.Bool("abandoned", true))
	if err := s.buildWorldLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.beginRoundLocked()
	s.mu.Unlock()

	s.broadcastInfo()
	return nil
}

// Quit leaves the round. QuitToMenu rebuilds the world and waits in the menu;
// QuitExit stops the session for good.
func (s *Session) Quit(to QuitTarget) error {
	s.mu.Lock()
	s.stopLocked()
	if to == QuitToMenu {
		if err := s.buildWorldLocked(); err != nil {
			s.mu.Unlock()
			return err
		}
		s.state = StateMenu
	}
	s.mu.Unlock()

	slog.Info("session quit", "session", s.Code, "to", string(to))
	if to == QuitToMenu {
		s.broadcastInfo()
	}
	return nil
}

// Snapshot returns the current world view.
func (s *Session) Snapshot() WorldState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Info describes the session for session_info messages.
type Info struct {
	Code    string   `json:"code"`
	Level   string   `json:"level"`
	State   State    `json:"state"`
	UIRoot  string   `json:"ui_root"`
	Clients int      `json:"clients"`
	Pranks  []string `json:"pranks"`
}

// Info returns the session description.
func (s *Session) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pranks := make([]string, 0, len(s.world.Pranks))
	for _, p := range s.world.Pranks {
		pranks = append(pranks, p.ID)
	}
	return Info{
		Code:    s.Code,
		Level:   s.level.Name,
		State:   s.state,
		UIRoot:  s.uiRootID,
		Clients: len(s.clients),
		Pranks:  pranks,
	}
}

func (s *Session) broadcastInfo() {
	msg, _ := ws.NewMessage(ws.TypeSessionInfo, s.Info())
	s.BroadcastMessage(msg)
}

// BroadcastMessage sends a message to every attached client.
func (s *Session) BroadcastMessage(msg ws.Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, client := range s.clients {
		client.SendMessage(msg)
	}
}

// SendToClient sends a message to one attached client.
func (s *Session) SendToClient(clientID string, msg ws.Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if client, ok := s.clients[clientID]; ok {
		client.SendMessage(msg)
	}
}
