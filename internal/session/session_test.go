package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugaemi/horsingaround-server/internal/game"
	"github.com/ugaemi/horsingaround-server/internal/level"
	"github.com/ugaemi/horsingaround-server/internal/record"
	"github.com/ugaemi/horsingaround-server/internal/ws"
)

const alleyLevel = `
name: alley
target:
  spawn: [0, 0, 5]
enforcers:
  - id: cop
    spawn: [0, 0, 0]
    waypoints: [[0, 0, 0], [10, 0, 0]]
witnesses:
  - id: granny
    position: [0, 0, 8]
    enforcer: cop
pranks:
  - id: bin
    kind: kick_object
    position: [0, 0, 6]
  - id: far-wall
    kind: graffiti
    position: [50, 0, 50]
`

const drainLevel = `
name: drain
target:
  spawn: [100, 0, 100]
meter:
  max: 1
  decay_rate: 10
`

// memStore is an in-memory RoundStore.
type memStore struct {
	mu     sync.Mutex
	rounds []*record.Round
}

func (s *memStore) Save(_ context.Context, r *record.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds = append(s.rounds, r)
	return nil
}

func (s *memStore) FindByID(_ context.Context, id string) (*record.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rounds {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (s *memStore) ListRecent(_ context.Context, limit int) ([]*record.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit > len(s.rounds) {
		limit = len(s.rounds)
	}
	return s.rounds[:limit], nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) saved() []*record.Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*record.Round(nil), s.rounds...)
}

// mockClient creates a ws.Client with a buffered Send channel for testing.
func mockClient(id string) *ws.Client {
	return &ws.Client{
		ID:   id,
		Send: make(chan []byte, 256),
	}
}

// drainMessages reads all pending messages from a client's send channel.
func drainMessages(client *ws.Client) []ws.Message {
	var msgs []ws.Message
	for {
		select {
		case data, ok := <-client.Send:
			if !ok {
				return msgs
			}
			var msg ws.Message
			if err := json.Unmarshal(data, &msg); err == nil {
				msgs = append(msgs, msg)
			}
		default:
			return msgs
		}
	}
}

// findMessageByType finds the first message of a given type.
func findMessageByType(msgs []ws.Message, msgType string) *ws.Message {
	for _, m := range msgs {
		if m.Type == msgType {
			return &m
		}
	}
	return nil
}

func parseLevel(t *testing.T, doc string) *level.Level {
	t.Helper()
	l, err := level.Parse([]byte(doc))
	require.NoError(t, err)
	return l
}

func setupTestSession(t *testing.T, doc string) (*Session, *memStore, []*ws.Client) {
	t.Helper()
	st := &memStore{}
	s, err := NewSession("TEST", parseLevel(t, doc), Options{Store: st})
	require.NoError(t, err)

	c1 := mockClient("client1")
	c2 := mockClient("client2")
	s.AddClient(c1)
	s.AddClient(c2)
	t.Cleanup(s.Stop)

	return s, st, []*ws.Client{c1, c2}
}

// stepUntilOver steps s until the round ends and returns everything each client received.
func stepUntilOver(t *testing.T, s *Session, clients []*ws.Client, maxTicks int) map[string][]ws.Message {
	t.Helper()
	received := make(map[string][]ws.Message)
	for i := 0; i < maxTicks && s.State() != StateOver; i++ {
		s.Step(game.TickInterval)
		for _, c := range clients {
			received[c.ID] = append(received[c.ID], drainMessages(c)...)
		}
	}
	require.Equal(t, StateOver, s.State(), "round did not end after %d ticks", maxTicks)
	return received
}

type gameOverPayload struct {
	Cause string `json:"cause"`
	Score int    `json:"score"`
}

func TestNewSession_StartsInMenu(t *testing.T) {
	s, _, _ := setupTestSession(t, alleyLevel)

	assert.Equal(t, StateMenu, s.State())
	assert.Equal(t, "alley", s.LevelName())
	assert.Equal(t, "client1", s.UIRoot())

	s.Step(game.TickInterval)
	assert.Equal(t, 0.0, s.Snapshot().Time, "menu does not tick")
}

func TestStep_ClosedClientIsSkipped(t *testing.T) {
	s, _, clients := setupTestSession(t, alleyLevel)
	s.StartRound()
	drainMessages(clients[1])

	// The hub closes a connection's channel while the session still lists it.
	clients[0].Close()

	assert.NotPanics(t, func() { s.Step(game.TickInterval) })
	assert.NotNil(t, findMessageByType(drainMessages(clients[1]), ws.TypeWorldState))
}

func TestSnapshot_IncludesPatrolArea(t *testing.T) {
	s, _, _ := setupTestSession(t, alleyLevel)

	snap := s.Snapshot()
	require.Len(t, snap.Enforcers, 1)
	area := snap.Enforcers[0].Area
	require.NotNil(t, area)
	assert.Equal(t, game.Vec3{X: 5}, area.Center)
	assert.InDelta(t, 5+game.DefaultChaseRange, area.Radius, 1e-9)
	assert.Equal(t, game.StatePatrolling, snap.Enforcers[0].State)
	assert.Len(t, snap.Witnesses, 1)
	assert.Len(t, snap.Pranks, 2)
}

func TestStartRound_BroadcastsSessionInfo(t *testing.T) {
	s, _, clients := setupTestSession(t, alleyLevel)
	s.StartRound()

	assert.Equal(t, StatePlaying, s.State())
	for _, c := range clients {
		info := findMessageByType(drainMessages(c), ws.TypeSessionInfo)
		require.NotNil(t, info)

		var payload Info
		require.NoError(t, json.Unmarshal(info.Data, &payload))
		assert.Equal(t, "TEST", payload.Code)
		assert.Equal(t, "alley", payload.Level)
		assert.Equal(t, []string{"bin", "far-wall"}, payload.Pranks)
	}
}

func TestStep_BroadcastsWorldState(t *testing.T) {
	s, _, clients := setupTestSession(t, alleyLevel)
	s.StartRound()
	drainMessages(clients[0])

	s.Step(game.TickInterval)

	msg := findMessageByType(drainMessages(clients[0]), ws.TypeWorldState)
	require.NotNil(t, msg)

	var st struct {
		State     string  `json:"state"`
		Time      float64 `json:"time"`
		Target    *game.Vec3
		Enforcers []struct {
			ID    string `json:"id"`
			State string `json:"state"`
		} `json:"enforcers"`
		Meter *MeterEntry `json:"meter"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &st))
	assert.Equal(t, "playing", st.State)
	assert.InDelta(t, game.TickInterval.Seconds(), st.Time, 1e-9)
	require.NotNil(t, st.Target)
	assert.Equal(t, game.Vec3{Z: 5}, *st.Target)
	require.Len(t, st.Enforcers, 1)
	assert.Equal(t, "patrolling", st.Enforcers[0].State)
	require.NotNil(t, st.Meter)
	assert.Less(t, st.Meter.Level, st.Meter.Max)
}

func TestPrank_WitnessCallsPoliceAndRoundEndsInCatch(t *testing.T) {
	s, st, clients := setupTestSession(t, alleyLevel)
	s.StartRound()

	ok, err := s.Prank("bin")
	require.NoError(t, err)
	require.True(t, ok)

	received := stepUntilOver(t, s, clients, 5*game.TickRate)

	over := findMessageByType(received["client1"], ws.TypeGameOver)
	require.NotNil(t, over, "UI root receives game over")
	assert.Nil(t, findMessageByType(received["client2"], ws.TypeGameOver))

	var payload gameOverPayload
	require.NoError(t, json.Unmarshal(over.Data, &payload))
	assert.Equal(t, "caught", payload.Cause)
	assert.Greater(t, payload.Score, 0)

	var kinds []string
	for _, m := range received["client2"] {
		if m.Type != ws.TypeFeedback {
			continue
		}
		var e struct {
			Kind string `json:"kind"`
		}
		require.NoError(t, json.Unmarshal(m.Data, &e))
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, string(game.EventPoliceCalled))
	assert.Contains(t, kinds, string(game.EventEnteredChase))
	assert.Contains(t, kinds, string(game.EventCaught))

	saved := st.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, "TEST", saved[0].SessionCode)
	assert.Equal(t, "alley", saved[0].Level)
	assert.Equal(t, "caught", saved[0].Cause)
	assert.Equal(t, payload.Score, saved[0].Score)
}

func TestRoundOver_FreezesAndSendsGameOverOnce(t *testing.T) {
	s, st, clients := setupTestSession(t, drainLevel)
	s.StartRound()

	received := stepUntilOver(t, s, clients, game.TickRate)
	over := findMessageByType(received["client1"], ws.TypeGameOver)
	require.NotNil(t, over)

	var payload gameOverPayload
	require.NoError(t, json.Unmarshal(over.Data, &payload))
	assert.Equal(t, "meter_depleted", payload.Cause)
	assert.Equal(t, 0, payload.Score)

	frozenAt := s.Snapshot().Time
	for i := 0; i < 10; i++ {
		s.Step(game.TickInterval)
	}
	assert.Equal(t, frozenAt, s.Snapshot().Time)
	assert.Empty(t, drainMessages(clients[0]))
	assert.Len(t, st.saved(), 1)
}

func TestMoveTarget(t *testing.T) {
	s, _, _ := setupTestSession(t, alleyLevel)

	assert.ErrorIs(t, s.MoveTarget(game.Vec3{X: 1}), ErrNotPlaying)

	s.StartRound()
	require.NoError(t, s.MoveTarget(game.Vec3{X: 3, Z: 4}))
	assert.Equal(t, game.Vec3{X: 3, Z: 4}, *s.Snapshot().Target)
}

func TestPrank_Errors(t *testing.T) {
	s, _, _ := setupTestSession(t, alleyLevel)

	_, err := s.Prank("bin")
	assert.ErrorIs(t, err, ErrNotPlaying)

	s.StartRound()
	ok, err := s.Prank("far-wall")
	require.NoError(t, err)
	assert.False(t, ok, "out of reach")

	_, err = s.Prank("nope")
	assert.ErrorIs(t, err, game.ErrMissingCollaborator)
}

func TestInputAfterGameOverIsRejected(t *testing.T) {
	s, _, clients := setupTestSession(t, drainLevel)
	s.StartRound()
	stepUntilOver(t, s, clients, game.TickRate)

	assert.ErrorIs(t, s.MoveTarget(game.Vec3{}), ErrNotPlaying)
	_, err := s.Prank("anything")
	assert.ErrorIs(t, err, ErrNotPlaying)
}

func TestRestart_RebuildsWorld(t *testing.T) {
	s, st, clients := setupTestSession(t, drainLevel)
	s.StartRound()
	stepUntilOver(t, s, clients, game.TickRate)

	require.NoError(t, s.Restart())

	assert.Equal(t, StatePlaying, s.State())
	snap := s.Snapshot()
	assert.Equal(t, 0.0, snap.Time)
	assert.Equal(t, game.Vec3{X: 100, Z: 100}, *snap.Target)
	assert.Equal(t, 1.0, snap.Meter.Level)

	s.Step(game.TickInterval)
	assert.InDelta(t, game.TickInterval.Seconds(), s.Snapshot().Time, 1e-9)

	stepUntilOver(t, s, clients, game.TickRate)
	assert.Len(t, st.saved(), 2)
}

func TestRestart_KeepsUIRoot(t *testing.T) {
	s, _, clients := setupTestSession(t, drainLevel)
	s.StartRound()
	require.NoError(t, s.Restart())

	received := stepUntilOver(t, s, clients, game.TickRate)
	assert.NotNil(t, findMessageByType(received["client1"], ws.TypeGameOver))
}

func TestQuit(t *testing.T) {
	s, _, _ := setupTestSession(t, alleyLevel)
	s.Start()
	require.True(t, s.Running())

	require.NoError(t, s.Quit(QuitToMenu))
	assert.Equal(t, StateMenu, s.State())
	assert.False(t, s.Running())
	assert.Equal(t, 0.0, s.Snapshot().Time)

	s.Start()
	require.NoError(t, s.Quit(QuitExit))
	assert.False(t, s.Running())
}

func TestParseQuitTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    QuitTarget
		wantErr bool
	}{
		{"menu", QuitToMenu, false},
		{"exit", QuitExit, false},
		{"", QuitExit, false},
		{"desktop", "", true},
	}
	for _, tt := range tests {
		got, err := ParseQuitTarget(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestRemoveClient_HandsOverUIRoot(t *testing.T) {
	s, _, clients := setupTestSession(t, drainLevel)

	s.RemoveClient("client1")
	assert.Equal(t, "client2", s.UIRoot())
	assert.Equal(t, 1, s.ClientCount())

	s.StartRound()
	received := stepUntilOver(t, s, clients[1:], game.TickRate)
	assert.NotNil(t, findMessageByType(received["client2"], ws.TypeGameOver))

	s.RemoveClient("client2")
	assert.True(t, s.IsEmpty())
	assert.Empty(t, s.UIRoot())
}

func TestLoop_TicksWorld(t *testing.T) {
	s, _, _ := setupTestSession(t, alleyLevel)
	s.Start()

	require.Eventually(t, func() bool {
		return s.Snapshot().Time > 0
	}, time.Second, 10*time.Millisecond)

	s.Stop()
	s.Stop()
	assert.False(t, s.Running())

	stoppedAt := s.Snapshot().Time
	time.Sleep(3 * game.TickInterval)
	assert.Equal(t, stoppedAt, s.Snapshot().Time, "no tick after Stop")
}
