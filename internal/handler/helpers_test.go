package handler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ugaemi/horsingaround-server/internal/level"
	"github.com/ugaemi/horsingaround-server/internal/session"
	"github.com/ugaemi/horsingaround-server/internal/ws"
)

const testLevel = `
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
pranks:
  - id: bin
    kind: kick_object
    position: [0, 0, 6]
`

func setupRouter(t *testing.T) (*Router, *session.Manager) {
	t.Helper()
	l, err := level.Parse([]byte(testLevel))
	require.NoError(t, err)

	sm := session.NewManager(session.Options{})
	t.Cleanup(sm.StopAll)
	return NewRouter(sm, level.NewCatalog(l)), sm
}

func newTestClient(id string) *ws.Client {
	return &ws.Client{
		ID:   id,
		Send: make(chan []byte, 256),
	}
}

func send(t *testing.T, router *Router, client *ws.Client, msgType string, payload any) {
	t.Helper()
	var data json.RawMessage
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		require.NoError(t, err)
	}
	raw, err := json.Marshal(ws.Message{Type: msgType, Data: data})
	require.NoError(t, err)
	router.HandleMessage(&ws.ClientMessage{Client: client, Data: raw})
}

// waitForType reads client messages until one of msgType arrives, skipping the rest.
func waitForType(t *testing.T, client *ws.Client, msgType string) ws.Message {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case data := <-client.Send:
			var msg ws.Message
			require.NoError(t, json.Unmarshal(data, &msg))
			if msg.Type == msgType {
				return msg
			}
		case <-timeout:
			t.Fatalf("timeout waiting for %s", msgType)
			return ws.Message{}
		}
	}
}

func errorText(t *testing.T, msg ws.Message) string {
	t.Helper()
	var payload ws.ErrorMessage
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	return payload.Message
}

func createSession(t *testing.T, router *Router, client *ws.Client) sessionResponse {
	t.Helper()
	send(t, router, client, ws.TypeCreateSession, createSessionRequest{Level: "alley"})
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(waitForType(t, client, ws.TypeCreateSession).Data, &resp))
	return resp
}
