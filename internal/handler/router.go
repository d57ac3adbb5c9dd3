package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/ugaemi/horsingaround-server/internal/level"
	"github.com/ugaemi/horsingaround-server/internal/session"
	"github.com/ugaemi/horsingaround-server/internal/ws"
)

// Router dispatches incoming messages to the appropriate handler.
type Router struct {
	sessions *SessionHandler
	gameplay *GameplayHandler
}

// NewRouter creates a new message router.
func NewRouter(sm *session.Manager, catalog *level.Catalog) *Router {
	return &Router{
		sessions: NewSessionHandler(sm, catalog),
		gameplay: NewGameplayHandler(sm),
	}
}

// HandleMessage parses and routes an incoming client message.
func (r *Router) HandleMessage(cm *ws.ClientMessage) {
	var msg ws.Message
	if err := json.Unmarshal(cm.Data, &msg); err != nil {
		slog.Warn("invalid message format", "client", cm.Client.ID, "error", err)
		cm.Client.SendMessage(ws.NewErrorMessage("invalid message format"))
		return
	}

	switch msg.Type {
	// Session messages
	case ws.TypeCreateSession:
		r.sessions.HandleCreateSession(cm.Client, msg)
	case ws.TypeJoinSession:
		r.sessions.HandleJoinSession(cm.Client, msg)
	case ws.TypeLeaveSession:
		r.sessions.HandleLeaveSession(cm.Client, msg)
	case ws.TypeRestart:
		r.sessions.HandleRestart(cm.Client, msg)
	case ws.TypeQuit:
		r.sessions.HandleQuit(cm.Client, msg)

	// Gameplay messages
	case ws.TypeTargetMove:
		r.gameplay.HandleTargetMove(cm.Client, msg)
	case ws.TypePerformPrank:
		r.gameplay.HandlePerformPrank(cm.Client, msg)

	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", cm.Client.ID)
		cm.Client.SendMessage(ws.NewErrorMessage("unknown message type: " + msg.Type))
	}
}

// HandleDisconnect handles client disconnection.
func (r *Router) HandleDisconnect(client *ws.Client) {
	r.sessions.HandleDisconnect(client)
}
