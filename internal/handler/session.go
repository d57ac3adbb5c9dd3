package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/ugaemi/horsingaround-server/internal/level"
	"github.com/ugaemi/horsingaround-server/internal/session"
	"github.com/ugaemi/horsingaround-server/internal/ws"
)

// SessionHandler handles session lifecycle messages.
type SessionHandler struct {
	sm      *session.Manager
	catalog *level.Catalog
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sm *session.Manager, catalog *level.Catalog) *SessionHandler {
	return &SessionHandler{
		sm:      sm,
		catalog: catalog,
	}
}

type createSessionRequest struct {
	Level string `json:"level"`
}

type sessionResponse struct {
	Code     string `json:"code"`
	ClientID string `json:"client_id"`
	Level    string `json:"level"`
}

// HandleCreateSession creates a session on the requested level and starts its round.
func (h *SessionHandler) HandleCreateSession(client *ws.Client, msg ws.Message) {
	var req createSessionRequest
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			client.SendMessage(ws.NewErrorMessage("invalid session request"))
			return
		}
	}
	if req.Level == "" {
		req.Level = level.DefaultName
	}

	if h.sm.FindSessionByClientID(client.ID) != nil {
		client.SendMessage(ws.NewErrorMessage("already in a session"))
		return
	}

	lvl, ok := h.catalog.Get(req.Level)
	if !ok {
		client.SendMessage(ws.NewErrorMessage("unknown level: " + req.Level))
		return
	}

	s, err := h.sm.CreateSession(lvl)
	if err != nil {
		slog.Error("failed to create session", "level", req.Level, "error", err)
		client.SendMessage(ws.NewErrorMessage("failed to create session"))
		return
	}
	s.AddClient(client)

	resp, _ := ws.NewMessage(ws.TypeCreateSession, sessionResponse{
		Code:     s.Code,
		ClientID: client.ID,
		Level:    s.LevelName(),
	})
	client.SendMessage(resp)

	s.Start()
	slog.Info("client created session", "client", client.ID, "session", s.Code)
}

type joinSessionRequest struct {
	Code string `json:"code"`
}

// HandleJoinSession attaches a client to an existing session as a spectator.
func (h *SessionHandler) HandleJoinSession(client *ws.Client, msg ws.Message) {
	var req joinSessionRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.Code == "" {
		client.SendMessage(ws.NewErrorMessage("code is required"))
		return
	}

	if h.sm.FindSessionByClientID(client.ID) != nil {
		client.SendMessage(ws.NewErrorMessage("already in a session"))
		return
	}

	s := h.sm.GetSession(req.Code)
	if s == nil {
		client.SendMessage(ws.NewErrorMessage("session not found"))
		return
	}
	s.AddClient(client)

	resp, _ := ws.NewMessage(ws.TypeJoinSession, sessionResponse{
		Code:     s.Code,
		ClientID: client.ID,
		Level:    s.LevelName(),
	})
	client.SendMessage(resp)

	info, _ := ws.NewMessage(ws.TypeSessionInfo, s.Info())
	s.BroadcastMessage(info)

	slog.Info("client joined session", "client", client.ID, "session", s.Code)
}

// HandleLeaveSession handles a client leaving its session.
func (h *SessionHandler) HandleLeaveSession(client *ws.Client, _ ws.Message) {
	h.removeClient(client)
}

// HandleDisconnect handles client disconnection.
func (h *SessionHandler) HandleDisconnect(client *ws.Client) {
	h.removeClient(client)
}

// HandleRestart starts a fresh round in the client's session. Only the controlling
// client may restart.
func (h *SessionHandler) HandleRestart(client *ws.Client, _ ws.Message) {
	s := controlledSession(h.sm, client)
	if s == nil {
		return
	}

	if err := s.Restart(); err != nil {
		slog.Error("failed to restart session", "session", s.Code, "error", err)
		client.SendMessage(ws.NewErrorMessage("failed to restart"))
		return
	}
	s.StartLoop()
	slog.Info("session restarted", "session", s.Code, "client", client.ID)
}

type quitRequest struct {
	Context string `json:"context"`
}

type quitResponse struct {
	Context string `json:"context"`
}

// HandleQuit returns the session to the menu or closes it. Only the controlling
// client may quit; spectators use leave_session.
func (h *SessionHandler) HandleQuit(client *ws.Client, msg ws.Message) {
	var req quitRequest
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			client.SendMessage(ws.NewErrorMessage("invalid quit request"))
			return
		}
	}

	to, err := session.ParseQuitTarget(req.Context)
	if err != nil {
		client.SendMessage(ws.NewErrorMessage(err.Error()))
		return
	}

	s := controlledSession(h.sm, client)
	if s == nil {
		return
	}

	if err := s.Quit(to); err != nil {
		slog.Error("failed to quit session", "session", s.Code, "error", err)
		client.SendMessage(ws.NewErrorMessage("failed to quit"))
		return
	}

	resp, _ := ws.NewMessage(ws.TypeQuit, quitResponse{Context: string(to)})
	if to == session.QuitExit {
		s.BroadcastMessage(resp)
		h.sm.RemoveSession(s.Code)
		return
	}
	client.SendMessage(resp)
}

func (h *SessionHandler) removeClient(client *ws.Client) {
	s := h.sm.FindSessionByClientID(client.ID)
	if s == nil {
		return
	}

	s.RemoveClient(client.ID)
	if s.IsEmpty() {
		h.sm.RemoveSession(s.Code)
	} else {
		info, _ := ws.NewMessage(ws.TypeSessionInfo, s.Info())
		s.BroadcastMessage(info)
	}
	slog.Info("client left session", "client", client.ID, "session", s.Code)
}
