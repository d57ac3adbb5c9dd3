package handler

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/ugaemi/horsingaround-server/internal/game"
	"github.com/ugaemi/horsingaround-server/internal/session"
	"github.com/ugaemi/horsingaround-server/internal/ws"
)

const errNotController = "only the controlling client can do that"

// GameplayHandler handles in-round input from the client controlling the target.
type GameplayHandler struct {
	sm *session.Manager
}

// NewGameplayHandler creates a new gameplay handler.
func NewGameplayHandler(sm *session.Manager) *GameplayHandler {
	return &GameplayHandler{sm: sm}
}

type targetMoveRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandleTargetMove updates the target position reported by the client.
func (h *GameplayHandler) HandleTargetMove(client *ws.Client, msg ws.Message) {
	var req targetMoveRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		client.SendMessage(ws.NewErrorMessage("invalid move data"))
		return
	}

	s := controlledSession(h.sm, client)
	if s == nil {
		return
	}

	if err := s.MoveTarget(game.Vec3{X: req.X, Y: req.Y, Z: req.Z}); err != nil {
		client.SendMessage(ws.NewErrorMessage(inputError(err)))
		return
	}

	slog.Debug("target moved", "session", s.Code, "x", req.X, "y", req.Y, "z", req.Z)
}

type performPrankRequest struct {
	PrankID string `json:"prank_id"`
}

type performPrankResponse struct {
	PrankID   string `json:"prank_id"`
	Performed bool   `json:"performed"`
}

// HandlePerformPrank pranks a spot near the target.
func (h *GameplayHandler) HandlePerformPrank(client *ws.Client, msg ws.Message) {
	var req performPrankRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.PrankID == "" {
		client.SendMessage(ws.NewErrorMessage("prank_id is required"))
		return
	}

	s := controlledSession(h.sm, client)
	if s == nil {
		return
	}

	performed, err := s.Prank(req.PrankID)
	if err != nil {
		client.SendMessage(ws.NewErrorMessage(inputError(err)))
		return
	}

	resp, _ := ws.NewMessage(ws.TypePerformPrank, performPrankResponse{
		PrankID:   req.PrankID,
		Performed: performed,
	})
	client.SendMessage(resp)
}

// controlledSession returns the client's session if the client controls it, replying
// with an error otherwise.
func controlledSession(sm *session.Manager, client *ws.Client) *session.Session {
	s := sm.FindSessionByClientID(client.ID)
	if s == nil {
		client.SendMessage(ws.NewErrorMessage("not in a session"))
		return nil
	}
	if !s.IsController(client.ID) {
		slog.Debug("rejected input from spectator", "session", s.Code, "client", client.ID)
		client.SendMessage(ws.NewErrorMessage(errNotController))
		return nil
	}
	return s
}

func inputError(err error) string {
	switch {
	case errors.Is(err, session.ErrNotPlaying):
		return "round is not in progress"
	case errors.Is(err, game.ErrMissingCollaborator):
		return "not found"
	default:
		return err.Error()
	}
}
