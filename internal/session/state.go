package session

import (
	"encoding/json"
	"fmt"
)

// State is where a session is in its round lifecycle.
type State int

const (
	StateMenu State = iota
	StatePlaying
	StateOver
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StatePlaying:
		return "playing"
	case StateOver:
		return "over"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes State as a string.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// QuitTarget says what quitting leads to.
type QuitTarget string

const (
	// QuitToMenu abandons the round and waits in the menu.
	QuitToMenu QuitTarget = "menu"
	// QuitExit closes the session.
	QuitExit QuitTarget = "exit"
)

// ParseQuitTarget parses the context of a quit request. An empty context exits.
func ParseQuitTarget(s string) (QuitTarget, error) {
	switch QuitTarget(s) {
	case QuitToMenu:
		return QuitToMenu, nil
	case QuitExit, "":
		return QuitExit, nil
	default:
		return "", fmt.Errorf("unknown quit context %q", s)
	}
}
