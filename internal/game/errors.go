package game

import "errors"

var (
	// ErrInvalidConfiguration reports setup data an operation cannot work with,
	// such as an empty waypoint set where patrolling needs one.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrMissingCollaborator reports an actor or capability that could not be found.
	// Callers degrade the dependent behaviour and retry on the next tick.
	ErrMissingCollaborator = errors.New("missing collaborator")
)
