package game

import (
	"encoding/json"
	"fmt"
)

// Role identifies what an actor is to the simulation.
type Role int

const (
	RoleNone Role = iota
	RoleTarget
	RoleUIRoot
)

func (r Role) String() string {
	switch r {
	case RoleTarget:
		return "target"
	case RoleUIRoot:
		return "ui_root"
	default:
		return "none"
	}
}

// MarshalJSON serializes Role as a string.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// Locator reads an actor's live position.
type Locator interface {
	Position(actorID string) (Vec3, error)
}

// Directory resolves actors by role and locates them.
type Directory interface {
	Locator
	Resolve(role Role) (string, bool)
}

// Registry is the explicit actor registry handed to agents at construction.
// It is not safe for concurrent use; the owning session serializes access.
type Registry struct {
	roles     map[Role]string
	positions map[string]Vec3
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		roles:     make(map[Role]string),
		positions: make(map[string]Vec3),
	}
}

// Register adds an actor at pos and binds role to it.
func (r *Registry) Register(role Role, id string, pos Vec3) {
	r.positions[id] = pos
	if role != RoleNone {
		r.roles[role] = id
	}
}

// Bind points role at an already registered actor.
func (r *Registry) Bind(role Role, id string) error {
	if _, ok := r.positions[id]; !ok {
		return fmt.Errorf("actor %q not registered: %w", id, ErrMissingCollaborator)
	}
	r.roles[role] = id
	return nil
}

// Resolve returns the actor bound to role.
func (r *Registry) Resolve(role Role) (string, bool) {
	id, ok := r.roles[role]
	return id, ok
}

// Position implements Locator.
func (r *Registry) Position(actorID string) (Vec3, error) {
	pos, ok := r.positions[actorID]
	if !ok {
		return Vec3{}, fmt.Errorf("actor %q not found: %w", actorID, ErrMissingCollaborator)
	}
	return pos, nil
}

// SetPosition moves a registered actor. Only the actor's controller calls this.
func (r *Registry) SetPosition(actorID string, pos Vec3) error {
	if _, ok := r.positions[actorID]; !ok {
		return fmt.Errorf("actor %q not found: %w", actorID, ErrMissingCollaborator)
	}
	r.positions[actorID] = pos
	return nil
}

// Remove drops an actor and any role bound to it.
func (r *Registry) Remove(actorID string) {
	delete(r.positions, actorID)
	for role, id := range r.roles {
		if id == actorID {
			delete(r.roles, role)
		}
	}
}

// TargetRef is a back-reference to a tracked actor by role. It never owns the actor;
// each lookup goes through the directory so a missing actor is picked up once it appears.
type TargetRef struct {
	dir  Directory
	role Role
}

// NewTargetRef creates a reference to whichever actor holds role in dir.
func NewTargetRef(dir Directory, role Role) TargetRef {
	return TargetRef{dir: dir, role: role}
}

// Position returns the live position of the referenced actor.
func (t TargetRef) Position() (Vec3, error) {
	if t.dir == nil {
		return Vec3{}, fmt.Errorf("no directory for role %s: %w", t.role, ErrMissingCollaborator)
	}
	id, ok := t.dir.Resolve(t.role)
	if !ok {
		return Vec3{}, fmt.Errorf("no actor with role %s: %w", t.role, ErrMissingCollaborator)
	}
	return t.dir.Position(id)
}
