package session

import "github.com/ugaemi/horsingaround-server/internal/game"

// WorldState is the per-tick view of a session sent to clients.
type WorldState struct {
	State     State           `json:"state"`
	Time      float64         `json:"time"`
	Target    *game.Vec3      `json:"target,omitempty"`
	Meter     *MeterEntry     `json:"meter,omitempty"`
	Enforcers []EnforcerEntry `json:"enforcers"`
	Witnesses []WitnessEntry  `json:"witnesses"`
	Pranks    []PrankEntry    `json:"pranks"`
}

type MeterEntry struct {
	Level float64 `json:"level"`
	Max   float64 `json:"max"`
}

type EnforcerEntry struct {
	ID        string             `json:"id"`
	State     game.EnforcerState `json:"state"`
	Position  game.Vec3          `json:"position"`
	Heading   float64            `json:"heading"`
	Speed     float64            `json:"speed"`
	Indicator bool               `json:"indicator"`
	Area      *game.PatrolArea   `json:"area,omitempty"`
}

type WitnessEntry struct {
	ID       string    `json:"id"`
	Position game.Vec3 `json:"position"`
	Facing   float64   `json:"facing"`
	Alerting bool      `json:"alerting"`
	Alerted  bool      `json:"alerted"`
}

type PrankEntry struct {
	ID        string         `json:"id"`
	Kind      game.PrankKind `json:"kind"`
	Position  game.Vec3      `json:"position"`
	Ready     bool           `json:"ready"`
	Alpha     float64        `json:"alpha,omitempty"`
	Ringing   bool           `json:"ringing,omitempty"`
	Displaced bool           `json:"displaced,omitempty"`
}

// snapshotLocked builds the world view. Caller must hold s.mu.
func (s *Session) snapshotLocked() WorldState {
	w := s.world
	st := WorldState{
		State:     s.state,
		Time:      w.Clock.Now().Seconds(),
		Enforcers: make([]EnforcerEntry, 0, len(w.Enforcers)),
		Witnesses: make([]WitnessEntry, 0, len(w.Witnesses)),
		Pranks:    make([]PrankEntry, 0, len(w.Pranks)),
	}

	if pos, err := w.Target().Position(); err == nil {
		st.Target = &pos
	}
	if w.Meter != nil {
		st.Meter = &MeterEntry{Level: w.Meter.Level(), Max: w.Meter.Max()}
	}

	for _, e := range w.Enforcers {
		body := e.Body()
		entry := EnforcerEntry{
			ID:        e.ID,
			State:     e.State(),
			Position:  body.Position,
			Heading:   body.Heading,
			Speed:     e.Speed(),
			Indicator: e.IndicatorOn(),
		}
		if area, ok := e.Area(); ok {
			entry.Area = &area
		}
		st.Enforcers = append(st.Enforcers, entry)
	}
	for _, ws := range w.Witnesses {
		st.Witnesses = append(st.Witnesses, WitnessEntry{
			ID:       ws.ID,
			Position: ws.Position,
			Facing:   ws.Facing,
			Alerting: ws.Alerting(),
			Alerted:  ws.Alerted(),
		})
	}
	for _, p := range w.Pranks {
		st.Pranks = append(st.Pranks, PrankEntry{
			ID:        p.ID,
			Kind:      p.Kind(),
			Position:  p.Position,
			Ready:     p.Ready(),
			Alpha:     p.Alpha(),
			Ringing:   p.Ringing(),
			Displaced: p.Displaced(),
		})
	}
	return st
}
