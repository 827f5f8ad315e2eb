package game

import "encoding/json"

// MarbleView is the rounded, serializable view of a marble.
type MarbleView struct {
	ID     string  `json:"id"`
	BallID string  `json:"ballId"`
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Done   bool    `json:"done"`
	Result *Result `json:"result,omitempty"`
	T      float64 `json:"t,omitempty"`
}

// BoardSummary describes the board without its geometry.
type BoardSummary struct {
	WorldW     float64    `json:"worldW"`
	WorldH     float64    `json:"worldH"`
	Layout     LayoutKind `json:"layout"`
	Pegs       int        `json:"pegs"`
	Slots      int        `json:"slots"`
	Propellers int        `json:"propellers"`
	FinishY    float64    `json:"finishY"`
}

// WinnerView names the winning marble.
type WinnerView struct {
	ID     string  `json:"id"`
	BallID string  `json:"ballId"`
	Name   string  `json:"name"`
	Slot   int     `json:"slot"`
	Label  string  `json:"label"`
	T      float64 `json:"t"`
}

// Snapshot is a plain record of the run, rounded for stable text diffs.
type Snapshot struct {
	Mode        Mode           `json:"mode"`
	T           float64        `json:"t"`
	Seed        uint32         `json:"seed"`
	Counts      map[string]int `json:"counts"`
	Pending     int            `json:"pending"`
	TotalToDrop int            `json:"totalToDrop"`
	DropX       float64        `json:"dropX"`
	Board       BoardSummary   `json:"board"`
	Marbles     []MarbleView   `json:"marbles"`
	Finished    []MarbleView   `json:"finished"`
	Winner      *WinnerView    `json:"winner"`
	Stats       Stats          `json:"stats"`
}

// Snapshot captures the current state. It has no side effects.
func (s *Simulation) Snapshot() Snapshot {
	b := s.board
	snap := Snapshot{
		Mode:        s.state.Mode,
		T:           round(s.state.T, ClockPlaces),
		Seed:        s.state.Seed,
		Counts:      s.Counts(),
		Pending:     len(s.state.Pending),
		TotalToDrop: s.state.TotalToDrop,
		DropX:       round(s.state.DropX, SnapshotPlaces),
		Board: BoardSummary{
			WorldW:     round(b.WorldW, SnapshotPlaces),
			WorldH:     round(b.WorldH, SnapshotPlaces),
			Layout:     b.Kind(),
			Pegs:       len(b.Pegs),
			Slots:      len(b.Slots),
			Propellers: b.PropellerCount(),
			FinishY:    round(b.FinishY(), SnapshotPlaces),
		},
		Marbles:  make([]MarbleView, 0, len(s.state.Marbles)),
		Finished: make([]MarbleView, 0, len(s.state.Finished)),
		Stats:    s.state.Stats,
	}
	for _, m := range s.state.Marbles {
		snap.Marbles = append(snap.Marbles, viewMarble(m))
	}
	for _, m := range s.state.Finished {
		snap.Finished = append(snap.Finished, viewMarble(m))
	}
	if w := s.state.Winner; w != nil && w.Result != nil {
		snap.Winner = &WinnerView{
			ID:     w.ID,
			BallID: w.BallID,
			Name:   w.Name,
			Slot:   w.Result.Slot,
			Label:  w.Result.Label,
			T:      round(w.FinishT, ClockPlaces),
		}
	}
	return snap
}

func viewMarble(m *Marble) MarbleView {
	pos := m.Pos.Rounded(SnapshotPlaces)
	vel := m.Vel.Rounded(SnapshotPlaces)
	v := MarbleView{
		ID:     m.ID,
		BallID: m.BallID,
		Name:   m.Name,
		X:      pos.X,
		Y:      pos.Y,
		VX:     vel.X,
		VY:     vel.Y,
		Done:   m.Done,
	}
	if m.Result != nil {
		r := *m.Result
		v.Result = &r
		v.T = round(m.FinishT, ClockPlaces)
	}
	return v
}

// RenderToText serializes the snapshot as JSON.
func (s *Simulation) RenderToText() string {
	return renderText(s.Snapshot(), nil)
}

// renderText marshals snap, merging extra top-level fields such as camera info.
func renderText(snap Snapshot, extra map[string]interface{}) string {
	raw, err := json.Marshal(snap)
	if err != nil {
		return "{}"
	}
	if len(extra) == 0 {
		return string(raw)
	}
	merged := make(map[string]interface{})
	if err := json.Unmarshal(raw, &merged); err != nil {
		return string(raw)
	}
	for k, v := range extra {
		merged[k] = v
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
