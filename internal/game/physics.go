package game

import "math"

// Step advances the run by dt seconds. It does nothing outside playing mode.
func (s *Simulation) Step(dt float64) {
	if s.state.Mode != ModePlaying {
		return
	}
	s.state.T += dt

	b := s.board
	finishY := b.FinishY()
	live := s.state.Marbles[:0]
	for _, m := range s.state.Marbles {
		if m.Done {
			continue
		}
		s.integrate(m, dt)
		s.containWalls(m)
		s.containCorridor(m)
		s.collidePegs(m)
		s.state.Stats.PropellerContacts += b.Layout.Collide(m, s.state.T)
		s.containWalls(m)
		s.containCorridor(m)

		if m.Pos.Y+m.R >= finishY {
			s.finish(m, finishY)
			continue
		}
		live = append(live, m)
	}
	for i := len(live); i < len(s.state.Marbles); i++ {
		s.state.Marbles[i] = nil
	}
	s.state.Marbles = live

	if len(s.state.Marbles) == 0 && len(s.state.Finished) > 0 {
		s.state.Winner = lastFinisher(s.state.Finished)
	}
}

func (s *Simulation) integrate(m *Marble, dt float64) {
	m.Vel.Y += Gravity * dt
	m.Vel = m.Vel.Times(AirDrag)
	m.Pos = m.Pos.Plus(m.Vel.Times(dt))
}

func (s *Simulation) containWalls(m *Marble) {
	w := s.board.WorldW
	if m.Pos.X-m.R < 0 {
		m.Pos.X = m.R
		m.Vel.X = math.Abs(m.Vel.X) * WallRestitution
		s.state.Stats.WallContacts++
	} else if m.Pos.X+m.R > w {
		m.Pos.X = w - m.R
		m.Vel.X = -math.Abs(m.Vel.X) * WallRestitution
		s.state.Stats.WallContacts++
	}
}

// containCorridor runs for every marble on every tick regardless of its neighbours.
func (s *Simulation) containCorridor(m *Marble) {
	bounds, ok := s.board.Layout.BoundsAtY(m.Pos.Y)
	if !ok {
		return
	}
	lo := bounds.Left + m.R
	hi := bounds.Right - m.R
	if lo > hi {
		m.Pos.X = (bounds.Left + bounds.Right) / 2
		m.Vel.X = 0
		s.state.Stats.CorridorContacts++
		return
	}
	if m.Pos.X < lo {
		m.Pos.X = lo
		m.Vel.X = math.Abs(m.Vel.X) * WallRestitution
		s.state.Stats.CorridorContacts++
	} else if m.Pos.X > hi {
		m.Pos.X = hi
		m.Vel.X = -math.Abs(m.Vel.X) * WallRestitution
		s.state.Stats.CorridorContacts++
	}
}

func (s *Simulation) collidePegs(m *Marble) {
	for _, p := range s.board.Pegs {
		c, ok := circleContact(m.Pos, m.R, Vec2{X: p.X, Y: p.Y}, p.R)
		if !ok {
			continue
		}
		m.Pos = m.Pos.Plus(c.normal.Times(c.depth))
		if v, hit := bounce(m.Vel, c.normal, PegRestitution, TangentDamping); hit {
			m.Vel = v
		}
		s.state.Stats.PegContacts++
	}
}

func (s *Simulation) finish(m *Marble, finishY float64) {
	b := s.board
	slot := clampInt(int(math.Floor(m.Pos.X/b.SlotW)), 0, b.SlotCount-1)
	m.Done = true
	m.Result = &Result{
		Slot:  slot,
		Label: b.Slots[slot].Label,
		Order: len(s.state.Finished) + 1,
	}
	m.FinishT = s.state.T
	m.Vel = Vec2{}
	m.Pos.Y = finishY - m.R
	s.state.Finished = append(s.state.Finished, m)
}

// lastFinisher picks the latest finish time; exact ties go to the earliest spawn.
func lastFinisher(finished []*Marble) *Marble {
	var w *Marble
	for _, m := range finished {
		if w == nil || m.FinishT > w.FinishT || (m.FinishT == w.FinishT && m.Seq < w.Seq) {
			w = m
		}
	}
	return w
}
