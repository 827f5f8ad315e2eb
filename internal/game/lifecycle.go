package game

import (
	"fmt"
	"math"
)

// SetBallCount stores a clamped count. Unknown ids are ignored.
func (s *Simulation) SetBallCount(id string, count int) {
	if _, ok := s.ball(id); !ok {
		return
	}
	s.state.Counts[id] = clampInt(count, 0, MaxBallCount)
}

// BallCount returns the clamped count for id, or 0.
func (s *Simulation) BallCount(id string) int {
	return clampInt(s.state.Counts[id], 0, MaxBallCount)
}

// TotalSelectedCount sums the counts over the catalog.
func (s *Simulation) TotalSelectedCount() int {
	total := 0
	for _, b := range s.catalog {
		total += s.BallCount(b.ID)
	}
	return total
}

// SetCatalog swaps the catalog. Counts of removed ids are dropped and new ids start at one.
func (s *Simulation) SetCatalog(balls []Ball) {
	s.catalog = append([]Ball(nil), balls...)
	next := make(map[string]int, len(balls))
	for _, b := range s.catalog {
		if n, ok := s.state.Counts[b.ID]; ok {
			next[b.ID] = n
		} else {
			next[b.ID] = 1
		}
	}
	s.state.Counts = next
}

// PrepareDropQueue expands counts in catalog order and optionally shuffles them with a
// stream derived from the seed, leaving the simulation stream untouched.
func (s *Simulation) PrepareDropQueue(shuffle bool) []string {
	queue := make([]string, 0, s.TotalSelectedCount())
	for _, b := range s.catalog {
		for i := 0; i < s.BallCount(b.ID); i++ {
			queue = append(queue, b.ID)
		}
	}
	if shuffle && len(queue) > 1 {
		rnd := NewRNG(s.state.Seed ^ ShuffleSeedMix)
		for i := len(queue) - 1; i > 0; i-- {
			j := int(math.Floor(rnd.Float64() * float64(i+1)))
			queue[i], queue[j] = queue[j], queue[i]
		}
	}
	s.state.Pending = queue
	s.state.TotalToDrop = len(queue)
	s.state.spawned = 0
	return append([]string(nil), queue...)
}

// SetDropX clamps x so a spawned marble sits fully on the board.
func (s *Simulation) SetDropX(x float64) {
	if math.IsNaN(x) {
		return
	}
	pad := s.board.BallR + DropXMargin
	s.state.DropX = clamp(x, pad, s.board.WorldW-pad)
}

// Start begins a run with a freshly shuffled queue.
func (s *Simulation) Start() {
	s.clearRun()
	s.state.Mode = ModePlaying
	s.PrepareDropQueue(true)
}

// Reset returns to the menu and discards everything in flight. Calling it twice is
// the same as calling it once.
func (s *Simulation) Reset() {
	s.clearRun()
	s.state.Mode = ModeMenu
	s.state.Pending = nil
	s.state.TotalToDrop = 0
}

func (s *Simulation) clearRun() {
	s.state.T = 0
	s.state.Marbles = nil
	s.state.Finished = nil
	s.state.Winner = nil
	s.state.Stats = Stats{}
	s.state.spawned = 0
	s.state.ids = make(map[string]struct{})
}

// DropMarble spawns the head of the queue. It returns nil when not playing or the
// queue is empty.
func (s *Simulation) DropMarble() *Marble {
	if s.state.Mode != ModePlaying || len(s.state.Pending) == 0 {
		return nil
	}
	nextID := s.state.Pending[0]
	s.state.Pending = s.state.Pending[1:]

	b, ok := s.ball(nextID)
	if !ok {
		return nil
	}

	// Draw order is part of the determinism contract: jitter, id, velocity.
	jx := (s.rng.Float64() - 0.5) * SpawnJitter
	id := fmt.Sprintf("m_%d_%d", int64(math.Floor(s.state.T*1000)), int64(math.Floor(s.rng.Float64()*1e9)))
	vx := (s.rng.Float64() - 0.5) * SpawnVXSpread

	if _, taken := s.state.ids[id]; taken {
		id = fmt.Sprintf("%s_%d", id, s.state.spawned)
	}
	s.state.ids[id] = struct{}{}

	m := &Marble{
		ID:     id,
		BallID: b.ID,
		Name:   b.Name,
		Pos:    Vec2{X: s.state.DropX + jx, Y: SpawnY},
		Vel:    Vec2{X: vx, Y: 0},
		R:      s.board.BallR,
		Seq:    s.state.spawned,
	}
	s.state.spawned++
	s.state.Marbles = append(s.state.Marbles, m)
	return m
}

// DropAll spawns every queued marble without advancing physics and returns the count.
func (s *Simulation) DropAll() int {
	n := 0
	for len(s.state.Pending) > 0 {
		if s.DropMarble() == nil {
			if s.state.Mode != ModePlaying {
				break
			}
			continue
		}
		n++
	}
	return n
}
