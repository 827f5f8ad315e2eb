package game

// Mode is the run phase.
type Mode string

const (
	ModeMenu    Mode = "menu"
	ModePlaying Mode = "playing"
)

// Ball is a catalog entry. The engine only reads ID and Name.
type Ball struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageRef string `json:"imageDataUrl"`
	Tint     string `json:"tint"`
}

// Result binds a finished marble to a slot.
type Result struct {
	Slot  int    `json:"slot"`
	Label string `json:"label"`
	Order int    `json:"order"` // 1-based global finish order
}

// Marble is a live or finished marble.
type Marble struct {
	ID      string
	BallID  string
	Name    string
	Pos     Vec2
	Vel     Vec2
	R       float64
	Done    bool
	Result  *Result
	Seq     int     // spawn order within the run
	FinishT float64 // clock when it crossed the finish line
}

// Stats are observable counters. They do not feed back into gameplay.
type Stats struct {
	PropellerContacts int `json:"propellerContacts"`
	PegContacts       int `json:"pegContacts"`
	WallContacts      int `json:"wallContacts"`
	CorridorContacts  int `json:"corridorContacts"`
}

// RunState is the mutable part of a simulation.
type RunState struct {
	Mode        Mode
	T           float64
	Seed        uint32
	Counts      map[string]int
	Pending     []string
	DropX       float64
	Marbles     []*Marble
	Finished    []*Marble
	Winner      *Marble
	TotalToDrop int
	Stats       Stats

	spawned int
	ids     map[string]struct{}
}

// Simulation owns a shared, read-only Board and an exclusively owned RunState.
// It is not safe for concurrent use; see Session for a locked wrapper.
type Simulation struct {
	board   *Board
	catalog []Ball
	rng     *RNG
	state   RunState
}

// NewSimulation creates a simulation in menu mode with a count of one per catalog ball.
func NewSimulation(seed uint32, board *Board, catalog []Ball) *Simulation {
	if board == nil {
		board = NewBoard(DefaultBoardConfig())
	}
	s := &Simulation{
		board: board,
		rng:   NewRNG(seed),
		state: RunState{
			Mode:   ModeMenu,
			Seed:   seed,
			Counts: make(map[string]int),
			DropX:  board.WorldW / 2,
			ids:    make(map[string]struct{}),
		},
	}
	s.catalog = append([]Ball(nil), catalog...)
	for _, b := range s.catalog {
		s.state.Counts[b.ID] = 1
	}
	return s
}

func (s *Simulation) Board() *Board { return s.board }
func (s *Simulation) Mode() Mode { return s.state.Mode }
func (s *Simulation) Clock() float64 { return s.state.T }
func (s *Simulation) Seed() uint32 { return s.state.Seed }
func (s *Simulation) DropX() float64 { return s.state.DropX }
func (s *Simulation) TotalToDrop() int { return s.state.TotalToDrop }
func (s *Simulation) Stats() Stats { return s.state.Stats }
func (s *Simulation) Winner() *Marble { return s.state.Winner }
func (s *Simulation) Catalog() []Ball { return append([]Ball(nil), s.catalog...) }
func (s *Simulation) PendingCount() int { return len(s.state.Pending) }
func (s *Simulation) Pending() []string { return append([]string(nil), s.state.Pending...) }
func (s *Simulation) SpawnedCount() int { return s.state.spawned }

// Marbles returns the live marbles in spawn order. The slice is a copy; the marbles
// themselves are shared and keep moving on later steps.
func (s *Simulation) Marbles() []*Marble {
	return append([]*Marble(nil), s.state.Marbles...)
}

// Finished returns the finished marbles in finish order.
func (s *Simulation) Finished() []*Marble {
	return append([]*Marble(nil), s.state.Finished...)
}

// Counts returns a copy of the per-ball counts.
func (s *Simulation) Counts() map[string]int {
	out := make(map[string]int, len(s.state.Counts))
	for k, v := range s.state.Counts {
		out[k] = v
	}
	return out
}

// Reseed replaces the seed and restarts the simulation stream.
func (s *Simulation) Reseed(seed uint32) {
	s.state.Seed = seed
	s.rng = NewRNG(seed)
}

func (s *Simulation) ball(id string) (Ball, bool) {
	for _, b := range s.catalog {
		if b.ID == id {
			return b, true
		}
	}
	return Ball{}, false
}
