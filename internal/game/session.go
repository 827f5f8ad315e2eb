package game

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"log"
	"sync"
	"time"
)

// WinnerEvent is emitted once per decided run.
type WinnerEvent struct {
	Token    string     `json:"token"`
	Seed     uint32     `json:"seed"`
	Layout   LayoutKind `json:"layout"`
	MarbleID string     `json:"marble_id"`
	BallID   string     `json:"ball_id"`
	Name     string     `json:"name"`
	Slot     int        `json:"slot"`
	Label    string     `json:"label"`
	T        float64    `json:"t"`
	Slots    []int      `json:"slots"` // finish slot per marble, in finish order
	Total    int        `json:"total"`
	Stats    Stats      `json:"stats"`
}

// SessionOptions configures NewSession.
type SessionOptions struct {
	Token     string
	Board     *Board
	Catalog   []Ball
	FixedSeed uint32 // 0 draws a fresh seed per run
	Speed     float64
	Preset    string
}

// Session serializes access to a Simulation and its Loop and runs the start/restart
// flow. All methods are safe for concurrent use.
type Session struct {
	Token     string
	Preset    string
	CreatedAt time.Time

	sim       *Simulation
	loop      *Loop
	fixedSeed uint32

	shownWinnerT *float64
	pending      *WinnerEvent
	lastActive   time.Time

	// OnWinner is called outside the lock once per winner.
	OnWinner func(WinnerEvent)
	// OnFrame is called from Run with a fresh snapshot after frames that advanced the clock.
	OnFrame func(Snapshot)

	mu sync.Mutex
}

var _ DebugHooks = (*Session)(nil)

// NewSession creates a session in menu mode.
func NewSession(opts SessionOptions) *Session {
	seed := opts.FixedSeed
	if seed == 0 {
		seed = randomSeed()
	}
	speed := opts.Speed
	if speed == 0 {
		speed = 1
	}
	sim := NewSimulation(seed, opts.Board, opts.Catalog)
	now := time.Now()
	s := &Session{
		Token:      opts.Token,
		Preset:     opts.Preset,
		CreatedAt:  now,
		sim:        sim,
		loop:       NewLoop(sim, speed),
		fixedSeed:  opts.FixedSeed,
		lastActive: now,
	}
	s.loop.OnAfterFrame(s.afterFrame)
	return s
}

func randomSeed() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint32(time.Now().UnixNano())
	}
	seed := binary.LittleEndian.Uint32(b[:]) ^ uint32(time.Now().UnixMilli())
	if seed == 0 {
		seed = 1
	}
	return seed
}

// afterFrame runs under the lock from inside the loop.
func (s *Session) afterFrame() {
	w := s.sim.Winner()
	if w == nil {
		return
	}
	// Manual drops can settle a winner while marbles are still queued; only the
	// winner of the whole run is reported.
	if s.sim.PendingCount() > 0 {
		return
	}
	if s.shownWinnerT != nil && *s.shownWinnerT == w.FinishT {
		return
	}
	t := w.FinishT
	s.shownWinnerT = &t
	ev := s.winnerEvent(w)
	s.pending = &ev
}

func (s *Session) winnerEvent(w *Marble) WinnerEvent {
	finished := s.sim.Finished()
	slots := make([]int, 0, len(finished))
	for _, m := range finished {
		slots = append(slots, m.Result.Slot)
	}
	ev := WinnerEvent{
		Token:    s.Token,
		Seed:     s.sim.Seed(),
		Layout:   s.sim.Board().Kind(),
		MarbleID: w.ID,
		BallID:   w.BallID,
		Name:     w.Name,
		T:        w.FinishT,
		Slots:    slots,
		Total:    s.sim.TotalToDrop(),
		Stats:    s.sim.Stats(),
	}
	if w.Result != nil {
		ev.Slot = w.Result.Slot
		ev.Label = w.Result.Label
	}
	return ev
}

// unlock releases the lock and delivers any winner produced while it was held.
func (s *Session) unlock() {
	ev := s.pending
	s.pending = nil
	cb := s.OnWinner
	s.mu.Unlock()
	if ev != nil && cb != nil {
		cb(*ev)
	}
}

func (s *Session) lock() {
	s.mu.Lock()
	s.lastActive = time.Now()
}

func (s *Session) clearRunCaches() {
	s.shownWinnerT = nil
	s.pending = nil
}

// TryStart begins a batch run with every selected marble on the board from the first
// tick. It reports false when nothing is selected.
func (s *Session) TryStart() bool {
	s.lock()
	defer s.unlock()
	return s.tryStart()
}

func (s *Session) tryStart() bool {
	if s.sim.TotalSelectedCount() <= 0 {
		return false
	}
	seed := s.fixedSeed
	if seed == 0 {
		seed = randomSeed()
	}
	s.sim.Reseed(seed)
	s.sim.Start()
	s.clearRunCaches()
	s.loop.SetPaused(false)
	n := s.sim.DropAll()
	log.Printf("[SESSION] %s run started seed=%d marbles=%d", s.Token, seed, n)
	return true
}

// HandleStart restarts a run in progress and starts a new one.
func (s *Session) HandleStart() bool {
	s.lock()
	defer s.unlock()
	s.restartIfPlaying()
	return s.tryStart()
}

// Restart discards a run in progress. It does nothing from the menu.
func (s *Session) Restart() {
	s.lock()
	defer s.unlock()
	s.restartIfPlaying()
}

func (s *Session) restartIfPlaying() {
	if s.sim.Mode() != ModePlaying {
		return
	}
	s.sim.Reset()
	s.clearRunCaches()
	s.loop.SetPaused(false)
}

// Reset returns to the menu unconditionally.
func (s *Session) Reset() {
	s.lock()
	defer s.unlock()
	s.sim.Reset()
	s.clearRunCaches()
	s.loop.SetPaused(false)
}

// TogglePause flips the pause flag while a run is undecided and reports whether it did.
func (s *Session) TogglePause() bool {
	s.lock()
	defer s.unlock()
	if s.sim.Mode() != ModePlaying || s.sim.Winner() != nil {
		return false
	}
	s.loop.SetPaused(!s.loop.Paused())
	return true
}

func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loop.Paused()
}

// SetBallCount sets a count and returns the stored value; unknown ids report false.
func (s *Session) SetBallCount(id string, n int) (int, bool) {
	s.lock()
	defer s.unlock()
	if _, ok := s.sim.ball(id); !ok {
		return 0, false
	}
	s.sim.SetBallCount(id, n)
	return s.sim.BallCount(id), true
}

// SetDropX clamps and stores the drop position, returning the stored value.
func (s *Session) SetDropX(x float64) float64 {
	s.lock()
	defer s.unlock()
	s.sim.SetDropX(x)
	return s.sim.DropX()
}

// SetCatalog replaces the catalog. Allowed only from the menu.
func (s *Session) SetCatalog(balls []Ball) bool {
	s.lock()
	defer s.unlock()
	if s.sim.Mode() != ModeMenu {
		return false
	}
	s.sim.SetCatalog(balls)
	return true
}

// Start begins a run with a queue but drops nothing.
func (s *Session) Start() {
	s.lock()
	defer s.unlock()
	s.sim.Start()
	s.clearRunCaches()
	s.loop.SetPaused(false)
}

// DropMarble spawns the next queued marble, or returns nil.
func (s *Session) DropMarble() *MarbleView {
	s.lock()
	defer s.unlock()
	m := s.sim.DropMarble()
	if m == nil {
		return nil
	}
	v := viewMarble(m)
	return &v
}

func (s *Session) DropAll() int {
	s.lock()
	defer s.unlock()
	return s.sim.DropAll()
}

func (s *Session) SetSpeedMultiplier(v float64) float64 {
	s.lock()
	defer s.unlock()
	return s.loop.SetSpeedMultiplier(v)
}

// AdvanceTime ticks ms worth of fixed steps synchronously.
func (s *Session) AdvanceTime(ctx context.Context, ms float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.lock()
	defer s.unlock()
	s.loop.TickFixed(ms)
	return nil
}

// Frame advances by one display frame of elapsed wall time.
func (s *Session) Frame(elapsedMs float64) int {
	s.mu.Lock()
	defer s.unlock()
	return s.loop.Frame(elapsedMs)
}

func (s *Session) RenderToText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.RenderToText()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Snapshot()
}

// Board returns the shared, immutable board.
func (s *Session) Board() *Board {
	return s.sim.Board()
}

func (s *Session) Catalog() []Ball {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Catalog()
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Mode()
}

// LastActive is the time of the last control call.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Run drives the session from a wall-clock ticker until ctx is cancelled. Frames are
// only simulated while a run is playing and unpaused.
func (s *Session) Run(ctx context.Context, tickHz, broadcastHz int) {
	if tickHz <= 0 {
		tickHz = 60
	}
	if broadcastHz <= 0 || broadcastHz > tickHz {
		broadcastHz = tickHz
	}
	every := tickHz / broadcastHz

	ticker := time.NewTicker(time.Second / time.Duration(tickHz))
	defer ticker.Stop()

	last := time.Now()
	n := 0
	for {
		select {
		case <-ctx.Done():
			log.Printf("[SESSION] %s loop stopping", s.Token)
			return
		case now := <-ticker.C:
			elapsed := float64(now.Sub(last)) / float64(time.Millisecond)
			last = now
			if s.Frame(elapsed) == 0 {
				continue
			}
			n++
			if s.OnFrame != nil && n%every == 0 {
				s.OnFrame(s.Snapshot())
			}
		}
	}
}
