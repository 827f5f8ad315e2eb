package game

import (
	"math"
	"testing"
)

const runLimitSteps = 180 * 60

// runPositioned drops one marble per x with a fixed gap of simulated time between drops,
// then steps until a winner is decided.
func runPositioned(seed uint32, xs []float64) *Simulation {
	cat := testCatalog(1)
	sim := NewSimulation(seed, nil, cat)
	sim.SetBallCount(cat[0].ID, len(xs))
	sim.Start()
	for _, x := range xs {
		sim.SetDropX(x)
		sim.DropMarble()
		for i := 0; i < 30; i++ {
			sim.Step(FixedDt)
		}
	}
	for i := 0; i < runLimitSteps && sim.Winner() == nil; i++ {
		sim.Step(FixedDt)
	}
	return sim
}

func finishSlots(sim *Simulation) []int {
	out := make([]int, 0, len(sim.Finished()))
	for _, m := range sim.Finished() {
		out = append(out, m.Result.Slot)
	}
	return out
}

func TestDeterministicRun(t *testing.T) {
	xs := []float64{120, 260, 450, 630, 820}
	a := runPositioned(42, xs)
	b := runPositioned(42, xs)

	if a.Winner() == nil || b.Winner() == nil {
		t.Fatal("run did not produce a winner")
	}
	sa, sb := finishSlots(a), finishSlots(b)
	if len(sa) != len(xs) || len(sb) != len(xs) {
		t.Fatalf("finished %d and %d marbles, want %d", len(sa), len(sb), len(xs))
	}
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("slots differ: %v vs %v", sa, sb)
		}
	}
	if a.Winner().ID != b.Winner().ID || a.Winner().FinishT != b.Winner().FinishT {
		t.Errorf("winners differ: %s@%v vs %s@%v",
			a.Winner().ID, a.Winner().FinishT, b.Winner().ID, b.Winner().FinishT)
	}
	if a.RenderToText() != b.RenderToText() {
		t.Error("final snapshots differ")
	}
}

func TestSeed42ClassicSlots(t *testing.T) {
	xs := []float64{120, 260, 450, 630, 820}
	want := []int{3, 3, 3, 7, 7}

	newRun := func() *Simulation {
		cat := testCatalog(1)
		sim := NewSimulation(42, NewBoard(DefaultBoardConfig()), cat)
		sim.SetBallCount(cat[0].ID, len(xs))
		sim.Start()
		return sim
	}
	check := func(name string, sim *Simulation) {
		got := make([]int, len(xs))
		for _, m := range sim.Finished() {
			if m.Seq < len(got) {
				got[m.Seq] = m.Result.Slot
			}
		}
		if len(sim.Finished()) != len(want) {
			t.Fatalf("%s: slots = %v, want %v", name, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: slots = %v, want %v", name, got, want)
			}
		}
	}

	// Each marble reaches the finish before the next one drops.
	sim := newRun()
	for _, x := range xs {
		sim.SetDropX(x)
		if sim.DropMarble() == nil {
			t.Fatalf("no marble dropped at x=%v", x)
		}
		for i := 0; i < runLimitSteps && len(sim.Marbles()) > 0; i++ {
			sim.Step(FixedDt)
		}
	}
	check("sequential", sim)

	// All five on the board from t=0.
	sim = newRun()
	for _, x := range xs {
		sim.SetDropX(x)
		sim.DropMarble()
	}
	for i := 0; i < runLimitSteps && sim.Winner() == nil; i++ {
		sim.Step(FixedDt)
	}
	check("batch", sim)
}

func TestMarblesReturnsCopy(t *testing.T) {
	sim := NewSimulation(3, nil, testCatalog(2))
	sim.Start()
	sim.DropAll()
	before := sim.Marbles()
	for i := 0; i < runLimitSteps && sim.Winner() == nil; i++ {
		sim.Step(FixedDt)
	}
	if len(before) != 2 {
		t.Fatalf("held slice has %d entries, want 2", len(before))
	}
	for i, m := range before {
		if m == nil {
			t.Fatalf("held entry %d became nil after stepping", i)
		}
	}
	if before[0].Seq != 0 || before[1].Seq != 1 {
		t.Errorf("held slice reordered: seq %d, %d", before[0].Seq, before[1].Seq)
	}
}

func TestDifferentSeedsChangeSpawns(t *testing.T) {
	a := NewSimulation(1, nil, testCatalog(1))
	b := NewSimulation(2, nil, testCatalog(1))
	a.Start()
	b.Start()
	ma, mb := a.DropMarble(), b.DropMarble()
	if ma.Pos == mb.Pos && ma.Vel == mb.Vel {
		t.Error("different seeds produced identical spawns")
	}
}

func TestBatchRunCompletes(t *testing.T) {
	sim := NewSimulation(11, nil, testCatalog(5))
	for _, b := range sim.Catalog() {
		sim.SetBallCount(b.ID, 3)
	}
	sim.Start()
	sim.DropAll()

	for i := 0; i < runLimitSteps && sim.Winner() == nil; i++ {
		sim.Step(FixedDt)
	}

	if sim.Winner() == nil {
		t.Fatalf("no winner after %d steps; %d marbles still live", runLimitSteps, len(sim.Marbles()))
	}
	if got := len(sim.Finished()); got != 15 {
		t.Errorf("finished = %d, want 15", got)
	}
	if len(sim.Marbles()) != 0 {
		t.Errorf("%d marbles still live after the winner", len(sim.Marbles()))
	}
	for i, m := range sim.Finished() {
		if !m.Done || m.Result == nil {
			t.Fatalf("finished marble %s has no result", m.ID)
		}
		if m.Result.Order != i+1 {
			t.Errorf("marble %s order = %d, want %d", m.ID, m.Result.Order, i+1)
		}
		if m.Result.Slot < 0 || m.Result.Slot >= sim.Board().SlotCount {
			t.Errorf("marble %s slot %d out of range", m.ID, m.Result.Slot)
		}
		if m.Result.Label != sim.Board().Slots[m.Result.Slot].Label {
			t.Errorf("marble %s label %s does not match slot %d", m.ID, m.Result.Label, m.Result.Slot)
		}
	}
}

func TestWinnerIsLastFinisher(t *testing.T) {
	sim := runPositioned(8, []float64{200, 450, 700})
	w := sim.Winner()
	if w == nil {
		t.Fatal("no winner")
	}
	for _, m := range sim.Finished() {
		if m.FinishT > w.FinishT {
			t.Errorf("marble %s finished at %v after winner %s at %v", m.ID, m.FinishT, w.ID, w.FinishT)
		}
	}
}

func TestLastFinisherTieGoesToEarliestSpawn(t *testing.T) {
	finished := []*Marble{
		{ID: "a", Seq: 2, FinishT: 4},
		{ID: "b", Seq: 1, FinishT: 5},
		{ID: "c", Seq: 0, FinishT: 5},
		{ID: "d", Seq: 3, FinishT: 1},
	}
	if w := lastFinisher(finished); w.ID != "c" {
		t.Errorf("winner = %s, want c", w.ID)
	}
	if lastFinisher(nil) != nil {
		t.Error("empty finish list produced a winner")
	}
}

func TestNoWinnerWhileMarblesLive(t *testing.T) {
	sim := NewSimulation(4, nil, testCatalog(2))
	sim.Start()
	sim.DropAll()
	sim.Step(FixedDt)
	if sim.Winner() != nil {
		t.Error("winner decided after one step")
	}
}

func TestStepOutsidePlayIsNoop(t *testing.T) {
	sim := NewSimulation(4, nil, testCatalog(1))
	sim.Step(FixedDt)
	if sim.Clock() != 0 {
		t.Errorf("clock advanced in menu: %v", sim.Clock())
	}
}

func TestFinishedMarblesRestOnTheLine(t *testing.T) {
	sim := runPositioned(21, []float64{450})
	m := sim.Winner()
	if m == nil {
		t.Fatal("no winner")
	}
	if !m.Vel.IsZero() {
		t.Errorf("finished marble still moving: %+v", m.Vel)
	}
	if want := sim.Board().FinishY() - m.R; m.Pos.Y != want {
		t.Errorf("finished marble y = %v, want %v", m.Pos.Y, want)
	}
	if sim.Stats().PegContacts == 0 {
		t.Error("a centre drop on the classic board never touched a peg")
	}
}

func zigzagSim(seed uint32, balls, perBall int) *Simulation {
	cfg := DefaultBoardConfig()
	cfg.Layout = LayoutZigzag
	cfg.ElementScale = 0.85
	sim := NewSimulation(seed, NewBoard(cfg), testCatalog(balls))
	for _, b := range sim.Catalog() {
		sim.SetBallCount(b.ID, perBall)
	}
	sim.Start()
	sim.DropAll()
	return sim
}

func TestZigzagLateralMixing(t *testing.T) {
	sim := zigzagSim(7, 4, 3)
	w := sim.Board().WorldW
	centre := w / 2

	maxDev, maxSpread := 0.0, 0.0
	for i := 0; i < runLimitSteps && sim.Winner() == nil; i++ {
		sim.Step(FixedDt)
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, m := range sim.Marbles() {
			maxDev = math.Max(maxDev, math.Abs(m.Pos.X-centre))
			lo = math.Min(lo, m.Pos.X)
			hi = math.Max(hi, m.Pos.X)
		}
		if len(sim.Marbles()) > 1 {
			maxSpread = math.Max(maxSpread, hi-lo)
		}
	}

	if maxDev <= 0.12*w {
		t.Errorf("max deviation from centre %.1f, want > %.1f", maxDev, 0.12*w)
	}
	if maxSpread <= 0.20*w {
		t.Errorf("max horizontal spread %.1f, want > %.1f", maxSpread, 0.20*w)
	}
	if sim.Stats().PropellerContacts == 0 {
		t.Error("no propeller contacts recorded")
	}
}

func TestZigzagContainmentUnderCongestion(t *testing.T) {
	const tolerance = 2.5
	sim := zigzagSim(17, 4, 12)
	z := sim.Board().Zigzag

	for i := 0; i < runLimitSteps && sim.Winner() == nil; i++ {
		sim.Step(FixedDt)
		for _, m := range sim.Marbles() {
			b := z.SpawnBoundsAtY(m.Pos.Y)
			if m.Pos.X < b.Left+m.R-tolerance || m.Pos.X > b.Right-m.R+tolerance {
				t.Fatalf("step %d: marble %s at x=%.2f y=%.2f escaped [%.2f, %.2f]",
					i, m.ID, m.Pos.X, m.Pos.Y, b.Left, b.Right)
			}
		}
	}
	if sim.Winner() == nil {
		t.Errorf("congested zigzag run did not finish; %d marbles live", len(sim.Marbles()))
	}
	if len(sim.Finished()) != 48 {
		t.Errorf("finished = %d, want 48", len(sim.Finished()))
	}
}
