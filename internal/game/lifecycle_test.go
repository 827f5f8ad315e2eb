package game

import (
	"sort"
	"testing"
)

func testCatalog(n int) []Ball {
	names := []string{"Ruby", "Sapphire", "Emerald", "Amber", "Amethyst", "Onyx", "Pearl"}
	out := make([]Ball, 0, n)
	for i := 0; i < n; i++ {
		name := names[i%len(names)]
		out = append(out, Ball{ID: name + "-id", Name: name, ImageRef: "data:image/png;base64,AAAA"})
	}
	return out
}

func TestNewSimulationDefaults(t *testing.T) {
	sim := NewSimulation(7, nil, testCatalog(3))
	if sim.Mode() != ModeMenu {
		t.Errorf("mode = %s, want menu", sim.Mode())
	}
	if sim.TotalSelectedCount() != 3 {
		t.Errorf("total selected = %d, want 3", sim.TotalSelectedCount())
	}
	if sim.DropX() != sim.Board().WorldW/2 {
		t.Errorf("dropX = %.1f, want centre", sim.DropX())
	}
}

func TestSetBallCountClamps(t *testing.T) {
	sim := NewSimulation(1, nil, testCatalog(2))
	id := "Ruby-id"

	sim.SetBallCount(id, -5)
	if got := sim.BallCount(id); got != 0 {
		t.Errorf("count after -5 = %d, want 0", got)
	}
	sim.SetBallCount(id, 150)
	if got := sim.BallCount(id); got != MaxBallCount {
		t.Errorf("count after 150 = %d, want %d", got, MaxBallCount)
	}
	sim.SetBallCount("missing", 5)
	if _, ok := sim.Counts()["missing"]; ok {
		t.Error("unknown id was added to counts")
	}
	if got := sim.TotalSelectedCount(); got != MaxBallCount+1 {
		t.Errorf("total = %d, want %d", got, MaxBallCount+1)
	}
}

func TestSetCatalogKeepsKnownCounts(t *testing.T) {
	sim := NewSimulation(1, nil, testCatalog(2))
	sim.SetBallCount("Ruby-id", 4)
	sim.SetCatalog([]Ball{{ID: "Ruby-id", Name: "Ruby"}, {ID: "new", Name: "New"}})

	counts := sim.Counts()
	if counts["Ruby-id"] != 4 || counts["new"] != 1 {
		t.Errorf("counts = %v", counts)
	}
	if _, ok := counts["Sapphire-id"]; ok {
		t.Error("removed ball kept its count")
	}
}

func TestPrepareDropQueue(t *testing.T) {
	sim := NewSimulation(99, nil, testCatalog(3))
	sim.SetBallCount("Ruby-id", 2)
	sim.SetBallCount("Sapphire-id", 0)
	sim.SetBallCount("Emerald-id", 3)

	plain := sim.PrepareDropQueue(false)
	want := []string{"Ruby-id", "Ruby-id", "Emerald-id", "Emerald-id", "Emerald-id"}
	if len(plain) != len(want) {
		t.Fatalf("queue = %v", plain)
	}
	for i := range want {
		if plain[i] != want[i] {
			t.Fatalf("unshuffled queue = %v, want %v", plain, want)
		}
	}

	shuffled := sim.PrepareDropQueue(true)
	again := sim.PrepareDropQueue(true)
	for i := range shuffled {
		if shuffled[i] != again[i] {
			t.Fatalf("shuffle not deterministic: %v vs %v", shuffled, again)
		}
	}
	sorted := append([]string(nil), shuffled...)
	sort.Strings(sorted)
	expect := append([]string(nil), want...)
	sort.Strings(expect)
	for i := range sorted {
		if sorted[i] != expect[i] {
			t.Fatalf("shuffle changed the multiset: %v", shuffled)
		}
	}
	if sim.TotalToDrop() != 5 || sim.PendingCount() != 5 {
		t.Errorf("totalToDrop=%d pending=%d", sim.TotalToDrop(), sim.PendingCount())
	}
}

func TestShuffleDoesNotPerturbSpawns(t *testing.T) {
	a := NewSimulation(1234, nil, testCatalog(1))
	b := NewSimulation(1234, nil, testCatalog(1))
	for i := 0; i < 3; i++ {
		b.PrepareDropQueue(true)
	}
	a.Start()
	b.Start()

	ma, mb := a.DropMarble(), b.DropMarble()
	if ma == nil || mb == nil {
		t.Fatal("expected a marble from each simulation")
	}
	if ma.ID != mb.ID || ma.Pos != mb.Pos || ma.Vel != mb.Vel {
		t.Errorf("spawn differs: %+v vs %+v", ma, mb)
	}
}

func TestSetDropXClamps(t *testing.T) {
	sim := NewSimulation(1, nil, testCatalog(1))
	pad := sim.Board().BallR + DropXMargin

	sim.SetDropX(-100)
	if sim.DropX() != pad {
		t.Errorf("dropX = %.1f, want %.1f", sim.DropX(), pad)
	}
	sim.SetDropX(1e6)
	if sim.DropX() != sim.Board().WorldW-pad {
		t.Errorf("dropX = %.1f, want %.1f", sim.DropX(), sim.Board().WorldW-pad)
	}
	sim.SetDropX(300)
	nan := 0.0
	sim.SetDropX(nan / nan)
	if sim.DropX() != 300 {
		t.Errorf("NaN changed dropX to %.1f", sim.DropX())
	}
}

func TestDropMarbleOutsidePlayReturnsNil(t *testing.T) {
	sim := NewSimulation(1, nil, testCatalog(2))
	if m := sim.DropMarble(); m != nil {
		t.Errorf("menu drop returned %+v", m)
	}
	sim.Start()
	sim.DropAll()
	if m := sim.DropMarble(); m != nil {
		t.Errorf("drop from an empty queue returned %+v", m)
	}
}

func TestDropAllSpawnsEverything(t *testing.T) {
	sim := NewSimulation(5, nil, testCatalog(4))
	for _, b := range sim.Catalog() {
		sim.SetBallCount(b.ID, 3)
	}
	sim.Start()

	if n := sim.DropAll(); n != 12 {
		t.Errorf("DropAll = %d, want 12", n)
	}
	if sim.PendingCount() != 0 {
		t.Errorf("pending = %d after DropAll", sim.PendingCount())
	}
	if len(sim.Marbles()) != 12 {
		t.Errorf("live marbles = %d, want 12", len(sim.Marbles()))
	}

	ids := make(map[string]bool)
	for i, m := range sim.Marbles() {
		if ids[m.ID] {
			t.Errorf("duplicate marble id %s", m.ID)
		}
		ids[m.ID] = true
		if m.Seq != i {
			t.Errorf("marble %d has seq %d", i, m.Seq)
		}
	}
}

func TestResetIsIdempotent(t *testing.T) {
	sim := NewSimulation(3, nil, testCatalog(2))
	sim.Start()
	sim.DropAll()
	for i := 0; i < 30; i++ {
		sim.Step(FixedDt)
	}

	sim.Reset()
	once := sim.RenderToText()
	sim.Reset()
	twice := sim.RenderToText()

	if once != twice {
		t.Errorf("second reset changed state:\n%s\n%s", once, twice)
	}
	if sim.Mode() != ModeMenu || len(sim.Marbles()) != 0 || sim.Clock() != 0 || sim.PendingCount() != 0 {
		t.Errorf("reset left run state: mode=%s marbles=%d t=%v pending=%d",
			sim.Mode(), len(sim.Marbles()), sim.Clock(), sim.PendingCount())
	}
}
