package game

import (
	"context"
	"sync"
	"testing"
)

func newTestSession(seed uint32) *Session {
	return NewSession(SessionOptions{
		Token:     "tok",
		Catalog:   testCatalog(3),
		FixedSeed: seed,
		Preset:    DefaultPresetName,
	})
}

func advanceUntilWinner(t *testing.T, s *Session) {
	t.Helper()
	for i := 0; i < 180; i++ {
		if err := s.AdvanceTime(context.Background(), 1000); err != nil {
			t.Fatalf("AdvanceTime: %v", err)
		}
		if s.Snapshot().Winner != nil {
			return
		}
	}
	t.Fatal("no winner after 180 s")
}

func TestTryStartNeedsSelection(t *testing.T) {
	s := newTestSession(9)
	for _, b := range s.Catalog() {
		s.SetBallCount(b.ID, 0)
	}
	if s.TryStart() {
		t.Error("started with nothing selected")
	}
	if s.Mode() != ModeMenu {
		t.Errorf("mode = %s", s.Mode())
	}
}

func TestTryStartDropsEverything(t *testing.T) {
	s := newTestSession(9)
	s.SetBallCount("Ruby-id", 4)
	if !s.TryStart() {
		t.Fatal("TryStart failed")
	}
	snap := s.Snapshot()
	if snap.Mode != ModePlaying || len(snap.Marbles) != 6 || snap.Pending != 0 {
		t.Errorf("mode=%s marbles=%d pending=%d", snap.Mode, len(snap.Marbles), snap.Pending)
	}
}

func TestWinnerEventFiresOnce(t *testing.T) {
	s := newTestSession(31)
	var mu sync.Mutex
	var events []WinnerEvent
	s.OnWinner = func(ev WinnerEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}

	s.TryStart()
	advanceUntilWinner(t, s)
	for i := 0; i < 5; i++ {
		s.AdvanceTime(context.Background(), 100)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("winner events = %d, want 1", len(events))
	}
	ev := events[0]
	if ev.Token != "tok" || ev.Seed != 31 || ev.Total != 3 || len(ev.Slots) != 3 {
		t.Errorf("event = %+v", ev)
	}
	if ev.Label != s.Board().Slots[ev.Slot].Label {
		t.Errorf("label %s does not match slot %d", ev.Label, ev.Slot)
	}
}

func TestManualDropsReportOnlyFinalWinner(t *testing.T) {
	s := newTestSession(12)
	s.SetBallCount("Ruby-id", 2)
	s.SetBallCount("Sapphire-id", 0)
	s.SetBallCount("Emerald-id", 0)
	var mu sync.Mutex
	var events []WinnerEvent
	s.OnWinner = func(ev WinnerEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}

	s.Start()
	if s.DropMarble() == nil {
		t.Fatal("first drop failed")
	}
	advanceUntilWinner(t, s)
	interim := s.Snapshot().Winner
	mu.Lock()
	if len(events) != 0 {
		t.Fatalf("winner reported with a marble still queued: %+v", events)
	}
	mu.Unlock()

	if s.DropMarble() == nil {
		t.Fatal("second drop failed")
	}
	for i := 0; i < 180; i++ {
		s.AdvanceTime(context.Background(), 1000)
		if w := s.Snapshot().Winner; w != nil && w.T != interim.T {
			break
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("winner events = %d, want 1", len(events))
	}
	if ev := events[0]; ev.Total != 2 || len(ev.Slots) != 2 {
		t.Errorf("event = %+v", ev)
	}
}

func TestFixedSeedReplays(t *testing.T) {
	s := newTestSession(77)
	s.TryStart()
	advanceUntilWinner(t, s)
	first := s.Snapshot().Winner

	if !s.HandleStart() {
		t.Fatal("HandleStart failed")
	}
	if w := s.Snapshot().Winner; w != nil {
		t.Fatalf("restart kept winner %+v", w)
	}
	advanceUntilWinner(t, s)
	second := s.Snapshot().Winner

	if *first != *second {
		t.Errorf("fixed seed replay differs: %+v vs %+v", first, second)
	}
}

func TestTogglePause(t *testing.T) {
	s := newTestSession(3)
	if s.TogglePause() {
		t.Error("paused from the menu")
	}
	s.TryStart()
	if !s.TogglePause() || !s.Paused() {
		t.Error("could not pause a running run")
	}
	if s.Frame(16) != 0 {
		t.Error("paused session stepped")
	}
	if !s.TogglePause() || s.Paused() {
		t.Error("could not resume")
	}

	advanceUntilWinner(t, s)
	if s.TogglePause() {
		t.Error("paused after the winner was decided")
	}
}

func TestRestartAndReset(t *testing.T) {
	s := newTestSession(3)
	s.Restart()
	if s.Mode() != ModeMenu {
		t.Errorf("restart from menu changed mode to %s", s.Mode())
	}

	s.TryStart()
	s.Restart()
	if s.Mode() != ModeMenu || len(s.Snapshot().Marbles) != 0 {
		t.Error("restart did not clear the run")
	}

	s.TryStart()
	s.Reset()
	s.Reset()
	if s.Mode() != ModeMenu {
		t.Errorf("mode after reset = %s", s.Mode())
	}
}

func TestSessionControls(t *testing.T) {
	s := newTestSession(3)

	if _, ok := s.SetBallCount("missing", 3); ok {
		t.Error("unknown ball accepted")
	}
	if n, ok := s.SetBallCount("Ruby-id", 500); !ok || n != MaxBallCount {
		t.Errorf("SetBallCount = %d, %v", n, ok)
	}
	if x := s.SetDropX(-10); x != s.Board().BallR+DropXMargin {
		t.Errorf("SetDropX clamped to %v", x)
	}
	if v := s.SetSpeedMultiplier(9); v != MaxSpeedMultiplier {
		t.Errorf("speed = %v", v)
	}

	if !s.SetCatalog(testCatalog(2)) {
		t.Error("catalog swap refused in menu")
	}
	s.Start()
	if s.SetCatalog(testCatalog(1)) {
		t.Error("catalog swap accepted mid-run")
	}
	if m := s.DropMarble(); m == nil || m.BallID == "" {
		t.Errorf("DropMarble = %+v", m)
	}
	if n := s.DropAll(); n != s.Snapshot().TotalToDrop-1 {
		t.Errorf("DropAll = %d", n)
	}
}

func TestRandomSeedNonZero(t *testing.T) {
	for i := 0; i < 100; i++ {
		if randomSeed() == 0 {
			t.Fatal("zero seed")
		}
	}
}
