package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/playmatatu/marble-roulette/internal/catalog"
	"github.com/playmatatu/marble-roulette/internal/game"
)

func main() {
	seed := flag.Uint("seed", 42, "Run seed.")
	presetsPath := flag.String("presets", "config/boards.yaml", "Board preset file.")
	preset := flag.String("preset", game.DefaultPresetName, "Board preset name.")
	layout := flag.String("layout", "", "Override the preset layout (classic or zigzag).")
	count := flag.Int("count", 1, "Marbles per catalog ball when dropping all at once.")
	balls := flag.Int("balls", 0, "Use only the first N default balls (0 = all).")
	dropX := flag.String("drop-x", "", "Comma separated drop positions; drops one marble per position.")
	gapMs := flag.Float64("gap-ms", 500, "Simulated time between positioned drops.")
	maxSeconds := flag.Float64("max-seconds", 180, "Give up after this much simulated time.")
	asJSON := flag.Bool("json", false, "Print the final text snapshot instead of a summary.")
	flag.Parse()

	presets, err := game.LoadPresets(*presetsPath)
	if err != nil {
		log.Fatalf("Failed to load board presets: %v", err)
	}
	cfg, ok := presets.Config(*preset)
	if !ok {
		log.Fatalf("Unknown preset %q (have %v)", *preset, presets.Names())
	}
	if *layout != "" {
		cfg.Layout = game.LayoutKind(*layout)
	}
	board := game.NewBoard(cfg)

	cat := catalog.DefaultCatalog()
	if *balls > 0 && *balls < len(cat) {
		cat = cat[:*balls]
	}

	positions, err := parsePositions(*dropX)
	if err != nil {
		log.Fatalf("Invalid -drop-x: %v", err)
	}

	sim := game.NewSimulation(uint32(*seed), board, cat)
	loop := game.NewLoop(sim, 1)

	if len(positions) > 0 {
		// Positioned drops use the first ball only, one marble per position.
		for _, b := range cat {
			sim.SetBallCount(b.ID, 0)
		}
		sim.SetBallCount(cat[0].ID, len(positions))
		sim.Start()
		for _, x := range positions {
			sim.SetDropX(x)
			sim.DropMarble()
			loop.TickFixed(*gapMs)
		}
	} else {
		for _, b := range cat {
			sim.SetBallCount(b.ID, *count)
		}
		sim.Start()
		sim.DropAll()
	}

	limit := int(*maxSeconds / game.FixedDt)
	for i := 0; i < limit && sim.Winner() == nil; i++ {
		sim.Step(game.FixedDt)
	}

	if *asJSON {
		fmt.Println(sim.RenderToText())
		return
	}

	snap := sim.Snapshot()
	fmt.Printf("seed=%d layout=%s marbles=%d t=%.3f\n", snap.Seed, snap.Board.Layout, snap.TotalToDrop, snap.T)
	slots := make([]string, 0, len(snap.Finished))
	for _, m := range snap.Finished {
		slots = append(slots, strconv.Itoa(m.Result.Slot))
	}
	fmt.Printf("slots=[%s]\n", strings.Join(slots, ","))
	fmt.Printf("stats: pegs=%d walls=%d corridor=%d propellers=%d\n",
		snap.Stats.PegContacts, snap.Stats.WallContacts, snap.Stats.CorridorContacts, snap.Stats.PropellerContacts)
	if snap.Winner == nil {
		fmt.Println("winner: none")
		os.Exit(1)
	}
	fmt.Printf("winner: %s (%s) slot=%s t=%.3f\n", snap.Winner.ID, snap.Winner.Name, snap.Winner.Label, snap.Winner.T)
}

func parsePositions(raw string) ([]float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("position %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
