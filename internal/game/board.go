package game

import (
	"fmt"
	"math"
)

// LayoutKind names a board layout.
type LayoutKind string

const (
	LayoutClassic LayoutKind = "classic"
	LayoutZigzag  LayoutKind = "zigzag"
)

// BoardConfig holds the builder parameters. Zero values fall back to DefaultBoardConfig.
type BoardConfig struct {
	WorldW           float64    `json:"world_w" yaml:"world_w"`
	WorldH           float64    `json:"world_h" yaml:"world_h"`
	PegR             float64    `json:"peg_r" yaml:"peg_r"`
	BallR            float64    `json:"ball_r" yaml:"ball_r"`
	Rows             int        `json:"rows" yaml:"rows"`
	Cols             int        `json:"cols" yaml:"cols"`
	TopPad           float64    `json:"top_pad" yaml:"top_pad"`
	SidePad          float64    `json:"side_pad" yaml:"side_pad"`
	SlotCount        int        `json:"slot_count" yaml:"slot_count"`
	SlotH            float64    `json:"slot_h" yaml:"slot_h"`
	Layout           LayoutKind `json:"layout" yaml:"layout"`
	HeightMultiplier float64    `json:"height_multiplier" yaml:"height_multiplier"`
	ElementScale     float64    `json:"element_scale" yaml:"element_scale"`
	CorridorEnabled  bool       `json:"corridor_enabled" yaml:"corridor_enabled"`
}

// DefaultBoardConfig returns the stock 8-slot classic board.
func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		WorldW:           900,
		WorldH:           1350,
		PegR:             10,
		BallR:            18,
		Rows:             16,
		Cols:             10,
		TopPad:           140,
		SidePad:          70,
		SlotCount:        8,
		SlotH:            130,
		Layout:           LayoutClassic,
		HeightMultiplier: 1,
		ElementScale:     1,
	}
}

// Peg is a static circular obstacle.
type Peg struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// Slot is a bottom bin.
type Slot struct {
	Index int     `json:"idx"`
	X0    float64 `json:"x0"`
	X1    float64 `json:"x1"`
	Label string  `json:"label"`
}

// Bounds is the playable horizontal range at some height.
type Bounds struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Layout is the per-kind behaviour the integrator relies on.
type Layout interface {
	Kind() LayoutKind
	// BoundsAtY reports the playable range at y; false means only the world walls apply.
	BoundsAtY(y float64) (Bounds, bool)
	// Collide resolves kinematic obstacles against m and returns the number of contacts.
	Collide(m *Marble, clock float64) int
}

// Board is immutable once built.
type Board struct {
	WorldW           float64
	WorldH           float64
	PegR             float64
	BallR            float64
	Rows             int
	Cols             int
	TopPad           float64
	SidePad          float64
	SlotCount        int
	SlotH            float64
	SlotW            float64
	HeightMultiplier float64
	ElementScale     float64
	CorridorEnabled  bool

	Pegs   []Peg
	Slots  []Slot
	Layout Layout
	Zigzag *Zigzag // nil unless the zigzag layout is used
}

// FinishY is the line separating the playfield from the slot band.
func (b *Board) FinishY() float64 {
	return b.WorldH - b.SlotH
}

// Kind returns the layout kind.
func (b *Board) Kind() LayoutKind {
	return b.Layout.Kind()
}

// PropellerCount returns the number of kinematic obstacles.
func (b *Board) PropellerCount() int {
	if b.Zigzag == nil {
		return 0
	}
	return len(b.Zigzag.Propellers)
}

// NewBoard builds geometry from cfg. It is pure: equal configs give identical boards.
func NewBoard(cfg BoardConfig) *Board {
	cfg = normalizeBoardConfig(cfg)

	b := &Board{
		WorldW:           cfg.WorldW,
		WorldH:           cfg.WorldH * cfg.HeightMultiplier,
		PegR:             cfg.PegR * cfg.ElementScale,
		BallR:            cfg.BallR * cfg.ElementScale,
		Rows:             int(math.Round(float64(cfg.Rows) * cfg.HeightMultiplier)),
		Cols:             cfg.Cols,
		TopPad:           cfg.TopPad,
		SidePad:          cfg.SidePad,
		SlotCount:        cfg.SlotCount,
		SlotH:            cfg.SlotH,
		HeightMultiplier: cfg.HeightMultiplier,
		ElementScale:     cfg.ElementScale,
		CorridorEnabled:  cfg.CorridorEnabled,
	}

	b.SlotW = b.WorldW / float64(b.SlotCount)
	b.Slots = make([]Slot, b.SlotCount)
	for i := range b.Slots {
		b.Slots[i] = Slot{
			Index: i,
			X0:    float64(i) * b.SlotW,
			X1:    float64(i+1) * b.SlotW,
			Label: fmt.Sprintf("S%d", i+1),
		}
	}

	switch cfg.Layout {
	case LayoutZigzag:
		z := buildZigzag(b)
		b.Zigzag = z
		b.Pegs = z.pegs
		b.Layout = &zigzagLayout{z: z}
	default:
		b.Pegs = staggeredPegs(
			b.SidePad, b.WorldW-b.SidePad,
			b.TopPad, b.FinishY()-PegBandBottom,
			b.Rows, b.Cols, b.PegR,
		)
		cl := &classicLayout{}
		if b.CorridorEnabled {
			rail := b.SidePad / 2
			cl.rails = &Bounds{Left: rail, Right: b.WorldW - rail}
		}
		b.Layout = cl
	}

	return b
}

func normalizeBoardConfig(cfg BoardConfig) BoardConfig {
	def := DefaultBoardConfig()
	if !isFinite(cfg.WorldW) || cfg.WorldW <= 0 {
		cfg.WorldW = def.WorldW
	}
	if !isFinite(cfg.WorldH) || cfg.WorldH <= 0 {
		cfg.WorldH = def.WorldH
	}
	if !isFinite(cfg.PegR) || cfg.PegR <= 0 {
		cfg.PegR = def.PegR
	}
	if !isFinite(cfg.BallR) || cfg.BallR <= 0 {
		cfg.BallR = def.BallR
	}
	if cfg.Rows < 0 {
		cfg.Rows = 0
	}
	if cfg.Cols < 0 {
		cfg.Cols = 0
	}
	if !isFinite(cfg.TopPad) || cfg.TopPad < 0 {
		cfg.TopPad = 0
	}
	if !isFinite(cfg.SidePad) || cfg.SidePad < 0 || cfg.SidePad*2 >= cfg.WorldW {
		cfg.SidePad = 0
	}
	if cfg.SlotCount < 1 {
		cfg.SlotCount = 1
	}
	if !isFinite(cfg.SlotH) || cfg.SlotH < 0 || cfg.SlotH >= cfg.WorldH {
		cfg.SlotH = def.SlotH
	}
	if cfg.Layout != LayoutZigzag {
		cfg.Layout = LayoutClassic
	}
	if !isFinite(cfg.HeightMultiplier) || cfg.HeightMultiplier == 0 {
		cfg.HeightMultiplier = 1
	}
	cfg.HeightMultiplier = clamp(cfg.HeightMultiplier, 0.5, 4)
	if !isFinite(cfg.ElementScale) || cfg.ElementScale == 0 {
		cfg.ElementScale = 1
	}
	cfg.ElementScale = clamp(cfg.ElementScale, 0.5, 1.5)
	return cfg
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// classicLayout is the plain peg grid, optionally with straight side rails.
type classicLayout struct {
	rails *Bounds
}

func (l *classicLayout) Kind() LayoutKind { return LayoutClassic }

func (l *classicLayout) BoundsAtY(float64) (Bounds, bool) {
	if l.rails == nil {
		return Bounds{}, false
	}
	return *l.rails, true
}

func (l *classicLayout) Collide(*Marble, float64) int { return 0 }
