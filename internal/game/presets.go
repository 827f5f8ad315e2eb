package game

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// presetFile is the on-disk shape of the board preset file.
type presetFile struct {
	Default BoardConfig            `yaml:"default"`
	Presets map[string]BoardConfig `yaml:"presets"`
}

// Presets is a named set of board configs. Each preset is merged over the file's
// default block, which is merged over DefaultBoardConfig.
type Presets struct {
	mu      sync.RWMutex
	base    BoardConfig
	configs map[string]BoardConfig
	boards  map[string]*Board
}

// DefaultPresetName is used when a caller names no preset.
const DefaultPresetName = "classic"

// BuiltinPresets returns the presets available without a file.
func BuiltinPresets() *Presets {
	return newPresets(presetFile{})
}

// LoadPresets reads a YAML preset file. A missing file yields the built-in presets.
func LoadPresets(path string) (*Presets, error) {
	f, err := readPresetFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets %s: %w", path, err)
	}
	return newPresets(f), nil
}

func readPresetFile(path string) (presetFile, error) {
	var f presetFile
	if path == "" {
		return f, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return presetFile{}, nil
		}
		return presetFile{}, err
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return presetFile{}, err
	}
	return f, nil
}

func newPresets(f presetFile) *Presets {
	base := mergeBoardConfig(DefaultBoardConfig(), f.Default)
	p := &Presets{
		base:    base,
		configs: make(map[string]BoardConfig),
		boards:  make(map[string]*Board),
	}

	zig := base
	zig.Layout = LayoutZigzag
	zig.ElementScale = 0.85
	p.configs[DefaultPresetName] = base
	p.configs["zigzag"] = zig

	for name, cfg := range f.Presets {
		if name == "" {
			continue
		}
		p.configs[name] = mergeBoardConfig(base, cfg)
	}
	return p
}

// mergeBoardConfig overrides fields of a with the non-zero fields of b.
func mergeBoardConfig(a, b BoardConfig) BoardConfig {
	out := a
	if b.WorldW != 0 {
		out.WorldW = b.WorldW
	}
	if b.WorldH != 0 {
		out.WorldH = b.WorldH
	}
	if b.PegR != 0 {
		out.PegR = b.PegR
	}
	if b.BallR != 0 {
		out.BallR = b.BallR
	}
	if b.Rows != 0 {
		out.Rows = b.Rows
	}
	if b.Cols != 0 {
		out.Cols = b.Cols
	}
	if b.TopPad != 0 {
		out.TopPad = b.TopPad
	}
	if b.SidePad != 0 {
		out.SidePad = b.SidePad
	}
	if b.SlotCount != 0 {
		out.SlotCount = b.SlotCount
	}
	if b.SlotH != 0 {
		out.SlotH = b.SlotH
	}
	if b.Layout != "" {
		out.Layout = b.Layout
	}
	if b.HeightMultiplier != 0 {
		out.HeightMultiplier = b.HeightMultiplier
	}
	if b.ElementScale != 0 {
		out.ElementScale = b.ElementScale
	}
	if b.CorridorEnabled {
		out.CorridorEnabled = true
	}
	return out
}

// Config returns the named preset config.
func (p *Presets) Config(name string) (BoardConfig, bool) {
	if name == "" {
		name = DefaultPresetName
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	cfg, ok := p.configs[name]
	return cfg, ok
}

// Board returns the built board for a preset. Boards are immutable, so one instance is
// shared by every session using the preset.
func (p *Presets) Board(name string) (*Board, bool) {
	if name == "" {
		name = DefaultPresetName
	}
	p.mu.RLock()
	if b, ok := p.boards[name]; ok {
		p.mu.RUnlock()
		return b, true
	}
	cfg, ok := p.configs[name]
	p.mu.RUnlock()
	if !ok {
		return nil, false
	}

	b := NewBoard(cfg)
	p.mu.Lock()
	if cached, ok := p.boards[name]; ok {
		b = cached
	} else {
		p.boards[name] = b
	}
	p.mu.Unlock()
	return b, true
}

// Names lists preset names in sorted order.
func (p *Presets) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.configs))
	for n := range p.configs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
