package catalog

import (
	"encoding/json"
	"strings"

	"github.com/playmatatu/marble-roulette/internal/game"
)

const (
	// MaxFieldRunes bounds the stored length of ids and names.
	MaxFieldRunes = 40
	DefaultTint   = "#ffffff"
	dataURLPrefix = "data:image/"
)

// Result is the outcome of Validate: either Valid or Invalid.
type Result interface {
	isResult()
}

// Valid carries the cleaned catalog.
type Valid struct {
	Catalog []game.Ball
}

// Invalid explains why nothing usable was found.
type Invalid struct {
	Reason string
}

func (Valid) isResult()   {}
func (Invalid) isResult() {}

// Validate parses a JSON catalog. Malformed entries are dropped; the result is Invalid
// only when the document is not an array or no entry survives.
func Validate(raw []byte) Result {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return Invalid{Reason: "catalog is not a JSON array"}
	}

	safe := make([]game.Ball, 0, len(entries))
	for _, e := range entries {
		if b, ok := validateEntry(e); ok {
			safe = append(safe, b)
		}
	}
	if len(safe) == 0 {
		return Invalid{Reason: "catalog has no valid entries"}
	}
	return Valid{Catalog: safe}
}

// ValidateBalls runs already-decoded balls through the same rules.
func ValidateBalls(balls []game.Ball) Result {
	raw, err := json.Marshal(balls)
	if err != nil {
		return Invalid{Reason: err.Error()}
	}
	return Validate(raw)
}

func validateEntry(raw json.RawMessage) (game.Ball, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return game.Ball{}, false
	}

	id, ok := obj["id"].(string)
	if !ok || id == "" {
		return game.Ball{}, false
	}
	name, ok := obj["name"].(string)
	if !ok || name == "" {
		return game.Ball{}, false
	}
	img, ok := obj["imageDataUrl"].(string)
	if !ok || !strings.HasPrefix(img, dataURLPrefix) {
		return game.Ball{}, false
	}
	tint, ok := obj["tint"].(string)
	if !ok || tint == "" {
		tint = DefaultTint
	}

	return game.Ball{
		ID:       truncateRunes(id, MaxFieldRunes),
		Name:     truncateRunes(name, MaxFieldRunes),
		ImageRef: img,
		Tint:     tint,
	}, true
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
