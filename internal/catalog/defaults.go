package catalog

import (
	"encoding/base64"
	"fmt"

	"github.com/playmatatu/marble-roulette/internal/game"
)

// svgMarble renders a flat disc so the defaults need no image assets.
func svgMarble(fill string) string {
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="64" height="64"><circle cx="32" cy="32" r="30" fill="%s"/><circle cx="24" cy="22" r="8" fill="#ffffff" fill-opacity="0.45"/></svg>`, fill)
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}

var defaultBalls = []game.Ball{
	{ID: "ruby", Name: "Ruby", Tint: "#e0115f"},
	{ID: "sapphire", Name: "Sapphire", Tint: "#0f52ba"},
	{ID: "emerald", Name: "Emerald", Tint: "#50c878"},
	{ID: "amber", Name: "Amber", Tint: "#ffbf00"},
	{ID: "amethyst", Name: "Amethyst", Tint: "#9966cc"},
}

// DefaultCatalog returns a fresh copy of the built-in catalog.
func DefaultCatalog() []game.Ball {
	out := make([]game.Ball, len(defaultBalls))
	for i, b := range defaultBalls {
		b.ImageRef = svgMarble(b.Tint)
		out[i] = b
	}
	return out
}
