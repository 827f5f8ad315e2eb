package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatatu/marble-roulette/internal/game"
)

const png = "data:image/png;base64,AAAA"

func TestValidateDropsMalformedEntries(t *testing.T) {
	raw := `[
		null,
		42,
		"ball",
		{"id": "", "name": "x", "imageDataUrl": "` + png + `"},
		{"id": "a", "name": 7, "imageDataUrl": "` + png + `"},
		{"id": "b", "name": "B", "imageDataUrl": "https://example.com/b.png"},
		{"id": "c", "name": "C", "imageDataUrl": "` + png + `", "tint": "#123456"},
		{"id": "d", "name": "D", "imageDataUrl": "` + png + `", "tint": 5}
	]`

	r, ok := Validate([]byte(raw)).(Valid)
	require.True(t, ok)
	require.Len(t, r.Catalog, 2)
	assert.Equal(t, "c", r.Catalog[0].ID)
	assert.Equal(t, "#123456", r.Catalog[0].Tint)
	assert.Equal(t, "d", r.Catalog[1].ID)
	assert.Equal(t, DefaultTint, r.Catalog[1].Tint)
}

func TestValidateTruncatesLongFields(t *testing.T) {
	long := strings.Repeat("é", 55)
	raw := `[{"id": "` + long + `", "name": "` + long + `", "imageDataUrl": "` + png + `"}]`

	r, ok := Validate([]byte(raw)).(Valid)
	require.True(t, ok)
	assert.Len(t, []rune(r.Catalog[0].ID), MaxFieldRunes)
	assert.Len(t, []rune(r.Catalog[0].Name), MaxFieldRunes)
}

func TestValidateInvalid(t *testing.T) {
	cases := map[string]string{
		"not json":   `{{`,
		"object":     `{"id": "a"}`,
		"empty":      `[]`,
		"all broken": `[{"id": "a"}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			r, ok := Validate([]byte(raw)).(Invalid)
			require.True(t, ok)
			assert.NotEmpty(t, r.Reason)
		})
	}
}

func TestDefaultCatalogIsValid(t *testing.T) {
	def := DefaultCatalog()
	r, ok := ValidateBalls(def).(Valid)
	require.True(t, ok)
	assert.Equal(t, def, r.Catalog)

	def[0].Name = "mutated"
	assert.NotEqual(t, "mutated", DefaultCatalog()[0].Name)
}

func TestValidateBallsRoundTrip(t *testing.T) {
	r, ok := ValidateBalls([]game.Ball{{ID: "x", Name: "X", ImageRef: png}}).(Valid)
	require.True(t, ok)
	assert.Equal(t, DefaultTint, r.Catalog[0].Tint)
}
