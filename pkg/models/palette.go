package models

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// defaultPaletteHex is the fixed color cycle assigned to sub-meshes by
// position in the scene.
var defaultPaletteHex = [...]string{
	"#7c5cfc", // violet
	"#e94560", // rose
	"#00e5a0", // mint
	"#ffd700", // gold
	"#ff8c42", // orange
	"#44cfcb", // teal
	"#f038ff", // magenta
	"#00b4d8", // sky
}

var defaultPalette = mustParsePalette(defaultPaletteHex[:])

// Palette is a cycle of display colors.
type Palette []color.RGBA

// DefaultPalette returns a copy of the built-in 8-color palette.
func DefaultPalette() Palette {
	p := make(Palette, len(defaultPalette))
	copy(p, defaultPalette)
	return p
}

// DefaultPaletteHex returns the built-in palette as hex strings.
func DefaultPaletteHex() []string {
	return append([]string(nil), defaultPaletteHex[:]...)
}

// At returns the color for the sub-mesh at position i, cycling with
// modulo arithmetic. An empty palette falls back to the default one.
func (p Palette) At(i int) color.RGBA {
	if len(p) == 0 {
		p = defaultPalette
	}
	if i < 0 {
		i = -i
	}
	return p[i%len(p)]
}

// ParseColor parses a "#rrggbb" hex string into an opaque RGBA color.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}, nil
}

// ParsePalette parses a list of hex colors.
func ParsePalette(hexes []string) (Palette, error) {
	if len(hexes) == 0 {
		return nil, fmt.Errorf("palette is empty")
	}
	p := make(Palette, 0, len(hexes))
	for _, h := range hexes {
		c, err := ParseColor(h)
		if err != nil {
			return nil, err
		}
		p = append(p, c)
	}
	return p, nil
}

func mustParsePalette(hexes []string) Palette {
	p, err := ParsePalette(hexes)
	if err != nil {
		panic(err)
	}
	return p
}
