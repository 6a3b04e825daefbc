package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/keyline/internal/term"
)

// ErrBadColor is returned for a color spec that is neither a hex
// value, a palette index, nor a known name.
var ErrBadColor = errors.New("unrecognized color")

// namedColors covers the classic 16-color names.
var namedColors = map[string]term.Color{
	"black":          0,
	"red":            1,
	"green":          2,
	"yellow":         3,
	"blue":           4,
	"magenta":        5,
	"cyan":           6,
	"white":          7,
	"bright-black":   8,
	"bright-red":     9,
	"bright-green":   10,
	"bright-yellow":  11,
	"bright-blue":    12,
	"bright-magenta": 13,
	"bright-cyan":    14,
	"bright-white":   15,
	"default":        term.ColorDefault,
}

// ParseColor turns a config color spec into a 256-color palette
// index. Accepted forms: "#rrggbb" (mapped to the nearest palette
// entry), a bare index "0".."255", or a color name.
func ParseColor(spec string) (term.Color, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	if spec == "" {
		return term.ColorDefault, nil
	}
	if c, ok := namedColors[spec]; ok {
		return c, nil
	}
	if n, err := strconv.Atoi(spec); err == nil {
		if n < 0 || n > 255 {
			return 0, fmt.Errorf("%w: index %d out of range", ErrBadColor, n)
		}
		return term.Color(n), nil
	}
	if strings.HasPrefix(spec, "#") {
		c, err := colorful.Hex(spec)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadColor, spec)
		}
		return nearestANSI(c), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadColor, spec)
}

// nearestANSI maps a color to the closest xterm 256-palette entry by
// perceptual (Lab) distance. The 16 base entries are skipped: their
// actual rendering varies per terminal theme, so a hex spec always
// lands on a stable cube or grayscale entry.
func nearestANSI(c colorful.Color) term.Color {
	best := term.Color(16)
	bestDist := -1.0
	for i, p := range xtermPalette() {
		d := c.DistanceLab(p)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = term.Color(16 + i)
		}
	}
	return best
}

var palette []colorful.Color

// xtermPalette returns entries 16..255: the 6x6x6 color cube followed
// by the 24-step grayscale ramp.
func xtermPalette() []colorful.Color {
	if palette != nil {
		return palette
	}
	levels := []float64{0, 95, 135, 175, 215, 255}
	for _, r := range levels {
		for _, g := range levels {
			for _, b := range levels {
				palette = append(palette, colorful.Color{R: r / 255, G: g / 255, B: b / 255})
			}
		}
	}
	for i := 0; i < 24; i++ {
		v := float64(8+i*10) / 255
		palette = append(palette, colorful.Color{R: v, G: v, B: v})
	}
	return palette
}
