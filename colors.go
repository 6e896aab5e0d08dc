package mt

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color identifies a cell color: a palette index (0-255), one of the named
// indices below, or a direct RGB value tagged with the true-color bit.
type Color uint32

const (
	// ColorForeground is the configurable default foreground.
	ColorForeground Color = 256
	// ColorBackground is the configurable default background.
	ColorBackground Color = 257

	// trueColorFlag tags a Color holding a packed 8-bit RGB triple.
	trueColorFlag Color = 1 << 24
)

// TrueColor packs an RGB triple into a direct-color Color value.
func TrueColor(r, g, b uint8) Color {
	return trueColorFlag | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// IsTrueColor returns true if c holds a direct RGB value rather than a
// palette index.
func (c Color) IsTrueColor() bool {
	return c&trueColorFlag != 0
}

// RGB unpacks a direct-color value. Only meaningful when IsTrueColor.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// DefaultPalette is the standard 256-color palette: 16 named colors (0-15),
// 216 color cube (16-231), 24 grayscale (232-255).
var DefaultPalette = [256]color.RGBA{
	// Standard colors (0-7)
	{0, 0, 0, 255},       // Black
	{205, 49, 49, 255},   // Red
	{13, 188, 121, 255},  // Green
	{229, 229, 16, 255},  // Yellow
	{36, 114, 200, 255},  // Blue
	{188, 63, 188, 255},  // Magenta
	{17, 168, 205, 255},  // Cyan
	{229, 229, 229, 255}, // White

	// Bright colors (8-15)
	{102, 102, 102, 255}, // Bright Black
	{241, 76, 76, 255},   // Bright Red
	{35, 209, 139, 255},  // Bright Green
	{245, 245, 67, 255},  // Bright Yellow
	{59, 142, 234, 255},  // Bright Blue
	{214, 112, 214, 255}, // Bright Magenta
	{41, 184, 219, 255},  // Bright Cyan
	{255, 255, 255, 255}, // Bright White

	// The color cube and grayscale ramp are generated in init below.
}

func init() {
	// Generate 216 color cube (16-231)
	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				DefaultPalette[i] = color.RGBA{
					R: uint8(r * 51),
					G: uint8(g * 51),
					B: uint8(b * 51),
					A: 255,
				}
				i++
			}
		}
	}

	// Generate grayscale (232-255)
	for j := 0; j < 24; j++ {
		gray := uint8(8 + j*10)
		DefaultPalette[232+j] = color.RGBA{gray, gray, gray, 255}
	}
}

// DefaultForeground is the color used for ColorForeground unless overridden.
var DefaultForeground = color.RGBA{229, 229, 229, 255}

// DefaultBackground is the color used for ColorBackground unless overridden.
var DefaultBackground = color.RGBA{0, 0, 0, 255}

// parseColorSpec parses an XParseColor-style color specification as accepted
// by OSC 4: "#rrggbb" or "rgb:RR/GG/BB" with 1-4 hex digits per channel.
func parseColorSpec(spec string) (color.RGBA, error) {
	if strings.HasPrefix(spec, "#") {
		c, err := colorful.Hex(spec)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("parse color %q: %w", spec, err)
		}
		r, g, b := c.RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 255}, nil
	}

	if rest, ok := strings.CutPrefix(spec, "rgb:"); ok {
		parts := strings.Split(rest, "/")
		if len(parts) != 3 {
			return color.RGBA{}, fmt.Errorf("parse color %q: want rgb:RR/GG/BB", spec)
		}
		var rgb [3]uint8
		for i, p := range parts {
			if len(p) < 1 || len(p) > 4 {
				return color.RGBA{}, fmt.Errorf("parse color %q: bad channel %q", spec, p)
			}
			v, err := strconv.ParseUint(p, 16, 16)
			if err != nil {
				return color.RGBA{}, fmt.Errorf("parse color %q: %w", spec, err)
			}
			// Scale to 8 bits regardless of how many digits were given.
			max := uint64(1)<<(4*len(p)) - 1
			rgb[i] = uint8(v * 255 / max)
		}
		return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}, nil
	}

	return color.RGBA{}, fmt.Errorf("parse color %q: unknown format", spec)
}

// ResolveColor maps a cell Color to a concrete RGBA value, honoring any
// palette overrides applied via OSC 4.
func (t *Terminal) ResolveColor(c Color) color.RGBA {
	if c.IsTrueColor() {
		r, g, b := c.RGB()
		return color.RGBA{R: r, G: g, B: b, A: 255}
	}
	if rgba, ok := t.palette[int(c)]; ok {
		return rgba
	}
	switch {
	case c < 256:
		return DefaultPalette[c]
	case c == ColorForeground:
		return DefaultForeground
	case c == ColorBackground:
		return DefaultBackground
	}
	return DefaultForeground
}

// setPaletteColor installs an override for palette index idx. Returns false
// when the index or the spec is invalid.
func (t *Terminal) setPaletteColor(idx int, spec string) bool {
	if idx < 0 || idx >= int(ColorBackground)+1 {
		return false
	}
	rgba, err := parseColorSpec(spec)
	if err != nil {
		return false
	}
	t.palette[idx] = rgba
	return true
}

// resetPaletteColor drops the override for idx, or every override when idx
// is negative.
func (t *Terminal) resetPaletteColor(idx int) bool {
	if idx < 0 {
		clear(t.palette)
		return true
	}
	if idx >= int(ColorBackground)+1 {
		return false
	}
	delete(t.palette, idx)
	return true
}
