package heatmap

import (
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
)

// paletteStops are the gradient anchors, red through yellow to green. Low
// ratings map to the first stop, high ratings to the last.
var paletteStops = [...]color.NRGBA{
	{R: 0xd6, G: 0x27, B: 0x27, A: 0xff},
	{R: 0xf5, G: 0xe5, B: 0x05, A: 0xff},
	{R: 0x15, G: 0xf5, B: 0x05, A: 0xff},
}

// defaultPaletteSteps is the color resolution used by the renderer.
const defaultPaletteSteps = 256

// ratingPalette implements palette.Palette over a precomputed ramp.
type ratingPalette struct {
	colors []color.Color
}

// Colors implements palette.Palette.
func (p ratingPalette) Colors() []color.Color {
	return p.colors
}

// Palette returns n colors linearly interpolated through the gradient
// anchors. n is clamped to at least 2 so both end colors survive.
func Palette(n int) palette.Palette {
	if n < 2 {
		n = 2
	}

	segments := len(paletteStops) - 1
	colors := make([]color.Color, n)
	for i := range colors {
		t := float64(i) / float64(n-1) * float64(segments)
		segment := int(t)
		if segment >= segments {
			segment = segments - 1
		}
		colors[i] = lerpColor(paletteStops[segment], paletteStops[segment+1], t-float64(segment))
	}

	return ratingPalette{colors: colors}
}

// lerpColor interpolates between two colors channel by channel.
func lerpColor(from, to color.NRGBA, t float64) color.NRGBA {
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}

	return color.NRGBA{
		R: lerp(from.R, to.R),
		G: lerp(from.G, to.G),
		B: lerp(from.B, to.B),
		A: 0xff,
	}
}
