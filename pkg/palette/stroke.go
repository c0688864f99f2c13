package palette

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Stroke returns a darker shade of fill for node outlines. Unparseable
// colors yield Neutral.
func Stroke(fill string) string {
	c, err := colorful.Hex(fill)
	if err != nil {
		return Neutral
	}
	return c.BlendLab(colorful.Color{}, 0.35).Clamped().Hex()
}

// TextOn returns a readable text color (near black or white) for labels
// drawn on top of fill.
func TextOn(fill string) string {
	c, err := colorful.Hex(fill)
	if err != nil {
		return "#ffffff"
	}
	l, _, _ := c.Lab()
	if l > 0.65 {
		return "#111827"
	}
	return "#ffffff"
}

// Swatch returns fill lightened toward white by amount in [0, 1], used for
// legend backgrounds.
func Swatch(fill string, amount float64) string {
	c, err := colorful.Hex(fill)
	if err != nil {
		return fill
	}
	amount = max(0, min(1, amount))
	return c.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, amount).Clamped().Hex()
}
