// Package fonts provides the typefaces used for raster output and embedded
// SVG text.
//
// The Go font family ships with golang.org/x/image, so no font files need to
// be installed or embedded separately.
package fonts

import (
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontFamily is the CSS font-family name for the embedded font.
const FontFamily = "Go"

// FallbackFontFamily provides fallback fonts for viewers that ignore the
// embedded font.
const FallbackFontFamily = `'Go', 'Inter', 'Helvetica Neue', Arial, sans-serif`

// Weight selects a face from the family.
type Weight int

const (
	Regular Weight = iota
	Bold
)

var (
	parseOnce   sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
	parseErr    error
)

func parse() {
	parseOnce.Do(func() {
		if regularFont, parseErr = opentype.Parse(goregular.TTF); parseErr != nil {
			return
		}
		boldFont, parseErr = opentype.Parse(gobold.TTF)
	})
}

// Face returns a face of the given weight and size in points at 72 DPI.
func Face(w Weight, size float64) (font.Face, error) {
	parse()
	if parseErr != nil {
		return nil, fmt.Errorf("parse font: %w", parseErr)
	}
	f := regularFont
	if w == Bold {
		f = boldFont
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// RegularTTF returns the regular TTF font data.
func RegularTTF() []byte {
	return goregular.TTF
}

// Cache for the base64-encoded font (computed once on first access).
var (
	ttfBase64     string
	ttfBase64Once sync.Once
)

// RegularTTFBase64 returns the regular TTF font data as a base64 string for
// @font-face data URIs. The result is cached after first computation.
func RegularTTFBase64() string {
	ttfBase64Once.Do(func() {
		ttfBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	})
	return ttfBase64
}
