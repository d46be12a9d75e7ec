package draw

import (
	"image"
	"image/color"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// NewFace parses TrueType font data into a face at the given point size.
func NewFace(data []byte, points float64) (font.Face, error) {
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size: points,
		DPI:  72,
	}), nil
}

// Text draws s with the baseline starting at p.
func Text(dst Image, p image.Point, face font.Face, s string, c color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(p.X, p.Y),
	}
	d.DrawString(s)
}

// TextCentered draws s horizontally centered on x, baseline at y.
func TextCentered(dst Image, x, y int, face font.Face, s string, c color.Color) {
	w := font.MeasureString(face, s)
	Text(dst, image.Point{X: x - w.Round()/2, Y: y}, face, s, c)
}
