package draw_test

import (
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/font/inconsolata"

	"github.com/openwrist/display/draw"
	"github.com/openwrist/display/pixel"
)

func isSet(t *testing.T, i *pixel.CRGB16Image, x, y int) bool {
	t.Helper()
	r, g, b, _ := i.At(x, y).RGBA()
	return r|g|b != 0
}

func TestLine(t *testing.T) {
	i := pixel.NewCRGB16Image(32, 32)
	draw.Line(i, image.Pt(0, 0), image.Pt(31, 31), color.White)
	for v := 0; v < 32; v++ {
		if !isSet(t, i, v, v) {
			t.Errorf("diagonal pixel (%d,%d) not set", v, v)
		}
	}
	if isSet(t, i, 10, 9) {
		t.Error("off-diagonal pixel set")
	}

	i.Clear()
	draw.Line(i, image.Pt(31, 8), image.Pt(0, 8), color.White)
	for x := 0; x < 32; x++ {
		if !isSet(t, i, x, 8) {
			t.Errorf("horizontal pixel (%d,8) not set", x)
		}
	}
}

func TestRectangle(t *testing.T) {
	i := pixel.NewCRGB16Image(16, 16)
	r := image.Rect(2, 3, 12, 10)
	draw.Rectangle(i, r, color.White)

	for _, p := range []image.Point{
		{2, 3}, {11, 3}, {2, 9}, {11, 9}, // corners
		{6, 3}, {6, 9}, {2, 6}, {11, 6}, // edge midpoints
	} {
		if !isSet(t, i, p.X, p.Y) {
			t.Errorf("outline pixel %v not set", p)
		}
	}
	if isSet(t, i, 6, 6) {
		t.Error("interior pixel set")
	}
}

func TestBox(t *testing.T) {
	i := pixel.NewCRGB16Image(16, 16)
	draw.Box(i, image.Rect(4, 4, 8, 8), color.White)
	for y := 4; y < 8; y++ {
		for x := 4; x < 8; x++ {
			if !isSet(t, i, x, y) {
				t.Errorf("fill pixel (%d,%d) not set", x, y)
			}
		}
	}
	if isSet(t, i, 3, 4) || isSet(t, i, 8, 4) {
		t.Error("pixel outside box set")
	}
}

func TestDisc(t *testing.T) {
	i := pixel.NewCRGB16Image(32, 32)
	draw.Disc(i, image.Pt(16, 16), 8, color.White)

	if !isSet(t, i, 16, 16) || !isSet(t, i, 16, 8) || !isSet(t, i, 24, 16) {
		t.Error("disc missing center or cardinal extremes")
	}
	if isSet(t, i, 16+7, 16+7) {
		t.Error("pixel outside disc radius set")
	}

	// Symmetry around the center on both axes.
	for d := 1; d <= 8; d++ {
		if isSet(t, i, 16, 16+d) != isSet(t, i, 16, 16-d) {
			t.Errorf("vertical asymmetry at offset %d", d)
		}
		if isSet(t, i, 16+d, 16) != isSet(t, i, 16-d, 16) {
			t.Errorf("horizontal asymmetry at offset %d", d)
		}
	}
}

func TestText(t *testing.T) {
	i := pixel.NewCRGB16Image(64, 32)
	draw.TextCentered(i, 32, 20, inconsolata.Regular8x16, "hi", color.White)

	set := 0
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			if isSet(t, i, x, y) {
				set++
			}
		}
	}
	if set == 0 {
		t.Fatal("no glyph pixels drawn")
	}
}
