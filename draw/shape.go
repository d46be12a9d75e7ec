package draw

import (
	"image"
	"image/color"
)

// Line draws a line between two points.
func Line(dst Image, a, b image.Point, c color.Color) {
	bresenham(dst, a.X, a.Y, b.X, b.Y, c)
}

// HorizontalLine draws a line between (x,y) and (x+w-1,y).
func HorizontalLine(dst Image, x, y, w int, c color.Color) {
	for i := 0; i < w; i++ {
		dst.Set(x+i, y, c)
	}
}

// VerticalLine draws a line between (x,y) and (x,y+h-1).
func VerticalLine(dst Image, x, y, h int, c color.Color) {
	for i := 0; i < h; i++ {
		dst.Set(x, y+i, c)
	}
}

// Rectangle draws a rectangle outline.
func Rectangle(dst Image, rect image.Rectangle, c color.Color) {
	var (
		w = rect.Dx()
		h = rect.Dy()
	)
	HorizontalLine(dst, rect.Min.X, rect.Min.Y, w, c)
	HorizontalLine(dst, rect.Min.X, rect.Max.Y-1, w, c)
	VerticalLine(dst, rect.Min.X, rect.Min.Y, h, c)
	VerticalLine(dst, rect.Max.X-1, rect.Min.Y, h, c)
}

// Box draws a filled rectangle.
func Box(dst Image, rect image.Rectangle, c color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		HorizontalLine(dst, rect.Min.X, y, rect.Dx(), c)
	}
}

// Circle draws a circle outline centered on p.
func Circle(dst Image, p image.Point, radius int, c color.Color) {
	midpoint(p.X, p.Y, radius, func(x0, x1, y int) {
		dst.Set(x0, y, c)
		dst.Set(x1, y, c)
	})
}

// Disc draws a filled circle centered on p.
func Disc(dst Image, p image.Point, radius int, c color.Color) {
	midpoint(p.X, p.Y, radius, func(x0, x1, y int) {
		HorizontalLine(dst, x0, y, x1-x0+1, c)
	})
}

// RoundedBox draws a filled rectangle with rounded corners.
func RoundedBox(dst Image, rect image.Rectangle, radius int, c color.Color) {
	var (
		w = rect.Dx()
		h = rect.Dy()
	)
	if radius*2 > w {
		radius = w / 2
	}
	if radius*2 > h {
		radius = h / 2
	}
	Box(dst, image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius), c)

	// Cap rows shrink toward the corners following the corner circle.
	for i := 0; i < radius; i++ {
		dy := radius - i
		s := isqrt(radius*radius - dy*dy)
		HorizontalLine(dst, rect.Min.X+radius-s, rect.Min.Y+i, w-2*radius+2*s, c)
		HorizontalLine(dst, rect.Min.X+radius-s, rect.Max.Y-1-i, w-2*radius+2*s, c)
	}
}

func isqrt(v int) int {
	if v <= 0 {
		return 0
	}
	r := v
	for r*r > v {
		r = (r + v/r) / 2
	}
	return r
}

// midpoint rasterizes a circle of the given radius around (cx, cy), calling
// span once per scanline pair with the left and right x extremes.
func midpoint(cx, cy, radius int, span func(x0, x1, y int)) {
	var (
		x = radius
		y = 0
		e = 1 - radius
	)
	for x >= y {
		span(cx-x, cx+x, cy+y)
		span(cx-x, cx+x, cy-y)
		span(cx-y, cx+y, cy+x)
		span(cx-y, cx+y, cy-x)
		y++
		if e < 0 {
			e += 2*y + 1
		} else {
			x--
			e += 2 * (y - x + 1)
		}
	}
}

func bresenham(dst Image, x0, y0, x1, y1 int, c color.Color) {
	var (
		dx = abs(x1 - x0)
		dy = -abs(y1 - y0)
		sx = 1
		sy = 1
		e  = dx + dy
	)
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	for {
		dst.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
