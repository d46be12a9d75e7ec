package display

import (
	"encoding/binary"
	"image"
	"image/color"
	"iter"
	"log"

	"github.com/openwrist/display/pixel"
)

// Set updates one framebuffer pixel and grows the pending dirty box.
// Out-of-bounds coordinates are ignored. Nothing is sent to the panel until
// Sync.
func (d *CO5300) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return
	}
	d.Image.Set(x, y, c)
	d.dirty = d.dirty.Union(image.Rect(x, y, x+1, y+1))
}

// Clear zeroes the framebuffer and marks the whole panel dirty.
func (d *CO5300) Clear() {
	fb := d.fb()
	for i := range fb.Pix {
		fb.Pix[i] = 0
	}
	d.dirty = image.Rect(0, 0, d.width, d.height)
}

// Fill floods both the framebuffer and the panel with a solid color.
func (d *CO5300) Fill(c color.Color) error {
	return d.FillRect(0, 0, d.width, d.height, c, true)
}

// Sync flushes the bounding box of pixels changed through Set since the
// previous Sync as a single rectangle, then resets the box.
func (d *CO5300) Sync() error {
	if d.dirty.Empty() {
		return nil
	}
	r := d.dirty
	d.dirty = image.Rectangle{}
	return d.FlushRect(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1)
}

// Refresh pushes the entire framebuffer to the panel.
func (d *CO5300) Refresh() error {
	d.dirty = image.Rectangle{}
	return d.FlushRect(0, 0, d.width-1, d.height-1)
}

// FlushRect streams the framebuffer contents of an inclusive rectangle to
// the panel. The rectangle is clipped to the panel and, unless disabled in
// the configuration, expanded outward to even 2x2 tile boundaries; some
// panel revisions drop odd-aligned four-lane writes. A rectangle entirely
// off-panel or inverted is a no-op.
func (d *CO5300) FlushRect(x0, y0, x1, y1 int) error {
	if x0 > x1 || y0 > y1 || x0 >= d.width || y0 >= d.height || x1 < 0 || y1 < 0 {
		return nil
	}
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 >= d.width {
		x1 = d.width - 1
	}
	if y1 >= d.height {
		y1 = d.height - 1
	}
	if d.alignEven {
		x0 &^= 1
		y0 &^= 1
		if x1 |= 1; x1 >= d.width {
			x1 = d.width - 1
		}
		if y1 |= 1; y1 >= d.height {
			y1 = d.height - 1
		}
	}
	if debug {
		log.Printf("display: flush (%d,%d)-(%d,%d)", x0, y0, x1, y1)
	}
	if err := d.setWindowQuad(x0, y0, x1, y1); err != nil {
		return err
	}

	fb := d.fb()
	stream := d.startStream()

	// Full-width spans are contiguous in framebuffer memory; stream them
	// straight out in DMA-sized chunks.
	if x0 == 0 && x1 == d.width-1 {
		data := fb.Pix[y0*fb.Stride : (y1+1)*fb.Stride]
		for off := 0; off < len(data); off += dmaChunkSize {
			end := off + dmaChunkSize
			if end > len(data) {
				end = len(data)
			}
			if err := stream.send(data[off:end]); err != nil {
				return err
			}
		}
		return nil
	}

	// Partial-width rows pack through the staging buffer.
	filled := 0
	for y := y0; y <= y1; y++ {
		row := fb.Row(x0, y, x1-x0+1)
		for len(row) > 0 {
			n := copy(d.stage[filled:], row)
			filled += n
			row = row[n:]
			if filled == len(d.stage) {
				if err := stream.send(d.stage); err != nil {
					return err
				}
				filled = 0
			}
		}
	}
	if filled > 0 {
		return stream.send(d.stage[:filled])
	}
	return nil
}

func (d *CO5300) checkRect(x, y, w, h int) error {
	if x < 0 || y < 0 || w < 0 || h < 0 {
		return ErrBounds
	}
	if x >= d.width || y >= d.height || w > d.width-x || h > d.height-y {
		return ErrBounds
	}
	return nil
}

// FillRect fills a w x h rectangle on the panel with a solid color using a
// pre-rendered staging pattern, without reading or writing the framebuffer
// unless mirrorFB is set. A zero-area rectangle succeeds without bus I/O.
func (d *CO5300) FillRect(x, y, w, h int, c color.Color, mirrorFB bool) error {
	if w == 0 || h == 0 {
		return nil
	}
	if err := d.checkRect(x, y, w, h); err != nil {
		return err
	}
	x1, y1 := x+w-1, y+h-1
	if err := d.setWindowQuad(x, y, x1, y1); err != nil {
		return err
	}

	cc := pixel.CRGB16Model.Convert(c).(pixel.CRGB16)
	var pat [2]byte
	binary.BigEndian.PutUint16(pat[:], cc.V)
	for i := 0; i < len(d.stage); i += 2 {
		d.stage[i+0] = pat[0]
		d.stage[i+1] = pat[1]
	}

	stream := d.startStream()
	for remaining := w * h * 2; remaining > 0; {
		take := len(d.stage)
		if take > remaining {
			take = remaining
		}
		if err := stream.send(d.stage[:take]); err != nil {
			return err
		}
		remaining -= take
	}

	if mirrorFB {
		fb := d.fb()
		for yy := y; yy <= y1; yy++ {
			row := fb.Row(x, yy, w)
			for i := 0; i < len(row); i += 2 {
				row[i+0] = pat[0]
				row[i+1] = pat[1]
			}
		}
	}
	return nil
}

// Blit streams w*h pre-encoded big-endian 5-6-5 pixels directly to a panel
// rectangle. data must hold exactly w*h*2 bytes. With mirrorFB set the rows
// are also copied into the framebuffer, byte for byte.
func (d *CO5300) Blit(x, y, w, h int, data []byte, mirrorFB bool) error {
	if w == 0 || h == 0 {
		return nil
	}
	if err := d.checkRect(x, y, w, h); err != nil {
		return err
	}
	if len(data) != w*h*2 {
		return ErrBounds
	}
	if err := d.setWindowQuad(x, y, x+w-1, y+h-1); err != nil {
		return err
	}

	stream := d.startStream()
	for off := 0; off < len(data); off += dmaChunkSize {
		end := off + dmaChunkSize
		if end > len(data) {
			end = len(data)
		}
		if err := stream.send(data[off:end]); err != nil {
			return err
		}
	}

	if mirrorFB {
		d.storeRows(x, y, w, h, data)
	}
	return nil
}

// StoreRect copies pre-encoded big-endian 5-6-5 pixel rows into the
// framebuffer without touching the panel. data must hold exactly w*h*2
// bytes.
func (d *CO5300) StoreRect(x, y, w, h int, data []byte) error {
	if w == 0 || h == 0 {
		return nil
	}
	if err := d.checkRect(x, y, w, h); err != nil {
		return err
	}
	if len(data) != w*h*2 {
		return ErrBounds
	}
	d.storeRows(x, y, w, h, data)
	return nil
}

func (d *CO5300) storeRows(x, y, w, h int, data []byte) {
	fb := d.fb()
	for yy := 0; yy < h; yy++ {
		copy(fb.Row(x, y+yy, w), data[yy*w*2:(yy+1)*w*2])
	}
}

// FillContiguous writes a rectangle's pixels from an iterator in row-major
// order, then flushes the visible part. Exactly area.Dx()*area.Dy() values
// are consumed even when part or all of the area lies off-panel; a shorter
// iterator stops the fill early.
func (d *CO5300) FillContiguous(area image.Rectangle, colors iter.Seq[pixel.CRGB16]) error {
	area = area.Canon()
	visible := area.Intersect(d.Bounds())

	next, stop := iter.Pull(colors)
	defer stop()

	fb := d.fb()
loop:
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			c, ok := next()
			if !ok {
				break loop
			}
			if (image.Point{X: x, Y: y}).In(visible) {
				fb.Set(x, y, c)
			}
		}
	}

	if visible.Empty() {
		return nil
	}
	return d.FlushRect(visible.Min.X, visible.Min.Y, visible.Max.X-1, visible.Max.Y-1)
}

// FillRectFB fills an inclusive framebuffer rectangle without touching the
// panel. The rectangle is clipped; nothing visible happens until a flush.
func (d *CO5300) FillRectFB(x0, y0, x1, y1 int, c color.Color) {
	if x0 > x1 || y0 > y1 || x0 >= d.width || y0 >= d.height || x1 < 0 || y1 < 0 {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 >= d.width {
		x1 = d.width - 1
	}
	if y1 >= d.height {
		y1 = d.height - 1
	}

	cc := pixel.CRGB16Model.Convert(c).(pixel.CRGB16)
	var pat [2]byte
	binary.BigEndian.PutUint16(pat[:], cc.V)

	fb := d.fb()
	for y := y0; y <= y1; y++ {
		row := fb.Row(x0, y, x1-x0+1)
		for i := 0; i < len(row); i += 2 {
			row[i+0] = pat[0]
			row[i+1] = pat[1]
		}
	}
}

// DrawLine draws a stroked line segment into the framebuffer and returns
// the bounding box it touched, for a follow-up FlushRect. The box is empty
// when the line lies entirely off-panel. stroke is the square pen width; 0
// and 1 both mean a single pixel.
func (d *CO5300) DrawLine(x0, y0, x1, y1 int, c color.Color, stroke int) image.Rectangle {
	if stroke < 1 {
		stroke = 1
	}
	half := stroke / 2

	var (
		dx   = abs(x1 - x0)
		dy   = -abs(y1 - y0)
		sx   = 1
		sy   = 1
		err  = dx + dy
		box  image.Rectangle
		x, y = x0, y0
	)
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	for {
		box = box.Union(d.pen(x, y, half, stroke, c))
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
	return box
}

// pen stamps a stroke x stroke square centered on (x, y) into the
// framebuffer and returns the clipped box it covered.
func (d *CO5300) pen(x, y, half, stroke int, c color.Color) image.Rectangle {
	r := image.Rect(x-half, y-half, x-half+stroke, y-half+stroke).
		Intersect(d.Bounds())
	if r.Empty() {
		return image.Rectangle{}
	}
	d.FillRectFB(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1, c)
	return r
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
