package ui

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"

	"github.com/openwrist/display/asset"
	"github.com/openwrist/display/draw"
)

// Surface is the slice of the panel driver the renderer needs.
type Surface interface {
	draw.Image
	Fill(c color.Color) error
	Blit(x, y, w, h int, data []byte, mirrorFB bool) error
	FlushRect(x0, y0, x1, y1 int) error
}

var (
	black   = color.RGBA{A: 0xFF}
	white   = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	green   = color.RGBA{G: 0xFF, A: 0xFF}
	blue    = color.RGBA{B: 0xFF, A: 0xFF}
	cyan    = color.RGBA{G: 0xFF, B: 0xFF, A: 0xFF}
	red     = color.RGBA{R: 0xFF, A: 0xFF}
	magenta = color.RGBA{R: 0xFF, B: 0xFF, A: 0xFF}
	yellow  = color.RGBA{R: 0xFF, G: 0xFF, A: 0xFF}
)

// Renderer projects a State onto the panel.
type Renderer struct {
	d       Surface
	cache   *asset.Cache
	face    font.Face
	scratch []byte
}

// NewRenderer builds a renderer over a panel surface and an image cache. A
// nil face falls back to the built-in monospace font.
func NewRenderer(d Surface, cache *asset.Cache, face font.Face) *Renderer {
	if face == nil {
		face = inconsolata.Regular8x16
	}
	return &Renderer{d: d, cache: cache, face: face}
}

// Render draws the screen for s.
func (r *Renderer) Render(s State) error {
	if s.Dialog != DialogNone {
		return r.dialog(s.Dialog)
	}
	switch s.Page {
	case PageMain:
		captions := [...]string{"Main: Home", "Main: Start", "Main: About"}
		return r.caption(captions[s.Item], white, green)
	case PageSettings:
		captions := [...]string{"Settings: Volume", "Settings: Brightness", "Settings: Reset"}
		return r.caption(captions[s.Item], yellow, blue)
	case PageGallery:
		return r.image(s.Item)
	default:
		return r.image(GalleryImages - 1)
	}
}

func (r *Renderer) dialog(dl Dialog) error {
	switch dl {
	case DialogHome:
		return r.caption("Home", green, black)
	case DialogStart:
		return r.caption("Start", blue, black)
	case DialogAbout:
		return r.caption("About", cyan, black)
	case DialogVolume:
		return r.caption("Adjust Volume", white, red)
	case DialogBrightness:
		return r.caption("Adjust Brightness", white, magenta)
	case DialogReset:
		return r.caption("Reset?", white, yellow)
	case DialogTransform:
		return r.transform()
	}
	return nil
}

// caption floods the screen with the background color and centers a line of
// text on it.
func (r *Renderer) caption(text string, fg, bg color.Color) error {
	if err := r.d.Fill(bg); err != nil {
		return err
	}
	b := r.d.Bounds()
	cx, cy := b.Dx()/2, b.Dy()/2
	draw.TextCentered(r.d, cx, cy, r.face, text, fg)

	m := r.face.Metrics()
	h := m.Ascent.Ceil() + m.Descent.Ceil()
	w := font.MeasureString(r.face, text).Ceil()
	return r.d.FlushRect(cx-w/2, cy-m.Ascent.Ceil(), cx+w/2, cy-m.Ascent.Ceil()+h)
}

// transform draws the selection disc overlay.
func (r *Renderer) transform() error {
	b := r.d.Bounds()
	c := image.Pt(b.Dx()/2, b.Dy()/2)
	radius := b.Dx() / 4
	draw.Disc(r.d, c, radius, green)
	return r.d.FlushRect(c.X-radius, c.Y-radius, c.X+radius, c.Y+radius)
}

// image blits a cached full-frame image. On a cache miss the blob is
// inflated into a scratch buffer, drawn from there, and then offered back
// to the cache so the next transition hits the slot.
func (r *Renderer) image(i int) error {
	if data := r.cache.Slice(i); data != nil {
		return r.frame(data)
	}
	if r.scratch == nil {
		r.scratch = make([]byte, r.cache.SlotBytes())
	}
	if err := r.cache.Decompress(i, r.scratch); err != nil {
		return err
	}
	if err := r.frame(r.scratch); err != nil {
		return err
	}
	r.cache.Put(i, r.scratch)
	return nil
}

func (r *Renderer) frame(data []byte) error {
	b := r.d.Bounds()
	return r.d.Blit(0, 0, b.Dx(), b.Dy(), data, true)
}
