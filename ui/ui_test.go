package ui

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/klauspost/compress/zlib"

	"github.com/openwrist/display/asset"
	"github.com/openwrist/display/pixel"
)

func TestStateNavigation(t *testing.T) {
	var s State
	if s.Page != PageMain || s.Item != 0 || s.Dialog != DialogNone {
		t.Fatal("zero state is not the main menu")
	}

	// Page cycle.
	pages := []Page{PageSettings, PageGallery, PageInfo, PageMain}
	for _, want := range pages {
		s = s.NextMenu()
		if s.Page != want {
			t.Fatalf("NextMenu: want %v, got %v", want, s.Page)
		}
	}

	// Item wraparound in both directions.
	s = State{Page: PageMain}
	for _, want := range []int{1, 2, 0} {
		s = s.NextItem()
		if s.Item != want {
			t.Fatalf("NextItem: want %d, got %d", want, s.Item)
		}
	}
	s = s.PrevItem()
	if s.Item != 2 {
		t.Fatalf("PrevItem: want 2, got %d", s.Item)
	}

	s = State{Page: PageGallery, Item: GalleryImages - 1}
	if s = s.NextItem(); s.Item != 0 {
		t.Fatalf("gallery wrap: got %d", s.Item)
	}

	// Switching pages resets the selection.
	s = State{Page: PageMain, Item: 2}.NextMenu()
	if s.Item != 0 {
		t.Errorf("item not reset on page change: %d", s.Item)
	}
}

func TestStateDialogs(t *testing.T) {
	open := []struct {
		state State
		want  Dialog
	}{
		{State{Page: PageMain, Item: MainHome}, DialogHome},
		{State{Page: PageMain, Item: MainStart}, DialogStart},
		{State{Page: PageMain, Item: MainAbout}, DialogAbout},
		{State{Page: PageSettings, Item: SettingsVolume}, DialogVolume},
		{State{Page: PageSettings, Item: SettingsBrightness}, DialogBrightness},
		{State{Page: PageSettings, Item: SettingsReset}, DialogReset},
		{State{Page: PageGallery, Item: 4}, DialogTransform},
		{State{Page: PageInfo}, DialogNone},
	}
	for _, tc := range open {
		s := tc.state.Select()
		if s.Dialog != tc.want {
			t.Errorf("Select on %v item %d: want %v, got %v", tc.state.Page, tc.state.Item, tc.want, s.Dialog)
		}
		if s.Page != tc.state.Page || s.Item != tc.state.Item {
			t.Errorf("Select moved the selection: %+v -> %+v", tc.state, s)
		}
	}

	// Navigation is ignored while a dialog is open; Select closes it.
	s := State{Page: PageSettings, Item: 1}.Select()
	if got := s.NextMenu(); got != s {
		t.Error("NextMenu moved with an open dialog")
	}
	if got := s.NextItem(); got != s {
		t.Error("NextItem moved with an open dialog")
	}
	s = s.Select()
	if s.Dialog != DialogNone || s.Page != PageSettings || s.Item != 1 {
		t.Errorf("dialog close lost the page: %+v", s)
	}
}

// fakeSurface records renderer calls over an in-memory image.
type fakeSurface struct {
	*pixel.CRGB16Image
	fills   int
	flushes int
	blits   [][]byte
}

func (f *fakeSurface) Fill(c color.Color) error {
	f.fills++
	f.CRGB16Image.Fill(c)
	return nil
}

func (f *fakeSurface) Blit(x, y, w, h int, data []byte, mirrorFB bool) error {
	f.blits = append(f.blits, append([]byte(nil), data...))
	return nil
}

func (f *fakeSurface) FlushRect(x0, y0, x1, y1 int) error {
	f.flushes++
	return nil
}

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestRenderer(t *testing.T) (*Renderer, *fakeSurface, *asset.Cache) {
	t.Helper()
	const side = 16
	slotBytes := side * side * 2

	blobs := make([][]byte, GalleryImages)
	for i := range blobs {
		frame := make([]byte, slotBytes)
		for j := range frame {
			frame[j] = byte(i + 1)
		}
		blobs[i] = deflate(t, frame)
	}
	cache := asset.New(blobs, &asset.Config{SlotBytes: slotBytes})
	surface := &fakeSurface{CRGB16Image: pixel.NewCRGB16Image(side, side)}
	return NewRenderer(surface, cache, nil), surface, cache
}

func TestRenderGallery(t *testing.T) {
	r, surface, cache := newTestRenderer(t)

	// First render misses the cache: the frame comes from scratch and the
	// slot is filled afterwards.
	if cache.Slice(3) != nil {
		t.Fatal("slot filled before render")
	}
	if err := r.Render(State{Page: PageGallery, Item: 3}); err != nil {
		t.Fatal(err)
	}
	if len(surface.blits) != 1 {
		t.Fatalf("blits: %d", len(surface.blits))
	}
	if surface.blits[0][0] != 4 {
		t.Errorf("blitted frame content: %#02x", surface.blits[0][0])
	}
	if cache.Slice(3) == nil {
		t.Error("slot not back-filled after fallback render")
	}

	// Second render hits the slot and blits identical bytes.
	if err := r.Render(State{Page: PageGallery, Item: 3}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(surface.blits[0], surface.blits[1]) {
		t.Error("cache hit blitted different bytes")
	}
}

func TestRenderCaptions(t *testing.T) {
	r, surface, _ := newTestRenderer(t)

	if err := r.Render(State{Page: PageMain, Item: MainStart}); err != nil {
		t.Fatal(err)
	}
	if surface.fills != 1 {
		t.Errorf("fills: %d", surface.fills)
	}
	if surface.flushes != 1 {
		t.Errorf("flushes: %d", surface.flushes)
	}

	if err := r.Render(State{Page: PageSettings, Item: SettingsReset}.Select()); err != nil {
		t.Fatal(err)
	}
	if surface.fills != 2 {
		t.Errorf("dialog did not repaint: %d fills", surface.fills)
	}
}

func TestRenderTransform(t *testing.T) {
	r, surface, _ := newTestRenderer(t)

	s := State{Page: PageGallery, Item: 0}.Select()
	if err := r.Render(s); err != nil {
		t.Fatal(err)
	}
	if surface.flushes != 1 {
		t.Errorf("flushes: %d", surface.flushes)
	}
	// Disc center lands on the panel center.
	if r, g, b, _ := surface.At(8, 8).RGBA(); r != 0 || g == 0 || b != 0 {
		t.Error("center pixel is not green")
	}
}
