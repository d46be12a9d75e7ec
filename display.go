// Package display contains a driver for the CO5300-based circular AMOLED
// panels used by small wearables, plus the framebuffer and flush machinery
// that feeds them.
package display

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os"
)

var debug bool

func init() {
	debug = os.Getenv("DISPLAY_DEBUG") != ""
}

// Errors
var (
	// ErrBounds is returned for argument-level validation failures:
	// coordinates outside the panel, wrong byte counts, framebuffer size
	// mismatch. No bus I/O has happened when it is returned.
	ErrBounds = errors.New("display: out of display bounds")

	// ErrBus is returned when the underlying serial bus failed a transfer.
	// The driver does not retry.
	ErrBus = errors.New("display: bus transfer failed")

	// ErrResetPin is returned when driving the reset GPIO fails. It is only
	// produced during initialization.
	ErrResetPin = errors.New("display: reset GPIO pin failed")
)

// Display is an AMOLED display.
type Display interface {
	// Close the display driver.
	Close() error

	// Clear the display buffer.
	Clear()

	// At returns the color of the pixel at (x, y).
	At(x, y int) color.Color

	// Set the pixel color at (x, y).
	Set(x, y int, c color.Color)

	// Bounds is the display bounding box (dimensions).
	Bounds() image.Rectangle

	// ColorModel used by the display.
	ColorModel() color.Model

	// Show toggles the display on or off.
	Show(bool) error

	// SetBrightness adjusts the panel brightness.
	SetBrightness(level uint8) error

	// Refresh redraws the display from the internal frame buffer.
	Refresh() error
}

// Config is the display configuration.
type Config struct {
	// Width of the display in pixels.
	Width int

	// Height of the display in pixels.
	Height int

	// XOffset is the panel-specific column address offset.
	XOffset int

	// YOffset is the panel-specific row address offset.
	YOffset int

	// NoAlignEven disables the 2x2 tile alignment on four-lane flushes.
	// Leave it unset unless the panel revision is confirmed not to need it.
	NoAlignEven bool
}

type baseDisplay struct {
	draw.Image
	c         Conn
	width     int
	height    int
	colOffset int
	rowOffset int
}
