package display

import (
	"encoding/binary"
	"fmt"
	"image"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Defaults for the 1.43" 466x466 circular AMOLED the driver was written
// against. The panel RAM is wider than the glass; the visible area starts at
// column 6.
const (
	co5300DefaultWidth   = 466
	co5300DefaultHeight  = 466
	co5300DefaultXOffset = 6
)

// Registers (from CO5300 datasheet, MIPI DCS naming).
const (
	co5300NOP     = 0x00
	co5300SWRESET = 0x01 // Software Reset
	co5300SLPIN   = 0x10 // Sleep In
	co5300SLPOUT  = 0x11 // Sleep Out
	co5300NORON   = 0x13 // Normal Display Mode On
	co5300INVOFF  = 0x20
	co5300INVON   = 0x21
	co5300DISPOFF = 0x28 // Display Off
	co5300DISPON  = 0x29 // Display On
	co5300CASET   = 0x2A // Column Address Set
	co5300RASET   = 0x2B // Row Address Set
	co5300RAMWR   = 0x2C // Memory Write
	co5300MADCTL  = 0x36 // Memory Data Access Control
	co5300COLMOD  = 0x3A // Interface Pixel Format
	co5300RAMWRC  = 0x3C // Memory Write Continue
	co5300WRDISBV = 0x51 // Write Display Brightness
	co5300WRCTRLD = 0x53 // Write CTRL Display
	co5300WRVEN   = 0x63 // vendor enable, required before brightness takes
	co5300SETSPI  = 0xC4 // vendor SPI interface setting
)

// Serial interface selectors and lane mode-change instructions. Framed
// writes put the DCS opcode in the 24-bit address phase as opcode<<8; pixel
// bursts use their own selector with the memory-write opcode in the same
// position.
const (
	co5300WriteSel  = 0x02
	co5300PixelSel  = 0x32
	co5300EnterQuad = 0x38 // sent on one lane
	co5300ExitQuad  = 0xFF // sent on four lanes
)

const (
	// stageBytes is the staging buffer capacity used by rectangle flushes
	// and solid fills.
	stageBytes = 4096

	// dmaChunkSize is the largest single burst the DMA engine accepts.
	// Larger bursts drop pixels past the controller's internal watermark.
	dmaChunkSize = 32 * 1023
)

// CO5300 drives a CO5300 AMOLED controller over a quad-lane serial bus.
//
// The type implements [Display] and [draw.Image]; the exported fast paths
// (FillRect, Blit, FlushRect, DrawLine) bypass the per-pixel surface.
type CO5300 struct {
	crgb16Display
	mode      LaneMode
	stage     []byte
	dirty     image.Rectangle
	alignEven bool
	sleep     func(time.Duration)
}

var _ Display = (*CO5300)(nil)

// NewCO5300 opens and initializes a CO5300 panel on c. The connection's
// reset line is cycled and the full power-up sequence is run; on return the
// bus is left in four-lane mode with a zeroed framebuffer.
func NewCO5300(c Conn, config *Config) (*CO5300, error) {
	return newCO5300(c, config, time.Sleep)
}

func newCO5300(c Conn, config *Config, sleep func(time.Duration)) (*CO5300, error) {
	d := &CO5300{
		crgb16Display: crgb16Display{
			baseDisplay: baseDisplay{c: c},
		},
		mode:      OneLane,
		stage:     make([]byte, stageBytes),
		alignEven: true,
		sleep:     sleep,
	}

	if err := d.init(config); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *CO5300) String() string {
	return fmt.Sprintf("CO5300 %dx%d", d.width, d.height)
}

func (d *CO5300) init(config *Config) (err error) {
	if config == nil {
		config = &Config{}
	}
	if config.Width == 0 {
		config.Width = co5300DefaultWidth
	}
	if config.Height == 0 {
		config.Height = co5300DefaultHeight
	}
	d.width = config.Width
	d.height = config.Height
	if config.XOffset == 0 && config.YOffset == 0 && config.Width == co5300DefaultWidth {
		config.XOffset = co5300DefaultXOffset
	}
	d.colOffset = config.XOffset
	d.rowOffset = config.YOffset
	d.alignEven = !config.NoAlignEven

	if err = d.crgb16Display.init(config, binary.BigEndian); err != nil {
		return
	}

	// Hard reset: hold the active-low reset, release, let the panel come up.
	if err = d.resetPin(gpio.High, 2*time.Millisecond); err != nil {
		return
	}
	if err = d.resetPin(gpio.Low, 80*time.Millisecond); err != nil {
		return
	}
	if err = d.resetPin(gpio.High, 200*time.Millisecond); err != nil {
		return
	}

	// Power-up sequence. Every settling delay is load-bearing; skipping the
	// sleep-out, pixel format, display-on or MADCTL steps leaves the panel
	// dark or scrambled.
	if err = d.cmd(co5300SWRESET); err != nil {
		return
	}
	d.sleep(150 * time.Millisecond)

	if err = d.cmd(co5300SLPOUT); err != nil {
		return
	}
	d.sleep(180 * time.Millisecond)

	if err = d.cmd(co5300COLMOD, 0x55); err != nil { // 16 bpp, 5-6-5
		return
	}
	d.sleep(2 * time.Millisecond)

	if err = d.cmd(co5300SETSPI, 0x80); err != nil {
		return
	}
	if err = d.cmd(co5300NORON); err != nil {
		return
	}

	if err = d.cmd(co5300WRCTRLD, 0x20); err != nil { // brightness control on
		return
	}
	d.sleep(time.Millisecond)

	if err = d.cmd(co5300WRVEN, 0xFF); err != nil {
		return
	}
	d.sleep(time.Millisecond)

	if err = d.cmd(co5300WRDISBV, 0x00); err != nil { // dark until first frame
		return
	}
	d.sleep(time.Millisecond)

	if err = d.cmd(co5300DISPON); err != nil {
		return
	}
	d.sleep(200 * time.Millisecond)

	if err = d.cmd(co5300WRDISBV, 0xFF); err != nil {
		return
	}
	if err = d.cmd(co5300MADCTL, 0x00); err != nil { // no rotation, RGB
		return
	}

	if err = d.SetWindow(0, 0, d.width-1, d.height-1); err != nil {
		return
	}

	d.Clear()
	d.dirty = image.Rectangle{}

	// Pixel traffic runs on four lanes from here on; non-payload commands
	// drop back to one lane around each use.
	return d.enterFourLane()
}

func (d *CO5300) resetPin(level gpio.Level, settle time.Duration) error {
	if err := d.c.Reset(level); err != nil {
		return fmt.Errorf("%w: %v", ErrResetPin, err)
	}
	d.sleep(settle)
	return nil
}

func (d *CO5300) Close() error {
	if err := d.Show(false); err != nil {
		_ = d.c.Close()
		return err
	}
	return d.c.Close()
}

// ---- low-level command plumbing ----

func busError(err error) error {
	return fmt.Errorf("%w: %v", ErrBus, err)
}

// cmd sends a framed command on one lane. The bus must already be in
// one-lane mode; public entry points go through command instead.
func (d *CO5300) cmd(cmd byte, data ...byte) error {
	if err := d.c.Write(OneLane, co5300WriteSel, uint32(cmd)<<8, data); err != nil {
		return busError(err)
	}
	return nil
}

// command sends a framed one-lane command, fencing it with an exit from and
// re-entry into four-lane mode when the bus is currently in it.
func (d *CO5300) command(cmd byte, data ...byte) error {
	restore := d.mode == FourLane
	if restore {
		if err := d.exitFourLane(); err != nil {
			return err
		}
	}
	err := d.cmd(cmd, data...)
	if restore {
		if qerr := d.enterFourLane(); err == nil {
			err = qerr
		}
	}
	return err
}

// Mode-change instructions are transmitted in the current lane mode: the
// entry code goes out on one lane, the exit code on four.

func (d *CO5300) enterFourLane() error {
	if d.mode == FourLane {
		return nil
	}
	if err := d.c.Instruction(OneLane, co5300EnterQuad); err != nil {
		return busError(err)
	}
	d.mode = FourLane
	return nil
}

func (d *CO5300) exitFourLane() error {
	if d.mode == OneLane {
		return nil
	}
	if err := d.c.Instruction(FourLane, co5300ExitQuad); err != nil {
		return busError(err)
	}
	d.mode = OneLane
	return nil
}

// window validates the rectangle and produces the offset-applied column and
// row address arguments.
func (d *CO5300) window(x0, y0, x1, y1 int) (ca, ra [4]byte, err error) {
	if x0 < 0 || y0 < 0 || x0 > x1 || y0 > y1 || x1 >= d.width || y1 >= d.height {
		err = ErrBounds
		return
	}
	var (
		x0p = x0 + d.colOffset
		x1p = x1 + d.colOffset
		y0p = y0 + d.rowOffset
		y1p = y1 + d.rowOffset
	)
	ca = [4]byte{byte(x0p >> 8), byte(x0p), byte(x1p >> 8), byte(x1p)}
	ra = [4]byte{byte(y0p >> 8), byte(y0p), byte(y1p >> 8), byte(y1p)}
	return
}

// SetWindow programs the active memory-write rectangle, in panel
// coordinates after offset translation. Coordinates are inclusive.
func (d *CO5300) SetWindow(x0, y0, x1, y1 int) error {
	ca, ra, err := d.window(x0, y0, x1, y1)
	if err != nil {
		return err
	}
	if err = d.command(co5300CASET, ca[:]...); err != nil {
		return err
	}
	return d.command(co5300RASET, ra[:]...)
}

// setWindowQuad sends the same window command pair with framing, address
// and data all on four lanes, so streaming bursts avoid lane thrash.
func (d *CO5300) setWindowQuad(x0, y0, x1, y1 int) error {
	ca, ra, err := d.window(x0, y0, x1, y1)
	if err != nil {
		return err
	}
	if err := d.c.Write(FourLane, co5300WriteSel, uint32(co5300CASET)<<8, ca[:]); err != nil {
		return busError(err)
	}
	if err := d.c.Write(FourLane, co5300WriteSel, uint32(co5300RASET)<<8, ra[:]); err != nil {
		return busError(err)
	}
	return nil
}

// pixelStream tracks the memory-write / memory-write-continue opcode split
// across the chunks of a single burst.
type pixelStream struct {
	d      *CO5300
	opcode byte
}

func (d *CO5300) startStream() pixelStream {
	return pixelStream{d: d, opcode: co5300RAMWR}
}

func (s *pixelStream) send(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	if err := s.d.c.Write(FourLane, co5300PixelSel, uint32(s.opcode)<<8, chunk); err != nil {
		return busError(err)
	}
	s.opcode = co5300RAMWRC
	return nil
}

// ---- power control ----

// Show toggles the display on or off without touching sleep state.
func (d *CO5300) Show(show bool) error {
	if !show {
		return d.command(co5300DISPOFF)
	}
	if err := d.command(co5300DISPON); err != nil {
		return err
	}
	d.sleep(10 * time.Millisecond)
	return nil
}

// SetBrightness adjusts the panel brightness, 0 (dark) to 255 (full).
func (d *CO5300) SetBrightness(level uint8) error {
	return d.command(co5300WRDISBV, level)
}

// Sleep puts the panel into deep sleep. Window state does not survive it.
func (d *CO5300) Sleep() error {
	if err := d.command(co5300SLPIN); err != nil {
		return err
	}
	d.sleep(120 * time.Millisecond)
	return nil
}

// Wake brings the panel out of deep sleep.
func (d *CO5300) Wake() error {
	if err := d.command(co5300SLPOUT); err != nil {
		return err
	}
	d.sleep(120 * time.Millisecond)
	return nil
}

// Disable blanks the display and enters deep sleep.
func (d *CO5300) Disable() error {
	if err := d.Show(false); err != nil {
		return err
	}
	return d.Sleep()
}

// Enable wakes the panel and re-asserts the volatile pieces of the init
// sequence: pixel format and orientation are lost in sleep on some panel
// revisions.
func (d *CO5300) Enable() error {
	if err := d.Wake(); err != nil {
		return err
	}
	if err := d.command(co5300COLMOD, 0x55); err != nil {
		return err
	}
	if err := d.command(co5300MADCTL, 0x00); err != nil {
		return err
	}
	if err := d.SetBrightness(0xFF); err != nil {
		return err
	}
	return d.Show(true)
}
